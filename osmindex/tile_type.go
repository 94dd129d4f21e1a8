package osmindex

// TileType is a kind of data the index has to load for a path group
type TileType uint16

const (
	TILE_METADATA = TileType(iota + 1)
	TILE_GEOMETRY
	TILE_REFERENCE
	TILE_INTERSECTION
)

func (iotaIdx TileType) String() string {
	return [...]string{"metadata", "geometry", "reference", "intersection"}[iotaIdx-1]
}

// AllTileTypes returns every tile kind in loading order
func AllTileTypes() []TileType {
	return []TileType{TILE_METADATA, TILE_GEOMETRY, TILE_REFERENCE, TILE_INTERSECTION}
}
