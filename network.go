package movement2osm

import (
	"context"

	"github.com/LdDl/movement2osm/osmindex"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// NetworkIndex is the road network reference the join runs against
type NetworkIndex interface {
	GeometryResolver
	ContainsWay(id string) bool
	ContainsNode(id string) bool
}

// IndexBuilder prepares network index for configuration
type IndexBuilder func(ctx context.Context, cfg *Config) (NetworkIndex, error)

// OSMIndexBuilder returns IndexBuilder loading OSM extract (tile source) clipped by boundary polygon
func OSMIndexBuilder(logger *zap.Logger) IndexBuilder {
	return func(ctx context.Context, cfg *Config) (NetworkIndex, error) {
		boundary, err := osmindex.ReadBoundary(cfg.Boundary)
		if err != nil {
			return nil, err
		}
		paths := osmindex.BuildPathsFromPolygon(boundary, cfg.BufferMeters, osmindex.TileParams{
			Source:    cfg.TileSource,
			Hierarchy: cfg.TileHierarchy,
		})
		for _, tileType := range osmindex.AllTileTypes() {
			paths.AddType(tileType)
		}
		index, err := osmindex.BuildIndex(ctx, paths, osmindex.WithLogger(logger), osmindex.WithRouting(cfg.Routing))
		if err != nil {
			return nil, errors.Wrap(err, "Can't build network index")
		}
		return index, nil
	}
}
