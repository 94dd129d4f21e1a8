package osmindex

// RoadClass is a level of road hierarchy. Lower value means more important road
type RoadClass uint16

const (
	ROAD_CLASS_MOTORWAY = RoadClass(iota)
	ROAD_CLASS_TRUNK
	ROAD_CLASS_PRIMARY
	ROAD_CLASS_SECONDARY
	ROAD_CLASS_TERTIARY
	ROAD_CLASS_RESIDENTIAL
	ROAD_CLASS_UNCLASSIFIED
	ROAD_CLASS_SERVICE
	ROAD_CLASS_OTHER
)

// MaxHierarchy is the level which admits every highway
const MaxHierarchy = int(ROAD_CLASS_OTHER)

func (iotaIdx RoadClass) String() string {
	return [...]string{"motorway", "trunk", "primary", "secondary", "tertiary", "residential", "unclassified", "service", "other"}[iotaIdx]
}

var (
	roadClassByHighway = map[string]RoadClass{
		"motorway":       ROAD_CLASS_MOTORWAY,
		"motorway_link":  ROAD_CLASS_MOTORWAY,
		"trunk":          ROAD_CLASS_TRUNK,
		"trunk_link":     ROAD_CLASS_TRUNK,
		"primary":        ROAD_CLASS_PRIMARY,
		"primary_link":   ROAD_CLASS_PRIMARY,
		"secondary":      ROAD_CLASS_SECONDARY,
		"secondary_link": ROAD_CLASS_SECONDARY,
		"tertiary":       ROAD_CLASS_TERTIARY,
		"tertiary_link":  ROAD_CLASS_TERTIARY,
		"residential":    ROAD_CLASS_RESIDENTIAL,
		"living_street":  ROAD_CLASS_RESIDENTIAL,
		"unclassified":   ROAD_CLASS_UNCLASSIFIED,
		"service":        ROAD_CLASS_SERVICE,
		"services":       ROAD_CLASS_SERVICE,
	}
)

// getRoadClass returns road class for `highway` tag value. Unknown values fall into ROAD_CLASS_OTHER
func getRoadClass(highway string) RoadClass {
	if found, ok := roadClassByHighway[highway]; ok {
		return found
	}
	return ROAD_CLASS_OTHER
}

// allowedByHierarchy checks if road class should be kept for given tile hierarchy level
func (iotaIdx RoadClass) allowedByHierarchy(hierarchy int) bool {
	return int(iotaIdx) <= hierarchy
}
