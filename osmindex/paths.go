package osmindex

import (
	"fmt"
	"math"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// TileParams are the opaque parameters of the road network source
type TileParams struct {
	// Source is path to OSM extract (*.osm, *.xml or *.osm.pbf)
	Source string
	// Hierarchy is the maximum road class to be loaded. See RoadClass
	Hierarchy int
}

// PathGroup describes which part of the road network has to be loaded and which kinds of data are needed
type PathGroup struct {
	Source    string
	Hierarchy int
	Types     []TileType

	boundary       orb.MultiPolygon
	bufferMeters   float64
	padded         orb.Bound
	euclideanRings []orb.Ring
}

// BuildPathsFromPolygon prepares path group covering given boundary extended by buffer (meters)
func BuildPathsFromPolygon(boundary orb.MultiPolygon, bufferMeters float64, params TileParams) *PathGroup {
	paths := &PathGroup{
		Source:       params.Source,
		Hierarchy:    params.Hierarchy,
		Types:        make([]TileType, 0, 4),
		boundary:     boundary,
		bufferMeters: bufferMeters,
	}
	if len(boundary) == 0 {
		return paths
	}
	paths.padded = boundary.Bound()
	if bufferMeters > 0 {
		paths.padded = geo.BoundPad(paths.padded, bufferMeters)
		for _, polygon := range boundary {
			for _, ring := range polygon {
				euclidean := make(orb.Ring, len(ring))
				for i, pt := range ring {
					euclidean[i] = pointToEuclidean(pt)
				}
				paths.euclideanRings = append(paths.euclideanRings, euclidean)
			}
		}
	}
	return paths
}

func (paths *PathGroup) String() string {
	types := make([]string, len(paths.Types))
	for i, tileType := range paths.Types {
		types[i] = tileType.String()
	}
	return fmt.Sprintf("source: '%s' | hierarchy: %d | buffer: %f | types: '%s'", paths.Source, paths.Hierarchy, paths.bufferMeters, strings.Join(types, ","))
}

// AddType registers kind of data to be loaded. Duplicates are ignored
func (paths *PathGroup) AddType(tileType TileType) {
	if paths.HasType(tileType) {
		return
	}
	paths.Types = append(paths.Types, tileType)
}

// HasType checks if kind of data has been registered
func (paths *PathGroup) HasType(tileType TileType) bool {
	for _, t := range paths.Types {
		if t == tileType {
			return true
		}
	}
	return false
}

// Admits checks if WGS84 point lies inside boundary or within buffer distance from its rings
func (paths *PathGroup) Admits(pt orb.Point) bool {
	if len(paths.boundary) == 0 {
		return false
	}
	if !paths.padded.Contains(pt) {
		return false
	}
	if planar.MultiPolygonContains(paths.boundary, pt) {
		return true
	}
	if paths.bufferMeters <= 0 {
		return false
	}
	euclideanPt := pointToEuclidean(pt)
	// EPSG:3857 stretches distances by 1/cos(lat)
	scale := math.Cos(pt.Lat() * math.Pi / 180.0)
	for _, ring := range paths.euclideanRings {
		for i := 1; i < len(ring); i++ {
			if planar.DistanceFromSegment(ring[i-1], ring[i], euclideanPt)*scale <= paths.bufferMeters {
				return true
			}
		}
	}
	return false
}
