package osmindex

import (
	"encoding/json"
	"fmt"
	"os"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// ReadBoundary reads GeoJSON document with Polygon or MultiPolygon geometry
func ReadBoundary(filename string) (orb.MultiPolygon, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read boundary file")
	}
	boundary, err := ParseBoundary(data)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't parse boundary file '%s'", filename)
	}
	return boundary, nil
}

// ParseBoundary extracts polygons from bare GeoJSON geometry, Feature or FeatureCollection
func ParseBoundary(data []byte) (orb.MultiPolygon, error) {
	header := struct {
		Type string `json:"type"`
	}{}
	err := json.Unmarshal(data, &header)
	if err != nil {
		return nil, errors.Wrap(err, "Can't detect GeoJSON type")
	}
	geometries := []*geojson.Geometry{}
	switch header.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, errors.Wrap(err, "Can't unmarshal FeatureCollection")
		}
		for _, feature := range fc.Features {
			if feature.Geometry != nil && (feature.Geometry.IsPolygon() || feature.Geometry.IsMultiPolygon()) {
				geometries = append(geometries, feature.Geometry)
			}
		}
	case "Feature":
		feature, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, errors.Wrap(err, "Can't unmarshal Feature")
		}
		if feature.Geometry != nil {
			geometries = append(geometries, feature.Geometry)
		}
	default:
		geometry, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, errors.Wrap(err, "Can't unmarshal Geometry")
		}
		geometries = append(geometries, geometry)
	}

	boundary := orb.MultiPolygon{}
	for _, geometry := range geometries {
		switch geometry.Type {
		case geojson.GeometryPolygon:
			boundary = append(boundary, polygonFromCoordinates(geometry.Polygon))
		case geojson.GeometryMultiPolygon:
			for _, coordinates := range geometry.MultiPolygon {
				boundary = append(boundary, polygonFromCoordinates(coordinates))
			}
		default:
			return nil, fmt.Errorf("Geometry type '%s' is not supported for boundary. Expected Polygon or MultiPolygon", geometry.Type)
		}
	}
	if len(boundary) == 0 {
		return nil, fmt.Errorf("No Polygon or MultiPolygon geometry found")
	}
	return boundary, nil
}

func polygonFromCoordinates(coordinates [][][]float64) orb.Polygon {
	polygon := make(orb.Polygon, 0, len(coordinates))
	for _, ringCoordinates := range coordinates {
		ring := make(orb.Ring, 0, len(ringCoordinates))
		for _, coordinate := range ringCoordinates {
			if len(coordinate) < 2 {
				continue
			}
			ring = append(ring, orb.Point{coordinate[0], coordinate[1]})
		}
		polygon = append(polygon, ring)
	}
	return polygon
}
