package movement2osm

import (
	"context"
	"math"
	"strconv"
	"strings"

	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"
)

// DefaultLaneOffset is the lateral shift (meters) of lane geometry from the way centerline
const DefaultLaneOffset = 4.0

// Outcome is the result of joining single measurement record
type Outcome uint16

const (
	OUTCOME_MATCHED = Outcome(iota + 1)
	OUTCOME_UNMATCHED
	OUTCOME_MISSING
)

func (iotaIdx Outcome) String() string {
	return [...]string{"matched", "unmatched", "missing"}[iotaIdx-1]
}

// GeometryResolver reconstructs geometry of the way between two nodes.
// Nil feature means geometry can't be reconstructed
type GeometryResolver interface {
	ResolveGeometry(ctx context.Context, wayID, fromNodeID, toNodeID string, offset float64) (*geojson.Feature, error)
}

// Resolver joins measurement records with road network geometry
type Resolver struct {
	segments  *Crosswalk
	junctions *Crosswalk
	geometry  GeometryResolver
	kind      MeasurementKind
	offset    float64
}

// WithDriveLeftSide flips the side of lane offset
func WithDriveLeftSide(leftSide bool) func(*Resolver) {
	return func(r *Resolver) {
		if leftSide {
			r.offset = -DefaultLaneOffset
		} else {
			r.offset = DefaultLaneOffset
		}
	}
}

func NewResolver(segments, junctions *Crosswalk, geometry GeometryResolver, kind MeasurementKind, options ...func(*Resolver)) *Resolver {
	r := &Resolver{
		segments:  segments,
		junctions: junctions,
		geometry:  geometry,
		kind:      kind,
		offset:    DefaultLaneOffset,
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// Offset returns signed offset passed to geometry resolution
func (r *Resolver) Offset() float64 {
	return r.offset
}

// Resolve classifies record and returns feature for OUTCOME_MATCHED
func (r *Resolver) Resolve(ctx context.Context, record MeasurementRecord) (Outcome, *geojson.Feature, error) {
	wayID, ok := r.segments.Lookup(record.SegmentID)
	if !ok {
		return OUTCOME_MISSING, nil, nil
	}
	fromNodeID, okFrom := r.junctions.Lookup(record.FromJunctionID)
	toNodeID, okTo := r.junctions.Lookup(record.ToJunctionID)

	feature, err := r.geometry.ResolveGeometry(ctx, wayID, fromNodeID, toNodeID, r.offset)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "Can't resolve geometry for segment '%s'", record.SegmentID)
	}
	if isEmptyFeature(feature) {
		return OUTCOME_UNMATCHED, nil, nil
	}

	if feature.Properties == nil {
		feature.Properties = make(map[string]interface{})
	}
	feature.SetProperty("segment", record.SegmentID)
	feature.SetProperty("fromJunction", record.FromJunctionID)
	feature.SetProperty("toJunction", record.ToJunctionID)
	feature.SetProperty("wayId", wayID)
	if okFrom {
		feature.SetProperty("fromNodeId", fromNodeID)
	}
	if okTo {
		feature.SetProperty("toNodeId", toNodeID)
	}
	feature.SetProperty("year", intProperty(record.Year))
	feature.SetProperty("quarter", intProperty(record.Quarter))
	feature.SetProperty("hour", intProperty(record.Hour))
	feature.SetProperty("mean", floatProperty(record.Mean))
	if r.kind == MEASUREMENT_AGGREGATED {
		feature.SetProperty("meanStd", floatProperty(record.StdDev))
		feature.SetProperty("p50", floatProperty(record.P50))
		feature.SetProperty("p85", floatProperty(record.P85))
	}
	return OUTCOME_MATCHED, feature, nil
}

func isEmptyFeature(feature *geojson.Feature) bool {
	if feature == nil || feature.Geometry == nil {
		return true
	}
	geometry := feature.Geometry
	switch geometry.Type {
	case geojson.GeometryPoint:
		return len(geometry.Point) == 0
	case geojson.GeometryMultiPoint:
		return len(geometry.MultiPoint) == 0
	case geojson.GeometryLineString:
		return len(geometry.LineString) == 0
	case geojson.GeometryMultiLineString:
		return len(geometry.MultiLineString) == 0
	case geojson.GeometryPolygon:
		return len(geometry.Polygon) == 0
	case geojson.GeometryMultiPolygon:
		return len(geometry.MultiPolygon) == 0
	case geojson.GeometryCollection:
		return len(geometry.Geometries) == 0
	default:
		return true
	}
}

// intProperty parses integer leniently. Unparsable value becomes null.
// Value with trailing garbage ("12abc") is unparsable too: no integer prefix is taken
func intProperty(s string) interface{} {
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return int(v)
}

// floatProperty parses float. NaN, Inf and unparsable values become null since JSON has no representation for them
func floatProperty(s string) interface{} {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
