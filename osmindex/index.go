package osmindex

import (
	"context"
	"fmt"
	"strconv"
	"time"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/osm"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Index is the road network reference: known way and node identifiers and geometry of ways.
// It is immutable after BuildIndex returns and safe to share between readers
type Index struct {
	WaySet  map[string]struct{}
	NodeSet map[string]struct{}

	ways  map[osm.WayID]*wayData
	nodes map[osm.NodeID]orb.Point

	router  *router
	logger  *zap.Logger
	routing bool
}

// WithLogger sets logger for index building
func WithLogger(logger *zap.Logger) func(*Index) {
	return func(index *Index) {
		index.logger = logger
	}
}

// WithRouting enables shortest path fallback when junction nodes are not placed on the requested way
func WithRouting(routing bool) func(*Index) {
	return func(index *Index) {
		index.routing = routing
	}
}

// BuildIndex loads data described by path group
func BuildIndex(ctx context.Context, paths *PathGroup, options ...func(*Index)) (*Index, error) {
	index := &Index{
		WaySet:  make(map[string]struct{}),
		NodeSet: make(map[string]struct{}),
		ways:    make(map[osm.WayID]*wayData),
		nodes:   make(map[osm.NodeID]orb.Point),
		logger:  zap.NewNop(),
	}
	for _, option := range options {
		option(index)
	}
	if len(paths.Types) == 0 {
		return nil, fmt.Errorf("No tile types requested for path group")
	}
	index.logger.Info("Building network index", zap.Stringer("paths", paths))

	data, err := readOSM(ctx, paths, index.logger)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read road network")
	}

	st := time.Now()
	for _, way := range data.ways {
		admitted := false
		for _, nodeID := range way.Nodes {
			if pt, ok := data.nodes[nodeID]; ok && paths.Admits(pt) {
				admitted = true
				break
			}
		}
		if !admitted {
			continue
		}
		index.ways[way.ID] = way
		if paths.HasType(TILE_REFERENCE) {
			index.WaySet[strconv.FormatInt(int64(way.ID), 10)] = struct{}{}
		}
		for _, nodeID := range way.Nodes {
			pt, ok := data.nodes[nodeID]
			if !ok {
				continue
			}
			if paths.HasType(TILE_INTERSECTION) {
				index.NodeSet[strconv.FormatInt(int64(nodeID), 10)] = struct{}{}
			}
			if paths.HasType(TILE_GEOMETRY) {
				index.nodes[nodeID] = pt
			}
		}
	}
	index.logger.Info("Done filtering by boundary", zap.Duration("elapsed", time.Since(st)), zap.Int("ways", len(index.WaySet)), zap.Int("nodes", len(index.NodeSet)))

	if index.routing && paths.HasType(TILE_GEOMETRY) {
		index.router, err = buildRouter(index.ways, index.nodes, index.logger)
		if err != nil {
			return nil, errors.Wrap(err, "Can't prepare routing graph")
		}
	}
	return index, nil
}

// ContainsWay checks if way identifier is known
func (index *Index) ContainsWay(id string) bool {
	_, ok := index.WaySet[id]
	return ok
}

// ContainsNode checks if node identifier is known
func (index *Index) ContainsNode(id string) bool {
	_, ok := index.NodeSet[id]
	return ok
}

// ResolveGeometry reconstructs part of the way between two nodes and shifts it by offset (meters, positive is the right side of travel direction).
// Returns nil feature when geometry can't be reconstructed
func (index *Index) ResolveGeometry(ctx context.Context, wayID, fromNodeID, toNodeID string, offset float64) (*geojson.Feature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	wayIDParsed, err := strconv.ParseInt(wayID, 10, 64)
	if err != nil {
		return nil, nil
	}
	way, ok := index.ways[osm.WayID(wayIDParsed)]
	if !ok {
		return nil, nil
	}
	from, okFrom := parseNodeID(fromNodeID)
	to, okTo := parseNodeID(toNodeID)
	if !okFrom || !okTo {
		return nil, nil
	}

	nodeIDs := way.between(from, to)
	if nodeIDs == nil && index.router != nil {
		nodeIDs = index.router.path(from, to)
	}
	line := make(orb.LineString, 0, len(nodeIDs))
	for _, nodeID := range nodeIDs {
		if pt, ok := index.nodes[nodeID]; ok {
			line = append(line, pt)
		}
	}
	line = offsetSpherical(line, offset)
	if len(line) < 2 {
		return nil, nil
	}

	coordinates := make([][]float64, len(line))
	for i, pt := range line {
		coordinates[i] = []float64{pt.Lon(), pt.Lat()}
	}
	feature := geojson.NewLineStringFeature(coordinates)
	feature.SetProperty("length", lengthMeters(line))
	return feature, nil
}

func parseNodeID(id string) (osm.NodeID, bool) {
	if id == "" {
		return 0, false
	}
	parsed, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, false
	}
	return osm.NodeID(parsed), true
}

// between returns nodes of the way from first occurrence of `from` to first occurrence of `to` (reversed if needed).
// Returns nil if any of nodes is not placed on the way
func (way *wayData) between(from, to osm.NodeID) []osm.NodeID {
	fromIdx, toIdx := -1, -1
	for i, nodeID := range way.Nodes {
		if fromIdx < 0 && nodeID == from {
			fromIdx = i
		}
		if toIdx < 0 && nodeID == to {
			toIdx = i
		}
	}
	if fromIdx < 0 || toIdx < 0 || fromIdx == toIdx {
		return nil
	}
	if fromIdx < toIdx {
		output := make([]osm.NodeID, toIdx-fromIdx+1)
		copy(output, way.Nodes[fromIdx:toIdx+1])
		return output
	}
	output := make([]osm.NodeID, 0, fromIdx-toIdx+1)
	for i := fromIdx; i >= toIdx; i-- {
		output = append(output, way.Nodes[i])
	}
	return output
}

// lengthMeters returns haversine length of WGS84 line
func lengthMeters(line orb.LineString) float64 {
	total := 0.0
	for i := 1; i < len(line); i++ {
		total += geo.DistanceHaversine(line[i-1], line[i])
	}
	return total
}
