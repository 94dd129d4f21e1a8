package osmindex

import (
	"time"

	"github.com/LdDl/ch"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/osm"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// router finds paths between junction nodes which are not placed on the same way
type router struct {
	graph ch.Graph
}

func buildRouter(ways map[osm.WayID]*wayData, nodes map[osm.NodeID]orb.Point, logger *zap.Logger) (*router, error) {
	logger.Info("Preparing routing graph")
	st := time.Now()
	r := &router{}
	edges := 0
	for _, way := range ways {
		for i := 1; i < len(way.Nodes); i++ {
			sourceID, targetID := way.Nodes[i-1], way.Nodes[i]
			source, okSource := nodes[sourceID]
			target, okTarget := nodes[targetID]
			if !okSource || !okTarget || sourceID == targetID {
				continue
			}
			err := r.graph.CreateVertex(int64(sourceID))
			if err != nil {
				return nil, errors.Wrap(err, "Can not create source vertex")
			}
			err = r.graph.CreateVertex(int64(targetID))
			if err != nil {
				return nil, errors.Wrap(err, "Can not create target vertex")
			}
			cost := geo.DistanceHaversine(source, target)
			err = r.graph.AddEdge(int64(sourceID), int64(targetID), cost)
			if err != nil {
				return nil, errors.Wrap(err, "Can not wrap source and target vertices as edge")
			}
			edges++
			if !way.Oneway {
				err = r.graph.AddEdge(int64(targetID), int64(sourceID), cost)
				if err != nil {
					return nil, errors.Wrap(err, "Can not wrap target and source vertices as edge")
				}
				edges++
			}
		}
	}
	r.graph.PrepareContractionHierarchies()
	logger.Info("Done preparing routing graph", zap.Duration("elapsed", time.Since(st)), zap.Int("vertices", len(r.graph.Vertices)), zap.Int("edges", edges))
	return r, nil
}

// path returns sequence of nodes for the shortest path. Returns nil if there is no path
func (r *router) path(source, target osm.NodeID) []osm.NodeID {
	if source == target {
		return nil
	}
	cost, vertices := r.graph.ShortestPath(int64(source), int64(target))
	if cost < 0 || len(vertices) < 2 {
		return nil
	}
	path := make([]osm.NodeID, len(vertices))
	for i, vertex := range vertices {
		path[i] = osm.NodeID(vertex)
	}
	return path
}
