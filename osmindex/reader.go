package osmindex

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type OSMScanner interface {
	Scan() bool
	Close() error
	Err() error
	Object() osm.Object
}

// wayData is a highway kept after the metadata pass
type wayData struct {
	ID        osm.WayID
	Nodes     []osm.NodeID
	Oneway    bool
	roadClass RoadClass
}

// osmData is what has been scanned from an OSM extract
type osmData struct {
	ways  []*wayData
	nodes map[osm.NodeID]orb.Point
}

// SupportedSource checks if file extension of tile source can be scanned: *.osm, *.xml or *.pbf
func SupportedSource(filename string) bool {
	switch filepath.Ext(filename) {
	case ".osm", ".xml", ".pbf":
		return true
	default:
		return false
	}
}

// newScanner guesses file extension and prepares correct scanner
func newScanner(ctx context.Context, file *os.File, filename string) (OSMScanner, error) {
	ext := filepath.Ext(filename)
	switch ext {
	case ".osm", ".xml":
		return osmxml.New(ctx, file), nil
	case ".pbf":
		return osmpbf.New(ctx, file, 4), nil
	default:
		return nil, fmt.Errorf("File extension '%s' for file '%s' is not handled yet", ext, filename)
	}
}

func parseOneway(way *osm.Way) bool {
	switch way.Tags.Find("oneway") {
	case "yes", "1", "-1", "true":
		return true
	case "":
		return way.Tags.Find("junction") == "roundabout"
	default:
		return false
	}
}

// readOSM scans ways (filtered by highway class when metadata is requested) and then coordinates of their nodes
func readOSM(ctx context.Context, paths *PathGroup, logger *zap.Logger) (*osmData, error) {
	filename := paths.Source
	logger.Info("Opening file", zap.String("filename", filename))
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open OSM file")
	}
	defer file.Close()

	/* Process ways */
	st := time.Now()
	ways := []*wayData{}
	nodesSeen := make(map[osm.NodeID]struct{})
	skippedByHierarchy := 0
	{
		scannerWays, err := newScanner(ctx, file, filename)
		if err != nil {
			return nil, err
		}
		defer scannerWays.Close()

		for scannerWays.Scan() {
			obj := scannerWays.Object()
			if obj.ObjectID().Type() != "way" {
				continue
			}
			way := obj.(*osm.Way)
			highway := way.Tags.Find("highway")
			if highway == "" {
				continue
			}
			if len(way.Nodes) < 2 {
				logger.Debug("Way with less than 2 nodes met", zap.Int64("way_id", int64(way.ID)), zap.Int("nodes", len(way.Nodes)))
				continue
			}
			roadClass := getRoadClass(highway)
			if paths.HasType(TILE_METADATA) && !roadClass.allowedByHierarchy(paths.Hierarchy) {
				skippedByHierarchy++
				continue
			}
			preparedWay := &wayData{
				ID:        way.ID,
				Nodes:     make([]osm.NodeID, 0, len(way.Nodes)),
				Oneway:    parseOneway(way),
				roadClass: roadClass,
			}
			if way.Tags.Find("oneway") == "-1" {
				// Drawn against travel direction
				for i := len(way.Nodes) - 1; i >= 0; i-- {
					preparedWay.Nodes = append(preparedWay.Nodes, way.Nodes[i].ID)
				}
			} else {
				for _, node := range way.Nodes {
					preparedWay.Nodes = append(preparedWay.Nodes, node.ID)
				}
			}
			for _, nodeID := range preparedWay.Nodes {
				nodesSeen[nodeID] = struct{}{}
			}
			ways = append(ways, preparedWay)
		}
		err = scannerWays.Err()
		if err != nil {
			return nil, errors.Wrap(err, "Scanner error on ways")
		}
	}
	logger.Info("Done scanning ways", zap.Duration("elapsed", time.Since(st)), zap.Int("ways", len(ways)), zap.Int("skipped_by_hierarchy", skippedByHierarchy))

	// Seek file to start
	_, err = file.Seek(0, io.SeekStart)
	if err != nil {
		return nil, errors.Wrap(err, "Can't repeat seeking after ways scanning")
	}

	/* Process nodes */
	st = time.Now()
	nodes := make(map[osm.NodeID]orb.Point, len(nodesSeen))
	{
		scannerNodes, err := newScanner(ctx, file, filename)
		if err != nil {
			return nil, err
		}
		defer scannerNodes.Close()

		for scannerNodes.Scan() {
			obj := scannerNodes.Object()
			if obj.ObjectID().Type() != "node" {
				continue
			}
			node := obj.(*osm.Node)
			if _, ok := nodesSeen[node.ID]; ok {
				delete(nodesSeen, node.ID)
				nodes[node.ID] = orb.Point{node.Lon, node.Lat}
			}
		}
		err = scannerNodes.Err()
		if err != nil {
			return nil, errors.Wrap(err, "Scanner error on nodes")
		}
	}
	logger.Info("Done scanning nodes", zap.Duration("elapsed", time.Since(st)), zap.Int("nodes", len(nodes)), zap.Int("missing_nodes", len(nodesSeen)))

	return &osmData{
		ways:  ways,
		nodes: nodes,
	}, nil
}
