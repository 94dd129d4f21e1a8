package movement2osm

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	geojson "github.com/paulmach/go.geojson"
)

type resolveCall struct {
	wayID      string
	fromNodeID string
	toNodeID   string
	offset     float64
}

// fakeIndex resolves ways listed in geometries to fixed line strings
type fakeIndex struct {
	ways       map[string]struct{}
	nodes      map[string]struct{}
	geometries map[string][][]float64
	calls      []resolveCall
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{
		ways:  map[string]struct{}{"100": {}, "300": {}},
		nodes: map[string]struct{}{"1": {}, "2": {}, "3": {}},
		geometries: map[string][][]float64{
			"100": {{37.600, 55.750}, {37.601, 55.750}},
		},
	}
}

func (f *fakeIndex) ContainsWay(id string) bool {
	_, ok := f.ways[id]
	return ok
}

func (f *fakeIndex) ContainsNode(id string) bool {
	_, ok := f.nodes[id]
	return ok
}

func (f *fakeIndex) ResolveGeometry(ctx context.Context, wayID, fromNodeID, toNodeID string, offset float64) (*geojson.Feature, error) {
	f.calls = append(f.calls, resolveCall{wayID, fromNodeID, toNodeID, offset})
	coordinates, ok := f.geometries[wayID]
	if !ok {
		return nil, nil
	}
	return geojson.NewLineStringFeature(coordinates), nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	filename := filepath.Join(dir, name)
	err := os.WriteFile(filename, []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}
	return filename
}
