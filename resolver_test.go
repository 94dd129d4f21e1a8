package movement2osm

import (
	"context"
	"strings"
	"testing"
)

func testCrosswalks(t *testing.T, index *fakeIndex) (*Crosswalk, *Crosswalk) {
	t.Helper()
	segments, err := BuildCrosswalk("segments", strings.NewReader("segment_id,osm_way_id\nS1,100\nS3,300\n"), index.ContainsWay)
	if err != nil {
		t.Fatal(err)
	}
	junctions, err := BuildCrosswalk("junctions", strings.NewReader("junction_id,osm_node_id\nJ1,1\nJ2,2\n"), index.ContainsNode)
	if err != nil {
		t.Fatal(err)
	}
	return segments, junctions
}

func aggregatedRecord(segmentID string) MeasurementRecord {
	return MeasurementRecord{
		Year:           "2018",
		Quarter:        "1",
		Hour:           "7",
		SegmentID:      segmentID,
		FromJunctionID: "J1",
		ToJunctionID:   "J2",
		Mean:           "31.2",
		StdDev:         "4.5",
		P50:            "30.9",
		P85:            "36.1",
	}
}

func TestResolveOutcomes(t *testing.T) {
	index := newFakeIndex()
	segments, junctions := testCrosswalks(t, index)
	resolver := NewResolver(segments, junctions, index, MEASUREMENT_AGGREGATED)
	ctx := context.Background()

	outcome, feature, err := resolver.Resolve(ctx, aggregatedRecord("S9"))
	if err != nil {
		t.Fatal(err)
	}
	if outcome != OUTCOME_MISSING || feature != nil {
		t.Errorf("Unknown segment should be '%s', but got '%s'", OUTCOME_MISSING, outcome)
	}
	if len(index.calls) != 0 {
		t.Errorf("Geometry should not be requested for missing segment")
	}

	outcome, feature, err = resolver.Resolve(ctx, aggregatedRecord("S3"))
	if err != nil {
		t.Fatal(err)
	}
	if outcome != OUTCOME_UNMATCHED || feature != nil {
		t.Errorf("Segment without geometry should be '%s', but got '%s'", OUTCOME_UNMATCHED, outcome)
	}

	outcome, feature, err = resolver.Resolve(ctx, aggregatedRecord("S1"))
	if err != nil {
		t.Fatal(err)
	}
	if outcome != OUTCOME_MATCHED || feature == nil {
		t.Fatalf("Segment with geometry should be '%s', but got '%s'", OUTCOME_MATCHED, outcome)
	}
	correct := map[string]interface{}{
		"segment":      "S1",
		"fromJunction": "J1",
		"toJunction":   "J2",
		"wayId":        "100",
		"fromNodeId":   "1",
		"toNodeId":     "2",
		"year":         2018,
		"quarter":      1,
		"hour":         7,
		"mean":         31.2,
		"meanStd":      4.5,
		"p50":          30.9,
		"p85":          36.1,
	}
	for key, value := range correct {
		if feature.Properties[key] != value {
			t.Errorf("Property '%s' should be %v, but got %v", key, value, feature.Properties[key])
		}
	}
	last := index.calls[len(index.calls)-1]
	if last != (resolveCall{"100", "1", "2", DefaultLaneOffset}) {
		t.Errorf("Unexpected geometry request: %+v", last)
	}
}

func TestResolveHourly(t *testing.T) {
	index := newFakeIndex()
	segments, junctions := testCrosswalks(t, index)
	resolver := NewResolver(segments, junctions, index, MEASUREMENT_HOURLY)
	record := aggregatedRecord("S1")
	record.P50, record.P85 = "", ""
	outcome, feature, err := resolver.Resolve(context.Background(), record)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != OUTCOME_MATCHED {
		t.Fatalf("Record should be matched, but got '%s'", outcome)
	}
	for _, key := range []string{"meanStd", "p50", "p85"} {
		if _, ok := feature.Properties[key]; ok {
			t.Errorf("Hourly feature should not have '%s' property", key)
		}
	}
	if feature.Properties["mean"] != 31.2 {
		t.Errorf("Mean should be 31.2, but got %v", feature.Properties["mean"])
	}
}

func TestResolveAbsentJunctions(t *testing.T) {
	index := newFakeIndex()
	segments, junctions := testCrosswalks(t, index)
	resolver := NewResolver(segments, junctions, index, MEASUREMENT_AGGREGATED)
	record := aggregatedRecord("S1")
	record.FromJunctionID = "J7"
	outcome, feature, err := resolver.Resolve(context.Background(), record)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != OUTCOME_MATCHED {
		t.Fatalf("Record should be matched since index decides, but got '%s'", outcome)
	}
	if index.calls[0].fromNodeID != "" {
		t.Errorf("Absent junction should be passed as empty node, but got '%s'", index.calls[0].fromNodeID)
	}
	if _, ok := feature.Properties["fromNodeId"]; ok {
		t.Errorf("Absent node should not be set as property")
	}
	if feature.Properties["fromJunction"] != "J7" {
		t.Errorf("Junction should be kept as is, but got %v", feature.Properties["fromJunction"])
	}
}

func TestResolveDriveLeftSide(t *testing.T) {
	index := newFakeIndex()
	segments, junctions := testCrosswalks(t, index)
	right := NewResolver(segments, junctions, index, MEASUREMENT_AGGREGATED, WithDriveLeftSide(false))
	left := NewResolver(segments, junctions, index, MEASUREMENT_AGGREGATED, WithDriveLeftSide(true))
	if right.Offset() != DefaultLaneOffset || left.Offset() != -DefaultLaneOffset {
		t.Errorf("Offsets should be %f and %f, but got %f and %f", DefaultLaneOffset, -DefaultLaneOffset, right.Offset(), left.Offset())
	}
	_, featureRight, err := right.Resolve(context.Background(), aggregatedRecord("S1"))
	if err != nil {
		t.Fatal(err)
	}
	_, featureLeft, err := left.Resolve(context.Background(), aggregatedRecord("S1"))
	if err != nil {
		t.Fatal(err)
	}
	if index.calls[0].offset != -index.calls[1].offset {
		t.Errorf("Offset sign should be flipped, but got %f and %f", index.calls[0].offset, index.calls[1].offset)
	}
	for key, value := range featureRight.Properties {
		if featureLeft.Properties[key] != value {
			t.Errorf("Property '%s' should not depend on driving side", key)
		}
	}
}

func TestResolveMalformedNumbers(t *testing.T) {
	index := newFakeIndex()
	segments, junctions := testCrosswalks(t, index)
	resolver := NewResolver(segments, junctions, index, MEASUREMENT_AGGREGATED)
	record := aggregatedRecord("S1")
	record.Year = "n/a"
	record.Hour = "7.0"
	record.Mean = "fast"
	record.StdDev = "NaN"
	record.P85 = ""
	outcome, feature, err := resolver.Resolve(context.Background(), record)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != OUTCOME_MATCHED {
		t.Fatalf("Malformed numbers should not prevent matching, but got '%s'", outcome)
	}
	for _, key := range []string{"year", "mean", "meanStd", "p85"} {
		value, ok := feature.Properties[key]
		if !ok || value != nil {
			t.Errorf("Property '%s' should be null, but got %v", key, value)
		}
	}
	if feature.Properties["hour"] != 7 {
		t.Errorf("Hour should be 7, but got %v", feature.Properties["hour"])
	}
	if _, err := feature.MarshalJSON(); err != nil {
		t.Errorf("Feature with malformed numbers should be serializable: %s", err)
	}
}

func TestIntProperty(t *testing.T) {
	tests := []struct {
		value   string
		correct interface{}
	}{
		{"2018", 2018},
		{" 7 ", 7},
		{"3.0", 3},
		{"12abc", nil},
		{"", nil},
		{"NaN", nil},
	}
	for _, tt := range tests {
		if v := intProperty(tt.value); v != tt.correct {
			t.Errorf("Value '%s' should be parsed as %v, but got %v", tt.value, tt.correct, v)
		}
	}
}
