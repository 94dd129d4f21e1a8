package osmindex

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/paulmach/orb"
)

func lineAsString(l orb.LineString) string {
	agg := []string{}
	for _, pt := range l {
		agg = append(agg, fmt.Sprintf("[%f, %f]", pt.X(), pt.Y()))
	}
	return "[" + strings.Join(agg, ",") + "]"
}

func TestOffset(t *testing.T) {
	line := orb.LineString{{10.0, 10.0}, {15.0, 10.0}, {18.0, 15.0}, {18.0, 20.0}, {15.0, 24.0}, {12.0, 24.0}, {10.0, 18.0}, {10.0, 15.0}, {13.0, 12.0}, {15.0, 16.0}}
	distance := 1.0

	leftL := lineAsString(offsetCurve(line, distance))
	rightL := lineAsString(offsetCurve(line, -distance))

	correctLeft := "[[10.000000, 11.000000],[14.433810, 11.000000],[17.000000, 15.276984],[17.000000, 19.666667],[14.500000, 23.000000],[12.720759, 23.000000],[11.000000, 17.837722],[11.000000, 15.414214],[12.726049, 13.688165],[14.105573, 16.447214]]"
	if leftL != correctLeft {
		t.Errorf("Left offset line should be '%s' but got '%s'", correctLeft, leftL)
	}
	correctRight := "[[10.000000, 9.000000],[15.566190, 9.000000],[19.000000, 14.723016],[19.000000, 20.333333],[15.500000, 25.000000],[11.279241, 25.000000],[9.000000, 18.162278],[9.000000, 14.585786],[13.273951, 10.311835],[15.894427, 15.552786]]"
	if rightL != correctRight {
		t.Errorf("Right offset line should be '%s' but got '%s'", correctRight, rightL)
	}
}

func TestOffsetCollinear(t *testing.T) {
	line := orb.LineString{{0, 0}, {1, 0}, {2, 0}}
	offsetL := lineAsString(offsetCurve(line, 1))
	correct := "[[0.000000, 1.000000],[1.000000, 1.000000],[2.000000, 1.000000]]"
	if offsetL != correct {
		t.Errorf("Offset of collinear line should be '%s' but got '%s'", correct, offsetL)
	}
}

func TestIntersect(t *testing.T) {
	pt, err := intersect(orb.Point{0, 0}, orb.Point{2, 2}, orb.Point{0, 2}, orb.Point{2, 0})
	if err != nil {
		t.Error(err)
		return
	}
	if pt != (orb.Point{1, 1}) {
		t.Errorf("Intersection should be %v, but got %v", orb.Point{1, 1}, pt)
	}
	_, err = intersect(orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{0, 1}, orb.Point{1, 1})
	if err == nil {
		t.Errorf("Parallel lines should not intersect")
	}
}

func TestDedupLine(t *testing.T) {
	line := orb.LineString{{1, 1}, {1, 1}, {2, 2}, {2, 2}, {1, 1}}
	deduped := dedupLine(line)
	if len(deduped) != 3 {
		t.Errorf("Line should have 3 points after dedup, but got %d", len(deduped))
	}
}

func TestOffsetSphericalRightSide(t *testing.T) {
	// Eastbound line: right side is south
	line := orb.LineString{{37.600, 55.750}, {37.601, 55.750}, {37.602, 55.750}}
	right := offsetSpherical(line, 4)
	if len(right) != len(line) {
		t.Fatalf("Offset line should have %d points, but got %d", len(line), len(right))
	}
	for i, pt := range right {
		if pt.Lat() >= 55.750 {
			t.Errorf("Point %d should be shifted to the south, but got %v", i, pt)
		}
		if math.Abs(pt.Lon()-line[i].Lon()) > 1e-9 {
			t.Errorf("Point %d should keep longitude %f, but got %f", i, line[i].Lon(), pt.Lon())
		}
	}
	left := offsetSpherical(line, -4)
	for i, pt := range left {
		if pt.Lat() <= 55.750 {
			t.Errorf("Point %d should be shifted to the north, but got %v", i, pt)
		}
	}
	same := offsetSpherical(line, 0)
	if lineAsString(same) != lineAsString(line) {
		t.Errorf("Zero offset should keep line as is")
	}
}

func TestProjectionRoundTrip(t *testing.T) {
	pt := orb.Point{37.6417350769043, 55.751849391735284}
	back := pointToSpherical(pointToEuclidean(pt))
	if math.Abs(back.Lon()-pt.Lon()) > 1e-9 || math.Abs(back.Lat()-pt.Lat()) > 1e-9 {
		t.Errorf("Round trip should return %v, but got %v", pt, back)
	}
}
