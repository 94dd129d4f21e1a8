package osmindex

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// intersect returns intersection point of two lines defined by segments
// p1, p2 - first segment
// p3, p4 - second segment
// Note: Euclidean space
func intersect(p1, p2, p3, p4 orb.Point) (orb.Point, error) {
	a1 := p2[1] - p1[1]
	b1 := p1[0] - p2[0]
	c1 := a1*p1[0] + b1*p1[1]
	a2 := p4[1] - p3[1]
	b2 := p3[0] - p4[0]
	c2 := a2*p3[0] + b2*p3[1]

	det := a1*b2 - a2*b1
	if det == 0 {
		return orb.Point{}, fmt.Errorf("The lines are parallel")
	}

	x := (b2*c1 - b1*c2) / det
	y := (a1*c2 - a2*c1) / det
	return orb.Point{x, y}, nil
}

// offsetCurve shifts line by given distance. Positive distance shifts to the left side of the line direction
//
// Note: Euclidean space. Line must have at least 2 distinct consecutive points
//
func offsetCurve(line orb.LineString, distance float64) orb.LineString {
	var result orb.LineString
	segments := make([][2]orb.Point, 0, len(line)-1)

	for i := 1; i < len(line); i++ {
		p1 := line[i-1]
		p2 := line[i]

		vec := [2]float64{p2[0] - p1[0], p2[1] - p1[1]}
		vecLen := math.Sqrt(vec[0]*vec[0] + vec[1]*vec[1])
		vec = [2]float64{vec[0] / vecLen, vec[1] / vecLen}

		// Rotate by 90 degrees counter-clockwise
		rotated := [2]float64{-vec[1], vec[0]}
		offset := [2]float64{rotated[0] * distance, rotated[1] * distance}

		op1 := orb.Point{p1[0] + offset[0], p1[1] + offset[1]}
		op2 := orb.Point{p2[0] + offset[0], p2[1] + offset[1]}
		segments = append(segments, [2]orb.Point{op1, op2})
	}

	result = append(result, segments[0][0])
	for i := 1; i < len(segments); i++ {
		seg1 := segments[i-1]
		seg2 := segments[i]
		intersection, err := intersect(seg1[0], seg1[1], seg2[0], seg2[1])
		if err != nil {
			// Collinear neighbours: the shared vertex is shifted along with both segments
			result = append(result, seg2[0])
			continue
		}
		result = append(result, intersection)
	}
	result = append(result, segments[len(segments)-1][1])
	return result
}

// dedupLine removes consecutive duplicate points. Returns new slice
func dedupLine(line orb.LineString) orb.LineString {
	output := make(orb.LineString, 0, len(line))
	for i, pt := range line {
		if i > 0 && pt.Equal(line[i-1]) {
			continue
		}
		output = append(output, pt)
	}
	return output
}

// offsetSpherical shifts WGS84 line by given distance (meters of EPSG:3857). Positive distance shifts to the right side of the line direction
func offsetSpherical(line orb.LineString, meters float64) orb.LineString {
	line = dedupLine(line)
	if meters == 0 || len(line) < 2 {
		return line
	}
	euclidean := lineToEuclidean(line)
	return lineToSpherical(offsetCurve(euclidean, -meters))
}
