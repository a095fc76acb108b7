package detection

import (
	"math"

	"github.com/golang/geo/r2"
)

func toR2(p Point) r2.Point {
	return r2.Point{X: float64(p.X), Y: float64(p.Y)}
}

// Area returns the absolute area enclosed by a closed polygon (shoelace formula).
// Fewer than three points enclose no area.
func Area(pts []Point) float64 {
	n := len(pts)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += toR2(pts[i]).Cross(toR2(pts[(i+1)%n]))
	}
	return math.Abs(sum) / 2
}

// ArcLength returns the length of a polyline. When closed is true the segment
// from the last point back to the first is included.
func ArcLength(pts []Point, closed bool) float64 {
	n := len(pts)
	if n < 2 {
		return 0
	}
	var length float64
	for i := 1; i < n; i++ {
		length += toR2(pts[i]).Sub(toR2(pts[i-1])).Norm()
	}
	if closed {
		length += toR2(pts[0]).Sub(toR2(pts[n-1])).Norm()
	}
	return length
}

// ApproxPolyDP simplifies a polyline with the Douglas-Peucker algorithm.
//
// Parameters:
//   - pts: Input vertices. Not modified.
//   - epsilon: Maximum distance between the original curve and its approximation.
//   - closed: Treat pts as a closed polygon.
//
// For a closed polygon the curve is split at pts[0] and at the point farthest
// from it, and each half is simplified separately, so the approximation always
// starts with pts[0].
func ApproxPolyDP(pts []Point, epsilon float64, closed bool) []Point {
	n := len(pts)
	if n < 3 {
		out := make([]Point, n)
		copy(out, pts)
		return out
	}

	if !closed {
		keep := make([]bool, n)
		keep[0], keep[n-1] = true, true
		simplify(pts, 0, n-1, epsilon, keep)
		return collect(pts, keep)
	}

	origin := toR2(pts[0])
	far, farDist := 0, -1.0
	for i := 1; i < n; i++ {
		if d := toR2(pts[i]).Sub(origin).Norm(); d > farDist {
			far, farDist = i, d
		}
	}
	if farDist == 0 {
		return []Point{pts[0]}
	}

	// Close the ring so the second half can run from far back to pts[0].
	ring := make([]Point, n+1)
	copy(ring, pts)
	ring[n] = pts[0]

	keep := make([]bool, n+1)
	keep[0], keep[far] = true, true
	simplify(ring, 0, far, epsilon, keep)
	simplify(ring, far, n, epsilon, keep)
	keep[n] = false

	return collect(ring, keep)
}

// simplify marks which points between first and last (exclusive) survive.
func simplify(pts []Point, first, last int, epsilon float64, keep []bool) {
	if last-first < 2 {
		return
	}
	a, b := toR2(pts[first]), toR2(pts[last])
	idx, maxDist := -1, -1.0
	for i := first + 1; i < last; i++ {
		if d := segmentDistance(toR2(pts[i]), a, b); d > maxDist {
			idx, maxDist = i, d
		}
	}
	if maxDist > epsilon {
		keep[idx] = true
		simplify(pts, first, idx, epsilon, keep)
		simplify(pts, idx, last, epsilon, keep)
	}
}

// segmentDistance is the perpendicular distance from p to the line through a
// and b, or the distance to a when a and b coincide.
func segmentDistance(p, a, b r2.Point) float64 {
	ab := b.Sub(a)
	length := ab.Norm()
	if length == 0 {
		return p.Sub(a).Norm()
	}
	return math.Abs(ab.Cross(p.Sub(a))) / length
}

func collect(pts []Point, keep []bool) []Point {
	out := make([]Point, 0, len(pts))
	for i, k := range keep {
		if k {
			out = append(out, pts[i])
		}
	}
	return out
}
