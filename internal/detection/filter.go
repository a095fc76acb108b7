package detection

import "image"

// Detection is a contour that passed the shape filter.
type Detection struct {
	Contour Contour `json:"-"`

	// Approx is the simplified polygon; it always has FilterOptions.Vertices points.
	Approx []Point `json:"approx"`

	// Area is the shoelace area of the full contour in square pixels.
	Area float64 `json:"area"`

	// Anchor is the first vertex of Approx and is the reported location.
	Anchor Point `json:"anchor"`
}

// Outline returns the approximation as image points for drawing.
func (d Detection) Outline() []image.Point {
	return toImagePoints(d.Approx)
}

// FilterOptions configures the shape filter.
type FilterOptions struct {
	// MinArea is exclusive: a contour needs Area > MinArea to pass.
	MinArea float64 `json:"min_area"`

	// Vertices is the exact vertex count an approximation must have.
	Vertices int `json:"vertices"`

	// EpsilonFactor scales the closed perimeter into the Douglas-Peucker tolerance.
	EpsilonFactor float64 `json:"epsilon_factor"`
}

// DefaultFilterOptions returns the cone shape rule: area above 400, four
// vertices at a tolerance of 2% of the perimeter.
func DefaultFilterOptions() FilterOptions {
	return FilterOptions{
		MinArea:       400,
		Vertices:      4,
		EpsilonFactor: 0.02,
	}
}

// Rejection reasons reported by Inspect.
const (
	ReasonAccepted    = ""
	ReasonTooSmall    = "area too small"
	ReasonVertexCount = "wrong vertex count"
	ReasonDegenerate  = "degenerate contour"
)

// Candidate is the full verdict on one contour, accepted or not.
type Candidate struct {
	Area     float64 `json:"area"`
	Vertices int     `json:"vertices"`
	Approx   []Point `json:"approx,omitempty"`
	Reason   string  `json:"reason,omitempty"`
}

// Accepted reports whether the contour passed every rule.
func (c Candidate) Accepted() bool {
	return c.Reason == ReasonAccepted
}

// Inspect applies the shape rules to a single contour and explains the result.
// Contours at or below the area threshold are not approximated.
func Inspect(c Contour, opts FilterOptions) Candidate {
	if len(c.Points) < 3 {
		return Candidate{Reason: ReasonDegenerate}
	}

	area := Area(c.Points)
	if area <= opts.MinArea {
		return Candidate{Area: area, Reason: ReasonTooSmall}
	}

	eps := opts.EpsilonFactor * ArcLength(c.Points, true)
	approx := ApproxPolyDP(c.Points, eps, true)
	cand := Candidate{Area: area, Vertices: len(approx), Approx: approx}
	if len(approx) != opts.Vertices {
		cand.Reason = ReasonVertexCount
	}
	return cand
}

// Filter returns the contours that pass the shape rules, in input order.
//
// A contour is accepted when its area is strictly greater than opts.MinArea and
// its Douglas-Peucker approximation, at a tolerance of opts.EpsilonFactor times
// the closed perimeter, has exactly opts.Vertices vertices. Filter never ranks
// detections; the first accepted contour comes first. It is deterministic, so
// running it twice over the same contours yields identical results.
func Filter(contours []Contour, opts FilterOptions) []Detection {
	var out []Detection
	for _, c := range contours {
		cand := Inspect(c, opts)
		if !cand.Accepted() {
			continue
		}
		out = append(out, Detection{
			Contour: c,
			Approx:  cand.Approx,
			Area:    cand.Area,
			Anchor:  cand.Approx[0],
		})
	}
	return out
}
