package finder

import (
	"fmt"

	"github.com/ironsheep/cone-finder/internal/detection"
)

// Result is the outcome of a successful run. It is never modified after the
// loop returns it.
type Result struct {
	ProfileName string  `json:"profile_name"`
	Area        float64 `json:"area"`

	// Centroid is the anchor of the accepted detection (its first
	// approximation vertex), not a true center of mass.
	Centroid detection.Point `json:"centroid"`

	// HorizontalOffset is Centroid.X.
	HorizontalOffset int `json:"horizontal_offset"`

	Vertices []detection.Point `json:"vertices"`
	Cycles   int               `json:"cycles"`
}

func newResult(profileName string, d detection.Detection, cycles int) *Result {
	verts := make([]detection.Point, len(d.Approx))
	copy(verts, d.Approx)
	return &Result{
		ProfileName:      profileName,
		Area:             d.Area,
		Centroid:         d.Anchor,
		HorizontalOffset: d.Anchor.X,
		Vertices:         verts,
		Cycles:           cycles,
	}
}

func (r *Result) String() string {
	return fmt.Sprintf("%s cone: area %.0f at (%d, %d) after %d frames",
		r.ProfileName, r.Area, r.Centroid.X, r.Centroid.Y, r.Cycles)
}

// selectDetection applies policy to a non-empty list.
func selectDetection(dets []detection.Detection, policy Selection) detection.Detection {
	return dets[selectIndex(dets, policy)]
}

// selectIndex returns the position of the detection policy picks. Ties keep
// the earlier detection.
func selectIndex(dets []detection.Detection, policy Selection) int {
	if policy != SelectLargest {
		return 0
	}
	best := 0
	for i, d := range dets[1:] {
		if d.Area > dets[best].Area {
			best = i + 1
		}
	}
	return best
}
