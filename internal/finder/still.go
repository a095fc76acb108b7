package finder

import (
	"image"

	"github.com/ironsheep/cone-finder/internal/detection"
	"github.com/ironsheep/cone-finder/internal/imaging"
	"github.com/ironsheep/cone-finder/internal/profile"
)

// Analysis is the breakdown of a single still frame through the pipeline.
type Analysis struct {
	Width      int `json:"width"`
	Height     int `json:"height"`
	Foreground int `json:"foreground"`

	// Candidates holds the verdict for every contour, in extraction order.
	Candidates []detection.Candidate `json:"candidates"`

	Detections []detection.Detection `json:"detections"`

	// Selected indexes Detections, or is -1 when nothing was accepted.
	Selected int `json:"selected"`

	// Result describes Detections[Selected].
	Result *Result `json:"result,omitempty"`

	Mask *imaging.Mask `json:"-"`
}

// Analyze runs one frame through segmentation, contour extraction and the
// shape filter without a source or a sink. It reports every contour, not only
// the accepted ones, so a profile can be tuned against a saved photo.
func Analyze(frame image.Image, p profile.Profile, opts Options) (*Analysis, error) {
	if opts.Selection == "" {
		opts.Selection = SelectFirst
	}
	if opts.Filter == (detection.FilterOptions{}) {
		opts.Filter = detection.DefaultFilterOptions()
	}

	lo, hi := p.Range()
	mask, err := imaging.Segment(frame, lo, hi)
	if err != nil {
		return nil, err
	}
	contours := detection.FindContours(mask)

	a := &Analysis{
		Width:      mask.Width,
		Height:     mask.Height,
		Foreground: mask.Count(),
		Candidates: make([]detection.Candidate, len(contours)),
		Detections: detection.Filter(contours, opts.Filter),
		Selected:   -1,
		Mask:       mask,
	}
	for i, c := range contours {
		a.Candidates[i] = detection.Inspect(c, opts.Filter)
	}
	if len(a.Detections) > 0 {
		a.Selected = selectIndex(a.Detections, opts.Selection)
		a.Result = newResult(p.Name, a.Detections[a.Selected], 1)
	}
	return a, nil
}
