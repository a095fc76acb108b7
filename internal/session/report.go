package session

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/ironsheep/cone-finder/internal/finder"
)

// Report is what a successful session tells the operator.
type Report struct {
	Color      string         `json:"color"`
	Result     *finder.Result `json:"result"`
	DistanceMM *int           `json:"distance_mm,omitempty"`
}

func (r *Report) String() string {
	s := fmt.Sprintf("found the %s cone: area %.0f units, located at (%d, %d), horizontal offset %d",
		r.Color, r.Result.Area, r.Result.Centroid.X, r.Result.Centroid.Y, r.Result.HorizontalOffset)
	if r.DistanceMM != nil {
		s += fmt.Sprintf(", %d mm away", *r.DistanceMM)
	}
	return s
}

// Print writes the report line, in green when w is a color terminal.
func (r *Report) Print(w io.Writer) {
	_, _ = color.New(color.FgGreen, color.Bold).Fprintln(w, r.String())
}
