package finder

import (
	"errors"
	"fmt"
	"strings"
)

// State is a phase of the detection loop.
type State int

// Loop states. WaitingFrame is initial; Accepted and Cancelled are terminal.
const (
	WaitingFrame State = iota
	Segmenting
	Extracting
	Filtering
	Accepted
	Cancelled
)

var stateNames = [...]string{
	WaitingFrame: "waiting_frame",
	Segmenting:   "segmenting",
	Extracting:   "extracting",
	Filtering:    "filtering",
	Accepted:     "accepted",
	Cancelled:    "cancelled",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == Accepted || s == Cancelled
}

var (
	// ErrFrameRead wraps any failure to obtain or decode a frame. It ends the run.
	ErrFrameRead = errors.New("frame read error")

	// ErrCancelled is returned when the run was stopped before a detection.
	ErrCancelled = errors.New("detection cancelled")

	// ErrBudgetExhausted is returned when MaxFrames frames produced no detection.
	ErrBudgetExhausted = errors.New("frame budget exhausted")

	// ErrUnknownSelection is returned by ParseSelection.
	ErrUnknownSelection = errors.New("unknown selection policy")
)

// Selection picks one detection when a frame yields several.
type Selection string

const (
	// SelectFirst takes the first accepted contour in extraction order.
	SelectFirst Selection = "first"

	// SelectLargest takes the largest area; ties go to the earlier contour.
	SelectLargest Selection = "largest"
)

// ParseSelection accepts "first" or "largest" in any case. Empty means first.
func ParseSelection(s string) (Selection, error) {
	switch Selection(strings.ToLower(strings.TrimSpace(s))) {
	case "", SelectFirst:
		return SelectFirst, nil
	case SelectLargest:
		return SelectLargest, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSelection, s)
}
