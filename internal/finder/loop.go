package finder

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"

	"go.uber.org/zap"

	"github.com/ironsheep/cone-finder/internal/camera"
	"github.com/ironsheep/cone-finder/internal/detection"
	"github.com/ironsheep/cone-finder/internal/imaging"
	"github.com/ironsheep/cone-finder/internal/profile"
)

// Options configures a Loop.
type Options struct {
	// MaxFrames bounds the number of frames pulled. Zero means no limit.
	MaxFrames int

	// Selection picks among several detections in the same frame.
	Selection Selection

	// Filter holds the shape rules. The zero value means DefaultFilterOptions.
	Filter detection.FilterOptions

	// OutlineThickness is the stroke width of polygons drawn for the sink.
	OutlineThickness int

	// OutlineColor strokes those polygons. The zero value means opaque black.
	OutlineColor color.RGBA
}

// DefaultOptions returns an unbounded first-match loop with the default shape rules.
func DefaultOptions() Options {
	return Options{
		Selection:        SelectFirst,
		Filter:           detection.DefaultFilterOptions(),
		OutlineThickness: 3,
		OutlineColor:     color.RGBA{A: 255},
	}
}

// Loop pulls frames until one contains a cone.
//
// A Loop runs once. It is not safe for concurrent use; State may be read from
// the transition hook.
type Loop struct {
	profile profile.Profile
	source  camera.Source
	sink    camera.Sink
	opts    Options
	logger  *zap.SugaredLogger

	state        State
	cycles       int
	released     bool
	onTransition func(from, to State)

	// pipeline stages, replaced in tests
	segment func(image.Image, imaging.HSV, imaging.HSV) (*imaging.Mask, error)
	extract func(*imaging.Mask) []detection.Contour
	filter  func([]detection.Contour, detection.FilterOptions) []detection.Detection
}

// New builds a loop for p over src. A nil sink discards frames and a nil
// logger logs nothing.
func New(p profile.Profile, src camera.Source, sink camera.Sink, opts Options, logger *zap.SugaredLogger) *Loop {
	if sink == nil {
		sink = camera.NopSink{}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if opts.Selection == "" {
		opts.Selection = SelectFirst
	}
	if opts.Filter == (detection.FilterOptions{}) {
		opts.Filter = detection.DefaultFilterOptions()
	}
	if opts.OutlineThickness < 1 {
		opts.OutlineThickness = 3
	}
	return &Loop{
		profile: p,
		source:  src,
		sink:    sink,
		opts:    opts,
		logger:  logger,
		state:   WaitingFrame,
		segment: imaging.Segment,
		extract: detection.FindContours,
		filter:  detection.Filter,
	}
}

// OnTransition registers fn to be called on every state change.
func (l *Loop) OnTransition(fn func(from, to State)) {
	l.onTransition = fn
}

// State returns the current state.
func (l *Loop) State() State {
	return l.state
}

// Cycles returns the number of frames pulled so far.
func (l *Loop) Cycles() int {
	return l.cycles
}

// Run executes the loop until a detection is accepted, the context is
// cancelled, the sink reports an abort, the frame budget runs out, or the
// source fails.
//
// Returns:
//   - *Result: The accepted detection, nil on any error.
//   - error: ErrCancelled, ErrBudgetExhausted, or ErrFrameRead wrapping the
//     source failure.
//
// Cancellation is checked between cycles only; a frame already being
// processed is always finished. The source is released exactly once before
// Run returns.
func (l *Loop) Run(ctx context.Context) (*Result, error) {
	if l.state.Terminal() {
		return nil, fmt.Errorf("loop already finished in state %s", l.state)
	}
	defer l.release()

	lo, hi := l.profile.Range()
	for {
		if reason := l.stopRequested(ctx); reason != "" {
			l.transition(Cancelled)
			l.logger.Infow("detection cancelled", "reason", reason, "cycles", l.cycles)
			return nil, ErrCancelled
		}
		if l.opts.MaxFrames > 0 && l.cycles >= l.opts.MaxFrames {
			l.transition(Cancelled)
			return nil, fmt.Errorf("%w: no %s cone in %d frames", ErrBudgetExhausted, l.profile.Name, l.cycles)
		}

		res, err := l.cycle(ctx, lo, hi)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
	}
}

// cycle runs one frame through the pipeline. A nil result and nil error mean
// the frame held no cone.
func (l *Loop) cycle(ctx context.Context, lo, hi imaging.HSV) (*Result, error) {
	l.transition(WaitingFrame)
	frame, err := l.source.Next(ctx)
	l.cycles++
	if err != nil {
		l.transition(Cancelled)
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("%w: cycle %d: %w", ErrFrameRead, l.cycles, err)
	}

	l.transition(Segmenting)
	mask, err := l.segment(frame, lo, hi)
	if err != nil {
		l.transition(Cancelled)
		return nil, fmt.Errorf("%w: cycle %d: %w", ErrFrameRead, l.cycles, err)
	}

	l.transition(Extracting)
	contours := l.extract(mask)

	l.transition(Filtering)
	dets := l.filter(contours, l.opts.Filter)

	l.logger.Debugw("frame processed",
		"cycle", l.cycles,
		"foreground", mask.Count(),
		"contours", len(contours),
		"detections", len(dets),
	)
	l.present(frame, dets)

	if len(dets) == 0 {
		return nil, nil
	}

	chosen := selectDetection(dets, l.opts.Selection)
	l.transition(Accepted)
	return newResult(l.profile.Name, chosen, l.cycles), nil
}

// present hands the annotated frame to the sink. Failures are only logged.
func (l *Loop) present(frame image.Image, dets []detection.Detection) {
	annotated := Annotate(frame, dets, l.opts.OutlineColor, l.opts.OutlineThickness)
	if err := l.sink.Show(annotated); err != nil {
		l.logger.Debugw("presentation failed", "cycle", l.cycles, "error", err)
	}
}

// Annotate draws every detection's polygon in stroke, labelled with its anchor.
// A zero stroke draws opaque black.
func Annotate(frame image.Image, dets []detection.Detection, stroke color.RGBA, thickness int) *image.RGBA {
	if stroke == (color.RGBA{}) {
		stroke = color.RGBA{A: 255}
	}
	outlines := make([]imaging.Outline, 0, len(dets))
	for _, d := range dets {
		outlines = append(outlines, imaging.Outline{
			Points: d.Outline(),
			Label:  imaging.PointLabel(d.Anchor.Pt()),
		})
	}
	return imaging.Annotate(frame, outlines, stroke, thickness)
}

func (l *Loop) stopRequested(ctx context.Context) string {
	if err := ctx.Err(); err != nil {
		return err.Error()
	}
	if l.sink.Aborted() {
		return "abort key"
	}
	return ""
}

func (l *Loop) release() {
	if l.released {
		return
	}
	l.released = true
	if err := l.source.Release(); err != nil {
		l.logger.Warnw("failed to release frame source", "error", err)
	}
}

func (l *Loop) transition(to State) {
	from := l.state
	if from == to {
		return
	}
	l.state = to
	if l.onTransition != nil {
		l.onTransition(from, to)
	}
}
