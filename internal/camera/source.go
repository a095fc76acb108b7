package camera

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// AbortKey is the key code that stops a session from a display window (ESC).
const AbortKey = 27

var (
	// ErrExhausted is returned by Next when a finite source has no frames left.
	ErrExhausted = errors.New("no more frames")

	// ErrReleased is returned by Next after Release.
	ErrReleased = errors.New("source released")

	// ErrNoBackend is returned by the OpenCV backends when built without the gocv tag.
	ErrNoBackend = errors.New("gocv build tag is not enabled")

	// ErrNoSignal is returned when a device keeps delivering empty frames.
	ErrNoSignal = errors.New("camera delivers empty frames")
)

const (
	maxEmptyReads    = 50
	emptyReadBackoff = 10 * time.Millisecond
)

// grab calls read until it yields a frame. read reports an empty capture as
// a nil image and nil error; those are retried at most limit times in total,
// pausing wait between them.
func grab(ctx context.Context, read func() (image.Image, error), limit int, wait time.Duration) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 1
	}

	var frame image.Image
	op := func() error {
		img, err := read()
		if err != nil {
			return backoff.Permanent(err)
		}
		if img == nil {
			return ErrNoSignal
		}
		frame = img
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(wait), uint64(limit-1)), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return frame, nil
}

// Source produces frames for the detection loop.
type Source interface {
	// Next blocks until a frame is available. The returned image belongs to
	// the caller for one cycle.
	Next(ctx context.Context) (image.Image, error)

	// Release frees the underlying device. It is idempotent.
	Release() error
}

// Sink displays or stores the annotated frame of each cycle.
type Sink interface {
	// Show presents one frame. Failures are not fatal to detection.
	Show(frame image.Image) error

	// Aborted reports whether the operator requested a stop.
	Aborted() bool
}

// SliceSource serves a fixed list of frames.
type SliceSource struct {
	frames   []image.Image
	next     int
	loop     bool
	released bool
}

// NewSliceSource returns a source that yields frames in order and then
// ErrExhausted.
func NewSliceSource(frames ...image.Image) *SliceSource {
	return &SliceSource{frames: frames}
}

// Loop makes the source start over after the last frame.
func (s *SliceSource) Loop() *SliceSource {
	s.loop = true
	return s
}

// Next returns the next frame.
func (s *SliceSource) Next(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.released {
		return nil, ErrReleased
	}
	if s.next >= len(s.frames) {
		if !s.loop || len(s.frames) == 0 {
			return nil, ErrExhausted
		}
		s.next = 0
	}
	f := s.frames[s.next]
	s.next++
	return f, nil
}

// Release marks the source as closed.
func (s *SliceSource) Release() error {
	s.released = true
	return nil
}

// Served returns how many frames have been handed out since the last wrap.
func (s *SliceSource) Served() int {
	return s.next
}
