package camera

import (
	"context"
	"image"

	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
)

// TransformOptions describes how frames are adjusted before detection.
type TransformOptions struct {
	// Rotate180 turns every frame upside down, for a camera mounted inverted.
	Rotate180 bool `json:"rotate_180"`

	// Mirror flips frames horizontally.
	Mirror bool `json:"mirror"`

	// MaxWidth downscales wider frames to this width, keeping the aspect ratio.
	// Zero disables scaling.
	MaxWidth int `json:"max_width"`
}

// IsZero reports whether the options leave frames untouched.
func (o TransformOptions) IsZero() bool {
	return !o.Rotate180 && !o.Mirror && o.MaxWidth <= 0
}

// Apply transforms a single frame.
func (o TransformOptions) Apply(frame image.Image) image.Image {
	out := frame
	if o.Rotate180 {
		out = imaging.Rotate180(out)
	}
	if o.Mirror {
		out = transform.FlipH(out)
	}
	if o.MaxWidth > 0 && out.Bounds().Dx() > o.MaxWidth {
		out = imaging.Resize(out, o.MaxWidth, 0, imaging.Linear)
	}
	return out
}

// Transform wraps a Source and adjusts every frame it yields.
type Transform struct {
	Source
	opts TransformOptions
}

// NewTransform wraps src. With zero options src is returned unchanged.
func NewTransform(src Source, opts TransformOptions) Source {
	if opts.IsZero() {
		return src
	}
	return &Transform{Source: src, opts: opts}
}

// Next returns the next frame of the wrapped source, transformed.
func (t *Transform) Next(ctx context.Context) (image.Image, error) {
	frame, err := t.Source.Next(ctx)
	if err != nil {
		return nil, err
	}
	return t.opts.Apply(frame), nil
}
