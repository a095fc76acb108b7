package imaging

import (
	"errors"
	"image"
)

// ErodeKernelSize is the side of the square structuring element used to
// suppress speckle noise in the color mask.
const ErodeKernelSize = 5

// ErrEmptyFrame is returned when a frame is nil or has no pixels.
var ErrEmptyFrame = errors.New("empty frame")

// Segment converts a frame into the color mask for the range [lo, hi].
//
// Parameters:
//   - frame: The camera frame, in any color model.
//   - lo, hi: Inclusive HSV bounds. lo must be <= hi componentwise for the
//     mask to contain anything.
//
// Returns:
//   - *Mask: The eroded mask, same dimensions as frame.
//   - error: ErrEmptyFrame if frame is nil or zero-sized.
//
// # Algorithm
//
//  1. Convert the frame to HSV (see ToHSV)
//  2. Keep pixels inside [lo, hi] on all channels (see InRange)
//  3. Erode once with a 5x5 all-ones kernel (see Mask.Erode)
func Segment(frame image.Image, lo, hi HSV) (*Mask, error) {
	if frame == nil || frame.Bounds().Empty() {
		return nil, ErrEmptyFrame
	}
	return InRange(ToHSV(frame), lo, hi).Erode(ErodeKernelSize), nil
}
