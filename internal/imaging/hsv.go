package imaging

import (
	"fmt"
	"image"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// HSV represents a color in the 8-bit HSV scale.
//
// The scale matches the one used by OpenCV for 8-bit images:
//   - H is the hue angle divided by two, so it fits 0-179
//   - S and V are fractions scaled to 0-255
type HSV struct {
	H uint8 `json:"h"` // Hue: 0-179 (degrees / 2)
	S uint8 `json:"s"` // Saturation: 0-255
	V uint8 `json:"v"` // Value: 0-255
}

// String returns the color as an "(h,s,v)" tuple.
func (c HSV) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.H, c.S, c.V)
}

// LessEqual reports whether every component of c is <= the matching component of o.
func (c HSV) LessEqual(o HSV) bool {
	return c.H <= o.H && c.S <= o.S && c.V <= o.V
}

// Within reports whether c lies inside [lo, hi] on all three channels (inclusive).
func (c HSV) Within(lo, hi HSV) bool {
	return lo.LessEqual(c) && c.LessEqual(hi)
}

// HSVImage is a frame converted to HSV, stored row-major.
type HSVImage struct {
	Width  int
	Height int
	Pix    []HSV
}

// At returns the HSV value at (x, y). Coordinates are 0-based.
// No bounds checking is performed; caller must ensure coordinates are valid.
func (h *HSVImage) At(x, y int) HSV {
	return h.Pix[y*h.Width+x]
}

// ToHSV converts an image to the 8-bit HSV scale.
//
// Parameters:
//   - img: The source frame in any color model. The frame is read through
//     image.Image.At, so 16-bit components are reduced to 8 bits first.
//
// Returns an HSVImage with the same dimensions as img, translated so that
// img.Bounds().Min maps to (0, 0).
func ToHSV(img image.Image) *HSVImage {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	out := &HSVImage{
		Width:  width,
		Height: height,
		Pix:    make([]HSV, width*height),
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			out.Pix[y*width+x] = rgbToHSV(uint8(r>>8), uint8(g>>8), uint8(b>>8))
		}
	}

	return out
}

// rgbToHSV converts 8-bit RGB values to the 8-bit HSV scale.
//
// go-colorful returns hue in [0, 360) and saturation/value in [0, 1]. Hue is
// halved and rounded; a hue that rounds up to 180 wraps to 0 so the result stays
// on the 0-179 circle.
func rgbToHSV(r, g, b uint8) HSV {
	c := colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}
	h, s, v := c.Hsv()

	hue := math.Round(h / 2)
	if hue >= 180 {
		hue -= 180
	}

	return HSV{
		H: uint8(hue),
		S: uint8(math.Round(s * 255)),
		V: uint8(math.Round(v * 255)),
	}
}
