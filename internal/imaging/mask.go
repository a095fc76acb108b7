package imaging

import "image"

// Mask is a binary image: one bool per pixel, stored row-major.
//
// A true entry marks a foreground pixel. Masks are produced per frame by the
// segmentation stage and are never shared between frames.
type Mask struct {
	Width  int
	Height int
	Pix    []bool
}

// NewMask returns an all-background mask of the given size.
func NewMask(width, height int) *Mask {
	return &Mask{
		Width:  width,
		Height: height,
		Pix:    make([]bool, width*height),
	}
}

// At reports whether (x, y) is foreground. Coordinates outside the mask are background.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x]
}

// Set marks (x, y) as foreground or background. Out-of-range coordinates are ignored.
func (m *Mask) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Pix[y*m.Width+x] = v
}

// FillRect marks every pixel of r (clipped to the mask) as foreground.
func (m *Mask) FillRect(r image.Rectangle) {
	r = r.Intersect(image.Rect(0, 0, m.Width, m.Height))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.Pix[y*m.Width+x] = true
		}
	}
}

// Count returns the number of foreground pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v {
			n++
		}
	}
	return n
}

// Image renders the mask as a grayscale image: foreground 255, background 0.
func (m *Mask) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Pix {
		if v {
			img.Pix[i] = 255
		}
	}
	return img
}

// InRange builds a mask of the pixels whose HSV value lies in [lo, hi] inclusive
// on all three channels.
func InRange(hsv *HSVImage, lo, hi HSV) *Mask {
	m := NewMask(hsv.Width, hsv.Height)
	for i, c := range hsv.Pix {
		m.Pix[i] = c.Within(lo, hi)
	}
	return m
}

// Erode applies one erosion pass with a size x size all-ones kernel anchored at
// its center and returns the result as a new mask.
//
// A pixel stays foreground only if every kernel position that falls inside the
// mask is foreground. Positions outside the mask never clear a pixel, which
// matches the default border handling of OpenCV's erode.
//
// The rectangular kernel is separable, so the pass runs as a horizontal sweep
// followed by a vertical one. Size values below 2 return an unmodified copy.
func (m *Mask) Erode(size int) *Mask {
	out := NewMask(m.Width, m.Height)
	if size < 2 {
		copy(out.Pix, m.Pix)
		return out
	}

	before := (size - 1) / 2
	after := size - 1 - before

	horiz := NewMask(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			horiz.Pix[y*m.Width+x] = m.allSet(x-before, x+after, y, y)
		}
	}

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			out.Pix[y*m.Width+x] = horiz.allSet(x, x, y-before, y+after)
		}
	}

	return out
}

// allSet reports whether every in-bounds pixel in [x0,x1]x[y0,y1] is foreground.
func (m *Mask) allSet(x0, x1, y0, y1 int) bool {
	x0, x1 = clamp(x0, 0, m.Width-1), clamp(x1, 0, m.Width-1)
	y0, y1 = clamp(y0, 0, m.Height-1), clamp(y1, 0, m.Height-1)
	for y := y0; y <= y1; y++ {
		row := m.Pix[y*m.Width : (y+1)*m.Width]
		for x := x0; x <= x1; x++ {
			if !row[x] {
				return false
			}
		}
	}
	return true
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
