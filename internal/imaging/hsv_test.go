package imaging

import (
	"image"
	"image/color"
	"testing"
)

// createInMemoryImage creates an in-memory solid-color test image.
func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestRgbToHSV(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    HSV
	}{
		{"red", 255, 0, 0, HSV{0, 255, 255}},
		{"green", 0, 255, 0, HSV{60, 255, 255}},
		{"blue", 0, 0, 255, HSV{120, 255, 255}},
		{"white", 255, 255, 255, HSV{0, 0, 255}},
		{"black", 0, 0, 0, HSV{0, 0, 0}},
		{"orange", 255, 128, 64, HSV{10, 191, 255}},
		{"azure", 0, 100, 200, HSV{105, 255, 200}},
		{"hue wraps to zero", 255, 0, 1, HSV{0, 255, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rgbToHSV(tt.r, tt.g, tt.b)
			if got != tt.want {
				t.Errorf("rgbToHSV(%d,%d,%d) = %v, want %v", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestRgbToHSV_HueRange(t *testing.T) {
	for r := 0; r < 256; r += 15 {
		for g := 0; g < 256; g += 15 {
			for b := 0; b < 256; b += 15 {
				c := rgbToHSV(uint8(r), uint8(g), uint8(b))
				if c.H >= 180 {
					t.Fatalf("rgbToHSV(%d,%d,%d) hue %d outside 0-179", r, g, b, c.H)
				}
			}
		}
	}
}

func TestToHSV(t *testing.T) {
	img := createInMemoryImage(4, 3, color.RGBA{0, 100, 200, 255})
	img.Set(2, 1, color.RGBA{255, 0, 0, 255})

	hsv := ToHSV(img)
	if hsv.Width != 4 || hsv.Height != 3 {
		t.Fatalf("dimensions: got %dx%d, want 4x3", hsv.Width, hsv.Height)
	}
	if got := hsv.At(0, 0); got != (HSV{105, 255, 200}) {
		t.Errorf("At(0,0) = %v, want (105,255,200)", got)
	}
	if got := hsv.At(2, 1); got != (HSV{0, 255, 255}) {
		t.Errorf("At(2,1) = %v, want (0,255,255)", got)
	}
}

func TestToHSV_OffsetBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 20, 14, 23))
	img.Set(10, 20, color.RGBA{255, 0, 0, 255})

	hsv := ToHSV(img)
	if got := hsv.At(0, 0); got != (HSV{0, 255, 255}) {
		t.Errorf("offset frame not translated to origin: At(0,0) = %v", got)
	}
}

func TestHSV_Within(t *testing.T) {
	lo := HSV{10, 20, 30}
	hi := HSV{20, 40, 60}

	tests := []struct {
		c    HSV
		want bool
	}{
		{HSV{10, 20, 30}, true},
		{HSV{20, 40, 60}, true},
		{HSV{15, 30, 45}, true},
		{HSV{9, 30, 45}, false},
		{HSV{15, 41, 45}, false},
		{HSV{15, 30, 61}, false},
	}

	for _, tt := range tests {
		if got := tt.c.Within(lo, hi); got != tt.want {
			t.Errorf("%v.Within(%v, %v) = %v, want %v", tt.c, lo, hi, got, tt.want)
		}
	}
}

func TestHSV_String(t *testing.T) {
	if got := (HSV{0, 83, 255}).String(); got != "(0,83,255)" {
		t.Errorf("String() = %q, want (0,83,255)", got)
	}
}
