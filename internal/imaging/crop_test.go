package imaging

import (
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

// createQuadrantImage returns an image with red, green, blue and white quadrants.
func createQuadrantImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.RGBA
			switch {
			case x < width/2 && y < height/2:
				c = color.RGBA{255, 0, 0, 255}
			case y < height/2:
				c = color.RGBA{0, 255, 0, 255}
			case x < width/2:
				c = color.RGBA{0, 0, 255, 255}
			default:
				c = color.RGBA{255, 255, 255, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestCrop(t *testing.T) {
	img := createQuadrantImage(100, 100)

	result, err := Crop(img, image.Rect(10, 20, 60, 50), 1.0)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}

	if result.Width != 50 || result.Height != 30 {
		t.Errorf("dimensions: got %dx%d, want 50x30", result.Width, result.Height)
	}
	if result.X != 10 || result.Y != 20 {
		t.Errorf("origin: got (%d,%d), want (10,20)", result.X, result.Y)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}
	if _, err := base64.StdEncoding.DecodeString(result.ImageBase64); err != nil {
		t.Errorf("failed to decode base64: %v", err)
	}
}

func TestCrop_WithScale(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name         string
		scale        float64
		wantW, wantH int
	}{
		{"double", 2.0, 100, 100},
		{"half", 0.5, 25, 25},
		{"zero keeps size", 0, 50, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Crop(img, image.Rect(0, 0, 50, 50), tt.scale)
			if err != nil {
				t.Fatalf("Crop failed: %v", err)
			}
			if result.Width != tt.wantW || result.Height != tt.wantH {
				t.Errorf("dimensions: got %dx%d, want %dx%d", result.Width, result.Height, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestCrop_InvalidRegion(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name string
		r    image.Rectangle
	}{
		{"x1 negative", image.Rect(-1, 0, 50, 50)},
		{"x2 too large", image.Rect(0, 0, 101, 50)},
		{"y2 too large", image.Rect(0, 0, 50, 101)},
		{"zero width", image.Rect(50, 0, 50, 50)},
		{"zero area", image.Rectangle{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Crop(img, tt.r, 1.0); err == nil {
				t.Errorf("Crop(%v) should fail", tt.r)
			}
		})
	}
}

func TestCrop_VerifyContent(t *testing.T) {
	img := createQuadrantImage(100, 100)

	result, err := Crop(img, image.Rect(50, 50, 100, 100), 1.0)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}

	decoded, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	cropped, err := png.Decode(strings.NewReader(string(decoded)))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}

	r, g, b, _ := cropped.At(25, 25).RGBA()
	if uint8(r>>8) != 255 || uint8(g>>8) != 255 || uint8(b>>8) != 255 {
		t.Errorf("cropped color: got (%d,%d,%d), want white", r>>8, g>>8, b>>8)
	}
}

func TestAround(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 80)
	quad := []image.Point{{20, 10}, {20, 30}, {50, 30}, {50, 10}}

	tests := []struct {
		name string
		pts  []image.Point
		pad  int
		want image.Rectangle
	}{
		{"no padding", quad, 0, image.Rect(20, 10, 51, 31)},
		{"padded", quad, 5, image.Rect(15, 5, 56, 36)},
		{"clipped", quad, 15, image.Rect(5, 0, 66, 46)},
		{"single point", []image.Point{{99, 79}}, 2, image.Rect(97, 77, 100, 80)},
		{"no points", nil, 3, image.Rectangle{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Around(tt.pts, tt.pad, bounds); got != tt.want {
				t.Errorf("Around: got %v, want %v", got, tt.want)
			}
		})
	}
}
