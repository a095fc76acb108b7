package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// CropResult contains a cropped region encoded as PNG.
type CropResult struct {
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Crop extracts r from img and encodes it as base64 PNG.
//
// A scale other than 1 resizes the crop with Lanczos filtering, which is how a
// small detection is zoomed for inspection. X and Y report the top-left corner
// of r in frame coordinates, before scaling.
func Crop(img image.Image, r image.Rectangle, scale float64) (*CropResult, error) {
	bounds := img.Bounds()
	if r.Empty() {
		return nil, fmt.Errorf("invalid crop region %v: empty", r)
	}
	if !r.In(bounds) {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", r, bounds)
	}

	cropped := imaging.Crop(img, r)
	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(cropped.Bounds().Dx()) * scale)
		newHeight := int(float64(cropped.Bounds().Dy()) * scale)
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	encoded, err := EncodePNGBase64(cropped)
	if err != nil {
		return nil, err
	}

	return &CropResult{
		X:           r.Min.X,
		Y:           r.Min.Y,
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// Around returns the box covering every point, grown by pad pixels on each
// side and clipped to bounds. Points are pixel centers, so the box includes
// the rightmost column and bottom row. No points yields the empty rectangle.
func Around(pts []image.Point, pad int, bounds image.Rectangle) image.Rectangle {
	if len(pts) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: pts[0], Max: pts[0].Add(image.Pt(1, 1))}
	for _, p := range pts[1:] {
		r = r.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
	}
	return r.Inset(-pad).Intersect(bounds)
}
