package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"github.com/fogleman/gg"
)

// Outline is a closed polygon to draw on a debug frame, with an optional label
// printed at its first vertex.
type Outline struct {
	Points []image.Point
	Label  string
}

// Annotate copies a frame and draws outlines on the copy.
//
// Parameters:
//   - frame: Source frame; it is never modified.
//   - outlines: Closed polygons in frame coordinates (0-based, see package doc).
//   - stroke: Line color for polygons and label text.
//   - thickness: Line width in pixels; values below 1 are treated as 1.
//
// Returns a new RGBA image with the same 0-based dimensions as frame.
func Annotate(frame image.Image, outlines []Outline, stroke color.RGBA, thickness int) *image.RGBA {
	bounds := frame.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), frame, bounds.Min, draw.Src)

	if thickness < 1 {
		thickness = 1
	}

	dc := gg.NewContextForRGBA(out)
	dc.SetColor(stroke)
	dc.SetLineWidth(float64(thickness))

	labelBg := color.RGBA{255, 255, 255, 255}
	for _, o := range outlines {
		n := len(o.Points)
		if n > 1 {
			// Stroke through pixel centers so whole pixels are covered.
			for _, p := range o.Points {
				dc.LineTo(float64(p.X)+0.5, float64(p.Y)+0.5)
			}
			dc.ClosePath()
			dc.Stroke()
		}
		if o.Label != "" && n > 0 {
			drawLabel(out, o.Points[0].X+2, o.Points[0].Y+2, o.Label, stroke, labelBg)
		}
	}

	return out
}

// PointLabel formats a point the way debug frames print anchors: "x,y".
func PointLabel(p image.Point) string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

// ParseHexColor parses a hex color string like "#FF0000" or "#FF000080".
func ParseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}

// drawLabel draws a small text label with a 3x5 pixel font.
// Only digits, comma and minus are drawn; other characters leave a gap.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
		',': {"000", "000", "000", "010", "010"},
		'-': {"000", "000", "111", "000", "000"},
	}

	bounds := img.Bounds()
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			px, py := x+dx, y+dy
			if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
				img.Set(px, py, bg)
			}
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					px, py := cx+col, y+row
					if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
						img.Set(px, py, fg)
					}
				}
			}
		}
		cx += charWidth
	}
}
