package detection

import (
	"image"

	"github.com/ironsheep/cone-finder/internal/imaging"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Pt converts p to an image.Point.
func (p Point) Pt() image.Point {
	return image.Pt(p.X, p.Y)
}

func (p Point) add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

func (p Point) sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Contour is the traced boundary of one connected mask region.
type Contour struct {
	// Points is the closed boundary, compressed to direction changes.
	// The last point connects back to the first.
	Points []Point `json:"points"`

	// Hole is true for the inner border of a region (the edge of a hole).
	Hole bool `json:"hole"`

	// Parent is the index of the enclosing contour in the slice returned by
	// FindContours, or -1 for a top-level border.
	Parent int `json:"parent"`
}

// neighborhood lists the 8 neighbor offsets in clockwise order (Y grows downward),
// starting east.
var neighborhood = [8]Point{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

// direction returns the neighborhood index of the unit offset d.
func direction(d Point) int {
	for i, n := range neighborhood {
		if n == d {
			return i
		}
	}
	return -1
}

// borderInfo describes a border by its sequential number (NBD).
type borderInfo struct {
	hole   bool
	index  int // position in the contour slice, -1 for the frame
	parent int // parent contour index, -1 for none
}

// labelGrid is the working copy of the mask: a one-pixel zero frame around it,
// 1 for unvisited foreground, and +/-NBD once a border has passed through.
type labelGrid struct {
	w, h int
	f    []int
}

func (g *labelGrid) at(p Point) int {
	return g.f[p.Y*g.w+p.X]
}

func (g *labelGrid) set(p Point, v int) {
	g.f[p.Y*g.w+p.X] = v
}

// FindContours traces every border in the mask and returns them as a flat list.
//
// Parameters:
//   - mask: Binary mask to trace. It is not modified.
//
// Returns the outer and hole borders of all foreground regions in raster order
// of their starting pixel. An empty mask yields an empty (non-nil) slice.
//
// # Algorithm
//
// This is the border following of Suzuki and Abe (1985) with full hierarchy:
//
//  1. Pad the mask with a zero frame so every pixel has 8 neighbors.
//  2. Raster scan. A foreground pixel with background on its left starts an
//     outer border; one with background on its right starts a hole border.
//  3. Follow the border counterclockwise around each pixel, labelling visited
//     border pixels with the border number so they are not traced again.
//  4. The parent of a new border follows from its type and the type of the
//     last border met on the current row.
//
// Points along straight runs are dropped afterwards (see compressChain).
func FindContours(mask *imaging.Mask) []Contour {
	g := &labelGrid{w: mask.Width + 2, h: mask.Height + 2}
	g.f = make([]int, g.w*g.h)
	for y := 0; y < mask.Height; y++ {
		for x := 0; x < mask.Width; x++ {
			if mask.At(x, y) {
				g.f[(y+1)*g.w+x+1] = 1
			}
		}
	}

	// NBD 1 is the frame itself, which behaves like a hole border.
	borders := []borderInfo{{}, {hole: true, index: -1, parent: -1}}
	contours := make([]Contour, 0)
	nbd := 1

	for y := 1; y < g.h-1; y++ {
		lnbd := 1
		for x := 1; x < g.w-1; x++ {
			p := Point{x, y}
			v := g.at(p)
			if v == 0 {
				continue
			}

			var from Point
			start := false
			hole := false
			switch {
			case v == 1 && g.at(Point{x - 1, y}) == 0:
				start, from = true, Point{x - 1, y}
			case v >= 1 && g.at(Point{x + 1, y}) == 0:
				start, hole, from = true, true, Point{x + 1, y}
				if v > 1 {
					lnbd = v
				}
			}

			if start {
				nbd++
				parent := parentOf(borders[lnbd], hole)
				traced := g.follow(p, from, nbd)

				pts := compressChain(traced)
				for i := range pts {
					pts[i] = pts[i].sub(Point{1, 1})
				}
				contours = append(contours, Contour{Points: pts, Hole: hole, Parent: parent})
				borders = append(borders, borderInfo{hole: hole, index: len(contours) - 1, parent: parent})
			}

			if v := g.at(p); v != 1 {
				lnbd = absInt(v)
			}
		}
	}

	return contours
}

// parentOf decides the parent of a new border from the last border seen (Suzuki table 1).
func parentOf(last borderInfo, newHole bool) int {
	if newHole == last.hole {
		return last.parent
	}
	return last.index
}

// follow traces one border starting at start, whose background neighbor is from.
// It returns the uncompressed border points in padded coordinates.
func (g *labelGrid) follow(start, from Point, nbd int) []Point {
	d0 := direction(from.sub(start))
	first := -1
	for k := 0; k < 8; k++ {
		d := (d0 + k) % 8
		if g.at(start.add(neighborhood[d])) != 0 {
			first = d
			break
		}
	}
	if first < 0 {
		// isolated pixel
		g.set(start, -nbd)
		return []Point{start}
	}

	p1 := start.add(neighborhood[first])
	p2, p3 := p1, start
	pts := make([]Point, 0, 64)

	for {
		d := direction(p2.sub(p3))
		eastZero := false
		var p4 Point
		for k := 1; k <= 8; k++ {
			dd := (d - k + 8) % 8
			q := p3.add(neighborhood[dd])
			if g.at(q) != 0 {
				p4 = q
				break
			}
			if dd == 0 {
				eastZero = true
			}
		}

		pts = append(pts, p3)
		if eastZero {
			g.set(p3, -nbd)
		} else if g.at(p3) == 1 {
			g.set(p3, nbd)
		}

		if p4 == start && p3 == p1 {
			return pts
		}
		p2, p3 = p3, p4
	}
}

// compressChain keeps only the points of a closed chain where the direction of
// travel changes, dropping the middle points of straight horizontal, vertical
// and diagonal runs.
func compressChain(pts []Point) []Point {
	n := len(pts)
	if n < 3 {
		out := make([]Point, n)
		copy(out, pts)
		return out
	}

	out := make([]Point, 0, n)
	for i, p := range pts {
		prev := pts[(i-1+n)%n]
		next := pts[(i+1)%n]
		if p.sub(prev) != next.sub(p) {
			out = append(out, p)
		}
	}
	return out
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func toImagePoints(pts []Point) []image.Point {
	out := make([]image.Point, len(pts))
	for i, p := range pts {
		out[i] = p.Pt()
	}
	return out
}
