package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/clone"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Outline defaults: green, two pixels wide.
const (
	DefaultOutlineColor     = "#00FF00"
	DefaultOutlineThickness = 2
)

// ParseColor parses a "#RRGGBB" (or "#RGB") hex string into an opaque colour.
func ParseColor(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// DrawOutlines returns a copy of img with every polygon drawn as a closed
// outline. img itself is left untouched.
//
// Parameters:
//   - polygons: Vertex lists in image coordinates; each is closed
//     automatically (last vertex joins the first).
//   - colorHex: Outline colour, "#RRGGBB". Empty selects DefaultOutlineColor.
//   - thickness: Line width in pixels. Values below 1 select
//     DefaultOutlineThickness.
func DrawOutlines(img image.Image, polygons [][]image.Point, colorHex string, thickness int) (*image.RGBA, error) {
	if colorHex == "" {
		colorHex = DefaultOutlineColor
	}
	if thickness < 1 {
		thickness = DefaultOutlineThickness
	}
	c, err := ParseColor(colorHex)
	if err != nil {
		return nil, err
	}

	out := clone.AsRGBA(img)
	for _, poly := range polygons {
		for i := range poly {
			a := poly[i]
			b := poly[(i+1)%len(poly)]
			drawLine(out, a, b, c, thickness)
		}
	}
	return out, nil
}

// drawLine rasterises the segment a-b with Bresenham's algorithm, stamping a
// thickness x thickness square at every step.
func drawLine(img *image.RGBA, a, b image.Point, c color.RGBA, thickness int) {
	dx := int(math.Abs(float64(b.X - a.X)))
	dy := -int(math.Abs(float64(b.Y - a.Y)))
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	e := dx + dy

	x, y := a.X, a.Y
	for {
		stamp(img, x, y, c, thickness)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

func stamp(img *image.RGBA, cx, cy int, c color.RGBA, thickness int) {
	bounds := img.Bounds()
	off := thickness / 2
	for y := cy - off; y < cy-off+thickness; y++ {
		for x := cx - off; x < cx-off+thickness; x++ {
			if (image.Point{X: x, Y: y}).In(bounds) {
				img.SetRGBA(x, y, c)
			}
		}
	}
}
