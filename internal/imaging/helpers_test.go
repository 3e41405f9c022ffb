package imaging

import (
	"image"
	"image/color"
)

// newSolidImage returns an RGBA image filled with c.
func newSolidImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// newPanelImage returns a white page with each rectangle filled dark grey,
// the way a scanner sees photographs lying on its bed.
func newPanelImage(width, height int, panels ...image.Rectangle) *image.RGBA {
	img := newSolidImage(width, height, color.White)
	for _, p := range panels {
		for y := p.Min.Y; y < p.Max.Y; y++ {
			for x := p.Min.X; x < p.Max.X; x++ {
				img.Set(x, y, color.RGBA{40, 40, 40, 255})
			}
		}
	}
	return img
}

// countSet returns the number of non-zero pixels in g.
func countSet(g *image.Gray) int {
	n := 0
	for _, p := range g.Pix {
		if p != 0 {
			n++
		}
	}
	return n
}
