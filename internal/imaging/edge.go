package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
)

// Default Canny thresholds on the 8-bit intensity scale.
const (
	DefaultLowThreshold  = 50
	DefaultHighThreshold = 200
)

// Hysteresis states produced by non-maximum suppression.
const (
	edgeNone uint8 = iota
	edgeWeak
	edgeStrong
)

// EdgeDetect runs Canny on img and returns the binary edge map encoded as a
// base64 PNG. White pixels (255) are edges.
//
// This is the diagnostic form of Canny used by the MCP tools; the pipeline
// calls Canny directly so the edge map stays in its arena.
func EdgeDetect(img image.Image, thresholdLow, thresholdHigh int) (*EncodedImage, error) {
	arena := NewArena()
	defer arena.Release()

	edges := Canny(ToGray(img), float64(thresholdLow), float64(thresholdHigh), 0, arena)
	return EncodePNG(edges)
}

// Canny computes the binary edge map of gray.
//
// Parameters:
//   - gray: Single-channel intensity image.
//   - low, high: Hysteresis thresholds on the gradient magnitude. Pixels with
//     magnitude above high are edges, pixels at or below low never are, and
//     pixels in between are edges only when connected (8-connected, through
//     other edge pixels) to a strong edge.
//   - blurRadius: Optional Gaussian pre-blur radius. Zero disables it.
//   - arena: Owner of the returned buffer and of any scratch buffer.
//
// # Algorithm
//
//  1. Gradients: 3x3 Sobel operators with replicated borders,
//     magnitude = |Gx| + |Gy| on the raw 8-bit scale
//  2. Non-maximum suppression: keep only local maxima across the edge, using
//     four direction sectors (horizontal, vertical, two diagonals)
//  3. Hysteresis: flood from strong pixels through weak ones
//
// The result has the bounds of gray; edge pixels are 255, all others 0.
func Canny(gray *image.Gray, low, high float64, blurRadius float64, arena *Arena) *image.Gray {
	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	input := gray
	if blurRadius > 0 {
		input = blurGray(gray, blurRadius, arena)
	}

	dx, dy, mag := sobel(input, width, height, arena)
	state := nonMaxSuppress(dx, dy, mag, width, height, low, high, arena)

	edges := arena.NewGray(bounds)
	hysteresis(state, width, height, edges, arena)
	return edges
}

// blurGray smooths gray with a Gaussian kernel of the given radius.
func blurGray(gray *image.Gray, radius float64, arena *Arena) *image.Gray {
	blurred := blur.Gaussian(gray, radius)
	out := arena.NewGray(gray.Bounds())
	b := blurred.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.Pix[y*out.Stride+x] = blurred.Pix[y*blurred.Stride+x*4]
		}
	}
	return out
}

// sobel returns the horizontal and vertical derivatives and the L1 gradient
// magnitude of gray. Out-of-image samples replicate the nearest border pixel.
func sobel(gray *image.Gray, width, height int, arena *Arena) (dx, dy, mag []int32) {
	n := width * height
	dx = arena.Int32s(n)
	dy = arena.Int32s(n)
	mag = arena.Int32s(n)

	at := func(x, y int) int32 {
		x = clamp(x, 0, width-1)
		y = clamp(y, 0, height-1)
		return int32(gray.Pix[y*gray.Stride+x])
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			tl, t, tr := at(x-1, y-1), at(x, y-1), at(x+1, y-1)
			l, r := at(x-1, y), at(x+1, y)
			bl, b, br := at(x-1, y+1), at(x, y+1), at(x+1, y+1)

			gx := (tr + 2*r + br) - (tl + 2*l + bl)
			gy := (bl + 2*b + br) - (tl + 2*t + tr)

			i := y*width + x
			dx[i] = gx
			dy[i] = gy
			mag[i] = abs32(gx) + abs32(gy)
		}
	}
	return dx, dy, mag
}

// nonMaxSuppress classifies every pixel as none, weak or strong. Only local
// maxima along the gradient direction with magnitude above low survive.
func nonMaxSuppress(dx, dy, mag []int32, width, height int, low, high float64, arena *Arena) []uint8 {
	state := arena.Bytes(width * height)

	magAt := func(x, y int) int32 {
		if x < 0 || y < 0 || x >= width || y >= height {
			return 0
		}
		return mag[y*width+x]
	}

	// tan(22.5°) and tan(67.5°)
	const tg22 = 0.4142135623730951
	const tg67 = 2.414213562373095

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			m := mag[i]
			if float64(m) <= low {
				continue
			}

			xs := float64(abs32(dx[i]))
			ys := float64(abs32(dy[i]))

			var keep bool
			switch {
			case ys < xs*tg22:
				// Horizontal gradient: vertical edge.
				keep = m > magAt(x-1, y) && m >= magAt(x+1, y)
			case ys > xs*tg67:
				// Vertical gradient: horizontal edge.
				keep = m > magAt(x, y-1) && m >= magAt(x, y+1)
			default:
				if (dx[i] < 0) == (dy[i] < 0) {
					keep = m > magAt(x-1, y-1) && m > magAt(x+1, y+1)
				} else {
					keep = m > magAt(x+1, y-1) && m > magAt(x-1, y+1)
				}
			}
			if !keep {
				continue
			}

			if float64(m) > high {
				state[i] = edgeStrong
			} else {
				state[i] = edgeWeak
			}
		}
	}
	return state
}

// hysteresis writes 255 into dst for every strong pixel and every weak pixel
// reachable from a strong pixel through 8-connected weak pixels.
//
// Every pixel is pushed at most once, so the stack never outgrows its
// width*height arena buffer.
func hysteresis(state []uint8, width, height int, dst *image.Gray, arena *Arena) {
	stack := arena.Int32s(width * height)[:0]
	for i, s := range state {
		if s == edgeStrong {
			stack = append(stack, int32(i))
		}
	}

	mark := func(i int) {
		x, y := i%width, i/width
		dst.Pix[y*dst.Stride+x] = 255
	}

	for _, i := range stack {
		mark(int(i))
	}

	for len(stack) > 0 {
		i := int(stack[len(stack)-1])
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width

		for ky := -1; ky <= 1; ky++ {
			for kx := -1; kx <= 1; kx++ {
				if kx == 0 && ky == 0 {
					continue
				}
				nx, ny := x+kx, y+ky
				if nx < 0 || ny < 0 || nx >= width || ny >= height {
					continue
				}
				j := ny*width + nx
				if state[j] == edgeWeak {
					// Promote so the pixel is visited once.
					state[j] = edgeStrong
					mark(j)
					stack = append(stack, int32(j))
				}
			}
		}
	}
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
