package imaging

import (
	"fmt"
	"image"
)

// DefaultCloseKernel is the side length of the square structuring element
// used by the closing step.
const DefaultCloseKernel = 3

// StructuringElement returns a size x size square kernel with every cell set,
// allocated from the arena. The anchor is the centre cell.
func StructuringElement(size int, arena *Arena) (*image.Gray, error) {
	if size < 1 || size%2 == 0 {
		return nil, fmt.Errorf("structuring element size must be odd and positive, got %d", size)
	}
	k := arena.NewGray(image.Rect(0, 0, size, size))
	for i := range k.Pix {
		k.Pix[i] = 255
	}
	return k, nil
}

// Dilate writes the dilation of src by kernel into dst: each output pixel is
// the maximum of the input pixels covered by the kernel's set cells, with the
// kernel anchored at its centre. Pixels outside the image are ignored.
//
// src and dst must have the same bounds and must not be the same buffer.
func Dilate(src, dst, kernel *image.Gray) {
	morph(src, dst, kernel, true)
}

// Erode writes the erosion of src by kernel into dst: each output pixel is the
// minimum of the input pixels covered by the kernel's set cells. Pixels
// outside the image are ignored, so the image border never erodes inwards.
//
// src and dst must have the same bounds and must not be the same buffer.
func Erode(src, dst, kernel *image.Gray) {
	morph(src, dst, kernel, false)
}

// Close performs a morphological closing of img in place (dilation followed
// by erosion with the same kernel). scratch must match img's bounds.
func Close(img, scratch, kernel *image.Gray) {
	Dilate(img, scratch, kernel)
	Erode(scratch, img, kernel)
}

// Shape prepares a raw edge map for boundary tracing, in place:
//
//  1. Dilation with a minimal 3x3 square, bridging one-pixel gaps in a
//     border.
//  2. Closing with a closeKernel x closeKernel square, reconnecting nearly
//     touching segments into one closed loop.
//
// The scratch buffer and both structuring elements are taken from arena.
func Shape(edges *image.Gray, closeKernel int, arena *Arena) error {
	minimal, err := StructuringElement(3, arena)
	if err != nil {
		return err
	}
	closing, err := StructuringElement(closeKernel, arena)
	if err != nil {
		return err
	}

	scratch := arena.NewGray(edges.Bounds())
	Dilate(edges, scratch, minimal)
	copyGray(edges, scratch)

	Close(edges, scratch, closing)
	return nil
}

func morph(src, dst, kernel *image.Gray, dilate bool) {
	b := src.Bounds()
	width, height := b.Dx(), b.Dy()

	kb := kernel.Bounds()
	kw, kh := kb.Dx(), kb.Dy()
	ax, ay := kw/2, kh/2

	type offset struct{ x, y int }
	offsets := make([]offset, 0, kw*kh)
	for ky := 0; ky < kh; ky++ {
		for kx := 0; kx < kw; kx++ {
			if kernel.Pix[ky*kernel.Stride+kx] != 0 {
				offsets = append(offsets, offset{kx - ax, ky - ay})
			}
		}
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var v uint8
			if !dilate {
				v = 255
			}
			for _, o := range offsets {
				nx, ny := x+o.x, y+o.y
				if nx < 0 || ny < 0 || nx >= width || ny >= height {
					continue
				}
				p := src.Pix[ny*src.Stride+nx]
				if dilate && p > v {
					v = p
				} else if !dilate && p < v {
					v = p
				}
			}
			dst.Pix[y*dst.Stride+x] = v
		}
	}
}
