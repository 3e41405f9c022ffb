//go:build gocv

package subpic

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ironsheep/subpic-mcp/internal/detection"
	"github.com/ironsheep/subpic-mcp/internal/imaging"
)

// Backend names the implementation of the edge, shaping and tracing stages.
const Backend = "opencv"

// closerFunc adapts a Close method without a result to io.Closer.
type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}

// detectBoundaries runs the edge, shaping and tracing stages with OpenCV.
// Every Mat is tracked by arena; the returned edge map is copied into an
// arena buffer so callers never see a Mat.
func detectBoundaries(src *imaging.Source, cfg Config, arena *imaging.Arena) (*image.Gray, []detection.Boundary, error) {
	gray, err := gocv.ImageGrayToMatGray(src.Gray)
	// The Mat may hold memory even when the copy failed.
	arena.Track(&gray)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to convert source to mat: %w", err)
	}

	input := gray
	if cfg.BlurRadius > 0 {
		blurred := gocv.NewMat()
		arena.Track(&blurred)
		if err := gocv.GaussianBlur(gray, &blurred, image.Pt(0, 0), cfg.BlurRadius, cfg.BlurRadius, gocv.BorderDefault); err != nil {
			return nil, nil, fmt.Errorf("gaussian blur failed: %w", err)
		}
		input = blurred
	}

	edges := gocv.NewMat()
	arena.Track(&edges)
	if err := gocv.Canny(input, &edges, float32(cfg.LowThreshold), float32(cfg.HighThreshold)); err != nil {
		return nil, nil, fmt.Errorf("canny failed: %w", err)
	}

	minimal := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	arena.Track(&minimal)
	dilated := gocv.NewMat()
	arena.Track(&dilated)
	if err := gocv.Dilate(edges, &dilated, minimal); err != nil {
		return nil, nil, fmt.Errorf("dilate failed: %w", err)
	}

	closing := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(cfg.CloseKernel, cfg.CloseKernel))
	arena.Track(&closing)
	shaped := gocv.NewMat()
	arena.Track(&shaped)
	if err := gocv.MorphologyEx(dilated, &shaped, gocv.MorphClose, closing); err != nil {
		return nil, nil, fmt.Errorf("morphological close failed: %w", err)
	}

	contours := gocv.FindContours(shaped, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	arena.Track(closerFunc(contours.Close))

	boundaries := make([]detection.Boundary, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		boundaries = append(boundaries, detection.Boundary(contours.At(i).ToPoints()))
	}

	img, err := shaped.ToImage()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to convert edge map: %w", err)
	}
	out := arena.NewGray(src.Bounds())
	if g, ok := img.(*image.Gray); ok {
		copy(out.Pix, g.Pix)
	} else {
		copy(out.Pix, imaging.ToGray(img).Pix)
	}
	return out, boundaries, nil
}
