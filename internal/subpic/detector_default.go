//go:build !gocv

package subpic

import (
	"fmt"
	"image"

	"github.com/ironsheep/subpic-mcp/internal/detection"
	"github.com/ironsheep/subpic-mcp/internal/imaging"
)

// Backend names the implementation of the edge, shaping and tracing stages.
const Backend = "go"

// detectBoundaries runs edge detection, morphological shaping and external
// boundary tracing on src. The returned edge map is owned by arena.
func detectBoundaries(src *imaging.Source, cfg Config, arena *imaging.Arena) (*image.Gray, []detection.Boundary, error) {
	edges := imaging.Canny(src.Gray, cfg.LowThreshold, cfg.HighThreshold, cfg.BlurRadius, arena)
	if err := imaging.Shape(edges, cfg.CloseKernel, arena); err != nil {
		return nil, nil, fmt.Errorf("failed to shape edge map: %w", err)
	}
	return edges, detection.FindExternalBoundariesIn(edges, arena), nil
}
