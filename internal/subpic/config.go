package subpic

import (
	"github.com/ironsheep/subpic-mcp/internal/detection"
	"github.com/ironsheep/subpic-mcp/internal/imaging"
)

// Config holds every tuning constant of the pipeline.
type Config struct {
	// LowThreshold and HighThreshold are the Canny hysteresis thresholds on
	// the 8-bit gradient scale.
	LowThreshold  float64 `json:"threshold_low"`
	HighThreshold float64 `json:"threshold_high"`

	// BlurRadius enables a Gaussian pre-blur before edge detection. Zero
	// disables it.
	BlurRadius float64 `json:"blur_radius"`

	// CloseKernel is the side of the square structuring element used for
	// morphological closing. Must be odd.
	CloseKernel int `json:"close_kernel"`

	// MinArea is the area floor in square pixels; boundaries must enclose
	// strictly more to be considered.
	MinArea float64 `json:"min_area"`

	// Epsilon is the polygon simplification tolerance as a fraction of each
	// boundary's perimeter.
	Epsilon float64 `json:"epsilon"`

	// SortReadingOrder reorders results top-to-bottom, then left-to-right.
	// When false, results keep boundary discovery order.
	SortReadingOrder bool `json:"sort_reading_order"`
}

// DefaultConfig returns the standard settings: Canny 50/200, no blur, 3x3
// closing, area floor 1000, tolerance 2% of perimeter, discovery order.
func DefaultConfig() Config {
	return Config{
		LowThreshold:  imaging.DefaultLowThreshold,
		HighThreshold: imaging.DefaultHighThreshold,
		CloseKernel:   imaging.DefaultCloseKernel,
		MinArea:       detection.DefaultMinArea,
		Epsilon:       detection.DefaultEpsilon,
	}
}

// Validate reports the first out-of-range field as a KindInvalidConfig
// error.
func (c Config) Validate() error {
	switch {
	case c.LowThreshold < 0:
		return invalidConfig("threshold_low must be >= 0, got %v", c.LowThreshold)
	case c.HighThreshold <= c.LowThreshold:
		return invalidConfig("threshold_high (%v) must be greater than threshold_low (%v)", c.HighThreshold, c.LowThreshold)
	case c.BlurRadius < 0:
		return invalidConfig("blur_radius must be >= 0, got %v", c.BlurRadius)
	case c.CloseKernel < 1 || c.CloseKernel%2 == 0:
		return invalidConfig("close_kernel must be a positive odd number, got %d", c.CloseKernel)
	case c.MinArea < 0:
		return invalidConfig("min_area must be >= 0, got %v", c.MinArea)
	case c.Epsilon <= 0 || c.Epsilon >= 1:
		return invalidConfig("epsilon must be in (0, 1), got %v", c.Epsilon)
	}
	return nil
}
