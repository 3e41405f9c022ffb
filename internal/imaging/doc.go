// Package imaging provides the pixel-level stages of the sub-picture pipeline.
//
// It loads composite images, derives their grayscale channel, detects edges,
// shapes the edge map with morphological operators, crops regions and draws
// diagnostic outlines. Every intermediate buffer of a pipeline run is owned by
// an Arena, which releases them all together when the run ends.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, Min is inclusive (top-left) and Max is exclusive
//     (bottom-right), following image.Rectangle
//
// Loaded sources are normalised so their bounds start at (0,0).
//
// # Edge Maps
//
// Edge maps are *image.Gray buffers holding only 0 (background) and 255
// (edge). Canny produces them and Shape mutates them in place; the detection
// package treats any non-zero pixel as foreground.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. An Arena belongs to a single run and
// must not be shared between goroutines. The free functions are stateless.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Crop regions outside image bounds or empty
//   - Structuring elements with an even or non-positive size
//   - Malformed outline colours
//   - File I/O and decoding errors during loading
package imaging
