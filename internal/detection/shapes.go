package detection

import (
	"image"
)

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// The coordinate convention follows standard image bounds:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
type Bounds struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge (exclusive)
	Y2 int `json:"y2"` // Bottom edge (exclusive)
}

// BoundsOf converts an image.Rectangle to its JSON form.
func BoundsOf(r image.Rectangle) Bounds {
	return Bounds{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// Rect converts the bounds back to an image.Rectangle.
func (b Bounds) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// PointsOf converts image points to their JSON form.
func PointsOf(pts []image.Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = Point{X: p.X, Y: p.Y}
	}
	return out
}

// Quad is an accepted quadrilateral: four vertices of a convex polygon in
// boundary order.
type Quad [4]image.Point

// Bounds returns the axis-aligned bounding rectangle of the four vertices,
// with Max exclusive.
func (q Quad) Bounds() image.Rectangle {
	return BoundingRect(q[:])
}

// Points returns the vertices as a slice.
func (q Quad) Points() []image.Point {
	return append([]image.Point(nil), q[:]...)
}

// Rejection reasons reported on candidates that did not become quads.
const (
	ReasonVertexCount = "vertex_count"
	ReasonNotConvex   = "not_convex"
)

// Candidate records how the rectangle filter judged one boundary.
type Candidate struct {
	// Boundary is the traced border that was simplified.
	Boundary Boundary

	// Polygon is the Douglas-Peucker simplification of Boundary.
	Polygon []image.Point

	// Tolerance is the absolute simplification tolerance in pixels
	// (epsilon fraction × perimeter).
	Tolerance float64

	// Accepted is true when Polygon has four vertices and is convex.
	Accepted bool

	// Reason names why the candidate was rejected. Empty when accepted.
	Reason string
}

// Quad returns the candidate's polygon as a Quad. Only meaningful when
// Accepted is true.
func (c Candidate) Quad() Quad {
	var q Quad
	copy(q[:], c.Polygon)
	return q
}

// ClassifyBoundary simplifies a boundary and decides whether it is a
// quadrilateral.
//
// Parameters:
//   - b: A closed boundary, typically from FindExternalBoundaries.
//   - epsilon: Simplification tolerance as a fraction of the boundary's
//     perimeter. Typical: 0.02.
//
// Returns:
//   - Candidate: The polygon, the tolerance used and the verdict.
func ClassifyBoundary(b Boundary, epsilon float64) Candidate {
	tolerance := epsilon * b.ArcLength(true)
	poly := ApproxPolygon(b, tolerance, true)

	c := Candidate{
		Boundary:  b,
		Polygon:   poly,
		Tolerance: tolerance,
	}
	switch {
	case len(poly) != 4:
		c.Reason = ReasonVertexCount
	case !IsConvex(poly):
		c.Reason = ReasonNotConvex
	default:
		c.Accepted = true
	}
	return c
}

// FilterRectangles keeps the boundaries that simplify to convex
// quadrilaterals.
//
// Parameters:
//   - boundaries: Traced boundaries, in discovery order.
//   - epsilon: Simplification tolerance as a fraction of each boundary's
//     perimeter. Typical: 0.02.
//
// Returns:
//   - []Quad: Accepted quadrilaterals, in the same relative order as their
//     boundaries.
//   - []Candidate: One entry per input boundary, accepted or not.
//
// # Algorithm
//
//  1. Tolerance: epsilon × closed perimeter of the boundary
//  2. Simplification: ApproxPolygon with the boundary treated as closed
//  3. Acceptance: exactly four vertices and IsConvex
//
// Rejected boundaries are not errors; they are reported only through the
// candidate list.
func FilterRectangles(boundaries []Boundary, epsilon float64) ([]Quad, []Candidate) {
	quads := make([]Quad, 0, len(boundaries))
	candidates := make([]Candidate, 0, len(boundaries))

	for _, b := range boundaries {
		c := ClassifyBoundary(b, epsilon)
		candidates = append(candidates, c)
		if c.Accepted {
			quads = append(quads, c.Quad())
		}
	}
	return quads, candidates
}
