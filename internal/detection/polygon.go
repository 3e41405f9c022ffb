package detection

import (
	"image"
	"math"
)

// DefaultEpsilon is the polygon simplification tolerance as a fraction of a
// boundary's perimeter.
const DefaultEpsilon = 0.02

// ApproxPolygon simplifies a curve with the Douglas-Peucker algorithm.
//
// Every point of the input lies within epsilon pixels of the returned
// polyline. The output keeps the input's orientation and is a subsequence of
// its points.
//
// For closed curves the split starts from an approximately farthest pair of
// points (found by three farthest-point passes) rather than from an arbitrary
// start point, which keeps the corners of a rectangle as vertices whichever
// point the trace began on. Afterwards, vertices lying within epsilon/√2 of the
// chord between their neighbours are dropped.
func ApproxPolygon(points []image.Point, epsilon float64, closed bool) []image.Point {
	n := len(points)
	if n < 3 {
		return append([]image.Point(nil), points...)
	}
	if !closed {
		keep := make([]bool, n)
		keep[0], keep[n-1] = true, true
		douglasPeucker(points, 0, n-1, epsilon, keep)
		return collect(points[:n], keep)
	}

	a, b := 0, 0
	var maxDist int64
	for pass := 0; pass < 3; pass++ {
		a = b
		b, maxDist = farthest(points, a)
	}
	if float64(maxDist) <= epsilon*epsilon {
		return []image.Point{points[a]}
	}

	// Rotate so the curve starts at a, then close it explicitly.
	ext := make([]image.Point, 0, n+1)
	ext = append(ext, points[a:]...)
	ext = append(ext, points[:a]...)
	ext = append(ext, points[a])
	mid := (b - a + n) % n

	keep := make([]bool, n+1)
	keep[0], keep[mid] = true, true
	douglasPeucker(ext, 0, mid, epsilon, keep)
	douglasPeucker(ext, mid, n, epsilon, keep)

	poly := collect(ext[:n], keep[:n])
	return dropFlatVertices(poly, epsilon)
}

// douglasPeucker marks in keep the points of pts[start..end] needed to stay
// within epsilon of the original curve.
func douglasPeucker(pts []image.Point, start, end int, epsilon float64, keep []bool) {
	type span struct{ start, end int }
	stack := []span{{start, end}}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.end-s.start < 2 {
			continue
		}

		maxDist := -1.0
		maxIdx := s.start
		for i := s.start + 1; i < s.end; i++ {
			d := pointSegmentDistance(pts[i], pts[s.start], pts[s.end])
			if d > maxDist {
				maxDist = d
				maxIdx = i
			}
		}

		if maxDist > epsilon {
			keep[maxIdx] = true
			stack = append(stack, span{s.start, maxIdx}, span{maxIdx, s.end})
		}
	}
}

// dropFlatVertices removes, until nothing changes, every vertex of a closed
// polygon that lies between its neighbours and within epsilon/√2 of the chord
// joining them. Polygons never shrink below three vertices.
func dropFlatVertices(poly []image.Point, epsilon float64) []image.Point {
	limit := 0.5 * epsilon * epsilon
	for changed := true; changed && len(poly) > 3; {
		changed = false
		for i := 0; i < len(poly) && len(poly) > 3; i++ {
			prev := poly[(i-1+len(poly))%len(poly)]
			next := poly[(i+1)%len(poly)]
			p := poly[i]

			d := pointLineDistance(p, prev, next)
			between := (p.X-prev.X)*(next.X-p.X)+(p.Y-prev.Y)*(next.Y-p.Y) >= 0
			if d*d <= limit && between {
				poly = append(poly[:i], poly[i+1:]...)
				changed = true
				i--
			}
		}
	}
	return poly
}

// IsConvex reports whether the closed polygon is convex: every turn goes the
// same way and the boundary winds around exactly once. Collinear vertices are
// tolerated; fewer than three distinct turns is not a polygon.
func IsConvex(poly []image.Point) bool {
	n := len(poly)
	if n < 3 {
		return false
	}

	sign := 0
	turning := 0.0
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]
		c := poly[(i+2)%n]
		e1 := b.Sub(a)
		e2 := c.Sub(b)

		cross := e1.X*e2.Y - e1.Y*e2.X
		dot := e1.X*e2.X + e1.Y*e2.Y
		switch {
		case cross > 0:
			if sign < 0 {
				return false
			}
			sign = 1
		case cross < 0:
			if sign > 0 {
				return false
			}
			sign = -1
		}
		turning += math.Atan2(float64(cross), float64(dot))
	}
	if sign == 0 {
		return false
	}
	return math.Abs(math.Abs(turning)-2*math.Pi) < 1e-6
}

// BoundingRect returns the smallest axis-aligned rectangle containing every
// point. Max is exclusive, so a single point yields a 1x1 rectangle.
func BoundingRect(points []image.Point) image.Rectangle {
	if len(points) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		if p.X < r.Min.X {
			r.Min.X = p.X
		}
		if p.Y < r.Min.Y {
			r.Min.Y = p.Y
		}
		if p.X > r.Max.X {
			r.Max.X = p.X
		}
		if p.Y > r.Max.Y {
			r.Max.Y = p.Y
		}
	}
	r.Max = r.Max.Add(image.Pt(1, 1))
	return r
}

func arcLength(points []image.Point, closed bool) float64 {
	n := len(points)
	if n < 2 {
		return 0
	}
	var total float64
	for i := 1; i < n; i++ {
		total += distance(points[i-1], points[i])
	}
	if closed {
		total += distance(points[n-1], points[0])
	}
	return total
}

// farthest returns the index of the point farthest from points[from] and the
// squared distance to it.
func farthest(points []image.Point, from int) (int, int64) {
	origin := points[from]
	best := from
	var bestDist int64
	for i, p := range points {
		dx := int64(p.X - origin.X)
		dy := int64(p.Y - origin.Y)
		if d := dx*dx + dy*dy; d > bestDist {
			bestDist = d
			best = i
		}
	}
	return best, bestDist
}

func collect(points []image.Point, keep []bool) []image.Point {
	out := make([]image.Point, 0, 8)
	for i, p := range points {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}

func distance(a, b image.Point) float64 {
	return math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
}

// pointSegmentDistance is the perpendicular distance from p to the line
// through a and b, or the distance to a when a and b coincide.
func pointSegmentDistance(p, a, b image.Point) float64 {
	if a == b {
		return distance(p, a)
	}
	return pointLineDistance(p, a, b)
}

func pointLineDistance(p, a, b image.Point) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return distance(p, a)
	}
	cross := (float64(p.X-a.X))*dy - (float64(p.Y-a.Y))*dx
	return math.Abs(cross) / length
}
