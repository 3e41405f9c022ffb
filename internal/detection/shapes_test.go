package detection

import (
	"image"
	"testing"
)

func TestClassifyBoundary(t *testing.T) {
	tests := []struct {
		name     string
		boundary Boundary
		accepted bool
		reason   string
	}{
		{
			name:     "rectangle",
			boundary: Boundary(rectPerimeter(image.Rect(0, 0, 120, 80))),
			accepted: true,
		},
		{
			name: "pentagon",
			boundary: Boundary{
				image.Pt(0, 0), image.Pt(100, 0), image.Pt(100, 60),
				image.Pt(50, 100), image.Pt(0, 60),
			},
			reason: ReasonVertexCount,
		},
		{
			name: "triangle",
			boundary: Boundary{
				image.Pt(0, 0), image.Pt(100, 0), image.Pt(50, 90),
			},
			reason: ReasonVertexCount,
		},
		{
			name: "dart",
			boundary: Boundary{
				image.Pt(0, 0), image.Pt(100, 50), image.Pt(0, 100), image.Pt(30, 50),
			},
			reason: ReasonNotConvex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ClassifyBoundary(tt.boundary, DefaultEpsilon)
			if c.Accepted != tt.accepted {
				t.Errorf("Accepted: got %v, want %v (polygon %v)", c.Accepted, tt.accepted, c.Polygon)
			}
			if c.Reason != tt.reason {
				t.Errorf("Reason: got %q, want %q", c.Reason, tt.reason)
			}
			if c.Tolerance <= 0 {
				t.Errorf("Tolerance: got %v, want > 0", c.Tolerance)
			}
		})
	}
}

func TestFilterRectangles(t *testing.T) {
	first := image.Rect(10, 10, 110, 70)
	second := image.Rect(150, 20, 230, 140)
	pentagon := Boundary{
		image.Pt(0, 200), image.Pt(100, 200), image.Pt(100, 260),
		image.Pt(50, 300), image.Pt(0, 260),
	}
	boundaries := []Boundary{
		Boundary(rectPerimeter(first)),
		pentagon,
		Boundary(rectPerimeter(second)),
	}

	quads, candidates := FilterRectangles(boundaries, DefaultEpsilon)
	if len(candidates) != 3 {
		t.Fatalf("got %d candidates, want 3", len(candidates))
	}
	if len(quads) != 2 {
		t.Fatalf("got %d quads, want 2", len(quads))
	}
	if quads[0].Bounds() != first {
		t.Errorf("quad 0 bounds: got %v, want %v", quads[0].Bounds(), first)
	}
	if quads[1].Bounds() != second {
		t.Errorf("quad 1 bounds: got %v, want %v", quads[1].Bounds(), second)
	}
	if candidates[1].Accepted {
		t.Error("pentagon should be rejected")
	}
}

func TestFilterRectangles_FromTrace(t *testing.T) {
	block := image.Rect(20, 15, 140, 95)
	img := newBinaryImage(160, 110, block)

	boundaries := FilterByArea(FindExternalBoundaries(img), DefaultMinArea)
	quads, _ := FilterRectangles(boundaries, DefaultEpsilon)
	if len(quads) != 1 {
		t.Fatalf("got %d quads, want 1", len(quads))
	}
	if quads[0].Bounds() != block {
		t.Errorf("Bounds: got %v, want %v", quads[0].Bounds(), block)
	}
	if len(quads[0].Points()) != 4 {
		t.Errorf("Points: got %d, want 4", len(quads[0].Points()))
	}
}

func TestBoundsConversion(t *testing.T) {
	r := image.Rect(3, 4, 30, 40)
	b := BoundsOf(r)
	if b != (Bounds{X1: 3, Y1: 4, X2: 30, Y2: 40}) {
		t.Errorf("BoundsOf: got %+v", b)
	}
	if b.Rect() != r {
		t.Errorf("Rect: got %v, want %v", b.Rect(), r)
	}

	pts := PointsOf([]image.Point{image.Pt(1, 2), image.Pt(3, 4)})
	if len(pts) != 2 || pts[1] != (Point{X: 3, Y: 4}) {
		t.Errorf("PointsOf: got %v", pts)
	}
}
