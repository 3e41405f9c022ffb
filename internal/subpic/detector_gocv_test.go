//go:build gocv

package subpic

import (
	"image"
	"testing"

	imgpkg "github.com/ironsheep/subpic-mcp/internal/imaging"
)

func TestOpenCV_FindsPanels(t *testing.T) {
	if Backend != "opencv" {
		t.Fatalf("Backend: got %q, want opencv", Backend)
	}

	panels := []image.Rectangle{
		image.Rect(30, 20, 150, 110),
		image.Rect(200, 40, 360, 150),
		image.Rect(40, 180, 180, 280),
	}
	src := imgpkg.NewSource(newPage(400, 320, panels...))
	arenas := recordArenas(t)

	res, err := NewExtractor(DefaultConfig(), nil).Extract(src)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(res.SubImages) != len(panels) {
		t.Fatalf("got %d sub-images, want %d", len(res.SubImages), len(panels))
	}
	for i, sub := range res.SubImages {
		matched := false
		for _, p := range panels {
			if near(sub.Bounds, p, 3) {
				matched = true
			}
		}
		if !matched {
			t.Errorf("sub %d: bounds %v match no panel", i, sub.Bounds)
		}
	}

	if len(*arenas) != 1 || !(*arenas)[0].Released() || (*arenas)[0].Len() != 0 {
		t.Error("mats not released")
	}
}

func TestOpenCV_EdgeMap(t *testing.T) {
	src := imgpkg.NewSource(newPage(120, 100, image.Rect(20, 20, 100, 80)))

	edges, err := NewExtractor(DefaultConfig(), nil).EdgeMap(src)
	if err != nil {
		t.Fatalf("EdgeMap failed: %v", err)
	}
	if edges.Bounds() != src.Bounds() {
		t.Errorf("bounds: got %v, want %v", edges.Bounds(), src.Bounds())
	}
	if edges.GrayAt(60, 50).Y != 0 {
		t.Error("panel interior should be empty")
	}
}
