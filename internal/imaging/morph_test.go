package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestStructuringElement(t *testing.T) {
	arena := NewArena()
	defer arena.Release()

	k, err := StructuringElement(3, arena)
	if err != nil {
		t.Fatalf("StructuringElement failed: %v", err)
	}
	if k.Bounds() != image.Rect(0, 0, 3, 3) {
		t.Errorf("bounds: got %v, want 3x3", k.Bounds())
	}
	if n := countSet(k); n != 9 {
		t.Errorf("set cells: got %d, want 9", n)
	}

	for _, size := range []int{0, -1, 2, 4} {
		if _, err := StructuringElement(size, arena); err == nil {
			t.Errorf("size %d should be rejected", size)
		}
	}
}

func TestDilate_SinglePixel(t *testing.T) {
	arena := NewArena()
	defer arena.Release()

	src := arena.NewGray(image.Rect(0, 0, 7, 7))
	src.SetGray(3, 3, color.Gray{255})
	dst := arena.NewGray(src.Bounds())
	k, _ := StructuringElement(3, arena)

	Dilate(src, dst, k)

	for y := 0; y < 7; y++ {
		for x := 0; x < 7; x++ {
			want := uint8(0)
			if x >= 2 && x <= 4 && y >= 2 && y <= 4 {
				want = 255
			}
			if got := dst.GrayAt(x, y).Y; got != want {
				t.Errorf("pixel (%d,%d): got %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestErode_BorderDoesNotErode(t *testing.T) {
	arena := NewArena()
	defer arena.Release()

	src := arena.NewGray(image.Rect(0, 0, 5, 5))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	dst := arena.NewGray(src.Bounds())
	k, _ := StructuringElement(3, arena)

	Erode(src, dst, k)

	if n := countSet(dst); n != 25 {
		t.Errorf("full image eroded to %d pixels, want 25", n)
	}
}

func TestClose_FillsGap(t *testing.T) {
	arena := NewArena()
	defer arena.Release()

	// Horizontal line with a one-pixel gap at x=5.
	img := arena.NewGray(image.Rect(0, 0, 11, 5))
	for x := 1; x < 10; x++ {
		if x != 5 {
			img.SetGray(x, 2, color.Gray{255})
		}
	}
	scratch := arena.NewGray(img.Bounds())
	k, _ := StructuringElement(3, arena)

	Close(img, scratch, k)

	for x := 1; x < 10; x++ {
		if img.GrayAt(x, 2).Y != 255 {
			t.Errorf("pixel (%d,2) not set after closing", x)
		}
	}
	// Closing must not grow the line sideways.
	if img.GrayAt(5, 0).Y != 0 || img.GrayAt(5, 4).Y != 0 {
		t.Error("closing grew the line beyond one row of neighbours")
	}
}

func TestShape_BridgesBrokenBorder(t *testing.T) {
	arena := NewArena()
	defer arena.Release()

	// Square outline with gaps of two pixels on every side.
	edges := arena.NewGray(image.Rect(0, 0, 40, 40))
	for i := 10; i <= 30; i++ {
		if i >= 19 && i <= 20 {
			continue
		}
		edges.SetGray(i, 10, color.Gray{255})
		edges.SetGray(i, 30, color.Gray{255})
		edges.SetGray(10, i, color.Gray{255})
		edges.SetGray(30, i, color.Gray{255})
	}

	if err := Shape(edges, DefaultCloseKernel, arena); err != nil {
		t.Fatalf("Shape failed: %v", err)
	}

	for _, p := range []image.Point{{X: 19, Y: 10}, {X: 20, Y: 30}, {X: 10, Y: 19}, {X: 30, Y: 20}} {
		if edges.GrayAt(p.X, p.Y).Y != 255 {
			t.Errorf("gap at %v not bridged", p)
		}
	}
	// Interior stays open.
	if edges.GrayAt(20, 20).Y != 0 {
		t.Error("interior of the square was filled")
	}
}

func TestShape_InvalidKernel(t *testing.T) {
	arena := NewArena()
	defer arena.Release()

	edges := arena.NewGray(image.Rect(0, 0, 10, 10))
	if err := Shape(edges, 4, arena); err == nil {
		t.Error("Shape should reject an even closing kernel")
	}
}
