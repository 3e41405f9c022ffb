package imaging

import (
	"errors"
	"image"
	"testing"
)

type countingCloser struct {
	closed int
	err    error
}

func (c *countingCloser) Close() error {
	c.closed++
	return c.err
}

func TestArena_NewGrayZeroed(t *testing.T) {
	arena := NewArena()
	g := arena.NewGray(image.Rect(0, 0, 10, 10))
	for i := range g.Pix {
		g.Pix[i] = 200
	}
	arena.Release()

	// A recycled buffer must come back cleared.
	next := NewArena()
	defer next.Release()
	h := next.NewGray(image.Rect(0, 0, 10, 9))
	if len(h.Pix) != 90 || h.Stride != 10 {
		t.Fatalf("unexpected buffer shape: len=%d stride=%d", len(h.Pix), h.Stride)
	}
	if n := countSet(h); n != 0 {
		t.Errorf("recycled buffer has %d non-zero pixels", n)
	}
}

func TestArena_ReleaseOnce(t *testing.T) {
	arena := NewArena()
	arena.NewGray(image.Rect(0, 0, 4, 4))
	arena.NewGray(image.Rect(0, 0, 4, 4))
	c1 := &countingCloser{}
	c2 := &countingCloser{}
	arena.Track(c1)
	arena.Track(c2)

	if arena.Len() != 4 {
		t.Errorf("Len: got %d, want 4", arena.Len())
	}

	if err := arena.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if err := arena.Release(); err != nil {
		t.Fatalf("second Release failed: %v", err)
	}

	if c1.closed != 1 || c2.closed != 1 {
		t.Errorf("closers closed %d and %d times, want 1 each", c1.closed, c2.closed)
	}
	if arena.Len() != 0 {
		t.Errorf("Len after Release: got %d, want 0", arena.Len())
	}
	if !arena.Released() {
		t.Error("Released() should be true")
	}
}

func TestArena_ReleaseReportsFirstError(t *testing.T) {
	first := errors.New("first")
	arena := NewArena()
	failing := &countingCloser{err: first}
	other := &countingCloser{err: errors.New("second")}
	arena.Track(failing)
	arena.Track(other)

	err := arena.Release()
	// Closers run in reverse order, so "second" fails first.
	if err == nil || err.Error() != "second" {
		t.Errorf("Release error: got %v, want second", err)
	}
	if failing.closed != 1 {
		t.Error("all closers must run even after a failure")
	}
	if again := arena.Release(); again != err {
		t.Errorf("repeated Release: got %v, want %v", again, err)
	}
}

func TestArena_UseAfterRelease(t *testing.T) {
	arena := NewArena()
	arena.Release()

	defer func() {
		if recover() == nil {
			t.Error("NewGray after Release should panic")
		}
	}()
	arena.NewGray(image.Rect(0, 0, 1, 1))
}

func TestArena_CloneGray(t *testing.T) {
	arena := NewArena()
	defer arena.Release()

	src := image.NewGray(image.Rect(0, 0, 3, 2))
	copy(src.Pix, []uint8{1, 2, 3, 4, 5, 6})

	dst := arena.CloneGray(src)
	for i, v := range src.Pix {
		if dst.Pix[i] != v {
			t.Fatalf("Pix[%d]: got %d, want %d", i, dst.Pix[i], v)
		}
	}
	dst.Pix[0] = 99
	if src.Pix[0] != 1 {
		t.Error("CloneGray shares memory with its source")
	}
}

func TestArena_ScratchSlices(t *testing.T) {
	arena := NewArena()
	b := arena.Bytes(100)
	v := arena.Int32s(1000)
	if len(b) != 100 || cap(b) < 100 || len(v) != 1000 || cap(v) < 1000 {
		t.Fatalf("shapes: bytes len=%d cap=%d, int32s len=%d cap=%d", len(b), cap(b), len(v), cap(v))
	}
	for i := range v {
		v[i] = -7
	}
	b[0] = 9
	if arena.Len() != 2 {
		t.Errorf("Len: got %d, want 2", arena.Len())
	}
	arena.Release()

	next := NewArena()
	defer next.Release()
	for i, x := range next.Int32s(1000) {
		if x != 0 {
			t.Fatalf("recycled int32s[%d] = %d, want 0", i, x)
		}
	}
	if next.Bytes(100)[0] != 0 {
		t.Error("recycled bytes not cleared")
	}
}

func TestSizeClass(t *testing.T) {
	tests := []struct{ n, want int }{
		{0, 0}, {1, 0}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {1024, 10}, {1025, 11},
	}
	for _, tt := range tests {
		if got := sizeClass(tt.n); got != tt.want {
			t.Errorf("sizeClass(%d): got %d, want %d", tt.n, got, tt.want)
		}
		if tt.n > 0 && 1<<sizeClass(tt.n) < tt.n {
			t.Errorf("class %d too small for %d", sizeClass(tt.n), tt.n)
		}
	}
}
