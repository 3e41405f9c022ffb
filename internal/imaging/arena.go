package imaging

import (
	"image"
	"io"
	"math/bits"
	"sync"
)

// Pools recycle the backing slices of intermediate buffers between pipeline
// runs. Scans are large, and every run needs several full-size edge, gradient
// and scratch buffers.
var (
	bytePool  slicePool[uint8]
	int32Pool slicePool[int32]
)

// slicePool is a set of sync.Pools bucketed by power-of-two capacity, so a
// request is always served by a slice at least as large as asked for.
type slicePool[T any] struct {
	classes [48]sync.Pool // class c stores *[]T with cap 1<<c
}

func sizeClass(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// get returns a zeroed slice of length n.
func (p *slicePool[T]) get(n int) []T {
	c := sizeClass(n)
	if v := p.classes[c].Get(); v != nil {
		s := (*v.(*[]T))[:n]
		clear(s)
		return s
	}
	return make([]T, n, 1<<c)
}

func (p *slicePool[T]) put(s []T) {
	c := sizeClass(cap(s))
	if cap(s) != 1<<c {
		return
	}
	s = s[:0]
	p.classes[c].Put(&s)
}

// Arena owns every intermediate buffer created during one pipeline run and
// releases them together when the run ends.
//
// Buffers are obtained with NewGray, Bytes and Int32s (all pooled) or
// registered with Track (anything with a Close method, such as OpenCV
// matrices). Release hands every pooled buffer back and closes every tracked
// value exactly once, in reverse registration order. Typical use:
//
//	arena := imaging.NewArena()
//	defer arena.Release()
//
// An Arena is not safe for concurrent use; one run owns one arena.
type Arena struct {
	bytes    [][]uint8
	int32s   [][]int32
	closers  []io.Closer
	released bool
	err      error
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// NewGray returns a zeroed single-channel buffer covering r. The buffer
// belongs to the arena and must not be used after Release.
func (a *Arena) NewGray(r image.Rectangle) *image.Gray {
	return &image.Gray{
		Pix:    a.Bytes(r.Dx() * r.Dy()),
		Stride: r.Dx(),
		Rect:   r,
	}
}

// Bytes returns a zeroed byte slice of length n with capacity at least n.
func (a *Arena) Bytes(n int) []uint8 {
	a.mustBeLive()
	s := bytePool.get(n)
	a.bytes = append(a.bytes, s)
	return s
}

// Int32s returns a zeroed int32 slice of length n with capacity at least n.
func (a *Arena) Int32s(n int) []int32 {
	a.mustBeLive()
	s := int32Pool.get(n)
	a.int32s = append(a.int32s, s)
	return s
}

// CloneGray returns an arena-owned copy of src.
func (a *Arena) CloneGray(src *image.Gray) *image.Gray {
	dst := a.NewGray(src.Bounds())
	copyGray(dst, src)
	return dst
}

// Track registers c to be closed on Release.
func (a *Arena) Track(c io.Closer) {
	a.mustBeLive()
	a.closers = append(a.closers, c)
}

// Len reports how many buffers the arena currently holds.
func (a *Arena) Len() int {
	return len(a.bytes) + len(a.int32s) + len(a.closers)
}

// Released reports whether Release has run.
func (a *Arena) Released() bool {
	return a.released
}

// Release returns every pooled buffer and closes every tracked value. Only
// the first call does any work; later calls return the first call's result.
// All closers run even when one fails; the first failure is returned.
func (a *Arena) Release() error {
	if a.released {
		return a.err
	}
	a.released = true

	for _, b := range a.bytes {
		bytePool.put(b)
	}
	a.bytes = nil
	for _, v := range a.int32s {
		int32Pool.put(v)
	}
	a.int32s = nil

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && a.err == nil {
			a.err = err
		}
		a.closers[i] = nil
	}
	a.closers = nil

	return a.err
}

func (a *Arena) mustBeLive() {
	if a.released {
		panic("imaging: arena used after Release")
	}
}

// copyGray copies src into dst. Both must have the same bounds.
func copyGray(dst, src *image.Gray) {
	b := src.Bounds()
	w := b.Dx()
	for y := 0; y < b.Dy(); y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+w], src.Pix[y*src.Stride:y*src.Stride+w])
	}
}
