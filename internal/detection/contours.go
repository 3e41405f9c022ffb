package detection

import (
	"image"
	"math"
)

// DefaultMinArea is the area floor for boundaries, in square pixels.
// Boundaries with an area at or below it are discarded.
const DefaultMinArea = 1000

// Boundary is a traced closed outer border of a foreground region.
//
// Points are ordered along the border and the last point connects back to
// the first. Only the points where the border changes direction are kept,
// so a straight run is represented by its two ends.
type Boundary []image.Point

// Area returns the area enclosed by the boundary (shoelace formula). The
// result is never negative, whatever the traversal direction.
func (b Boundary) Area() float64 {
	n := len(b)
	if n < 3 {
		return 0
	}
	var sum int64
	for i := 0; i < n; i++ {
		p, q := b[i], b[(i+1)%n]
		sum += int64(p.X)*int64(q.Y) - int64(q.X)*int64(p.Y)
	}
	return math.Abs(float64(sum)) / 2
}

// ArcLength returns the perimeter of the boundary. When closed is true the
// segment from the last point back to the first is included.
func (b Boundary) ArcLength(closed bool) float64 {
	return arcLength(b, closed)
}

// Bounds returns the bounding rectangle of the boundary's points, with Max
// exclusive.
func (b Boundary) Bounds() image.Rectangle {
	return BoundingRect(b)
}

// neighbour offsets in counter-clockwise order as seen on screen (y grows
// downwards): E, NE, N, NW, W, SW, S, SE.
var neighbours = [8]image.Point{
	{X: 1, Y: 0},
	{X: 1, Y: -1},
	{X: 0, Y: -1},
	{X: -1, Y: -1},
	{X: -1, Y: 0},
	{X: -1, Y: 1},
	{X: 0, Y: 1},
	{X: 1, Y: 1},
}

const dirWest = 4

// Pixel labels in the padded working grid.
const (
	cellBackground uint8 = iota
	cellOutside         // background connected to the image frame
	cellForeground
	cellVisited // foreground already assigned to a traced component
)

// Scratch supplies zeroed working memory for boundary tracing. An
// *imaging.Arena satisfies it, so the grid and stacks are pooled and released
// with the rest of a pipeline run.
type Scratch interface {
	Bytes(n int) []uint8
	Int32s(n int) []int32
}

// heapScratch allocates fresh slices.
type heapScratch struct{}

func (heapScratch) Bytes(n int) []uint8  { return make([]uint8, n) }
func (heapScratch) Int32s(n int) []int32 { return make([]int32, n) }

// FindExternalBoundaries traces the outermost borders of the foreground
// (non-zero) regions of a binary image.
//
// Foreground is 8-connected and background 4-connected. Regions that sit
// inside a hole of another region are ignored, as are the holes themselves:
// only borders facing the background that reaches the image frame are
// returned. The image is treated as if surrounded by a one-pixel background
// frame, so regions touching the edge are still closed.
//
// Boundaries are returned in raster order of each region's first pixel
// (top to bottom, then left to right), chain-simplified.
func FindExternalBoundaries(img *image.Gray) []Boundary {
	return FindExternalBoundariesIn(img, nil)
}

// FindExternalBoundariesIn is FindExternalBoundaries with its working grid
// and flood-fill stacks drawn from scratch. A nil scratch allocates.
func FindExternalBoundariesIn(img *image.Gray, scratch Scratch) []Boundary {
	if scratch == nil {
		scratch = heapScratch{}
	}
	b := img.Bounds()
	width, height := b.Dx()+2, b.Dy()+2

	// Each cell is pushed at most once per fill, so one width*height stack
	// serves every fill.
	grid := scratch.Bytes(width * height)
	stack := scratch.Int32s(width * height)
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+b.Dx()]
		for x, v := range row {
			if v != 0 {
				grid[(y+1)*width+x+1] = cellForeground
			}
		}
	}

	markOutside(grid, width, height, stack)

	var boundaries []Boundary
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x
			if grid[i] != cellForeground {
				continue
			}
			if grid[i-1] == cellOutside {
				chain := traceBorder(grid, width, image.Pt(x, y))
				simplified := simplifyChain(chain)
				for j := range simplified {
					simplified[j] = simplified[j].Add(b.Min).Sub(image.Pt(1, 1))
				}
				boundaries = append(boundaries, simplified)
			}
			// Nested or not, the whole region is done with.
			markComponent(grid, width, height, x, y, stack)
		}
	}
	return boundaries
}

// FilterByArea keeps the boundaries whose area is strictly greater than
// minArea, preserving order.
func FilterByArea(boundaries []Boundary, minArea float64) []Boundary {
	kept := make([]Boundary, 0, len(boundaries))
	for _, b := range boundaries {
		if b.Area() > minArea {
			kept = append(kept, b)
		}
	}
	return kept
}

// markOutside flood-fills (4-connected) the background reachable from the
// padded frame.
func markOutside(grid []uint8, width, height int, stack []int32) {
	stack = append(stack[:0], 0)
	grid[0] = cellOutside
	for len(stack) > 0 {
		i := int(stack[len(stack)-1])
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width
		for _, d := range [4]image.Point{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
			nx, ny := x+d.X, y+d.Y
			if nx < 0 || ny < 0 || nx >= width || ny >= height {
				continue
			}
			j := ny*width + nx
			if grid[j] == cellBackground {
				grid[j] = cellOutside
				stack = append(stack, int32(j))
			}
		}
	}
}

// markComponent flags every foreground pixel 8-connected to (x, y) as
// visited.
func markComponent(grid []uint8, width, height, x, y int, stack []int32) {
	start := y*width + x
	grid[start] = cellVisited
	stack = append(stack[:0], int32(start))
	for len(stack) > 0 {
		i := int(stack[len(stack)-1])
		stack = stack[:len(stack)-1]
		cx, cy := i%width, i/width
		for _, d := range neighbours {
			nx, ny := cx+d.X, cy+d.Y
			if nx < 0 || ny < 0 || nx >= width || ny >= height {
				continue
			}
			j := ny*width + nx
			if grid[j] == cellForeground {
				grid[j] = cellVisited
				stack = append(stack, int32(j))
			}
		}
	}
}

// traceBorder follows the outer border that starts at start, whose west
// neighbour is background (Suzuki & Abe, border following step 3).
func traceBorder(grid []uint8, width int, start image.Point) []image.Point {
	isSet := func(p image.Point) bool {
		v := grid[p.Y*width+p.X]
		return v == cellForeground || v == cellVisited
	}

	// Clockwise from west for the first neighbour.
	first := -1
	for k := 0; k < 8; k++ {
		d := (dirWest - k + 8) % 8
		if isSet(start.Add(neighbours[d])) {
			first = d
			break
		}
	}
	if first < 0 {
		return []image.Point{start}
	}

	p1 := start.Add(neighbours[first])
	cur := start
	back := first // direction from cur to the previous border point
	chain := make([]image.Point, 0, 64)

	// A border visits each pixel at most four times.
	limit := 4*len(grid) + 8
	for step := 0; step < limit; step++ {
		next := -1
		for k := 1; k <= 8; k++ {
			d := (back + k) % 8
			if isSet(cur.Add(neighbours[d])) {
				next = d
				break
			}
		}

		chain = append(chain, cur)
		nextPoint := cur.Add(neighbours[next])
		if nextPoint == start && cur == p1 {
			break
		}
		back = (next + 4) % 8
		cur = nextPoint
	}
	return chain
}

// simplifyChain drops every point that lies in the middle of a straight run,
// keeping only the vertices where the step direction changes.
func simplifyChain(chain []image.Point) Boundary {
	n := len(chain)
	if n < 3 {
		return append(Boundary(nil), chain...)
	}
	out := make(Boundary, 0, n/4+4)
	for i := 0; i < n; i++ {
		prev := chain[(i-1+n)%n]
		next := chain[(i+1)%n]
		if chain[i].Sub(prev) != next.Sub(chain[i]) {
			out = append(out, chain[i])
		}
	}
	if len(out) == 0 {
		// Degenerate loop with a single direction; keep the ends.
		out = append(out, chain[0], chain[n-1])
	}
	return out
}
