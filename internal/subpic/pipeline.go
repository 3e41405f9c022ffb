package subpic

import (
	"fmt"
	"image"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/subpic-mcp/internal/detection"
	"github.com/ironsheep/subpic-mcp/internal/imaging"
	"github.com/ironsheep/subpic-mcp/internal/logging"
	"github.com/ironsheep/subpic-mcp/internal/storage"
)

// SubImage is one rectangular region cut out of the source.
type SubImage struct {
	// Index is the position in the result, 0-based.
	Index int

	// Bounds is the axis-aligned bounding rectangle of Quad in source
	// coordinates. Min is inclusive, Max exclusive.
	Bounds image.Rectangle

	// Quad is the accepted quadrilateral the region was derived from.
	Quad detection.Quad

	// Image holds a copy of the source pixels inside Bounds, with its
	// origin at (0,0).
	Image *image.NRGBA
}

// Result is the outcome of one extraction run.
type Result struct {
	Source *imaging.Source
	Config Config

	// SubImages are the extracted regions, in discovery order unless
	// Config.SortReadingOrder was set.
	SubImages []SubImage

	// Boundaries are the traced boundaries that passed the area filter.
	Boundaries []detection.Boundary

	// Candidates holds the rectangle filter's verdict for every boundary in
	// Boundaries, accepted or not.
	Candidates []detection.Candidate
}

// Images returns the sub-picture images in result order.
func (r *Result) Images() []image.Image {
	images := make([]image.Image, len(r.SubImages))
	for i, s := range r.SubImages {
		images[i] = s.Image
	}
	return images
}

// Quads returns the accepted quadrilaterals as vertex lists, in result
// order.
func (r *Result) Quads() [][]image.Point {
	quads := make([][]image.Point, len(r.SubImages))
	for i, s := range r.SubImages {
		quads[i] = s.Quad.Points()
	}
	return quads
}

// Save writes every sub-picture to store under opts.
func (r *Result) Save(store storage.Store, opts storage.Options) (*storage.SaveResult, error) {
	return store.Save(r.Images(), opts)
}

// newArena is replaced in tests to observe buffer release.
var newArena = imaging.NewArena

// Extractor runs the sub-picture pipeline with a fixed configuration.
type Extractor struct {
	Config Config
	Logger logrus.FieldLogger
}

// NewExtractor returns an Extractor. A nil log discards output.
func NewExtractor(cfg Config, log logrus.FieldLogger) *Extractor {
	if log == nil {
		log = logging.Discard()
	}
	return &Extractor{Config: cfg, Logger: log}
}

// ExtractFile loads the image at path and extracts its sub-pictures.
func (e *Extractor) ExtractFile(path string) (*Result, error) {
	src, err := imaging.LoadSource(path)
	if err != nil {
		return nil, loadError(err)
	}
	return e.Extract(src)
}

// Extract finds the rectangular sub-pictures of src.
//
// # Algorithm
//
//  1. Edges: Canny on the grayscale channel
//  2. Shaping: 3x3 dilation, then closing with Config.CloseKernel
//  3. Boundaries: external borders only, area strictly above
//     Config.MinArea
//  4. Rectangles: polygons simplified with Config.Epsilon × perimeter,
//     kept when they have four vertices and are convex
//  5. Crop: bounding rectangle of each quad, copied from the colour image
//
// Returns ErrNoContoursFound when no boundary survives step 3. Boundaries
// that are not quadrilaterals are dropped silently, so a successful result
// may hold no sub-pictures at all.
//
// All intermediate buffers are released before Extract returns, whether it
// succeeds or not.
func (e *Extractor) Extract(src *imaging.Source) (result *Result, err error) {
	cfg := e.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := e.logger().WithField("backend", Backend)
	if src.Path != "" {
		log = log.WithField("source", src.Path)
	}

	arena := newArena()
	defer func() {
		if rerr := arena.Release(); rerr != nil && err == nil {
			result, err = nil, fmt.Errorf("failed to release buffers: %w", rerr)
		}
	}()

	start := time.Now()
	_, boundaries, err := detectBoundaries(src, cfg, arena)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"boundaries": len(boundaries),
		"elapsed":    time.Since(start).String(),
	}).Debug("traced boundaries")

	kept := detection.FilterByArea(boundaries, cfg.MinArea)
	if len(kept) == 0 {
		log.WithField("min_area", cfg.MinArea).Debug("no boundary above area floor")
		return nil, ErrNoContoursFound
	}

	quads, candidates := detection.FilterRectangles(kept, cfg.Epsilon)
	for i, c := range candidates {
		if !c.Accepted {
			log.WithFields(logrus.Fields{
				"candidate": i,
				"vertices":  len(c.Polygon),
				"reason":    c.Reason,
				"bounds":    c.Boundary.Bounds().String(),
			}).Debug("rejected candidate")
		}
	}

	subs := make([]SubImage, 0, len(quads))
	for _, q := range quads {
		r := q.Bounds().Intersect(src.Bounds())
		img, err := imaging.CropRegion(src.Color, r)
		if err != nil {
			return nil, fmt.Errorf("failed to crop %v: %w", r, err)
		}
		subs = append(subs, SubImage{Bounds: r, Quad: q, Image: img})
	}

	if cfg.SortReadingOrder {
		SortReadingOrder(subs)
	}
	for i := range subs {
		subs[i].Index = i
	}

	log.WithFields(logrus.Fields{
		"subpics":    len(subs),
		"candidates": len(candidates),
		"elapsed":    time.Since(start).String(),
	}).Info("extracted sub-pictures")

	return &Result{
		Source:     src,
		Config:     cfg,
		SubImages:  subs,
		Boundaries: kept,
		Candidates: candidates,
	}, nil
}

// EdgeMap returns the shaped edge map of src: the binary image boundaries
// are traced from. The result is a copy that outlives the run's buffers.
func (e *Extractor) EdgeMap(src *imaging.Source) (edgeMap *image.Gray, err error) {
	cfg := e.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	arena := newArena()
	defer func() {
		if rerr := arena.Release(); rerr != nil && err == nil {
			edgeMap, err = nil, fmt.Errorf("failed to release buffers: %w", rerr)
		}
	}()

	edges, _, err := detectBoundaries(src, cfg, arena)
	if err != nil {
		return nil, err
	}
	edgeMap = image.NewGray(edges.Bounds())
	copy(edgeMap.Pix, edges.Pix)
	return edgeMap, nil
}

func (e *Extractor) logger() logrus.FieldLogger {
	if e.Logger == nil {
		return logging.Discard()
	}
	return e.Logger
}

// SortReadingOrder orders sub-images in rows from top to bottom, and
// left to right within a row. A sub-image starts a new row when its top
// edge lies below the middle of the row's first sub-image.
func SortReadingOrder(subs []SubImage) {
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].Bounds.Min.Y < subs[j].Bounds.Min.Y
	})

	for start := 0; start < len(subs); {
		first := subs[start].Bounds
		middle := first.Min.Y + first.Dy()/2
		end := start + 1
		for end < len(subs) && subs[end].Bounds.Min.Y <= middle {
			end++
		}
		row := subs[start:end]
		sort.SliceStable(row, func(i, j int) bool {
			return row[i].Bounds.Min.X < row[j].Bounds.Min.X
		})
		start = end
	}
}
