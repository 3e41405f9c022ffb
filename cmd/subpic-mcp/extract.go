package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/subpic-mcp/internal/storage"
	"github.com/ironsheep/subpic-mcp/internal/subpic"
)

// newS3Store is replaced in tests.
var newS3Store = func(region, bucket string, log logrus.FieldLogger) (storage.Store, error) {
	return storage.NewS3Store(region, bucket, log)
}

// runExtract implements "subpic-mcp extract". Every image named in args is
// processed even when an earlier one fails; the saved paths are printed to
// out one per line.
func runExtract(args []string, out io.Writer, log logrus.FieldLogger) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	defaults := subpic.DefaultConfig()

	var (
		dir      string
		name     string
		format   string
		create   bool
		quality  int
		bucket   string
		region   string
		cfg      subpic.Config
		failures int
	)
	fs.StringVar(&dir, "dir", "", "Destination directory, or key prefix with -bucket")
	fs.StringVar(&name, "name", "", "Base file name (default: source name followed by '_')")
	fs.StringVar(&format, "format", "jpg", "Output format: jpg, jpeg, png, bmp, gif or tiff")
	fs.BoolVar(&create, "create", false, "Create the destination directory if missing")
	fs.IntVar(&quality, "quality", storage.DefaultJPEGQuality, "JPEG quality 1-100")
	fs.StringVar(&bucket, "bucket", "", "Write to this S3 bucket instead of the local filesystem")
	fs.StringVar(&region, "region", "", "AWS region of the bucket")
	fs.Float64Var(&cfg.LowThreshold, "low", defaults.LowThreshold, "Canny low threshold")
	fs.Float64Var(&cfg.HighThreshold, "high", defaults.HighThreshold, "Canny high threshold")
	fs.Float64Var(&cfg.BlurRadius, "blur", defaults.BlurRadius, "Gaussian blur sigma before edge detection, 0 disables")
	fs.IntVar(&cfg.CloseKernel, "close", defaults.CloseKernel, "Closing kernel size, odd")
	fs.Float64Var(&cfg.MinArea, "min-area", defaults.MinArea, "Ignore regions enclosing this many pixels or fewer")
	fs.Float64Var(&cfg.Epsilon, "epsilon", defaults.Epsilon, "Polygon tolerance as a fraction of the perimeter")
	fs.BoolVar(&cfg.SortReadingOrder, "sort", false, "Number sub-pictures in reading order")
	fs.SetOutput(out)

	if err := fs.Parse(args); err != nil {
		return err
	}
	files := fs.Args()
	if len(files) == 0 {
		fs.Usage()
		return errors.New("no input images")
	}

	f, err := storage.ParseFormat(format)
	if err != nil {
		return err
	}

	var store storage.Store
	if bucket != "" {
		store, err = newS3Store(region, bucket, log)
		if err != nil {
			return err
		}
	} else {
		if dir == "" {
			return errors.New("-dir is required unless -bucket is set")
		}
		store = storage.NewLocalStore(log)
	}

	extractor := subpic.NewExtractor(cfg, log)
	for _, file := range files {
		flog := log.WithField("file", file)

		res, err := extractor.ExtractFile(file)
		if err != nil {
			flog.WithError(err).Error("extraction failed")
			failures++
			continue
		}
		if len(res.SubImages) == 0 {
			flog.Warn("no rectangular sub-pictures found")
			continue
		}

		base := name
		if base == "" {
			base = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)) + "_"
		}
		saved, err := res.Save(store, storage.Options{
			Directory:       dir,
			FileName:        base,
			Format:          f,
			CreateDirectory: create,
			JPEGQuality:     quality,
		})
		if saved != nil {
			for _, p := range saved.Paths {
				fmt.Fprintln(out, p)
			}
		}
		if err != nil {
			if errors.Is(err, storage.ErrInvalidDirectory) {
				// Every later file would fail the same way.
				return err
			}
			flog.WithError(err).Error("save failed")
			failures++
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d images failed", failures, len(files))
	}
	return nil
}
