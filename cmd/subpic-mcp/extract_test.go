package main

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/subpic-mcp/internal/logging"
	"github.com/ironsheep/subpic-mcp/internal/storage"
)

// writePage saves a white page with dark panels as PNG under dir.
func writePage(t *testing.T, dir, name string, panels ...image.Rectangle) string {
	t.Helper()

	img := imaging.New(400, 200, color.White)
	for _, p := range panels {
		for y := p.Min.Y; y < p.Max.Y; y++ {
			for x := p.Min.X; x < p.Max.X; x++ {
				img.Set(x, y, color.NRGBA{R: 40, G: 40, B: 40, A: 255})
			}
		}
	}
	path := filepath.Join(dir, name)
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("failed to save %s: %v", path, err)
	}
	return path
}

var panels = []image.Rectangle{
	image.Rect(30, 20, 150, 110),
	image.Rect(200, 40, 360, 150),
}

func TestRunExtract(t *testing.T) {
	in := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")
	page := writePage(t, in, "scan.png", panels...)

	var out bytes.Buffer
	err := runExtract([]string{"-dir", outDir, "-create", "-format", "png", "-sort", page}, &out, logging.Discard())
	if err != nil {
		t.Fatalf("runExtract: %v", err)
	}

	lines := strings.Fields(out.String())
	want := []string{filepath.Join(outDir, "scan_1.png"), filepath.Join(outDir, "scan_2.png")}
	if len(lines) != len(want) {
		t.Fatalf("output: got %q", out.String())
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d: got %s, want %s", i, lines[i], w)
		}
		if _, err := os.Stat(w); err != nil {
			t.Errorf("%s: %v", w, err)
		}
	}
}

func TestRunExtract_ContinuesAfterFailure(t *testing.T) {
	in := t.TempDir()
	outDir := t.TempDir()
	blank := writePage(t, in, "blank.png")
	page := writePage(t, in, "scan.png", panels...)

	var out bytes.Buffer
	err := runExtract([]string{"-dir", outDir, "-name", "pic", blank, page}, &out, logging.Discard())
	if err == nil || !strings.Contains(err.Error(), "1 of 2") {
		t.Errorf("got %v, want one failure reported", err)
	}
	if _, statErr := os.Stat(filepath.Join(outDir, "pic2.jpg")); statErr != nil {
		t.Errorf("second image not saved: %v", statErr)
	}
}

func TestRunExtract_InvalidDirectory(t *testing.T) {
	page := writePage(t, t.TempDir(), "scan.png", panels...)
	missing := filepath.Join(t.TempDir(), "missing")

	err := runExtract([]string{"-dir", missing, page}, &bytes.Buffer{}, logging.Discard())
	if !errors.Is(err, storage.ErrInvalidDirectory) {
		t.Errorf("got %v, want ErrInvalidDirectory", err)
	}
}

func TestRunExtract_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no images", []string{"-dir", "/tmp"}},
		{"no destination", []string{"scan.png"}},
		{"bad format", []string{"-dir", "/tmp", "-format", "xcf", "scan.png"}},
		{"unknown flag", []string{"-nope", "scan.png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := runExtract(tt.args, &bytes.Buffer{}, logging.Discard()); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

type memoryStore struct {
	opts  storage.Options
	count int
}

func (m *memoryStore) Save(images []image.Image, opts storage.Options) (*storage.SaveResult, error) {
	m.opts = opts
	m.count += len(images)
	paths := make([]string, len(images))
	for i := range images {
		paths[i] = storage.FileName(opts.Directory+"/"+opts.FileName, i+1, opts.Format)
	}
	return &storage.SaveResult{Paths: paths, FirstCounter: 1, Count: len(images)}, nil
}

func TestRunExtract_Bucket(t *testing.T) {
	store := &memoryStore{}
	orig := newS3Store
	newS3Store = func(region, bucket string, _ logrus.FieldLogger) (storage.Store, error) {
		if bucket != "scans" || region != "us-east-2" {
			t.Errorf("store built for %q in %q", bucket, region)
		}
		return store, nil
	}
	t.Cleanup(func() { newS3Store = orig })

	page := writePage(t, t.TempDir(), "scan.png", panels...)
	var out bytes.Buffer
	err := runExtract([]string{"-bucket", "scans", "-region", "us-east-2", "-dir", "album", page}, &out, logging.Discard())
	if err != nil {
		t.Fatalf("runExtract: %v", err)
	}
	if store.count != 2 || store.opts.Directory != "album" || store.opts.FileName != "scan_" {
		t.Errorf("store saw %d images with %+v", store.count, store.opts)
	}
	if !strings.Contains(out.String(), "album/scan_1.jpg") {
		t.Errorf("output: got %q", out.String())
	}
}
