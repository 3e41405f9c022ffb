package storage

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

// ErrInvalidDirectory is returned when the destination does not exist and
// creating it was not requested, or when it exists but is not a directory.
// Nothing is written when it is returned.
var ErrInvalidDirectory = errors.New("the destination directory does not exist")

// Options describes where and how a batch of sub-pictures is written.
type Options struct {
	// Directory is the destination: a filesystem directory for LocalStore,
	// a key prefix inside the bucket for S3Store (may be empty).
	Directory string

	// FileName is the base name; each file is named {FileName}{n}.{ext}.
	FileName string

	// Format selects the encoding and the extension.
	Format Format

	// CreateDirectory creates a missing destination instead of failing
	// with ErrInvalidDirectory.
	CreateDirectory bool

	// JPEGQuality applies to JPG/JPEG output. Zero selects
	// DefaultJPEGQuality.
	JPEGQuality int
}

// Validate checks the options that do not depend on the destination.
func (o Options) Validate() error {
	if strings.TrimSpace(o.FileName) == "" {
		return errors.New("file name is required")
	}
	if strings.ContainsAny(o.FileName, `/\`) {
		return fmt.Errorf("file name %q must not contain path separators", o.FileName)
	}
	if _, ok := encodings[o.Format]; !ok {
		return fmt.Errorf("unsupported format %q", string(o.Format))
	}
	return nil
}

// SaveResult reports what a Save call wrote.
type SaveResult struct {
	// Paths are the written files (or object keys), in input order.
	Paths []string `json:"paths"`

	// FirstCounter is the counter embedded in the first name.
	FirstCounter int `json:"first_counter"`

	// Count is len(Paths).
	Count int `json:"count"`
}

// Store persists a batch of images under collision-free names.
//
// Implementations recompute the counter from the destination on every call,
// check the destination before writing anything, and never overwrite an
// existing file.
type Store interface {
	Save(images []image.Image, opts Options) (*SaveResult, error)
}
