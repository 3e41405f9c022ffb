package storage

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/subpic-mcp/internal/logging"
)

// LocalStore writes sub-pictures into a directory on the local filesystem.
type LocalStore struct {
	Logger logrus.FieldLogger
}

// NewLocalStore returns a LocalStore logging to log. A nil log discards
// output.
func NewLocalStore(log logrus.FieldLogger) *LocalStore {
	if log == nil {
		log = logging.Discard()
	}
	return &LocalStore{Logger: log}
}

// Save writes every image to opts.Directory as {FileName}{n}.{ext}.
//
// The directory is checked before anything is written: when it is missing
// and CreateDirectory is false, or when the path names a regular file, Save
// returns ErrInvalidDirectory. Files are created exclusively, so an existing
// file is never replaced; losing a race for a name fails the save.
//
// A save is all or nothing: on a write error the files already written by
// this call are removed and only the error is returned.
func (s *LocalStore) Save(images []image.Image, opts Options) (*SaveResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := prepareDirectory(opts.Directory, opts.CreateDirectory); err != nil {
		return nil, err
	}

	existing, err := listFiles(opts.Directory)
	if err != nil {
		return nil, err
	}
	names, first := allocateNames(existing, opts.FileName, opts.Format, len(images))

	result := &SaveResult{FirstCounter: first, Paths: make([]string, 0, len(images))}
	for i, img := range images {
		path := filepath.Join(opts.Directory, names[i])
		if err := writeExclusive(path, img, opts.Format, opts.JPEGQuality); err != nil {
			s.rollback(result.Paths)
			return nil, err
		}
		result.Paths = append(result.Paths, path)
		s.logger().WithField("path", path).Debug("saved sub-picture")
	}
	result.Count = len(result.Paths)

	s.logger().WithFields(logrus.Fields{
		"directory":     opts.Directory,
		"first_counter": first,
	}).Infof("%d pics saved successfully", result.Count)
	return result, nil
}

// rollback removes the files written by a failed save.
func (s *LocalStore) rollback(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil {
			s.logger().WithError(err).WithField("path", p).Warn("failed to remove partial save")
		}
	}
}

func (s *LocalStore) logger() logrus.FieldLogger {
	if s.Logger == nil {
		return logging.Discard()
	}
	return s.Logger
}

// prepareDirectory makes sure dir exists and is a directory, creating it
// when allowed.
func prepareDirectory(dir string, create bool) error {
	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err == nil:
		return fmt.Errorf("%s is not a directory: %w", dir, ErrInvalidDirectory)
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("failed to stat %s: %w", dir, err)
	case !create:
		return fmt.Errorf("%s: %w", dir, ErrInvalidDirectory)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// listFiles returns the names of the regular entries in dir.
func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func writeExclusive(path string, img image.Image, f Format, jpegQuality int) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := f.Encode(file, img, jpegQuality); err != nil {
		file.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
