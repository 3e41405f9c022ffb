package subpic

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures.
type Kind int

const (
	// KindNoContoursFound means no region survived the area filter. The
	// source most likely holds no sub-pictures; retrying will not help.
	KindNoContoursFound Kind = iota + 1

	// KindInvalidConfig means a Config field is out of range.
	KindInvalidConfig

	// KindLoad means the source image could not be read or decoded.
	KindLoad
)

func (k Kind) String() string {
	switch k {
	case KindNoContoursFound:
		return "no_contours_found"
	case KindInvalidConfig:
		return "invalid_config"
	case KindLoad:
		return "load"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the error type returned by the pipeline.
//
// errors.Is matches two *Error values with the same Kind, so callers can
// test against the sentinel values below without caring about the wrapped
// cause.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// ErrNoContoursFound is returned when the source has no region large enough
// to be a sub-picture.
var ErrNoContoursFound = &Error{
	Kind: KindNoContoursFound,
	Err:  errors.New("no contours could be found, likely no subpics present in source image"),
}

func invalidConfig(format string, args ...any) error {
	return &Error{Kind: KindInvalidConfig, Err: fmt.Errorf("invalid config: "+format, args...)}
}

func loadError(err error) error {
	return &Error{Kind: KindLoad, Err: err}
}
