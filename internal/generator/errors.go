package generator

import (
	"errors"
	"fmt"
)

// ErrOutsideBundle is wrapped by a WriteError when an artifact file would be
// placed outside its bundle directory.
var ErrOutsideBundle = errors.New("path escapes the bundle directory")

// SchemeTargetNotFoundError is returned when a scheme's build action names a
// target that does not exist in its scope.
type SchemeTargetNotFoundError struct {
	Scheme string
	Target string
	// Path is the manifest directory that declares the scheme.
	Path string
}

func (e *SchemeTargetNotFoundError) Error() string {
	return fmt.Sprintf("scheme %q in %s: target %q not found", e.Scheme, e.Path, e.Target)
}

// WriteError is returned when generated artifacts could not be written. The
// output directory is left as it was before generation started.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
