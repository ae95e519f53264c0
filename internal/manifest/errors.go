package manifest

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError is returned when a directory holds no recognized manifest.
// Kind is set when a specific manifest kind was requested.
type NotFoundError struct {
	Dir  string
	Kind Kind
}

func (e *NotFoundError) Error() string {
	if e.Kind != 0 {
		return fmt.Sprintf("Couldn't find %s in the directory %s", e.Kind.FileName(), e.Dir)
	}
	return fmt.Sprintf("Couldn't find %s, %s, or %s in the directory %s",
		KindWorkspace.FileName(), KindProject.FileName(), KindConfig.FileName(), e.Dir)
}

// SyntaxError is returned when the evaluation engine rejects a manifest.
type SyntaxError struct {
	Path string
	Err  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("failed to parse manifest %s: %v", e.Path, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// RuntimeError is returned when a manifest evaluated but its top-level value
// is not a valid description.
type RuntimeError struct {
	Path   string
	Reason string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("invalid manifest %s: %s", e.Path, e.Reason)
}

// DecodeError is returned for the first required field that is missing or
// has the wrong type.
type DecodeError struct {
	Path     string
	Field    string
	Expected string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode manifest %s: field %q: expected %s", e.Path, e.Field, e.Expected)
}

// UnknownEnumValueError is returned when an enumerated field holds a value
// outside its closed vocabulary.
type UnknownEnumValueError struct {
	Path    string
	Field   string
	Value   string
	Allowed []string
}

func (e *UnknownEnumValueError) Error() string {
	return fmt.Sprintf("failed to decode manifest %s: field %q: unknown value %q (allowed: %s)",
		e.Path, e.Field, e.Value, strings.Join(e.Allowed, ", "))
}

// IsNotFound reports whether err, or any error it wraps, is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
