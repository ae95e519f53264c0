package cli

import (
	"errors"

	"github.com/vk/xcbuddy/internal/app"
	"github.com/vk/xcbuddy/internal/generator"
	"github.com/vk/xcbuddy/internal/graph"
	"github.com/vk/xcbuddy/internal/manifest"
)

// Exit codes.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

func usageError(err error) *ExitError {
	return &ExitError{Code: ExitUsage, Message: err.Error(), Err: err}
}

// exitError wraps a command failure with a message prefix naming the stage
// that failed.
func exitError(err error) *ExitError {
	var (
		notFound     *manifest.NotFoundError
		syntax       *manifest.SyntaxError
		runtime      *manifest.RuntimeError
		decode       *manifest.DecodeError
		enum         *manifest.UnknownEnumValueError
		cycle        *graph.DependencyCycleError
		depNotFound  *graph.DependencyNotFoundError
		projectLoad  *graph.ProjectLoadError
		version      *graph.VersionMismatchError
		rootKind     *graph.RootKindError
		schemeTarget *generator.SchemeTargetNotFoundError
		write        *generator.WriteError
		exists       *app.AlreadyExistsError
	)

	prefix := "error"
	switch {
	case errors.As(err, &projectLoad):
		prefix = "project error"
	case errors.As(err, &notFound), errors.As(err, &syntax), errors.As(err, &runtime),
		errors.As(err, &decode), errors.As(err, &enum):
		prefix = "manifest error"
	case errors.As(err, &cycle), errors.As(err, &depNotFound), errors.As(err, &version), errors.As(err, &rootKind):
		prefix = "graph error"
	case errors.As(err, &schemeTarget), errors.As(err, &write):
		prefix = "generation error"
	case errors.As(err, &exists):
		prefix = "init error"
	}
	return &ExitError{Code: ExitFailure, Message: prefix + ": " + err.Error(), Err: err}
}
