package graph

import (
	"fmt"
	"strings"

	"github.com/vk/xcbuddy/internal/manifest"
)

// RootKindError is returned when the root directory holds neither a
// workspace nor a project manifest.
type RootKindError struct {
	Dir  string
	Kind manifest.Kind
}

func (e *RootKindError) Error() string {
	return fmt.Sprintf("cannot resolve %s: found a %s manifest, expected a workspace or project", e.Dir, e.Kind)
}

// VersionMismatchError is returned when the running tool is older than the
// version a Config manifest requires.
type VersionMismatchError struct {
	Path     string
	Required string
	Current  string
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("%s requires version %s or newer, running %s", e.Path, e.Required, e.Current)
}

// DependencyNotFoundError is returned when a dependency reference does not
// resolve to a target.
type DependencyNotFoundError struct {
	From      TargetRef
	Reference string
}

func (e *DependencyNotFoundError) Error() string {
	return fmt.Sprintf("target %s (%s): dependency on %s not found", e.From, e.From.ProjectPath, e.Reference)
}

// ProjectLoadError is returned when a transitively referenced project fails
// to load. Chain lists the project directories from the root to Path.
type ProjectLoadError struct {
	Path  string
	Chain []string
	Err   error
}

func (e *ProjectLoadError) Error() string {
	return fmt.Sprintf("failed to load project %s (referenced via %s): %v", e.Path, strings.Join(e.Chain, " -> "), e.Err)
}

func (e *ProjectLoadError) Unwrap() error { return e.Err }

// DependencyCycleError is returned when targets depend on each other in a
// cycle. Cycle starts and ends with the same target.
type DependencyCycleError struct {
	Cycle []TargetRef
}

func (e *DependencyCycleError) Error() string {
	names := make([]string, len(e.Cycle))
	for i, ref := range e.Cycle {
		names[i] = ref.String()
	}
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(names, " -> "))
}
