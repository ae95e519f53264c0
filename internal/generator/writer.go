package generator

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vk/xcbuddy/internal/ctxlog"
	"github.com/vk/xcbuddy/internal/fsutil"
)

const stagingPattern = ".xcbuddy-staging-*"

// staged is a bundle written into its staging directory.
type staged struct {
	target  string
	staging string
	path    string
	backup  string
}

// writer places rendered bundles on disk. Every bundle is first written
// into a staging directory next to its destination; only when all of them
// are staged are they swapped into place. A failure at any point restores
// the previous artifacts and removes the staging directories.
type writer struct {
	fs fsutil.FileSystem
}

func (w *writer) write(ctx context.Context, bundles []bundle) ([]string, error) {
	logger := ctxlog.FromContext(ctx)

	sort.Slice(bundles, func(i, j int) bool { return bundles[i].Path < bundles[j].Path })

	var all []*staged
	cleanup := func() {
		for _, s := range all {
			if err := w.fs.RemoveAll(s.staging); err != nil {
				logger.Warn("Failed to remove staging directory.", "path", s.staging, "error", err)
			}
		}
	}

	for _, b := range bundles {
		s, err := w.stage(b)
		if s != nil {
			all = append(all, s)
		}
		if err != nil {
			cleanup()
			return nil, err
		}
	}
	logger.Debug("Artifacts staged.", "count", len(all))

	var swapped []*staged
	rollback := func() {
		for i := len(swapped) - 1; i >= 0; i-- {
			s := swapped[i]
			if err := w.fs.RemoveAll(s.target); err != nil {
				logger.Warn("Failed to remove generated artifact during rollback.", "path", s.target, "error", err)
			}
			if s.backup == "" {
				continue
			}
			if err := w.fs.Rename(s.backup, s.target); err != nil {
				logger.Warn("Failed to restore artifact during rollback.", "path", s.target, "error", err)
			}
		}
	}

	for _, s := range all {
		if w.fs.Exists(s.target) {
			backup := filepath.Join(s.staging, "backup")
			if err := w.fs.Rename(s.target, backup); err != nil {
				rollback()
				cleanup()
				return nil, &WriteError{Path: s.target, Err: err}
			}
			s.backup = backup
		}
		if err := w.fs.Rename(s.path, s.target); err != nil {
			if s.backup != "" {
				if restoreErr := w.fs.Rename(s.backup, s.target); restoreErr != nil {
					logger.Warn("Failed to restore artifact.", "path", s.target, "error", restoreErr)
				}
			}
			rollback()
			cleanup()
			return nil, &WriteError{Path: s.target, Err: err}
		}
		swapped = append(swapped, s)
	}
	cleanup()

	written := make([]string, 0, len(all))
	for _, s := range all {
		written = append(written, s.target)
	}
	return written, nil
}

// stage writes one bundle into a fresh staging directory. The returned
// staged value is non-nil whenever a staging directory was created, so the
// caller can remove it even on error.
func (w *writer) stage(b bundle) (*staged, error) {
	parent := filepath.Dir(b.Path)
	if err := w.fs.MkdirAll(parent, 0o755); err != nil {
		return nil, &WriteError{Path: parent, Err: err}
	}
	dir, err := w.fs.MkdirTemp(parent, stagingPattern)
	if err != nil {
		return nil, &WriteError{Path: parent, Err: err}
	}
	s := &staged{target: b.Path, staging: dir, path: filepath.Join(dir, filepath.Base(b.Path))}

	names := make([]string, 0, len(b.Files))
	for name := range b.Files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		dst := filepath.Join(s.path, filepath.FromSlash(name))
		if !within(s.path, dst) {
			return s, &WriteError{Path: filepath.Join(b.Path, filepath.FromSlash(name)), Err: ErrOutsideBundle}
		}
		if err := w.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return s, &WriteError{Path: filepath.Join(b.Path, filepath.FromSlash(name)), Err: err}
		}
		if err := w.fs.WriteFile(dst, b.Files[name], 0o644); err != nil {
			return s, &WriteError{Path: filepath.Join(b.Path, filepath.FromSlash(name)), Err: err}
		}
	}
	return s, nil
}

// within reports whether path lies strictly inside dir.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." || filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
