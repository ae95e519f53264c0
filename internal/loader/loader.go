// Package loader locates manifest files, interprets and decodes them, and
// caches the decoded objects by absolute manifest path for the lifetime of
// one command invocation.
package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/vk/xcbuddy/internal/ctxlog"
	"github.com/vk/xcbuddy/internal/fsutil"
	"github.com/vk/xcbuddy/internal/manifest"
	"golang.org/x/sync/singleflight"
)

// Loader loads manifests through an Interpreter. It is safe for concurrent
// use: the cache is guarded by a mutex and concurrent loads of the same
// path share one interpretation.
type Loader struct {
	fs     fsutil.FileSystem
	interp manifest.Interpreter

	mu    sync.Mutex
	cache map[string]any
	group singleflight.Group
}

// New creates a Loader with an empty cache.
func New(fsys fsutil.FileSystem, interp manifest.Interpreter) *Loader {
	return &Loader{
		fs:     fsys,
		interp: interp,
		cache:  make(map[string]any),
	}
}

// Load loads the highest-priority manifest found in dir, following
// manifest.SearchOrder. It returns the manifest's kind and the decoded
// *manifest.Workspace, *manifest.Project or *manifest.Config.
func (l *Loader) Load(ctx context.Context, dir string) (manifest.Kind, any, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to resolve directory %s: %w", dir, err)
	}
	for _, kind := range manifest.SearchOrder {
		path := filepath.Join(abs, kind.FileName())
		if !l.fs.Exists(path) {
			continue
		}
		obj, err := l.loadFile(ctx, kind, path)
		if err != nil {
			return 0, nil, err
		}
		return kind, obj, nil
	}
	return 0, nil, &manifest.NotFoundError{Dir: abs}
}

// LoadProject loads the Project manifest in dir.
func (l *Loader) LoadProject(ctx context.Context, dir string) (*manifest.Project, error) {
	obj, err := l.loadKind(ctx, manifest.KindProject, dir)
	if err != nil {
		return nil, err
	}
	return obj.(*manifest.Project), nil
}

// LoadWorkspace loads the Workspace manifest in dir.
func (l *Loader) LoadWorkspace(ctx context.Context, dir string) (*manifest.Workspace, error) {
	obj, err := l.loadKind(ctx, manifest.KindWorkspace, dir)
	if err != nil {
		return nil, err
	}
	return obj.(*manifest.Workspace), nil
}

// LoadConfig loads the Config manifest in dir.
func (l *Loader) LoadConfig(ctx context.Context, dir string) (*manifest.Config, error) {
	obj, err := l.loadKind(ctx, manifest.KindConfig, dir)
	if err != nil {
		return nil, err
	}
	return obj.(*manifest.Config), nil
}

// HasManifest reports whether dir holds a manifest of the given kind.
func (l *Loader) HasManifest(dir string, kind manifest.Kind) bool {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	return l.fs.Exists(filepath.Join(abs, kind.FileName()))
}

func (l *Loader) loadKind(ctx context.Context, kind manifest.Kind, dir string) (any, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory %s: %w", dir, err)
	}
	path := filepath.Join(abs, kind.FileName())
	if !l.fs.Exists(path) {
		return nil, &manifest.NotFoundError{Dir: abs, Kind: kind}
	}
	return l.loadFile(ctx, kind, path)
}

func (l *Loader) cached(path string) (any, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	obj, ok := l.cache[path]
	return obj, ok
}

// loadFile returns the cached object for path or interprets and decodes the
// file. Failed loads are not cached.
func (l *Loader) loadFile(ctx context.Context, kind manifest.Kind, path string) (any, error) {
	logger := ctxlog.FromContext(ctx)
	if obj, ok := l.cached(path); ok {
		logger.Debug("Manifest cache hit.", "path", path)
		return obj, nil
	}

	obj, err, shared := l.group.Do(path, func() (any, error) {
		if obj, ok := l.cached(path); ok {
			return obj, nil
		}

		logger.Debug("Loading manifest.", "path", path, "kind", kind.String())
		src, err := l.fs.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
		}
		doc, err := l.interp.Interpret(ctx, path, src)
		if err != nil {
			return nil, err
		}
		obj, err := manifest.Decode(doc, kind)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		l.cache[path] = obj
		l.mu.Unlock()
		return obj, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Debug("Manifest load shared with a concurrent caller.", "path", path)
	}
	return obj, nil
}
