package testutil

import (
	"errors"
	"io/fs"
	"strings"
	"sync"

	"github.com/vk/xcbuddy/internal/fsutil"
)

// ErrInjected is the error returned by FailingFS for the failing operation.
var ErrInjected = errors.New("injected write failure")

// FailingFS wraps the OS filesystem and fails the first write or rename
// whose destination path ends with FailSuffix. Every other operation,
// including later matching ones, goes to disk.
type FailingFS struct {
	*fsutil.OSFileSystem

	// FailSuffix selects the path to fail on.
	FailSuffix string
	// FailRename fails the rename into place instead of the write.
	FailRename bool

	mu       sync.Mutex
	failures int
}

// NewFailingFS creates a FailingFS that fails on paths ending with suffix.
func NewFailingFS(suffix string) *FailingFS {
	return &FailingFS{OSFileSystem: fsutil.NewOSFileSystem(), FailSuffix: suffix}
}

// Failures returns how many operations were failed.
func (f *FailingFS) Failures() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failures
}

func (f *FailingFS) WriteFile(path string, data []byte, perm fs.FileMode) error {
	if !f.FailRename && f.fail(path) {
		return &fs.PathError{Op: "write", Path: path, Err: ErrInjected}
	}
	return f.OSFileSystem.WriteFile(path, data, perm)
}

func (f *FailingFS) Rename(oldpath, newpath string) error {
	if f.FailRename && f.fail(newpath) {
		return &fs.PathError{Op: "rename", Path: newpath, Err: ErrInjected}
	}
	return f.OSFileSystem.Rename(oldpath, newpath)
}

func (f *FailingFS) fail(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 || !strings.HasSuffix(path, f.FailSuffix) {
		return false
	}
	f.failures++
	return true
}
