package fsutil

import (
	"bytes"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	gitignore "github.com/denormal/go-gitignore"
)

// packageExtensions are directories Xcode treats as a single file. They are
// matched as a whole and never descended into.
var packageExtensions = map[string]struct{}{
	".xcassets":     {},
	".bundle":       {},
	".framework":    {},
	".xcframework":  {},
	".xcdatamodeld": {},
	".scnassets":    {},
	".playground":   {},
}

// generatedExtensions are artifact directories this tool writes next to
// manifests. They are never part of a target's files.
var generatedExtensions = map[string]struct{}{
	".xcodeproj":   {},
	".xcworkspace": {},
}

// Finder expands build phase file patterns relative to a project directory.
// Patterns use .gitignore syntax; a negated pattern ("!pattern") excludes
// paths matched by earlier patterns. Paths ignored by the project's own
// .gitignore are never returned.
type Finder struct {
	fs      FileSystem
	root    string
	ignored gitignore.GitIgnore
}

// NewFinder creates a Finder rooted at root, loading root/.gitignore when
// present.
func NewFinder(fsys FileSystem, root string) (*Finder, error) {
	f := &Finder{fs: fsys, root: filepath.Clean(root)}

	ignorePath := filepath.Join(f.root, ".gitignore")
	if fsys.Exists(ignorePath) {
		data, err := fsys.ReadFile(ignorePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read .gitignore: %w", err)
		}
		f.ignored = gitignore.New(bytes.NewReader(data), f.root, nil)
	}
	return f, nil
}

// Find returns the slash-separated paths, relative to the root, of every file
// matched by patterns. The result is sorted and free of duplicates so that
// generated output does not depend on directory listing order.
func (f *Finder) Find(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	matcher := gitignore.New(strings.NewReader(strings.Join(patterns, "\n")), f.root, nil)

	seen := make(map[string]struct{})
	var matchedDirs []string
	err := f.fs.WalkDir(f.root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == f.root {
			return nil
		}

		rel, err := filepath.Rel(f.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		isDir := entry.IsDir()

		if strings.HasPrefix(entry.Name(), ".") {
			if isDir {
				return filepath.SkipDir
			}
			return nil
		}
		if _, generated := generatedExtensions[filepath.Ext(entry.Name())]; generated && isDir {
			return filepath.SkipDir
		}
		if f.ignored != nil {
			if m := f.ignored.Relative(rel, isDir); m != nil && m.Ignore() {
				if isDir {
					return filepath.SkipDir
				}
				return nil
			}
		}

		m := matcher.Relative(rel, isDir)
		selected := m != nil && m.Ignore()
		if m == nil && underAny(rel, matchedDirs) {
			selected = true
		}

		if isDir {
			if _, pkg := packageExtensions[filepath.Ext(entry.Name())]; pkg {
				if selected {
					seen[rel] = struct{}{}
				}
				return filepath.SkipDir
			}
			if m != nil && m.Ignore() {
				matchedDirs = append(matchedDirs, rel)
			}
			return nil
		}

		if selected {
			seen[rel] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to expand file patterns in %s: %w", f.root, err)
	}

	files := make([]string, 0, len(seen))
	for rel := range seen {
		files = append(files, rel)
	}
	sort.Strings(files)
	return files, nil
}

func underAny(rel string, dirs []string) bool {
	for _, dir := range dirs {
		if strings.HasPrefix(rel, dir+"/") {
			return true
		}
	}
	return false
}
