package app

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/vk/xcbuddy/internal/ctxlog"
	"github.com/vk/xcbuddy/internal/manifest"
)

// AlreadyExistsError is returned by Init when the directory already holds a
// project manifest.
type AlreadyExistsError struct {
	Path string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s already exists", e.Path)
}

var scaffold = template.Must(template.New("Project.hcl").Funcs(sprig.TxtFuncMap()).Parse(`project {{ quote .Name }} {
  target {{ quote .Name }} {
    platform  = "ios"
    product   = "app"
    bundle_id = {{ printf "com.example.%s" (.Name | lower | replace " " "-") | quote }}

    build_phase "sources" {
      files = ["Sources/**/*.swift"]
    }
    build_phase "resources" {
      files = ["Resources/**"]
    }
  }

  scheme {{ quote .Name }} {
    build_action {
      targets = [{{ quote .Name }}]
    }
  }
}
`))

// Init writes a starter project manifest into the configured directory.
// An empty name is inferred from the directory name. It returns the path
// of the written manifest.
func (a *App) Init(ctx context.Context, name string) (string, error) {
	logger := ctxlog.FromContext(a.context(ctx))

	dir, err := filepath.Abs(a.config.Path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve directory %s: %w", a.config.Path, err)
	}
	path := filepath.Join(dir, manifest.KindProject.FileName())
	if a.fs.Exists(path) {
		return "", &AlreadyExistsError{Path: path}
	}
	if name == "" {
		name = filepath.Base(dir)
	}

	var buf bytes.Buffer
	if err := scaffold.Execute(&buf, struct{ Name string }{Name: name}); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", path, err)
	}
	if err := a.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if err := a.fs.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Info("Project manifest created.", "path", path, "name", name)
	return path, nil
}
