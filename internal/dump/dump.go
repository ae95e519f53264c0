package dump

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/xcbuddy/internal/ctxlog"
	"github.com/vk/xcbuddy/internal/manifest"
)

// Format selects the output syntax.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. The empty string means JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid format %q: must be 'json' or 'yaml'", s)
	}
}

// Loader loads the manifest of a directory.
type Loader interface {
	Load(ctx context.Context, dir string) (manifest.Kind, any, error)
}

// Dump loads the manifest in dir and renders it. Load errors are returned
// unchanged.
func Dump(ctx context.Context, l Loader, dir string, format Format) (string, error) {
	logger := ctxlog.FromContext(ctx)

	kind, obj, err := l.Load(ctx, dir)
	if err != nil {
		return "", err
	}
	logger.Debug("Dumping manifest.", "dir", dir, "kind", kind.String(), "format", string(format))

	v, err := Encode(obj)
	if err != nil {
		return "", err
	}
	return Render(v, format)
}

// Render writes v in the given format.
func Render(v *manifest.Value, format Format) (string, error) {
	switch format {
	case FormatYAML:
		return renderYAML(v)
	case "", FormatJSON:
		return renderJSON(v), nil
	default:
		return "", fmt.Errorf("invalid format %q", format)
	}
}
