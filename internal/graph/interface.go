package graph

import (
	"context"

	"github.com/vk/xcbuddy/internal/manifest"
)

// ManifestLoader is the subset of loader.Loader the resolver depends on.
type ManifestLoader interface {
	Load(ctx context.Context, dir string) (manifest.Kind, any, error)
	LoadProject(ctx context.Context, dir string) (*manifest.Project, error)
	LoadConfig(ctx context.Context, dir string) (*manifest.Config, error)
	HasManifest(dir string, kind manifest.Kind) bool
}
