package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vk/xcbuddy/internal/dump"
	"github.com/vk/xcbuddy/internal/generator"
	"github.com/vk/xcbuddy/internal/graph"
)

// Dump writes the canonical rendering of the manifest at the configured
// path to the output writer.
func (a *App) Dump(ctx context.Context) error {
	ctx = a.context(ctx)
	a.logger.Debug("App.Dump started.", "path", a.config.Path)

	out, err := dump.Dump(ctx, a.loader, a.config.Path, dump.Format(a.config.Format))
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(a.outW, out)
	return err
}

// Resolve loads the root manifest and every project reachable from it.
func (a *App) Resolve(ctx context.Context) (*graph.Graph, error) {
	ctx = a.context(ctx)
	return graph.NewResolver(a.loader, a.config.Version).Resolve(ctx, a.config.Path)
}

// Generate resolves the graph and writes all project artifacts. It returns
// the paths of the written artifacts.
func (a *App) Generate(ctx context.Context) ([]string, error) {
	ctx = a.context(ctx)
	a.logger.Debug("App.Generate started.", "path", a.config.Path)

	g, err := a.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	a.logger.Info("Dependency graph resolved.", "projects", len(g.Projects), "targets", len(g.Targets))

	gen := generator.New(a.fs)
	written, err := gen.Generate(ctx, g, generator.Options{
		Parallelism: a.config.Parallelism,
		User:        a.config.User,
	})
	if err != nil {
		return nil, err
	}
	for _, p := range written {
		a.logger.Info("Artifact written.", "path", p)
	}
	return written, nil
}

// Graph writes the targets of the resolved graph in build order, one per
// line, each followed by its direct dependencies.
func (a *App) Graph(ctx context.Context) error {
	ctx = a.context(ctx)
	g, err := a.Resolve(ctx)
	if err != nil {
		return err
	}
	order, err := g.BuildOrder()
	if err != nil {
		return err
	}

	for _, tn := range order {
		var deps []string
		for _, e := range g.DependenciesOf(tn.Index) {
			switch e.Kind {
			case graph.EdgeTarget:
				deps = append(deps, g.Targets[e.To].Ref.String())
			case graph.EdgeExternal:
				deps = append(deps, filepath.Base(g.Externals[e.To].Path))
			}
		}
		line := tn.Ref.String()
		if len(deps) > 0 {
			line += " -> " + strings.Join(deps, ", ")
		}
		if _, err := fmt.Fprintln(a.outW, line); err != nil {
			return err
		}
	}
	return nil
}
