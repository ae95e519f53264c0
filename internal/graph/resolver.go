package graph

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vk/xcbuddy/internal/ctxlog"
	"github.com/vk/xcbuddy/internal/dag"
	"github.com/vk/xcbuddy/internal/fsutil"
	"github.com/vk/xcbuddy/internal/manifest"
	"golang.org/x/mod/semver"
)

// Resolver builds a Graph from a root directory.
type Resolver struct {
	loader ManifestLoader
	// version is the running tool version checked against required_version.
	// Non-semver values (e.g. "dev") skip the check.
	version string
}

// NewResolver creates a Resolver that loads manifests through loader.
func NewResolver(loader ManifestLoader, version string) *Resolver {
	return &Resolver{loader: loader, version: version}
}

// pending is a project directory waiting in the work-list together with the
// chain of project directories that led to it.
type pending struct {
	path  string
	chain []string
}

// Resolve loads the root manifest in rootDir and every project reachable
// from it, links all dependencies and validates the result.
func (r *Resolver) Resolve(ctx context.Context, rootDir string) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)

	root, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory %s: %w", rootDir, err)
	}
	logger.Debug("Resolve: Starting graph resolution.", "root", root)

	kind, obj, err := r.loader.Load(ctx, root)
	if err != nil {
		return nil, err
	}

	g := newGraph(root)
	g.RootKind = kind

	if r.loader.HasManifest(root, manifest.KindConfig) {
		if g.Config, err = r.loader.LoadConfig(ctx, root); err != nil {
			return nil, err
		}
		if err := r.checkVersion(g.Config); err != nil {
			return nil, err
		}
	}

	var queue []pending
	switch m := obj.(type) {
	case *manifest.Workspace:
		g.Workspace = m
		for _, p := range m.Projects {
			queue = append(queue, pending{
				path:  fsutil.Abs(m.Path, p),
				chain: []string{m.Path},
			})
		}
	case *manifest.Project:
		queue = append(queue, pending{path: m.Path})
	default:
		return nil, &RootKindError{Dir: root, Kind: kind}
	}

	// First pass: discover and load every reachable project.
	if err := r.discover(ctx, g, queue); err != nil {
		return nil, err
	}
	logger.Debug("Resolve: Project discovery complete.", "projects", len(g.Projects), "targets", len(g.Targets))

	// Second pass: link dependencies.
	if err := r.link(g); err != nil {
		return nil, err
	}
	logger.Debug("Resolve: Linking complete.", "edges", len(g.Edges), "externals", len(g.Externals))

	if err := g.dag.DetectCycles(); err != nil {
		var cycleErr *dag.CycleError
		if errors.As(err, &cycleErr) {
			refs := make([]TargetRef, len(cycleErr.Path))
			for i, key := range cycleErr.Path {
				refs[i] = g.refForKey(key)
			}
			return nil, &DependencyCycleError{Cycle: refs}
		}
		return nil, fmt.Errorf("error validating dependency graph: %w", err)
	}
	logger.Debug("Resolve: Cycle detection passed.")

	return g, nil
}

// discover drains the work-list breadth-first. Projects are registered in
// the order they are dequeued, which fixes the arena order.
func (r *Resolver) discover(ctx context.Context, g *Graph, queue []pending) error {
	queued := make(map[string]struct{}, len(queue))
	for _, item := range queue {
		queued[item.path] = struct{}{}
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		p, err := r.loader.LoadProject(ctx, item.path)
		if err != nil {
			if len(item.chain) == 0 {
				return err
			}
			return &ProjectLoadError{
				Path:  item.path,
				Chain: append(append([]string{}, item.chain...), item.path),
				Err:   err,
			}
		}
		g.addProject(p)

		chain := append(append([]string{}, item.chain...), p.Path)
		for _, t := range p.Targets {
			for _, dep := range t.Dependencies {
				if dep.Kind != manifest.DependencyProject {
					continue
				}
				path := fsutil.Abs(p.Path, dep.Path)
				if _, seen := queued[path]; seen {
					continue
				}
				queued[path] = struct{}{}
				queue = append(queue, pending{path: path, chain: chain})
			}
		}
	}
	return nil
}

func (r *Resolver) link(g *Graph) error {
	for _, pn := range g.Projects {
		p := pn.Project
		for _, ti := range pn.Targets {
			from := g.Targets[ti]
			for _, dep := range from.Target.Dependencies {
				var edge Edge
				switch dep.Kind {
				case manifest.DependencyTarget:
					to := g.Target(p.Path, dep.Target)
					if to == nil {
						return &DependencyNotFoundError{From: from.Ref, Reference: dep.String()}
					}
					edge = Edge{Kind: EdgeTarget, From: from.Index, To: to.Index}

				case manifest.DependencyProject:
					path := fsutil.Abs(p.Path, dep.Path)
					to := g.Target(path, dep.Target)
					if to == nil {
						return &DependencyNotFoundError{
							From:      from.Ref,
							Reference: fmt.Sprintf("target %q of project %s", dep.Target, path),
						}
					}
					edge = Edge{Kind: EdgeTarget, From: from.Index, To: to.Index}

				case manifest.DependencyFramework:
					ext := g.addExternal(fsutil.Abs(p.Path, dep.Path))
					edge = Edge{Kind: EdgeExternal, From: from.Index, To: ext.Index}

				default:
					return fmt.Errorf("target %s: unsupported dependency kind %d", from.Ref, dep.Kind)
				}
				if err := g.addEdge(edge); err != nil {
					return fmt.Errorf("failed to link %s: %w", from.Ref, err)
				}
			}
		}
	}
	return nil
}

func (r *Resolver) checkVersion(cfg *manifest.Config) error {
	if cfg.RequiredVersion == "" {
		return nil
	}
	path := filepath.Join(cfg.Path, manifest.KindConfig.FileName())
	required := canonical(cfg.RequiredVersion)
	if !semver.IsValid(required) {
		return &manifest.DecodeError{Path: path, Field: "required_version", Expected: "semantic version"}
	}
	current := canonical(r.version)
	if !semver.IsValid(current) {
		return nil
	}
	if semver.Compare(current, required) < 0 {
		return &VersionMismatchError{Path: path, Required: cfg.RequiredVersion, Current: r.version}
	}
	return nil
}

func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}
