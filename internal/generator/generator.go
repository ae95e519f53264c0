package generator

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vk/xcbuddy/internal/ctxlog"
	"github.com/vk/xcbuddy/internal/fsutil"
	"github.com/vk/xcbuddy/internal/graph"
	"github.com/vk/xcbuddy/internal/manifest"
	"golang.org/x/sync/errgroup"
)

const workspaceExt = ".xcworkspace"

// Generator turns a resolved graph into project artifacts on disk.
type Generator struct {
	fs        fsutil.FileSystem
	templates *templates
}

// New creates a Generator writing through fsys.
func New(fsys fsutil.FileSystem) *Generator {
	return &Generator{fs: fsys, templates: newTemplates()}
}

// Generate renders one project bundle per project of g plus a workspace,
// then writes them. It returns the absolute paths of the written artifacts,
// sorted. On error nothing on disk has changed.
func (gen *Generator) Generate(ctx context.Context, g *graph.Graph, opts Options) ([]string, error) {
	opts = opts.withDefaults()
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Generation started.", "root", g.Root, "projects", len(g.Projects), "parallelism", opts.Parallelism)

	names, err := bundleNames(g)
	if err != nil {
		return nil, err
	}

	// Results are stored by project index so completion order does not
	// affect the output.
	bundles := make([]bundle, len(g.Projects))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Parallelism)
	for i, pn := range g.Projects {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			b, err := gen.renderProject(g, pn, names, opts)
			if err != nil {
				return err
			}
			logger.Debug("Project rendered.", "path", b.Path, "files", len(b.Files))
			bundles[i] = b
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	ws, err := gen.renderWorkspace(g, names, opts)
	if err != nil {
		return nil, err
	}
	bundles = append(bundles, ws)

	written, err := (&writer{fs: gen.fs}).write(ctx, bundles)
	if err != nil {
		return nil, err
	}
	logger.Debug("Generation complete.", "artifacts", len(written))
	return written, nil
}

func (gen *Generator) renderProject(g *graph.Graph, pn *graph.ProjectNode, names map[string]string, opts Options) (bundle, error) {
	p := pn.Project
	builder, err := newProjectBuilder(gen.fs, g, pn, names)
	if err != nil {
		return bundle{}, err
	}
	pbxproj, err := builder.build()
	if err != nil {
		return bundle{}, err
	}

	out := bundle{
		Path:  filepath.Join(p.Path, names[p.Path]),
		Files: map[string][]byte{"project.pbxproj": pbxproj},
	}
	if err := gen.renderSchemes(g, out.Files, p.Schemes, opts, func(s *manifest.Scheme) ([]*graph.TargetNode, error) {
		return projectSchemeTargets(g, p, s)
	}, containerIn(g, names, p.Path)); err != nil {
		return bundle{}, err
	}
	return out, nil
}

// renderWorkspace renders the workspace declared by the root manifest. A
// project root gets a workspace named after its bundle that holds the
// project and every project it depends on.
func (gen *Generator) renderWorkspace(g *graph.Graph, names map[string]string, opts Options) (bundle, error) {
	var (
		name    string
		schemes []*manifest.Scheme
	)
	switch {
	case g.Workspace != nil:
		name = g.Workspace.Name
		schemes = g.Workspace.Schemes
	case g.RootProject() != nil:
		name = strings.TrimSuffix(names[g.RootProject().Project.Path], projectExt)
	default:
		return bundle{}, fmt.Errorf("graph rooted at %s has no workspace or root project", g.Root)
	}

	locations := make([]string, 0, len(g.Projects))
	for _, pn := range g.Projects {
		locations = append(locations, relPath(g.Root, filepath.Join(pn.Project.Path, names[pn.Project.Path])))
	}
	contents, err := gen.templates.renderWorkspace(locations)
	if err != nil {
		return bundle{}, err
	}

	out := bundle{
		Path:  filepath.Join(g.Root, name+workspaceExt),
		Files: map[string][]byte{"contents.xcworkspacedata": contents},
	}
	if err := gen.renderSchemes(g, out.Files, schemes, opts, func(s *manifest.Scheme) ([]*graph.TargetNode, error) {
		return workspaceSchemeTargets(g, s)
	}, containerIn(g, names, g.Root)); err != nil {
		return bundle{}, err
	}
	return out, nil
}

func (gen *Generator) renderSchemes(
	g *graph.Graph,
	files map[string][]byte,
	schemes []*manifest.Scheme,
	opts Options,
	resolve func(*manifest.Scheme) ([]*graph.TargetNode, error),
	container func(*graph.TargetNode) string,
) error {
	for _, s := range schemes {
		targets, err := resolve(s)
		if err != nil {
			return err
		}
		data, err := gen.templates.renderScheme(g, targets, container)
		if err != nil {
			return fmt.Errorf("scheme %q: %w", s.Name, err)
		}
		files[schemeFile(s, opts.User)] = data
	}
	return nil
}
