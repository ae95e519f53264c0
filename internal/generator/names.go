package generator

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/vk/xcbuddy/internal/graph"
)

const projectExt = ".xcodeproj"

// nameData is what the project_name template sees.
type nameData struct {
	Name string
	Path string
}

// bundleNames computes the bundle name of every project in g, keyed by
// project path. The Config manifest's project_name template, when set,
// decides the name.
func bundleNames(g *graph.Graph) (map[string]string, error) {
	var tmpl *template.Template
	if g.Config != nil && g.Config.ProjectName != "" {
		var err error
		tmpl, err = template.New("project_name").Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(g.Config.ProjectName)
		if err != nil {
			return nil, fmt.Errorf("invalid project_name template in %s: %w", g.Config.Path, err)
		}
	}

	names := make(map[string]string, len(g.Projects))
	for _, pn := range g.Projects {
		p := pn.Project
		name := p.Name
		if tmpl != nil {
			var buf bytes.Buffer
			if err := tmpl.Execute(&buf, nameData{Name: p.Name, Path: p.Path}); err != nil {
				return nil, fmt.Errorf("failed to evaluate project_name for %s: %w", p.Path, err)
			}
			name = strings.TrimSpace(buf.String())
		}
		if name == "" || strings.ContainsRune(name, filepath.Separator) {
			return nil, fmt.Errorf("project_name for %s evaluated to invalid bundle name %q", p.Path, name)
		}
		names[p.Path] = name + projectExt
	}
	return names, nil
}

// scopeOf is the ID scope of a project: its path relative to the graph root.
func scopeOf(g *graph.Graph, projectPath string) string {
	rel, err := filepath.Rel(g.Root, projectPath)
	if err != nil {
		return filepath.ToSlash(projectPath)
	}
	return filepath.ToSlash(rel)
}
