package generator

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/vk/xcbuddy/internal/graph"
	"github.com/vk/xcbuddy/internal/manifest"
)

const buildableReferenceTemplate = `<BuildableReference
   BuildableIdentifier = "primary"
   BlueprintIdentifier = "{{ .BlueprintID }}"
   BuildableName = "{{ xmlattr .BuildableName }}"
   BlueprintName = "{{ xmlattr .Name }}"
   ReferencedContainer = "{{ xmlattr .Container }}">
</BuildableReference>`

const schemeTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<Scheme
   LastUpgradeVersion = "1500"
   version = "1.7">
   <BuildAction
      parallelizeBuildables = "YES"
      buildImplicitDependencies = "YES">
      <BuildActionEntries>
{{- range .Build }}
         <BuildActionEntry
            buildForTesting = "YES"
            buildForRunning = "YES"
            buildForProfiling = "YES"
            buildForArchiving = "YES"
            buildForAnalyzing = "YES">
{{ buildableReference . | indent 12 }}
         </BuildActionEntry>
{{- end }}
      </BuildActionEntries>
   </BuildAction>
   <TestAction
      buildConfiguration = "Debug"
      selectedDebuggerIdentifier = "Xcode.DebuggerFoundation.Debugger.LLDB"
      selectedLauncherIdentifier = "Xcode.DebuggerFoundation.Launcher.LLDB"
      shouldUseLaunchSchemeArgsEnv = "YES">
      <Testables>
{{- range .Tests }}
         <TestableReference
            skipped = "NO">
{{ buildableReference . | indent 12 }}
         </TestableReference>
{{- end }}
      </Testables>
   </TestAction>
   <LaunchAction
      buildConfiguration = "Debug"
      selectedDebuggerIdentifier = "Xcode.DebuggerFoundation.Debugger.LLDB"
      selectedLauncherIdentifier = "Xcode.DebuggerFoundation.Launcher.LLDB"
      launchStyle = "0"
      useCustomWorkingDirectory = "NO"
      ignoresPersistentStateOnLaunch = "NO"
      debugDocumentVersioning = "YES"
      debugServiceExtension = "internal"
      allowLocationSimulation = "YES">
{{- with .Launch }}
      <BuildableProductRunnable
         runnableDebuggingMode = "0">
{{ buildableReference . | indent 9 }}
      </BuildableProductRunnable>
{{- end }}
   </LaunchAction>
   <ProfileAction
      buildConfiguration = "Release"
      shouldUseLaunchSchemeArgsEnv = "YES"
      savedToolIdentifier = ""
      useCustomWorkingDirectory = "NO"
      debugDocumentVersioning = "YES">
   </ProfileAction>
   <AnalyzeAction
      buildConfiguration = "Debug">
   </AnalyzeAction>
   <ArchiveAction
      buildConfiguration = "Release"
      revealArchiveInOrganizer = "YES">
   </ArchiveAction>
</Scheme>
`

const workspaceTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<Workspace
   version = "1.0">
{{- range . }}
   <FileRef
      location = "group:{{ xmlattr . }}">
   </FileRef>
{{- end }}
</Workspace>
`

// templates holds the parsed artifact templates. They are safe for
// concurrent use once parsed.
type templates struct {
	scheme    *template.Template
	workspace *template.Template
	reference *template.Template
}

func newTemplates() *templates {
	t := &templates{}
	funcs := sprig.TxtFuncMap()
	funcs["xmlattr"] = xmlAttr
	funcs["buildableReference"] = func(e schemeEntry) (string, error) {
		var buf bytes.Buffer
		if err := t.reference.Execute(&buf, e); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	t.reference = template.Must(template.New("reference").Funcs(funcs).Parse(buildableReferenceTemplate))
	t.scheme = template.Must(template.New("scheme").Funcs(funcs).Parse(schemeTemplate))
	t.workspace = template.Must(template.New("workspace").Funcs(funcs).Parse(workspaceTemplate))
	return t
}

func xmlAttr(s string) (string, error) {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// schemeEntry is one buildable of a scheme.
type schemeEntry struct {
	BlueprintID   string
	BuildableName string
	Name          string
	Container     string
}

type schemeData struct {
	Build  []schemeEntry
	Tests  []schemeEntry
	Launch *schemeEntry
}

// schemeFile returns the path of a scheme inside its bundle.
func schemeFile(s *manifest.Scheme, user string) string {
	if s.Shared {
		return "xcshareddata/xcschemes/" + s.Name + ".xcscheme"
	}
	return "xcuserdata/" + user + ".xcuserdatad/xcschemes/" + s.Name + ".xcscheme"
}

// renderScheme renders a scheme building targets in order. container maps
// a target to the container path Xcode resolves it in.
func (t *templates) renderScheme(g *graph.Graph, targets []*graph.TargetNode, container func(*graph.TargetNode) string) ([]byte, error) {
	var data schemeData
	for _, tn := range targets {
		project := g.Projects[tn.Project].Project
		entry := schemeEntry{
			BlueprintID:   idSpace{scope: scopeOf(g, project.Path)}.id("PBXNativeTarget", tn.Target.Name),
			BuildableName: productFileName(tn.Target),
			Name:          tn.Target.Name,
			Container:     "container:" + container(tn),
		}
		data.Build = append(data.Build, entry)
		if tn.Target.Product.IsTestBundle() {
			data.Tests = append(data.Tests, entry)
		}
		if data.Launch == nil && tn.Target.Product == manifest.ProductApp {
			launch := entry
			data.Launch = &launch
		}
	}

	var buf bytes.Buffer
	if err := t.scheme.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render scheme: %w", err)
	}
	return buf.Bytes(), nil
}

func (t *templates) renderWorkspace(locations []string) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.workspace.Execute(&buf, locations); err != nil {
		return nil, fmt.Errorf("failed to render workspace: %w", err)
	}
	return buf.Bytes(), nil
}

// projectSchemeTargets resolves the targets of a project scheme within the
// project.
func projectSchemeTargets(g *graph.Graph, p *manifest.Project, s *manifest.Scheme) ([]*graph.TargetNode, error) {
	if s.BuildAction == nil {
		return nil, nil
	}
	targets := make([]*graph.TargetNode, 0, len(s.BuildAction.Targets))
	for _, name := range s.BuildAction.Targets {
		tn := g.Target(p.Path, name)
		if tn == nil {
			return nil, &SchemeTargetNotFoundError{Scheme: s.Name, Target: name, Path: p.Path}
		}
		targets = append(targets, tn)
	}
	return targets, nil
}

// workspaceSchemeTargets resolves the targets of a workspace scheme across
// every project of the graph. A plain name resolves to the first target
// with that name in discovery order; "Project/Target" names the project.
func workspaceSchemeTargets(g *graph.Graph, s *manifest.Scheme) ([]*graph.TargetNode, error) {
	if s.BuildAction == nil {
		return nil, nil
	}
	targets := make([]*graph.TargetNode, 0, len(s.BuildAction.Targets))
	for _, name := range s.BuildAction.Targets {
		tn := findTarget(g, name)
		if tn == nil {
			return nil, &SchemeTargetNotFoundError{Scheme: s.Name, Target: name, Path: g.Root}
		}
		targets = append(targets, tn)
	}
	return targets, nil
}

func findTarget(g *graph.Graph, name string) *graph.TargetNode {
	projectName, targetName := "", name
	if i := strings.LastIndex(name, "/"); i >= 0 {
		projectName, targetName = name[:i], name[i+1:]
	}
	for _, pn := range g.Projects {
		if projectName != "" && pn.Project.Name != projectName {
			continue
		}
		if tn := g.Target(pn.Project.Path, targetName); tn != nil {
			return tn
		}
	}
	return nil
}

// containerIn returns a function locating a target's project bundle relative
// to dir.
func containerIn(g *graph.Graph, names map[string]string, dir string) func(*graph.TargetNode) string {
	return func(tn *graph.TargetNode) string {
		project := g.Projects[tn.Project].Project
		return relPath(dir, filepath.Join(project.Path, names[project.Path]))
	}
}
