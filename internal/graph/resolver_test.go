package graph_test

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/xcbuddy/internal/fsutil"
	"github.com/vk/xcbuddy/internal/graph"
	"github.com/vk/xcbuddy/internal/hcl"
	"github.com/vk/xcbuddy/internal/loader"
	"github.com/vk/xcbuddy/internal/manifest"
	"github.com/vk/xcbuddy/internal/testutil"
)

// target renders a target block; deps are raw dependency block bodies.
func target(name, product string, deps ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  target %q {\n    platform  = \"ios\"\n    product   = %q\n    bundle_id = \"com.example.%s\"\n", name, product, strings.ToLower(name))
	for _, d := range deps {
		fmt.Fprintf(&b, "    dependency {\n      %s\n    }\n", d)
	}
	b.WriteString("  }\n")
	return b.String()
}

func project(name string, targets ...string) string {
	return fmt.Sprintf("project %q {\n%s}\n", name, strings.Join(targets, ""))
}

func resolve(t *testing.T, root string, version string) (*graph.Graph, error) {
	t.Helper()
	ctx, _ := testutil.Context(t)
	l := loader.New(fsutil.NewOSFileSystem(), hcl.NewInterpreter())
	return graph.NewResolver(l, version).Resolve(ctx, root)
}

func TestResolve_DeduplicatesProjectsByPath(t *testing.T) {
	root := testutil.Workspace(t, map[string]string{
		"Workspace.hcl": `workspace "Suite" { projects = ["App", "Tests"] }`,
		"App/Project.hcl": project("App",
			target("App", "app", `project = "../Core"
      target  = "Core"`),
		),
		"Tests/Project.hcl": project("Tests",
			target("AppTests", "unit_tests", `project = "../Core"
      target  = "Core"`),
		),
		"Core/Project.hcl": project("Core", target("Core", "framework")),
	})

	g, err := resolve(t, root, "dev")
	require.NoError(t, err)

	require.Len(t, g.Projects, 3)
	assert.Equal(t, manifest.KindWorkspace, g.RootKind)
	assert.Equal(t, "Suite", g.Workspace.Name)

	core := g.Project(filepath.Join(root, "Core"))
	require.NotNil(t, core)

	app := g.Target(filepath.Join(root, "App"), "App")
	tests := g.Target(filepath.Join(root, "Tests"), "AppTests")
	require.NotNil(t, app)
	require.NotNil(t, tests)

	appDeps := g.DependenciesOf(app.Index)
	testDeps := g.DependenciesOf(tests.Index)
	require.Len(t, appDeps, 1)
	require.Len(t, testDeps, 1)
	assert.Equal(t, appDeps[0].To, testDeps[0].To)

	coreTarget := g.Targets[appDeps[0].To]
	assert.Same(t, core.Project, g.Projects[coreTarget.Project].Project)
	assert.Same(t, core.Project.Targets[0], coreTarget.Target)
}

func TestResolve_Diamond(t *testing.T) {
	root := testutil.Workspace(t, map[string]string{
		"Project.hcl": project("App",
			target("A", "app", `target = "B"`, `target = "C"`),
			target("B", "framework", `project = "Shared"
      target  = "D"`),
			target("C", "framework", `project = "./Shared/"
      target  = "D"`),
		),
		"Shared/Project.hcl": project("Shared", target("D", "library")),
	})

	g, err := resolve(t, root, "dev")
	require.NoError(t, err)

	require.Len(t, g.Projects, 2)
	require.Len(t, g.Targets, 4)

	order, err := g.BuildOrder()
	require.NoError(t, err)
	names := make([]string, len(order))
	for i, tn := range order {
		names[i] = tn.Ref.String()
	}
	assert.Equal(t, []string{"Shared/D", "App/B", "App/C", "App/A"}, names)
}

func TestResolve_Cycle(t *testing.T) {
	root := testutil.Workspace(t, map[string]string{
		"Project.hcl": project("App",
			target("A", "framework", `target = "B"`),
			target("B", "framework", `target = "A"`),
		),
	})

	_, err := resolve(t, root, "dev")
	require.Error(t, err)

	var cycleErr *graph.DependencyCycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, "dependency cycle detected: App/A -> App/B -> App/A", err.Error())
	require.Len(t, cycleErr.Cycle, 3)
	assert.Equal(t, root, cycleErr.Cycle[0].ProjectPath)
}

func TestResolve_CycleAcrossProjects(t *testing.T) {
	root := testutil.Workspace(t, map[string]string{
		"App/Project.hcl": project("App", target("App", "app", `project = "../Kit"
      target  = "Kit"`)),
		"Kit/Project.hcl": project("Kit", target("Kit", "framework", `project = "../App"
      target  = "App"`)),
	})

	_, err := resolve(t, filepath.Join(root, "App"), "dev")
	var cycleErr *graph.DependencyCycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, "dependency cycle detected: App/App -> Kit/Kit -> App/App", err.Error())
}

func TestResolve_DependencyNotFound(t *testing.T) {
	testCases := []struct {
		name string
		deps string
		want string
	}{
		{
			name: "same project",
			deps: `target = "Missing"`,
			want: `dependency on target "Missing" not found`,
		},
		{
			name: "other project",
			deps: `project = "Kit"
      target  = "Missing"`,
			want: `dependency on target "Missing" of project`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root := testutil.Workspace(t, map[string]string{
				"Project.hcl":     project("App", target("App", "app", tc.deps)),
				"Kit/Project.hcl": project("Kit", target("Kit", "framework")),
			})

			_, err := resolve(t, root, "dev")
			var notFound *graph.DependencyNotFoundError
			require.ErrorAs(t, err, &notFound)
			assert.Equal(t, "App/App", notFound.From.String())
			assert.Contains(t, err.Error(), tc.want)
			assert.Contains(t, err.Error(), root)
		})
	}
}

func TestResolve_ProjectLoadErrorCarriesChain(t *testing.T) {
	root := testutil.Workspace(t, map[string]string{
		"App/Project.hcl": project("App", target("App", "app", `project = "../Kit"
      target  = "Kit"`)),
		"Kit/Project.hcl": project("Kit", target("Kit", "framework", `project = "../Broken"
      target  = "Broken"`)),
		"Broken/Project.hcl": `project "Broken" {`,
	})

	_, err := resolve(t, filepath.Join(root, "App"), "dev")
	var loadErr *graph.ProjectLoadError
	require.ErrorAs(t, err, &loadErr)

	assert.Equal(t, filepath.Join(root, "Broken"), loadErr.Path)
	assert.Equal(t, []string{
		filepath.Join(root, "App"),
		filepath.Join(root, "Kit"),
		filepath.Join(root, "Broken"),
	}, loadErr.Chain)

	var syntaxErr *manifest.SyntaxError
	assert.ErrorAs(t, err, &syntaxErr)
}

func TestResolve_MissingProjectDirectory(t *testing.T) {
	root := testutil.Workspace(t, map[string]string{
		"Workspace.hcl": `workspace "Suite" { projects = ["Gone"] }`,
	})

	_, err := resolve(t, root, "dev")
	var loadErr *graph.ProjectLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.True(t, manifest.IsNotFound(err))
	assert.Equal(t, []string{root, filepath.Join(root, "Gone")}, loadErr.Chain)
}

func TestResolve_FrameworksAreSharedLeaves(t *testing.T) {
	root := testutil.Workspace(t, map[string]string{
		"Project.hcl": project("App",
			target("App", "app", `framework = "Vendor/Foo.framework"`, `target = "Kit"`),
			target("Kit", "framework", `framework = "./Vendor/Foo.framework"`),
		),
	})

	g, err := resolve(t, root, "dev")
	require.NoError(t, err)
	require.Len(t, g.Externals, 1)
	assert.Equal(t, filepath.Join(root, "Vendor", "Foo.framework"), g.Externals[0].Path)

	want := []graph.Edge{
		{Kind: graph.EdgeExternal, From: 0, To: 0},
		{Kind: graph.EdgeTarget, From: 0, To: 1},
		{Kind: graph.EdgeExternal, From: 1, To: 0},
	}
	if diff := cmp.Diff(want, g.Edges); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_IsDeterministic(t *testing.T) {
	root := testutil.Workspace(t, map[string]string{
		"Workspace.hcl": `workspace "Suite" { projects = ["App", "Kit"] }`,
		"App/Project.hcl": project("App",
			target("App", "app", `target = "UI"`, `project = "../Kit"
      target  = "Kit"`, `framework = "Vendor/A.framework"`),
			target("UI", "framework", `project = "../Kit"
      target  = "Kit"`),
		),
		"Kit/Project.hcl": project("Kit", target("Kit", "framework"), target("KitTests", "unit_tests", `target = "Kit"`)),
	})

	type snapshot struct {
		Projects []string
		Targets  []string
		Edges    []graph.Edge
	}
	take := func(g *graph.Graph) snapshot {
		var s snapshot
		for _, p := range g.Projects {
			s.Projects = append(s.Projects, p.Project.Path)
		}
		for _, tn := range g.Targets {
			s.Targets = append(s.Targets, tn.Ref.String())
		}
		s.Edges = g.Edges
		return s
	}

	first, err := resolve(t, root, "dev")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := resolve(t, root, "dev")
		require.NoError(t, err)
		if diff := cmp.Diff(take(first), take(again)); diff != "" {
			t.Fatalf("resolution differs between runs (-first +again):\n%s", diff)
		}
	}
	assert.Equal(t, []string{"App/App", "App/UI", "Kit/Kit", "Kit/KitTests"}, take(first).Targets)
}

func TestResolve_RootKinds(t *testing.T) {
	t.Run("config only root is rejected", func(t *testing.T) {
		root := testutil.Workspace(t, map[string]string{"Config.hcl": `config {}`})
		_, err := resolve(t, root, "dev")
		var kindErr *graph.RootKindError
		require.ErrorAs(t, err, &kindErr)
		assert.Equal(t, manifest.KindConfig, kindErr.Kind)
	})

	t.Run("empty root", func(t *testing.T) {
		root := testutil.Workspace(t, nil)
		_, err := resolve(t, root, "dev")
		assert.True(t, manifest.IsNotFound(err))
	})

	t.Run("project root with config", func(t *testing.T) {
		root := testutil.Workspace(t, map[string]string{
			"Project.hcl": project("App", target("App", "app")),
			"Config.hcl":  `config { required_version = "0.4.0" }`,
		})
		g, err := resolve(t, root, "0.5.1")
		require.NoError(t, err)
		require.NotNil(t, g.Config)
		assert.Equal(t, "0.4.0", g.Config.RequiredVersion)
		require.NotNil(t, g.RootProject())
		assert.Equal(t, "App", g.RootProject().Project.Name)
	})
}

func TestResolve_RequiredVersion(t *testing.T) {
	testCases := []struct {
		name     string
		required string
		running  string
		wantErr  bool
	}{
		{name: "newer tool", required: "0.4.0", running: "0.5.0"},
		{name: "same version", required: "0.4.0", running: "v0.4.0"},
		{name: "development build skips check", required: "9.0.0", running: "dev"},
		{name: "older tool", required: "1.2.0", running: "1.1.9", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root := testutil.Workspace(t, map[string]string{
				"Project.hcl": project("App", target("App", "app")),
				"Config.hcl":  fmt.Sprintf("config { required_version = %q }", tc.required),
			})
			_, err := resolve(t, root, tc.running)
			if !tc.wantErr {
				require.NoError(t, err)
				return
			}
			var mismatch *graph.VersionMismatchError
			require.ErrorAs(t, err, &mismatch)
			assert.Equal(t, tc.required, mismatch.Required)
		})
	}
}
