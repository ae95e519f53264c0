package manifest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/xcbuddy/internal/manifest"
)

func field(key string, v *manifest.Value) manifest.Field {
	return manifest.Field{Key: key, Value: v}
}

func str(s string) *manifest.Value { return manifest.String(s) }

func appTarget(extra ...manifest.Field) *manifest.Value {
	target := manifest.Mapping(
		field("name", str("App")),
		field("platform", str("ios")),
		field("product", str("app")),
		field("bundle_id", str("com.example.app")),
	)
	for _, f := range extra {
		target.Set(f.Key, f.Value)
	}
	return target
}

func projectDoc(fields ...manifest.Field) *manifest.Document {
	root := manifest.Mapping(append([]manifest.Field{field("name", str("App"))}, fields...)...)
	return &manifest.Document{Path: "/ws/App/Project.hcl", Kind: manifest.KindProject, Root: root}
}

func TestDecodeProject_Full(t *testing.T) {
	doc := projectDoc(
		field("settings", manifest.Mapping(
			field("base", manifest.Mapping(
				field("SWIFT_VERSION", manifest.Number("5")),
				field("ENABLE_BITCODE", manifest.Bool(false)),
				field("OTHER_LDFLAGS", manifest.Sequence(str("-ObjC"))),
			)),
			field("configurations", manifest.Sequence(manifest.Mapping(
				field("name", str("Debug")),
				field("SWIFT_OPTIMIZATION_LEVEL", str("-Onone")),
			))),
			field("replace", manifest.Sequence(str("OTHER_LDFLAGS"))),
		)),
		field("targets", manifest.Sequence(
			appTarget(
				field("info_plist", str("App/Info.plist")),
				field("build_phases", manifest.Sequence(
					manifest.Mapping(field("kind", str("sources")), field("files", manifest.Sequence(str("Sources/**")))),
					manifest.Mapping(field("kind", str("headers")), field("public", manifest.Sequence(str("Public/*.h")))),
					manifest.Mapping(field("kind", str("script")), field("script", str("swiftlint")), field("position", str("pre"))),
					manifest.Mapping(field("kind", str("copy_files")), field("destination", str("Plugins"))),
				)),
				field("dependencies", manifest.Sequence(
					manifest.Mapping(field("target", str("Core"))),
					manifest.Mapping(field("project", str("../Kit")), field("target", str("Kit"))),
					manifest.Mapping(field("framework", str("Vendor/Foo.framework"))),
				)),
			),
		)),
		field("schemes", manifest.Sequence(
			manifest.Mapping(
				field("name", str("App")),
				field("build_action", manifest.Mapping(field("targets", manifest.Sequence(str("App"))))),
			),
			manifest.Mapping(field("name", str("Private")), field("shared", manifest.Bool(false))),
		)),
	)

	v, err := manifest.Decode(doc, manifest.KindProject)
	require.NoError(t, err)
	p, ok := v.(*manifest.Project)
	require.True(t, ok)

	assert.Equal(t, "App", p.Name)
	assert.Equal(t, "/ws/App", p.Path)

	require.NotNil(t, p.Settings)
	assert.Equal(t, manifest.Scalar("5"), p.Settings.Base["SWIFT_VERSION"])
	assert.Equal(t, manifest.Scalar("NO"), p.Settings.Base["ENABLE_BITCODE"])
	assert.Equal(t, manifest.List("-ObjC"), p.Settings.Base["OTHER_LDFLAGS"])
	assert.Equal(t, map[string]manifest.SettingValue{"SWIFT_OPTIMIZATION_LEVEL": manifest.Scalar("-Onone")},
		p.Settings.Configurations["Debug"])
	assert.True(t, p.Settings.Replaces("OTHER_LDFLAGS"))

	require.Len(t, p.Targets, 1)
	target := p.Target("App")
	require.NotNil(t, target)
	assert.Equal(t, manifest.PlatformIOS, target.Platform)
	assert.Equal(t, manifest.ProductApp, target.Product)
	assert.Equal(t, "App/Info.plist", target.InfoPlist)

	require.Len(t, target.BuildPhases, 4)
	assert.Equal(t, []string{"Sources/**"}, target.BuildPhases[0].Files)
	assert.Equal(t, []string{"Public/*.h"}, target.BuildPhases[1].Public)
	assert.Equal(t, "Run Script", target.BuildPhases[2].Name)
	assert.Equal(t, "pre", target.BuildPhases[2].Position)
	assert.Equal(t, "Plugins", target.BuildPhases[3].Destination)

	assert.Equal(t, []manifest.Dependency{
		manifest.TargetDependency("Core"),
		manifest.ProjectDependency("../Kit", "Kit"),
		manifest.FrameworkDependency("Vendor/Foo.framework"),
	}, target.Dependencies)

	require.Len(t, p.Schemes, 2)
	assert.True(t, p.Schemes[0].Shared)
	assert.Equal(t, []string{"App"}, p.Schemes[0].BuildAction.Targets)
	assert.False(t, p.Schemes[1].Shared)
	assert.Nil(t, p.Schemes[1].BuildAction)
}

func TestDecodeProject_ScriptPositionDefaultsToPost(t *testing.T) {
	doc := projectDoc(field("targets", manifest.Sequence(appTarget(
		field("build_phases", manifest.Sequence(
			manifest.Mapping(field("kind", str("script")), field("script", str("echo hi")), field("name", str("Greet"))),
		)),
	))))

	p, err := manifest.DecodeProject(doc)
	require.NoError(t, err)
	phase := p.Targets[0].BuildPhases[0]
	assert.Equal(t, "post", phase.Position)
	assert.Equal(t, "Greet", phase.Name)
}

func TestDecodeProject_Errors(t *testing.T) {
	testCases := []struct {
		name      string
		doc       *manifest.Document
		wantField string
		wantEnum  bool
	}{
		{
			name:      "missing name",
			doc:       &manifest.Document{Path: "/p/Project.hcl", Kind: manifest.KindProject, Root: manifest.Mapping()},
			wantField: "name",
		},
		{
			name: "missing bundle id",
			doc: projectDoc(field("targets", manifest.Sequence(manifest.Mapping(
				field("name", str("App")),
				field("platform", str("ios")),
				field("product", str("app")),
			)))),
			wantField: "targets[0].bundle_id",
		},
		{
			name:      "unknown platform",
			doc:       projectDoc(field("targets", manifest.Sequence(appTarget(field("platform", str("android")))))),
			wantField: "targets[0].platform",
			wantEnum:  true,
		},
		{
			name: "unknown phase kind",
			doc: projectDoc(field("targets", manifest.Sequence(appTarget(
				field("build_phases", manifest.Sequence(manifest.Mapping(field("kind", str("compile"))))),
			)))),
			wantField: "targets[0].build_phases[0].kind",
			wantEnum:  true,
		},
		{
			name:      "duplicate target",
			doc:       projectDoc(field("targets", manifest.Sequence(appTarget(), appTarget()))),
			wantField: "targets[1].name",
		},
		{
			name: "project dependency without target",
			doc: projectDoc(field("targets", manifest.Sequence(appTarget(
				field("dependencies", manifest.Sequence(manifest.Mapping(field("project", str("../Kit"))))),
			)))),
			wantField: "targets[0].dependencies[0].target",
		},
		{
			name: "dependency with target and framework",
			doc: projectDoc(field("targets", manifest.Sequence(appTarget(
				field("dependencies", manifest.Sequence(manifest.Mapping(
					field("target", str("Core")),
					field("framework", str("Foo.framework")),
				))),
			)))),
			wantField: "targets[0].dependencies[0]",
		},
		{
			name: "script phase without script",
			doc: projectDoc(field("targets", manifest.Sequence(appTarget(
				field("build_phases", manifest.Sequence(manifest.Mapping(field("kind", str("script"))))),
			)))),
			wantField: "targets[0].build_phases[0].script",
		},
		{
			name:      "targets is not a list",
			doc:       projectDoc(field("targets", str("App"))),
			wantField: "targets",
		},
		{
			name:      "files entry is not a string",
			doc:       projectDoc(field("targets", manifest.Sequence(appTarget(field("build_phases", manifest.Sequence(manifest.Mapping(field("kind", str("sources")), field("files", manifest.Sequence(manifest.Number("1")))))))))),
			wantField: "targets[0].build_phases[0].files[0]",
		},
		{
			name:      "scheme shared is not a bool",
			doc:       projectDoc(field("schemes", manifest.Sequence(manifest.Mapping(field("name", str("App")), field("shared", str("yes")))))),
			wantField: "schemes[0].shared",
		},
		{
			name:      "scheme name climbs out of the bundle",
			doc:       projectDoc(field("schemes", manifest.Sequence(manifest.Mapping(field("name", str("../../../../escaped")))))),
			wantField: "schemes[0].name",
		},
		{
			name:      "scheme name with backslash",
			doc:       projectDoc(field("schemes", manifest.Sequence(manifest.Mapping(field("name", str(`a\b`)))))),
			wantField: "schemes[0].name",
		},
		{
			name:      "scheme named dot dot",
			doc:       projectDoc(field("schemes", manifest.Sequence(manifest.Mapping(field("name", str("..")))))),
			wantField: "schemes[0].name",
		},
		{
			name: "duplicate scheme",
			doc: projectDoc(field("schemes", manifest.Sequence(
				manifest.Mapping(field("name", str("S"))),
				manifest.Mapping(field("name", str("S"))),
			))),
			wantField: "schemes[1].name",
		},
		{
			name: "nested list in settings",
			doc: projectDoc(field("settings", manifest.Mapping(field("base", manifest.Mapping(
				field("FLAGS", manifest.Sequence(manifest.Sequence())),
			))))),
			wantField: "settings.base.FLAGS",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := manifest.DecodeProject(tc.doc)
			require.Error(t, err)

			if tc.wantEnum {
				var enumErr *manifest.UnknownEnumValueError
				require.ErrorAs(t, err, &enumErr)
				assert.Equal(t, tc.wantField, enumErr.Field)
				assert.NotEmpty(t, enumErr.Allowed)
				return
			}
			var decodeErr *manifest.DecodeError
			require.ErrorAs(t, err, &decodeErr)
			assert.Equal(t, tc.wantField, decodeErr.Field)
			assert.Equal(t, tc.doc.Path, decodeErr.Path)
		})
	}
}

func TestDecode_KindMismatch(t *testing.T) {
	doc := projectDoc()
	_, err := manifest.Decode(doc, manifest.KindWorkspace)

	var runtimeErr *manifest.RuntimeError
	require.ErrorAs(t, err, &runtimeErr)
	assert.Contains(t, runtimeErr.Reason, "expected a workspace block, found a project block")
}

func TestDecodeWorkspace(t *testing.T) {
	doc := &manifest.Document{
		Path: "/ws/Workspace.hcl",
		Kind: manifest.KindWorkspace,
		Root: manifest.Mapping(
			field("name", str("All")),
			field("projects", manifest.Sequence(str("App"), str("Kit"))),
		),
	}

	w, err := manifest.DecodeWorkspace(doc)
	require.NoError(t, err)
	assert.Equal(t, "All", w.Name)
	assert.Equal(t, "/ws", w.Path)
	assert.Equal(t, []string{"App", "Kit"}, w.Projects)
	assert.Empty(t, w.Schemes)
}

func TestDecodeWorkspace_DuplicateScheme(t *testing.T) {
	doc := &manifest.Document{
		Path: "/ws/Workspace.hcl",
		Kind: manifest.KindWorkspace,
		Root: manifest.Mapping(
			field("name", str("All")),
			field("schemes", manifest.Sequence(
				manifest.Mapping(field("name", str("All"))),
				manifest.Mapping(field("name", str("All")), field("shared", manifest.Bool(false))),
			)),
		),
	}

	_, err := manifest.DecodeWorkspace(doc)
	var decodeErr *manifest.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "schemes[1].name", decodeErr.Field)
	assert.Equal(t, "unique scheme name", decodeErr.Expected)
}

func TestDecodeConfig(t *testing.T) {
	doc := &manifest.Document{
		Path: "/ws/Config.hcl",
		Kind: manifest.KindConfig,
		Root: manifest.Mapping(
			field("required_version", str("1.0.0")),
			field("project_name", str("{{ .Name }}-Dev")),
		),
	}

	c, err := manifest.DecodeConfig(doc)
	require.NoError(t, err)
	assert.Equal(t, "/ws", c.Path)
	assert.Equal(t, "1.0.0", c.RequiredVersion)
	assert.Equal(t, "{{ .Name }}-Dev", c.ProjectName)
}

func TestNotFoundError_Message(t *testing.T) {
	err := &manifest.NotFoundError{Dir: "/test"}
	assert.Equal(t, "Couldn't find Workspace.hcl, Project.hcl, or Config.hcl in the directory /test", err.Error())
	assert.True(t, manifest.IsNotFound(err))
}
