package dump_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/xcbuddy/internal/dump"
	"github.com/vk/xcbuddy/internal/fsutil"
	"github.com/vk/xcbuddy/internal/hcl"
	"github.com/vk/xcbuddy/internal/loader"
	"github.com/vk/xcbuddy/internal/manifest"
	"github.com/vk/xcbuddy/internal/testutil"
	"gopkg.in/yaml.v3"
)

const appManifest = `
project "App" {
  settings {
    base {
      SWIFT_VERSION = "5.0"
    }
  }

  target "App" {
    platform  = "ios"
    product   = "app"
    bundle_id = "com.example.app"

    dependency {
      target = "Core"
    }
  }
}
`

func run(t *testing.T, files map[string]string, format dump.Format) (string, string, error) {
	t.Helper()
	root := testutil.Workspace(t, files)
	ctx, _ := testutil.Context(t)
	l := loader.New(fsutil.NewOSFileSystem(), hcl.NewInterpreter())
	out, err := dump.Dump(ctx, l, root, format)
	return out, root, err
}

func TestDump_EmptyProject(t *testing.T) {
	out, _, err := run(t, map[string]string{"Project.hcl": `project "xcbuddy" {}`}, dump.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"xcbuddy\",\n  \"schemes\": [\n\n  ],\n  \"targets\": [\n\n  ]\n}\n", out)
}

func TestDump_ProjectJSON(t *testing.T) {
	out, _, err := run(t, map[string]string{"Project.hcl": appManifest}, dump.FormatJSON)
	require.NoError(t, err)

	want := `{
  "name": "App",
  "schemes": [

  ],
  "settings": {
    "base": {
      "SWIFT_VERSION": "5.0"
    }
  },
  "targets": [
    {
      "bundle_id": "com.example.app",
      "dependencies": [
        {
          "target": "Core"
        }
      ],
      "name": "App",
      "platform": "ios",
      "product": "app"
    }
  ]
}
`
	assert.Equal(t, want, out)
}

func TestDump_ProjectYAML(t *testing.T) {
	out, _, err := run(t, map[string]string{"Project.hcl": appManifest}, dump.FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, out, `SWIFT_VERSION: "5.0"`)
	assert.Contains(t, out, "schemes: []")

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "App", decoded["name"])
	targets, ok := decoded["targets"].([]any)
	require.True(t, ok)
	require.Len(t, targets, 1)
	assert.Equal(t, "com.example.app", targets[0].(map[string]any)["bundle_id"])
}

func TestDump_WorkspaceAndConfig(t *testing.T) {
	out, _, err := run(t, map[string]string{
		"Workspace.hcl": `workspace "Suite" { projects = ["App"] }`,
		"Config.hcl":    `config { required_version = "1.0.0" }`,
	}, dump.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"Suite\",\n  \"projects\": [\n    \"App\"\n  ],\n  \"schemes\": [\n\n  ]\n}\n", out)

	out, _, err = run(t, map[string]string{"Config.hcl": `config { required_version = "1.0.0" }`}, dump.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"required_version\": \"1.0.0\"\n}\n", out)
}

func TestDump_Errors(t *testing.T) {
	t.Run("missing manifest", func(t *testing.T) {
		_, root, err := run(t, map[string]string{}, dump.FormatJSON)
		var notFound *manifest.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, root, notFound.Dir)
	})

	t.Run("malformed manifest", func(t *testing.T) {
		out, root, err := run(t, map[string]string{"Project.hcl": `project "App" { targets = 1 }`}, dump.FormatJSON)
		var decodeErr *manifest.DecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.Equal(t, filepath.Join(root, "Project.hcl"), decodeErr.Path)
		assert.Empty(t, out)
	})
}

func TestParseFormat(t *testing.T) {
	testCases := []struct {
		in      string
		want    dump.Format
		wantErr bool
	}{
		{in: "", want: dump.FormatJSON},
		{in: "json", want: dump.FormatJSON},
		{in: "YAML", want: dump.FormatYAML},
		{in: "toml", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := dump.ParseFormat(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRender_EscapesStrings(t *testing.T) {
	v := manifest.Mapping(manifest.Field{Key: "script", Value: manifest.String("echo \"hi\"\n")})
	out, err := dump.Render(v, dump.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"script\": \"echo \\\"hi\\\"\\n\"\n}\n", out)
}
