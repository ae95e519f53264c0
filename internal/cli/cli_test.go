package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/xcbuddy/internal/cli"
	"github.com/vk/xcbuddy/internal/testutil"
)

const project = `
project "App" {
  target "App" {
    platform  = "ios"
    product   = "app"
    bundle_id = "com.example.app"

    build_phase "sources" {
      files = ["Sources/*.swift"]
    }
  }
}
`

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var outW, errW bytes.Buffer
	err := cli.Execute(context.Background(), args, &outW, &errW, "dev")
	return outW.String(), errW.String(), err
}

func TestExecute_Generate(t *testing.T) {
	root := testutil.Workspace(t, map[string]string{
		"Project.hcl":       project,
		"Sources/App.swift": "\n",
	})

	out, _, err := execute(t, "generate", "--path", root, "--parallelism", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Generated "+filepath.Join(root, "App.xcodeproj"))
	assert.Contains(t, out, "Generated "+filepath.Join(root, "App.xcworkspace"))
	assert.FileExists(t, filepath.Join(root, "App.xcodeproj", "project.pbxproj"))
}

func TestExecute_Dump(t *testing.T) {
	root := testutil.Workspace(t, map[string]string{"Project.hcl": project})

	out, _, err := execute(t, "dump", "-p", root)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "App", decoded["name"])

	out, _, err = execute(t, "dump", "-p", root, "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "name: App\n")
}

func TestExecute_Graph(t *testing.T) {
	root := testutil.Workspace(t, map[string]string{"Project.hcl": project})

	out, _, err := execute(t, "graph", "-p", root)
	require.NoError(t, err)
	assert.Equal(t, "App/App\n", out)
}

func TestExecute_Init(t *testing.T) {
	root := testutil.Workspace(t, nil)

	out, _, err := execute(t, "init", "-p", root, "--name", "Demo")
	require.NoError(t, err)
	assert.Contains(t, out, "Created "+filepath.Join(root, "Project.hcl"))

	_, _, err = execute(t, "init", "-p", root, "--name", "Demo")
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, cli.ExitFailure, exitErr.Code)
	assert.Contains(t, exitErr.Message, "init error: ")
}

func TestExecute_Errors(t *testing.T) {
	empty := testutil.Workspace(t, nil)
	broken := testutil.Workspace(t, map[string]string{"Project.hcl": `project "App" {`})
	cyclic := testutil.Workspace(t, map[string]string{"Project.hcl": `
project "App" {
  target "A" {
    platform  = "ios"
    product   = "framework"
    bundle_id = "com.example.a"
    dependency {
      target = "B"
    }
  }
  target "B" {
    platform  = "ios"
    product   = "framework"
    bundle_id = "com.example.b"
    dependency {
      target = "A"
    }
  }
}
`})

	testCases := []struct {
		name       string
		args       []string
		wantCode   int
		wantPrefix string
	}{
		{name: "unknown flag", args: []string{"generate", "--bogus"}, wantCode: cli.ExitUsage},
		{name: "unknown command", args: []string{"frobnicate"}, wantCode: cli.ExitUsage},
		{name: "unexpected argument", args: []string{"graph", "extra"}, wantCode: cli.ExitUsage},
		{name: "invalid log level", args: []string{"graph", "-p", empty, "--log-level", "loud"}, wantCode: cli.ExitUsage},
		{name: "invalid dump format", args: []string{"dump", "-p", empty, "--format", "toml"}, wantCode: cli.ExitUsage},
		{name: "negative parallelism", args: []string{"generate", "-p", empty, "--parallelism", "-1"}, wantCode: cli.ExitUsage},
		{name: "missing manifest", args: []string{"generate", "-p", empty}, wantCode: cli.ExitFailure, wantPrefix: "manifest error: "},
		{name: "syntax error", args: []string{"dump", "-p", broken}, wantCode: cli.ExitFailure, wantPrefix: "manifest error: "},
		{name: "dependency cycle", args: []string{"graph", "-p", cyclic}, wantCode: cli.ExitFailure, wantPrefix: "graph error: "},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := execute(t, tc.args...)

			var exitErr *cli.ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, tc.wantCode, exitErr.Code)
			if tc.wantPrefix != "" {
				assert.Regexp(t, "^"+tc.wantPrefix, exitErr.Message)
			}
		})
	}
}

func TestExecute_Version(t *testing.T) {
	var outW bytes.Buffer
	err := cli.Execute(context.Background(), []string{"--version"}, &outW, &bytes.Buffer{}, "1.2.3")
	require.NoError(t, err)
	assert.Contains(t, outW.String(), "1.2.3")
}
