package generator

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/xcbuddy/internal/ctxlog"
	"github.com/vk/xcbuddy/internal/fsutil"
	"github.com/vk/xcbuddy/internal/testutil"
)

func TestWriter_RejectsFilesOutsideBundle(t *testing.T) {
	root := testutil.Workspace(t, map[string]string{"P/Project.hcl": "project \"P\" {}\n"})
	before := testutil.Listing(t, root)

	w := &writer{fs: fsutil.NewOSFileSystem()}
	_, err := w.write(ctxlog.Discard(context.Background()), []bundle{
		{
			Path: filepath.Join(root, "P", "P.xcodeproj"),
			Files: map[string][]byte{
				"project.pbxproj": []byte("{}\n"),
				"xcshareddata/xcschemes/../../../../escaped.xcscheme": []byte("<Scheme/>\n"),
			},
		},
	})

	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
	require.ErrorIs(t, err, ErrOutsideBundle)
	assert.Equal(t, before, testutil.Listing(t, root))
}

func TestWithin(t *testing.T) {
	dir := filepath.FromSlash("/ws/P/.staging/P.xcodeproj")
	testCases := []struct {
		path string
		want bool
	}{
		{path: "/ws/P/.staging/P.xcodeproj/project.pbxproj", want: true},
		{path: "/ws/P/.staging/P.xcodeproj/xcshareddata/xcschemes/A.xcscheme", want: true},
		{path: "/ws/P/.staging/P.xcodeproj/..dots", want: true},
		{path: "/ws/P/.staging/P.xcodeproj", want: false},
		{path: "/ws/P/.staging", want: false},
		{path: "/ws/P/escaped.xcscheme", want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, within(dir, filepath.FromSlash(tc.path)))
		})
	}
}
