package host_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/sfcheck/pkg/host"
)

func newMemHost(t *testing.T, files map[string]string) *host.FSHost {
	t.Helper()

	fsys := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, fsys.MkdirAll(filepath.Dir(name), 0o755))
		require.NoError(t, afero.WriteFile(fsys, name, []byte(content), 0o644))
	}
	return host.NewFSHost(fsys)
}

func TestFSHost_FileExists(t *testing.T) {
	t.Parallel()

	h := newMemHost(t, map[string]string{"/src/a.ts": "export {};\n"})

	assert.True(t, h.FileExists("/src/a.ts"))
	assert.False(t, h.FileExists("/src/b.ts"))
	assert.False(t, h.FileExists("/src"), "directories are not files")
}

func TestFSHost_ReadFile(t *testing.T) {
	t.Parallel()

	h := newMemHost(t, map[string]string{"/src/a.ts": "const a = 1;\n"})

	text, err := h.ReadFile("/src/a.ts")
	require.NoError(t, err)
	assert.Equal(t, "const a = 1;\n", text)

	_, err = h.ReadFile("/src/missing.ts")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestFSHost_GetSourceFile(t *testing.T) {
	t.Parallel()

	h := newMemHost(t, map[string]string{"/src/view.tsx": "export const v = <div/>;\n"})

	file, err := h.GetSourceFile("/src/view.tsx")
	require.NoError(t, err)
	assert.Equal(t, "/src/view.tsx", file.FileName)
	assert.Equal(t, host.KindTSX, file.Kind)
	assert.False(t, file.HasRealEnd())
	assert.Equal(t, len(file.Text), file.RealEnd())
}

func TestFSHost_ReadDirectory(t *testing.T) {
	t.Parallel()

	h := newMemHost(t, map[string]string{
		"/proj/index.ts":                 "",
		"/proj/App.vue":                  "",
		"/proj/readme.md":                "",
		"/proj/lib/util.js":              "",
		"/proj/lib/deep/inner.ts":        "",
		"/proj/node_modules/dep/main.js": "",
		"/proj/.cache/gen.ts":            "",
		"/proj/types.d.ts":               "",
	})

	tests := []struct {
		name       string
		extensions []string
		excludes   []string
		includes   []string
		depth      int
		want       []string
	}{
		{
			name:       "native extensions recursively",
			extensions: []string{".ts", ".js"},
			excludes:   []string{"node_modules"},
			want: []string{
				"/proj/index.ts",
				"/proj/lib/deep/inner.ts",
				"/proj/lib/util.js",
				"/proj/types.d.ts",
			},
		},
		{
			name:       "multi-dot extension",
			extensions: []string{".d.ts"},
			want:       []string{"/proj/types.d.ts"},
		},
		{
			name:       "depth one lists root files only",
			extensions: []string{".ts", ".vue"},
			depth:      1,
			want:       []string{"/proj/App.vue", "/proj/index.ts", "/proj/types.d.ts"},
		},
		{
			name:       "include glob",
			extensions: []string{".ts", ".js"},
			includes:   []string{"lib/**"},
			want:       []string{"/proj/lib/deep/inner.ts", "/proj/lib/util.js"},
		},
		{
			name:       "double star exclude",
			extensions: []string{".ts", ".js"},
			excludes:   []string{"**/node_modules", "lib/**/*.ts"},
			want:       []string{"/proj/index.ts", "/proj/lib/util.js", "/proj/types.d.ts"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := h.ReadDirectory("/proj", tt.extensions, tt.excludes, tt.includes, tt.depth)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFSHost_ReadDirectory_MissingRoot(t *testing.T) {
	t.Parallel()

	h := newMemHost(t, nil)

	got, err := h.ReadDirectory("/nope", []string{".ts"}, nil, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFSHost_WatchFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "App.vue")
	other := filepath.Join(dir, "Other.vue")
	require.NoError(t, os.WriteFile(target, []byte("<template/>"), 0o644))

	h := host.NewFSHost(afero.NewOsFs())
	t.Cleanup(func() { _ = h.Close() })

	var (
		mu     sync.Mutex
		events []host.EventKind
	)
	w, err := h.WatchFile(target, func(name string, kind host.EventKind) {
		assert.Equal(t, target, name)
		mu.Lock()
		events = append(events, kind)
		mu.Unlock()
	}, time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Dispatch(ctx) }()

	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(target, []byte("<template><div/></template>"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, kind := range events {
			if kind == host.EventChanged {
				return true
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "closing twice is a no-op")
}

func TestFSHost_DispatchWithoutWatches(t *testing.T) {
	t.Parallel()

	h := newMemHost(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, h.Dispatch(ctx), context.Canceled)
	require.NoError(t, h.Close())
}

func TestEventKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "created", host.EventCreated.String())
	assert.Equal(t, "changed", host.EventChanged.String())
	assert.Equal(t, "deleted", host.EventDeleted.String())
	assert.Equal(t, "unknown", host.EventKind(42).String())
}

func TestKindFromName(t *testing.T) {
	t.Parallel()

	tests := map[string]host.ScriptKind{
		"a.ts":         host.KindTS,
		"a.TSX":        host.KindTSX,
		"a.js":         host.KindJS,
		"a.jsx":        host.KindJSX,
		"a.vue.ts":     host.KindTS,
		"a.vue":        host.KindUnknown,
		"no-extension": host.KindUnknown,
	}

	for name, want := range tests {
		assert.Equal(t, want, host.KindFromName(name), name)
	}
}
