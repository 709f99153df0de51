package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/sfcheck/internal/logging"
	"github.com/yaklabco/sfcheck/pkg/config"
)

const watchedReadme = "# Demo\n\n```ts\nexport const a: number = 1;\n```\n"

func TestSession_WaitForChangeEvictsVirtualSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	doc := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(doc, []byte(watchedReadme), 0o644))

	cfg := config.NewConfig()
	cfg.Extensions.Vue = config.Bool(false)
	cfg.Extensions.Markdown = config.Bool(true)
	sess := newSession(cfg, afero.NewOsFs(), dir, logging.Default())
	t.Cleanup(func() { _ = sess.Close() })

	_, loaded, err := sess.check(nil)
	require.NoError(t, err)
	require.Equal(t, []string{doc + ".ts"}, loaded)

	cache := sess.outer().Cache()
	_, cached := cache.Peek(doc)
	require.True(t, cached)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	type outcome struct {
		changed bool
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		changed, err := sess.waitForChange(ctx, loaded)
		done <- outcome{changed: changed, err: err}
	}()

	var got outcome
	require.Eventually(t, func() bool {
		_ = os.WriteFile(doc, []byte(watchedReadme+"\nMore prose.\n"), 0o644)
		select {
		case got = <-done:
			return true
		default:
			return false
		}
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, got.err)
	assert.True(t, got.changed)

	_, cached = cache.Peek(doc)
	assert.False(t, cached, "the change evicts the embedded source")
}

func TestSession_WaitForChangeCancelled(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Extensions.Vue = config.Bool(false)
	sess := newSession(cfg, afero.NewOsFs(), t.TempDir(), logging.Default())
	t.Cleanup(func() { _ = sess.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	changed, err := sess.waitForChange(ctx, nil)
	require.NoError(t, err)
	assert.False(t, changed)
}
