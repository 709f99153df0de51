package embedded_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/sfcheck/pkg/embedded"
)

func TestCache_GetOrCompute(t *testing.T) {
	t.Parallel()

	cache := embedded.NewCache()
	calls := 0
	compute := func(name string) (*embedded.Source, error) {
		calls++
		return &embedded.Source{Text: name, Extension: ".ts"}, nil
	}

	first, err := cache.GetOrCompute("a.vue", compute)
	require.NoError(t, err)
	second, err := cache.GetOrCompute("a.vue", compute)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, cache.Resolutions())
	assert.Equal(t, 1, cache.Len())

	cache.Invalidate("a.vue")
	_, ok := cache.Peek("a.vue")
	assert.False(t, ok)

	third, err := cache.GetOrCompute("a.vue", compute)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, first, third)
	assert.Equal(t, 2, cache.Resolutions())
}

func TestCache_AbsentIsCached(t *testing.T) {
	t.Parallel()

	cache := embedded.NewCache()
	absent := func(string) (*embedded.Source, error) { return nil, nil }

	for range 3 {
		src, err := cache.GetOrCompute("gone.vue", absent)
		require.NoError(t, err)
		assert.Nil(t, src)
	}
	assert.Equal(t, 1, cache.Resolutions())

	src, ok := cache.Peek("gone.vue")
	assert.True(t, ok)
	assert.Nil(t, src)
}

func TestCache_FailuresAreCachedUntilInvalidated(t *testing.T) {
	t.Parallel()

	cache := embedded.NewCache()
	boom := errors.New("boom")
	failing := func(string) (*embedded.Source, error) { return nil, boom }

	for range 3 {
		src, err := cache.GetOrCompute("bad.vue", failing)
		require.ErrorIs(t, err, boom)
		assert.Nil(t, src)
	}

	assert.Equal(t, 1, cache.Resolutions())
	assert.Equal(t, 1, cache.Len())
	require.ErrorIs(t, cache.Failure("bad.vue"), boom)
	assert.NoError(t, cache.Failure("never-seen.vue"))

	_, ok := cache.Peek("bad.vue")
	assert.False(t, ok)

	cache.Invalidate("bad.vue")
	require.NoError(t, cache.Failure("bad.vue"))

	src, err := cache.GetOrCompute("bad.vue", func(name string) (*embedded.Source, error) {
		return &embedded.Source{Text: name, Extension: ".js"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "bad.vue", src.Text)
	assert.Equal(t, 2, cache.Resolutions())
}

func TestCache_InvalidateIsPerEntry(t *testing.T) {
	t.Parallel()

	cache := embedded.NewCache()
	compute := func(name string) (*embedded.Source, error) {
		return &embedded.Source{Text: name, Extension: ".js"}, nil
	}

	for _, name := range []string{"a.vue", "b.vue", "c.vue"} {
		_, err := cache.GetOrCompute(name, compute)
		require.NoError(t, err)
	}

	cache.Invalidate("b.vue")
	cache.Invalidate("never-seen.vue")

	assert.Equal(t, 2, cache.Len())
	_, ok := cache.Peek("a.vue")
	assert.True(t, ok)
	_, ok = cache.Peek("c.vue")
	assert.True(t, ok)
}
