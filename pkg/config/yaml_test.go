package config_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/sfcheck/pkg/config"
)

func TestConfigClone(t *testing.T) {
	t.Run("nil config returns nil", func(t *testing.T) {
		var c *config.Config
		assert.Nil(t, c.Clone())
	})

	t.Run("empty config", func(t *testing.T) {
		c := &config.Config{}
		clone := c.Clone()
		require.NotNil(t, clone)
		assert.NotSame(t, c, clone)
	})

	t.Run("deep copies pointers and slices", func(t *testing.T) {
		original := config.NewConfig()
		original.Exclude = []string{"node_modules/**"}

		clone := original.Clone()
		*clone.Extensions.Vue = false
		*clone.CodeFrame.LinesAbove = 9
		clone.Exclude[0] = "dist/**"

		assert.True(t, original.VueEnabled())
		assert.Equal(t, 2, original.LinesAbove())
		assert.Equal(t, []string{"node_modules/**"}, original.Exclude)
	})

	t.Run("copies CLI-only fields", func(t *testing.T) {
		original := &config.Config{Watch: true, ESLintResults: "eslint.json"}
		clone := original.Clone()
		assert.True(t, clone.Watch)
		assert.Equal(t, "eslint.json", clone.ESLintResults)
	})
}

func TestFromYAML(t *testing.T) {
	data := []byte(`
compiler: ./tools/compiler.js
extensions:
  vue: true
  markdown: true
markdown:
  flavor: commonmark
  detect_untagged: true
include: ["src/**"]
exclude: ["**/*.spec.ts"]
format: sarif
formatter: basic
code_frame:
  lines_above: 0
  lines_below: 5
color: never
`)

	cfg, err := config.FromYAML(data)
	require.NoError(t, err)

	assert.Equal(t, "./tools/compiler.js", cfg.Compiler)
	assert.True(t, cfg.VueEnabled())
	assert.True(t, cfg.MarkdownEnabled())
	assert.Equal(t, config.FlavorCommonMark, cfg.Markdown.Flavor)
	assert.True(t, cfg.DetectUntaggedEnabled())
	assert.Equal(t, []string{"src/**"}, cfg.Include)
	assert.Equal(t, []string{"**/*.spec.ts"}, cfg.Exclude)
	assert.Equal(t, config.FormatSARIF, cfg.Format)
	assert.Equal(t, config.FormatterBasic, cfg.Formatter)
	assert.Equal(t, 0, cfg.LinesAbove(), "explicit zero is kept")
	assert.Equal(t, 5, cfg.LinesBelow())
	assert.Equal(t, "never", cfg.Color)
}

func TestFromYAML_Invalid(t *testing.T) {
	_, err := config.FromYAML([]byte("extensions: [unclosed"))
	require.Error(t, err)
}

func TestConfig_Accessors_Unset(t *testing.T) {
	cfg := &config.Config{}

	assert.False(t, cfg.VueEnabled())
	assert.False(t, cfg.MarkdownEnabled())
	assert.False(t, cfg.DetectUntaggedEnabled())
	assert.Equal(t, config.DefaultLinesAbove, cfg.LinesAbove())
	assert.Equal(t, config.DefaultLinesBelow, cfg.LinesBelow())
}

func TestToYAMLWithHeader(t *testing.T) {
	cfg := config.NewConfig()

	out, err := cfg.ToYAMLWithHeader("# sfcheck configuration")
	require.NoError(t, err)

	text := string(out)
	assert.True(t, strings.HasPrefix(text, "# sfcheck configuration\n\n"))
	assert.Contains(t, text, "compiler: vue-template-compiler")
	assert.Contains(t, text, "  lines_below: 3")
	assert.NotContains(t, text, "watch")

	roundTrip, err := config.FromYAML(out)
	require.NoError(t, err)
	assert.Equal(t, cfg.Compiler, roundTrip.Compiler)
	assert.Equal(t, cfg.LinesBelow(), roundTrip.LinesBelow())
	assert.True(t, roundTrip.VueEnabled())
}

func TestNilConfigToYAML(t *testing.T) {
	var c *config.Config
	out, err := c.ToYAML()
	require.NoError(t, err)
	assert.Nil(t, out)
}
