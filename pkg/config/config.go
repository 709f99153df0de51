// Package config defines core configuration types for sfcheck.
// These types are pure data structures with no dependency on the loader.
package config

// OutputFormat specifies the output format for issues.
type OutputFormat string

const (
	FormatText  OutputFormat = "text"
	FormatJSON  OutputFormat = "json"
	FormatSARIF OutputFormat = "sarif"
)

// Formatter selects how a single issue is rendered in text output.
type Formatter string

const (
	FormatterBasic     Formatter = "basic"
	FormatterCodeFrame Formatter = "codeframe"
)

// Flavor specifies the Markdown flavor used to find fenced blocks.
type Flavor string

const (
	FlavorCommonMark Flavor = "commonmark"
	FlavorGFM        Flavor = "gfm"
)

// Default values.
const (
	DefaultCompiler   = "vue-template-compiler"
	DefaultLinesAbove = 2
	DefaultLinesBelow = 3
)

// ExtensionsConfig enables the embedded-source adapters.
type ExtensionsConfig struct {
	// Vue enables the .vue adapter.
	Vue *bool `yaml:"vue,omitempty"`

	// Markdown enables the .md/.mdx adapter.
	Markdown *bool `yaml:"markdown,omitempty"`
}

// MarkdownConfig configures the Markdown adapter.
type MarkdownConfig struct {
	// Flavor is "commonmark" or "gfm".
	Flavor Flavor `yaml:"flavor,omitempty"`

	// DetectUntagged classifies fences without an info string by content.
	DetectUntagged *bool `yaml:"detect_untagged,omitempty"`
}

// CodeFrameConfig sizes the code frame of the codeframe formatter.
type CodeFrameConfig struct {
	LinesAbove *int `yaml:"lines_above,omitempty"`
	LinesBelow *int `yaml:"lines_below,omitempty"`
}

// Config is the root configuration structure for sfcheck.
type Config struct {
	// Compiler names the Vue template-compiler module: a package under
	// node_modules or a path to a JS bundle.
	Compiler string `yaml:"compiler,omitempty"`

	// Extensions enables the embedded-source adapters.
	Extensions ExtensionsConfig `yaml:"extensions"`

	// Markdown configures the Markdown adapter.
	Markdown MarkdownConfig `yaml:"markdown"`

	// Include contains glob patterns a root file must match.
	Include []string `yaml:"include,omitempty"`

	// Exclude contains glob patterns for files to skip.
	Exclude []string `yaml:"exclude,omitempty"`

	// Format specifies the output format.
	Format OutputFormat `yaml:"format,omitempty"`

	// Formatter selects the per-issue rendering in text output.
	Formatter Formatter `yaml:"formatter,omitempty"`

	// CodeFrame sizes the code frame.
	CodeFrame CodeFrameConfig `yaml:"code_frame"`

	// Color is "auto", "always" or "never".
	Color string `yaml:"color,omitempty"`

	// CLI-level options (not persisted to config files).

	// ESLintResults is a path to ESLint JSON output to merge into the report.
	ESLintResults string `yaml:"-"`

	// Watch re-checks when a file of the program changes.
	Watch bool `yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Compiler: DefaultCompiler,
		Extensions: ExtensionsConfig{
			Vue:      Bool(true),
			Markdown: Bool(false),
		},
		Markdown: MarkdownConfig{
			Flavor:         FlavorGFM,
			DetectUntagged: Bool(false),
		},
		Format:    FormatText,
		Formatter: FormatterCodeFrame,
		CodeFrame: CodeFrameConfig{
			LinesAbove: Int(DefaultLinesAbove),
			LinesBelow: Int(DefaultLinesBelow),
		},
		Color: "auto",
	}
}

// VueEnabled reports whether the .vue adapter is on.
func (c *Config) VueEnabled() bool {
	return c.Extensions.Vue != nil && *c.Extensions.Vue
}

// MarkdownEnabled reports whether the Markdown adapter is on.
func (c *Config) MarkdownEnabled() bool {
	return c.Extensions.Markdown != nil && *c.Extensions.Markdown
}

// DetectUntaggedEnabled reports whether untagged fences are classified.
func (c *Config) DetectUntaggedEnabled() bool {
	return c.Markdown.DetectUntagged != nil && *c.Markdown.DetectUntagged
}

// LinesAbove returns the configured code-frame lines above, or the default.
func (c *Config) LinesAbove() int {
	if c.CodeFrame.LinesAbove == nil {
		return DefaultLinesAbove
	}
	return *c.CodeFrame.LinesAbove
}

// LinesBelow returns the configured code-frame lines below, or the default.
func (c *Config) LinesBelow() int {
	if c.CodeFrame.LinesBelow == nil {
		return DefaultLinesBelow
	}
	return *c.CodeFrame.LinesBelow
}

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to i.
func Int(i int) *int { return &i }
