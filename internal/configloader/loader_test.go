package configloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/yaklabco/sfcheck/pkg/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func isolated(dir string) LoadOptions {
	return LoadOptions{
		WorkingDir:       dir,
		IgnoreUserConfig: true,
		IgnoreEnv:        true,
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	result, err := Load(context.Background(), isolated(t.TempDir()))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := result.Config
	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}
	if cfg.Compiler != config.DefaultCompiler {
		t.Errorf("expected compiler %q, got %q", config.DefaultCompiler, cfg.Compiler)
	}
	if !cfg.VueEnabled() || cfg.MarkdownEnabled() {
		t.Errorf("expected only the vue adapter enabled, got vue=%v markdown=%v", cfg.VueEnabled(), cfg.MarkdownEnabled())
	}
	if cfg.Formatter != config.FormatterCodeFrame {
		t.Errorf("expected formatter %q, got %q", config.FormatterCodeFrame, cfg.Formatter)
	}
	if cfg.LinesAbove() != 2 || cfg.LinesBelow() != 3 {
		t.Errorf("expected code frame 2/3, got %d/%d", cfg.LinesAbove(), cfg.LinesBelow())
	}
	if len(result.LoadedFrom) != 0 {
		t.Errorf("expected no loaded files, got %v", result.LoadedFrom)
	}
}

func TestLoad_ProjectConfig(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".sfcheck.yml"), `
compiler: ./tools/compiler.js
extensions:
  markdown: true
markdown:
  flavor: commonmark
code_frame:
  lines_above: 0
`)
	// Discovery searches upward from a nested directory.
	nested := filepath.Join(root, "src", "components")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	result, err := Load(context.Background(), isolated(nested))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := result.Config
	if cfg.Compiler != "./tools/compiler.js" {
		t.Errorf("expected project compiler, got %q", cfg.Compiler)
	}
	if !cfg.MarkdownEnabled() {
		t.Error("expected markdown adapter enabled")
	}
	if !cfg.VueEnabled() {
		t.Error("expected vue adapter to keep its default")
	}
	if cfg.Markdown.Flavor != config.FlavorCommonMark {
		t.Errorf("expected flavor %q, got %q", config.FlavorCommonMark, cfg.Markdown.Flavor)
	}
	if cfg.LinesAbove() != 0 {
		t.Errorf("expected explicit zero lines above, got %d", cfg.LinesAbove())
	}
	if cfg.LinesBelow() != 3 {
		t.Errorf("expected default lines below, got %d", cfg.LinesBelow())
	}
	if len(result.LoadedFrom) != 1 {
		t.Errorf("expected 1 loaded file, got %d", len(result.LoadedFrom))
	}
}

func TestLoad_StopsAtVCSRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".sfcheck.yml"), "compiler: outer\n")

	repo := filepath.Join(root, "repo")
	if err := os.MkdirAll(filepath.Join(repo, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	result, err := Load(context.Background(), isolated(repo))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Paths.Project != "" {
		t.Errorf("expected no project config above the VCS root, got %q", result.Paths.Project)
	}
}

func TestLoad_Precedence(t *testing.T) {
	// Uses t.Setenv, so no t.Parallel.
	root := t.TempDir()
	xdg := filepath.Join(root, "xdg")
	work := filepath.Join(root, "work")

	writeFile(t, filepath.Join(xdg, "sfcheck", "config.yaml"), "compiler: user\nformat: json\ncolor: never\nformatter: basic\n")
	writeFile(t, filepath.Join(work, ".sfcheck.yml"), "compiler: project\nformat: sarif\n")
	explicit := filepath.Join(root, "explicit.yml")
	writeFile(t, explicit, "compiler: explicit\n")

	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("SFCHECK_COLOR", "always")
	t.Setenv("SFCHECK_CODE_FRAME_LINES_BELOW", "1")

	result, err := Load(context.Background(), LoadOptions{
		WorkingDir:   work,
		ExplicitPath: explicit,
		CLIConfig:    &config.Config{Compiler: "cli"},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := result.Config
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"compiler from CLI", cfg.Compiler, "cli"},
		{"format from project", cfg.Format, config.FormatSARIF},
		{"formatter from user", cfg.Formatter, config.FormatterBasic},
		{"color from env", cfg.Color, "always"},
		{"lines below from env", cfg.LinesBelow(), 1},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, c.got, c.want)
		}
	}

	if len(result.LoadedFrom) != 3 {
		t.Fatalf("expected user, project and explicit configs, got %v", result.LoadedFrom)
	}
	if result.LoadedFrom[2] != explicit {
		t.Errorf("expected explicit config last, got %v", result.LoadedFrom)
	}
}

func TestLoad_CLIOverrides(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".sfcheck.yml"), "extensions:\n  vue: true\nexclude: [\"dist/**\"]\n")

	opts := isolated(root)
	opts.CLIConfig = &config.Config{
		Extensions: config.ExtensionsConfig{Vue: config.Bool(false)},
		Exclude:    []string{"build/**"},
		Watch:      true,
	}

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := result.Config
	if cfg.VueEnabled() {
		t.Error("expected explicit false from CLI to win")
	}
	if len(cfg.Exclude) != 1 || cfg.Exclude[0] != "build/**" {
		t.Errorf("expected CLI exclude to replace project exclude, got %v", cfg.Exclude)
	}
	if !cfg.Watch {
		t.Error("expected watch from CLI")
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		field   string
	}{
		{name: "format", content: "format: table\n", field: "format"},
		{name: "formatter", content: "formatter: fancy\n", field: "formatter"},
		{name: "flavor", content: "markdown:\n  flavor: mdx\n", field: "markdown.flavor"},
		{name: "color", content: "color: rainbow\n", field: "color"},
		{name: "negative lines", content: "code_frame:\n  lines_above: -1\n", field: "code_frame.lines_above"},
		{name: "glob", content: "exclude: [\"[\"]\n", field: "exclude[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			writeFile(t, filepath.Join(root, ".sfcheck.yml"), tt.content)

			_, err := Load(context.Background(), isolated(root))
			if err == nil {
				t.Fatal("expected validation error")
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T: %v", err, err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, verr.Field)
			}
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".sfcheck.yml"), "extensions: [unclosed\n")

	_, err := Load(context.Background(), isolated(root))
	if err == nil || !strings.Contains(err.Error(), "load project config") {
		t.Fatalf("expected project config error, got %v", err)
	}
}

func TestLoad_Warnings(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, ".sfcheck.yml")
	writeFile(t, path, "compiler: ./c.js\nextensions:\n  vue: false\n")

	result, err := Load(context.Background(), isolated(root))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", result.Warnings)
	}
	if !strings.HasPrefix(result.Warnings[0], path+": compiler:") {
		t.Errorf("expected warning to name file and field, got %q", result.Warnings[0])
	}
}

func TestLoad_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, isolated(t.TempDir()))
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestLoadFromEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		env   string
		value string
	}{
		{"SFCHECK_EXTENSIONS_VUE", "maybe"},
		{"SFCHECK_CODE_FRAME_LINES_ABOVE", "two"},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)

			if err := LoadFromEnv(config.NewConfig()); err == nil {
				t.Errorf("expected error for %s=%q", tt.env, tt.value)
			}
		})
	}
}

func TestLoadFromEnv_Slices(t *testing.T) {
	t.Setenv("SFCHECK_EXCLUDE", " dist/** , ,node_modules/**")
	t.Setenv("SFCHECK_EXTENSIONS_MARKDOWN", "1")

	cfg := config.NewConfig()
	if err := LoadFromEnv(cfg); err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}

	if len(cfg.Exclude) != 2 || cfg.Exclude[0] != "dist/**" || cfg.Exclude[1] != "node_modules/**" {
		t.Errorf("unexpected exclude: %v", cfg.Exclude)
	}
	if !cfg.MarkdownEnabled() {
		t.Error("expected markdown adapter enabled from env")
	}
}

func TestGetEnvVarName(t *testing.T) {
	t.Parallel()

	if got := GetEnvVarName("markdown.detect_untagged"); got != "SFCHECK_MARKDOWN_DETECT_UNTAGGED" {
		t.Errorf("unexpected env var %q", got)
	}
	if got := GetEnvVarName("nope"); got != "" {
		t.Errorf("expected empty name, got %q", got)
	}
	if len(ListEnvVars()) != len(envMappings) {
		t.Error("expected one description per mapping")
	}
}

func TestWriteProjectConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ProjectConfigFile)
	if err := WriteProjectConfig(context.Background(), afero.NewOsFs(), config.NewConfig(), path); err != nil {
		t.Fatalf("WriteProjectConfig() error = %v", err)
	}

	cfg, err := loadConfigFile(path)
	if err != nil {
		t.Fatalf("loadConfigFile() error = %v", err)
	}
	if cfg.Compiler != config.DefaultCompiler {
		t.Errorf("expected compiler to round trip, got %q", cfg.Compiler)
	}
}
