package configloader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yaklabco/sfcheck/pkg/config"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "code_frame.lines_above").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)

	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues (e.g., settings for a disabled adapter).
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

// knownFlavors lists valid flavor values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownFlavors = map[config.Flavor]bool{
	config.FlavorCommonMark: true,
	config.FlavorGFM:        true,
}

// knownFormats lists valid output format values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownFormats = map[config.OutputFormat]bool{
	config.FormatText:  true,
	config.FormatJSON:  true,
	config.FormatSARIF: true,
}

// knownFormatters lists valid formatter values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownFormatters = map[config.Formatter]bool{
	config.FormatterBasic:     true,
	config.FormatterCodeFrame: true,
}

// knownColorModes lists valid color values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownColorModes = map[string]bool{
	"auto":   true,
	"always": true,
	"never":  true,
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	if cfg == nil {
		return &ValidationResult{}
	}

	result := &ValidationResult{}

	if cfg.Markdown.Flavor != "" && !knownFlavors[cfg.Markdown.Flavor] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "markdown.flavor",
			Value:   cfg.Markdown.Flavor,
			Message: fmt.Sprintf("invalid flavor %q; must be one of: commonmark, gfm", cfg.Markdown.Flavor),
		})
	}

	if cfg.Format != "" && !knownFormats[cfg.Format] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "format",
			Value:   cfg.Format,
			Message: fmt.Sprintf("invalid format %q; must be one of: text, json, sarif", cfg.Format),
		})
	}

	if cfg.Formatter != "" && !knownFormatters[cfg.Formatter] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "formatter",
			Value:   cfg.Formatter,
			Message: fmt.Sprintf("invalid formatter %q; must be one of: basic, codeframe", cfg.Formatter),
		})
	}

	if cfg.Color != "" && !knownColorModes[cfg.Color] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "color",
			Value:   cfg.Color,
			Message: fmt.Sprintf("invalid color mode %q; must be one of: auto, always, never", cfg.Color),
		})
	}

	validateLines(result, "code_frame.lines_above", cfg.CodeFrame.LinesAbove)
	validateLines(result, "code_frame.lines_below", cfg.CodeFrame.LinesBelow)

	validatePatterns(result, "include", cfg.Include)
	validatePatterns(result, "exclude", cfg.Exclude)

	validateDisabledAdapters(cfg, result)

	return result
}

func validateLines(result *ValidationResult, field string, lines *int) {
	if lines != nil && *lines < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   field,
			Value:   *lines,
			Message: "must be >= 0",
		})
	}
}

// validatePatterns checks that patterns are valid globs.
func validatePatterns(result *ValidationResult, field string, patterns []string) {
	for i, pattern := range patterns {
		// filepath.Match returns an error only for malformed patterns
		if _, err := filepath.Match(pattern, ""); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Value:   pattern,
				Message: fmt.Sprintf("invalid glob pattern: %v", err),
			})
		}
	}
}

// validateDisabledAdapters warns about settings for an adapter that the same
// configuration turns off.
func validateDisabledAdapters(cfg *config.Config, result *ValidationResult) {
	if cfg.Extensions.Vue != nil && !*cfg.Extensions.Vue && cfg.Compiler != "" {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "compiler",
			Value:   cfg.Compiler,
			Message: "compiler is set but extensions.vue is false; it will be ignored",
		})
	}

	if cfg.Extensions.Markdown != nil && !*cfg.Extensions.Markdown &&
		(cfg.Markdown.Flavor != "" || cfg.Markdown.DetectUntagged != nil) {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "markdown",
			Message: "markdown settings are set but extensions.markdown is false; they will be ignored",
		})
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)

	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}

	return result
}
