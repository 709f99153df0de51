package configloader

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/yaklabco/sfcheck/pkg/config"
)

// envVarPrefix is the prefix for all sfcheck environment variables.
const envVarPrefix = "SFCHECK_"

// envFieldType represents the type of a configuration field.
type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
	envTypeSlice
)

// envMapping defines environment variable to config field mappings.
type envMapping struct {
	field string
	typ   envFieldType
	help  string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"COMPILER":                 {field: "compiler", typ: envTypeString, help: "Vue template-compiler module or bundle path"},
	"EXTENSIONS_VUE":           {field: "extensions.vue", typ: envTypeBool, help: "Enable the .vue adapter: true or false"},
	"EXTENSIONS_MARKDOWN":      {field: "extensions.markdown", typ: envTypeBool, help: "Enable the Markdown adapter: true or false"},
	"MARKDOWN_FLAVOR":          {field: "markdown.flavor", typ: envTypeString, help: "Markdown flavor: commonmark or gfm"},
	"MARKDOWN_DETECT_UNTAGGED": {field: "markdown.detect_untagged", typ: envTypeBool, help: "Classify untagged fences by content: true or false"},
	"INCLUDE":                  {field: "include", typ: envTypeSlice, help: "Comma-separated list of include patterns"},
	"EXCLUDE":                  {field: "exclude", typ: envTypeSlice, help: "Comma-separated list of exclude patterns"},
	"FORMAT":                   {field: "format", typ: envTypeString, help: "Output format: text, json, or sarif"},
	"FORMATTER":                {field: "formatter", typ: envTypeString, help: "Issue formatter: basic or codeframe"},
	"CODE_FRAME_LINES_ABOVE":   {field: "code_frame.lines_above", typ: envTypeInt, help: "Code frame lines above the issue"},
	"CODE_FRAME_LINES_BELOW":   {field: "code_frame.lines_below", typ: envTypeInt, help: "Code frame lines below the issue"},
	"COLOR":                    {field: "color", typ: envTypeString, help: "Colorize output: auto, always, or never"},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with SFCHECK_ (e.g., SFCHECK_COMPILER).
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

// applyEnvValue applies a single environment variable value to the config.
func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	case envTypeSlice:
		return setSliceField(cfg, mapping.field, parseSliceValue(value))
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

// parseSliceValue parses a comma-separated string into a slice.
// Each element is trimmed of whitespace.
func parseSliceValue(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// setStringField sets a string field on the config by field path.
func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "compiler":
		cfg.Compiler = value
	case "markdown.flavor":
		cfg.Markdown.Flavor = config.Flavor(value)
	case "format":
		cfg.Format = config.OutputFormat(value)
	case "formatter":
		cfg.Formatter = config.Formatter(value)
	case "color":
		cfg.Color = value
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

// setBoolField sets a boolean field on the config by field path.
func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "extensions.vue":
		cfg.Extensions.Vue = config.Bool(value)
	case "extensions.markdown":
		cfg.Extensions.Markdown = config.Bool(value)
	case "markdown.detect_untagged":
		cfg.Markdown.DetectUntagged = config.Bool(value)
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

// setIntField sets an integer field on the config by field path.
func setIntField(cfg *config.Config, field string, value int) error {
	switch field {
	case "code_frame.lines_above":
		cfg.CodeFrame.LinesAbove = config.Int(value)
	case "code_frame.lines_below":
		cfg.CodeFrame.LinesBelow = config.Int(value)
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

// setSliceField sets a slice field on the config by field path.
func setSliceField(cfg *config.Config, field string, value []string) error {
	switch field {
	case "include":
		cfg.Include = value
	case "exclude":
		cfg.Exclude = value
	default:
		return fmt.Errorf("unknown slice field: %s", field)
	}
	return nil
}

// GetEnvVarName returns the full environment variable name for a config field.
func GetEnvVarName(field string) string {
	for suffix, mapping := range envMappings {
		if mapping.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// ListEnvVars returns all supported environment variables with their descriptions.
func ListEnvVars() map[string]string {
	vars := make(map[string]string, len(envMappings))
	for suffix, mapping := range envMappings {
		vars[envVarPrefix+suffix] = mapping.help
	}
	return vars
}
