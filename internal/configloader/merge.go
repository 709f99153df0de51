package configloader

import "github.com/yaklabco/sfcheck/pkg/config"

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Pointer values: override overwrites base if override is non-nil
//   - Slices: override replaces base entirely if override is non-nil
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := base.Clone()

	// Scalars: override overwrites base if set (non-zero value)
	if override.Compiler != "" {
		result.Compiler = override.Compiler
	}
	if override.Markdown.Flavor != "" {
		result.Markdown.Flavor = override.Markdown.Flavor
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Formatter != "" {
		result.Formatter = override.Formatter
	}
	if override.Color != "" {
		result.Color = override.Color
	}
	if override.ESLintResults != "" {
		result.ESLintResults = override.ESLintResults
	}

	// CLI-only switches can only be turned on.
	if override.Watch {
		result.Watch = true
	}

	// Pointers: an explicit false or zero in override wins.
	result.Extensions.Vue = pick(result.Extensions.Vue, override.Extensions.Vue)
	result.Extensions.Markdown = pick(result.Extensions.Markdown, override.Extensions.Markdown)
	result.Markdown.DetectUntagged = pick(result.Markdown.DetectUntagged, override.Markdown.DetectUntagged)
	result.CodeFrame.LinesAbove = pick(result.CodeFrame.LinesAbove, override.CodeFrame.LinesAbove)
	result.CodeFrame.LinesBelow = pick(result.CodeFrame.LinesBelow, override.CodeFrame.LinesBelow)

	// Slices: override replaces base entirely if non-nil
	if override.Include != nil {
		result.Include = append([]string(nil), override.Include...)
	}
	if override.Exclude != nil {
		result.Exclude = append([]string(nil), override.Exclude...)
	}

	return result
}

func pick[T any](base, override *T) *T {
	if override == nil {
		return base
	}
	v := *override
	return &v
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
