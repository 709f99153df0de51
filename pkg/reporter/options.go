package reporter

import (
	"io"
	"os"

	"github.com/yaklabco/sfcheck/pkg/formatter"
)

// bufWriterSize is the buffer size for buffered output writers (64 KiB).
const bufWriterSize = 64 * 1024

// Options configures reporter behavior.
type Options struct {
	// Writer is the destination for output (typically os.Stdout).
	Writer io.Writer

	// Format specifies the output format.
	Format Format

	// Color controls colorized output.
	// Values: "auto" (default), "always", "never"
	Color string

	// Formatter renders each issue in text output. Nil uses the basic
	// formatter.
	Formatter formatter.Formatter

	// ShowSummary displays aggregate statistics after results.
	ShowSummary bool

	// GroupByFile groups issues by file (text format).
	GroupByFile bool

	// Compact uses minified output where applicable.
	Compact bool

	// WorkingDir is the directory to make paths relative to.
	// If empty, paths are kept as-is.
	WorkingDir string

	// ToolVersion is reported in SARIF output.
	ToolVersion string
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Writer:      os.Stdout,
		Format:      FormatText,
		Color:       "auto",
		Formatter:   formatter.CodeFrame(formatter.DefaultCodeFrameOptions()),
		ShowSummary: true,
		GroupByFile: true,
		ToolVersion: "dev",
	}
}
