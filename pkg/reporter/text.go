package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/sfcheck/internal/ui/pretty"
	"github.com/yaklabco/sfcheck/pkg/formatter"
	"github.com/yaklabco/sfcheck/pkg/issue"
)

// TextReporter formats results as styled terminal output.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	format formatter.Formatter
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	format := opts.Formatter
	if format == nil {
		format = formatter.Basic()
	}
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		format: format,
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(ctx context.Context, result *Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || (len(result.Files) == 0 && len(result.Issues) == 0) {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Success.Render("No files to check."))
		}
		return 0, nil
	}

	var total int
	if r.opts.GroupByFile {
		total = r.reportGrouped(ctx, result)
	} else {
		total = r.reportFlat(ctx, result)
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats()))
	}

	return total, nil
}

// reportGrouped writes issues grouped by file.
func (r *TextReporter) reportGrouped(_ context.Context, result *Result) int {
	var total int

	for _, group := range result.groupByFile() {
		if len(group.Issues) == 0 {
			continue
		}

		if group.Path != "" {
			fmt.Fprintln(r.bw, r.styles.FormatFileHeader(displayPath(r.opts.WorkingDir, group.Path), len(group.Issues)))
		}
		for i := range group.Issues {
			r.writeIssue(&group.Issues[i])
			total++
		}

		// Blank line between files
		fmt.Fprintln(r.bw)
	}

	return total
}

// reportFlat writes issues in the order they were produced.
func (r *TextReporter) reportFlat(_ context.Context, result *Result) int {
	for i := range result.Issues {
		r.writeIssue(&result.Issues[i])
	}
	return len(result.Issues)
}

func (r *TextReporter) writeIssue(is *issue.Issue) {
	path := displayPath(r.opts.WorkingDir, is.File)
	fmt.Fprint(r.bw, r.styles.FormatIssue(is, path, r.format(*is)))
}
