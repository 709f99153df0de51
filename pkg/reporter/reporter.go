// Package reporter writes the issues of a check run in one of several formats.
package reporter

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/yaklabco/sfcheck/pkg/issue"
)

// Result is the outcome of one check run.
type Result struct {
	// Files are the root files that were checked, as host names.
	Files []string

	// Issues are the issues found, already re-anchored to host files.
	Issues []issue.Issue
}

// Stats summarizes the result.
func (r *Result) Stats() issue.Stats {
	if r == nil {
		return issue.Stats{BySeverity: map[issue.Severity]int{}}
	}
	return issue.Summarize(r.Files, r.Issues)
}

// fileGroup holds the issues of one file. Path is empty for global issues.
type fileGroup struct {
	Path   string
	Issues []issue.Issue
}

// groupByFile returns one group per checked file plus one per file that only
// appears in issues, in sorted order. Global issues come first.
func (r *Result) groupByFile() []fileGroup {
	if r == nil {
		return nil
	}

	sorted := append([]issue.Issue(nil), r.Issues...)
	issue.Sort(sorted)

	byFile := lo.GroupBy(sorted, func(is issue.Issue) string { return is.File })

	paths := lo.Uniq(append(lo.Keys(byFile), r.Files...))
	paths = lo.Without(paths, "")
	slices.Sort(paths)

	groups := make([]fileGroup, 0, len(paths)+1)
	if global, ok := byFile[""]; ok {
		groups = append(groups, fileGroup{Issues: global})
	}
	for _, p := range paths {
		groups = append(groups, fileGroup{Path: p, Issues: byFile[p]})
	}
	return groups
}

// Reporter formats and writes check results.
type Reporter interface {
	// Report writes formatted output for the given result.
	// It returns the number of issues reported and any write errors.
	Report(ctx context.Context, result *Result) (int, error)
}

// New creates a Reporter for the specified options.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = DefaultOptions().Writer
	}

	format := opts.Format
	if format == "" {
		format = FormatText
	}

	switch format {
	case FormatJSON:
		return NewJSONReporter(opts), nil
	case FormatSARIF:
		return NewSARIFReporter(opts), nil
	case FormatText:
		return NewTextReporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// displayPath makes path relative to dir when it lies below it.
func displayPath(dir, path string) string {
	if dir == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return filepath.ToSlash(rel)
}
