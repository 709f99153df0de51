package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/sfcheck/pkg/issue"
)

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version string           `json:"version"`
	Global  []JSONIssue      `json:"global"`
	Files   []JSONFileResult `json:"files"`
	Summary JSONSummary      `json:"summary"`
}

// JSONFileResult represents a single file's results.
type JSONFileResult struct {
	Path   string      `json:"path"`
	Issues []JSONIssue `json:"issues"`
}

// JSONIssue represents a single issue.
type JSONIssue struct {
	Origin      string `json:"origin,omitempty"`
	Code        string `json:"code"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	StartLine   int    `json:"startLine,omitempty"`
	StartColumn int    `json:"startColumn,omitempty"`
	EndLine     int    `json:"endLine,omitempty"`
	EndColumn   int    `json:"endColumn,omitempty"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	FilesChecked    int            `json:"filesChecked"`
	FilesWithIssues int            `json:"filesWithIssues"`
	TotalIssues     int            `json:"totalIssues"`
	BySeverity      map[string]int `json:"bySeverity"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output := r.buildOutput(result)

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode JSON: %w", err)
	}

	return output.Summary.TotalIssues, nil
}

func (r *JSONReporter) buildOutput(result *Result) *JSONOutput {
	stats := result.Stats()

	output := &JSONOutput{
		Version: "1.0.0",
		Global:  make([]JSONIssue, 0),
		Files:   make([]JSONFileResult, 0),
		Summary: JSONSummary{
			FilesChecked:    stats.FilesChecked,
			FilesWithIssues: stats.FilesWithIssues,
			TotalIssues:     stats.Total,
			BySeverity:      make(map[string]int, len(stats.BySeverity)),
		},
	}
	for sev, n := range stats.BySeverity {
		output.Summary.BySeverity[string(sev)] = n
	}

	for _, group := range result.groupByFile() {
		issues := make([]JSONIssue, 0, len(group.Issues))
		for _, is := range group.Issues {
			issues = append(issues, toJSONIssue(is))
		}

		if group.Path == "" {
			output.Global = issues
			continue
		}
		output.Files = append(output.Files, JSONFileResult{
			Path:   displayPath(r.opts.WorkingDir, group.Path),
			Issues: issues,
		})
	}

	return output
}

func toJSONIssue(is issue.Issue) JSONIssue {
	out := JSONIssue{
		Origin:   is.Origin,
		Code:     is.Code,
		Severity: string(is.Severity),
		Message:  is.Message,
	}
	if is.Location != nil {
		out.StartLine = is.Location.Start.Line
		out.StartColumn = is.Location.Start.Column
		out.EndLine = is.Location.End.Line
		out.EndColumn = is.Location.End.Column
	}
	return out
}
