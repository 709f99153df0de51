// Package issue defines the diagnostic record shared by the compiler host,
// the embedded-source rewriter, and the reporters.
package issue

import (
	"cmp"
	"slices"
	"strconv"
)

// Severity is the severity level of an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Position is a 1-based line/column pair.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// String renders a position as "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Location is the source range an issue refers to.
type Location struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Issue is a single diagnostic produced by a compiler or a linter.
type Issue struct {
	// Origin names the tool that produced the issue ("typescript", "eslint", "syntax").
	Origin string `json:"origin"`

	// Severity is the issue severity.
	Severity Severity `json:"severity"`

	// Code is the tool-specific identifier (e.g. "TS2322" or an ESLint rule).
	Code string `json:"code"`

	// Message is the human-readable description.
	Message string `json:"message"`

	// File is the file the issue belongs to. Empty for global issues.
	File string `json:"file,omitempty"`

	// Source is the full text of File, loaded for code frames. Optional.
	Source string `json:"-"`

	// Location is the affected range. Nil when the issue has no position.
	Location *Location `json:"location,omitempty"`
}

// Compare orders issues by file, then location, then code.
func Compare(a, b Issue) int {
	if c := cmp.Compare(a.File, b.File); c != 0 {
		return c
	}
	if c := compareLocation(a.Location, b.Location); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Code, b.Code); c != 0 {
		return c
	}
	return cmp.Compare(a.Message, b.Message)
}

func compareLocation(a, b *Location) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if c := cmp.Compare(a.Start.Line, b.Start.Line); c != 0 {
		return c
	}
	return cmp.Compare(a.Start.Column, b.Start.Column)
}

// Sort sorts issues in place using Compare.
func Sort(issues []Issue) {
	slices.SortStableFunc(issues, Compare)
}

// CountBySeverity returns the number of issues per severity.
func CountBySeverity(issues []Issue) map[Severity]int {
	counts := make(map[Severity]int, 2)
	for _, is := range issues {
		counts[is.Severity]++
	}
	return counts
}

// Stats summarizes the issues of a run.
type Stats struct {
	FilesChecked    int
	FilesWithIssues int
	Total           int
	BySeverity      map[Severity]int
}

// Summarize computes Stats for issues found while checking files.
// Issues without a file count toward the totals only.
func Summarize(files []string, issues []Issue) Stats {
	withIssues := make(map[string]struct{})
	for _, is := range issues {
		if is.File != "" {
			withIssues[is.File] = struct{}{}
		}
	}
	return Stats{
		FilesChecked:    len(files),
		FilesWithIssues: len(withIssues),
		Total:           len(issues),
		BySeverity:      CountBySeverity(issues),
	}
}
