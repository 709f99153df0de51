package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/sfcheck/pkg/issue"
)

// FormatIssue formats a single issue for terminal output. path is the
// display path of the issue's file. formatted is the formatter output for
// the issue: its first line is the headline, any further lines are a code
// frame.
func (s *Styles) FormatIssue(is *issue.Issue, path, formatted string) string {
	var builder strings.Builder

	headline, frame, _ := strings.Cut(formatted, "\n")

	// Main line: location  severity  headline  (origin)
	builder.WriteString(fmt.Sprintf("  %s  %s  %s",
		s.FormatLocation(path, is.Location),
		s.FormatSeverity(is.Severity),
		s.Message.Render(headline),
	))
	if is.Origin != "" {
		builder.WriteString("  " + s.Origin.Render("("+is.Origin+")"))
	}
	builder.WriteString("\n")

	if frame != "" {
		builder.WriteString(s.FormatCodeFrame(frame))
	}

	return builder.String()
}

// FormatLocation renders "path:line:col". Issues without a location show the
// path alone and global issues show a placeholder.
func (s *Styles) FormatLocation(path string, loc *issue.Location) string {
	if path == "" {
		return s.Dim.Render("<global>")
	}
	if loc == nil {
		return s.FilePath.Render(path)
	}
	return s.FilePath.Render(path) + s.Location.Render(":"+loc.Start.String())
}

// FormatSeverity returns a styled severity string.
func (s *Styles) FormatSeverity(sev issue.Severity) string {
	return s.Severity(sev).Render(string(sev))
}

// FormatCodeFrame indents a code frame under the headline and highlights its
// caret lines.
func (s *Styles) FormatCodeFrame(frame string) string {
	const indent = "  "

	var builder strings.Builder
	for _, line := range strings.Split(frame, "\n") {
		style := s.SourceLine
		if isCaretLine(line) {
			style = s.Caret
		}
		builder.WriteString(indent + style.Render(line) + "\n")
	}
	return builder.String()
}

func isCaretLine(line string) bool {
	gutter, marks, ok := strings.Cut(line, "|")
	if !ok || strings.TrimSpace(gutter) != "" {
		return false
	}
	return strings.Contains(marks, "^") && strings.Trim(marks, " \t^") == ""
}

// FormatFileHeader formats a file header for grouped output.
func (s *Styles) FormatFileHeader(path string, issueCount int) string {
	header := s.FilePath.Render(path)
	switch {
	case issueCount == 1:
		header += s.Dim.Render(" (1 issue)")
	case issueCount > 1:
		header += s.Dim.Render(fmt.Sprintf(" (%d issues)", issueCount))
	}
	return header
}
