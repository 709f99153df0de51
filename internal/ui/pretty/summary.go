package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/sfcheck/pkg/issue"
)

const (
	wordFile  = "file"
	wordFiles = "files"
)

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "5 issues (3 errors, 2 warnings) in 2 files".
func (s *Styles) FormatSummaryOneLine(stats issue.Stats) string {
	if stats.Total == 0 {
		return s.Success.Render("No issues found") +
			s.Dim.Render(fmt.Sprintf(" (%d %s checked)", stats.FilesChecked, plural(stats.FilesChecked, wordFile, wordFiles))) + "\n"
	}

	var severityParts []string
	if errors := stats.BySeverity[issue.SeverityError]; errors > 0 {
		severityParts = append(severityParts, s.Severity(issue.SeverityError).Render(fmt.Sprintf("%d %s", errors, plural(errors, "error", "errors"))))
	}
	if warnings := stats.BySeverity[issue.SeverityWarning]; warnings > 0 {
		severityParts = append(severityParts, s.Severity(issue.SeverityWarning).Render(fmt.Sprintf("%d %s", warnings, plural(warnings, "warning", "warnings"))))
	}

	line := fmt.Sprintf("%d %s", stats.Total, plural(stats.Total, "issue", "issues"))
	if len(severityParts) > 0 {
		line += " (" + strings.Join(severityParts, ", ") + ")"
	}
	line += fmt.Sprintf(" in %d %s", stats.FilesWithIssues, plural(stats.FilesWithIssues, wordFile, wordFiles))

	return line + "\n"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
