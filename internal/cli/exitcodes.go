package cli

import "github.com/yaklabco/sfcheck/pkg/issue"

// Exit codes for sfcheck.
const (
	// ExitSuccess indicates successful execution with no issues.
	ExitSuccess = 0

	// ExitIssueErrors indicates the check completed but found errors.
	ExitIssueErrors = 1

	// ExitIssueWarnings indicates the check completed but found warnings (when strict mode).
	ExitIssueWarnings = 2

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70
)

// ExitCodeFromStats determines the exit code from issue statistics and strict mode.
func ExitCodeFromStats(stats issue.Stats, strict bool) int {
	if stats.BySeverity[issue.SeverityError] > 0 {
		return ExitIssueErrors
	}

	if strict && stats.BySeverity[issue.SeverityWarning] > 0 {
		return ExitIssueWarnings
	}

	return ExitSuccess
}
