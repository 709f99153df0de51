package issue

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
)

// OriginESLint is the origin of issues converted from ESLint results.
const OriginESLint = "eslint"

// LintMessage is a single message from ESLint's JSON formatter.
type LintMessage struct {
	RuleID    *string `json:"ruleId"`
	Severity  int     `json:"severity"`
	Message   string  `json:"message"`
	Line      int     `json:"line"`
	Column    int     `json:"column"`
	EndLine   int     `json:"endLine"`
	EndColumn int     `json:"endColumn"`
}

// LintResult is the per-file result from ESLint's JSON formatter.
type LintResult struct {
	FilePath string        `json:"filePath"`
	Messages []LintMessage `json:"messages"`
}

// ParseLintResults decodes the output of `eslint --format json`.
func ParseLintResults(data []byte) ([]LintResult, error) {
	var results []LintResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("decode eslint results: %w", err)
	}
	return results, nil
}

// FromLintResults converts ESLint results to issues. When loadSource is set,
// the content of each referenced file is read from fsys for code frames.
func FromLintResults(results []LintResult, loadSource bool, fsys afero.Fs) []Issue {
	var issues []Issue
	sources := make(map[string]string)

	for _, result := range results {
		source := ""
		if loadSource && fsys != nil && result.FilePath != "" {
			cached, ok := sources[result.FilePath]
			if !ok {
				if data, err := afero.ReadFile(fsys, result.FilePath); err == nil {
					cached = string(data)
				}
				sources[result.FilePath] = cached
			}
			source = cached
		}

		for _, msg := range result.Messages {
			issues = append(issues, fromLintMessage(result.FilePath, msg, source))
		}
	}

	return issues
}

func fromLintMessage(filePath string, msg LintMessage, source string) Issue {
	var location *Location
	if msg.Line != 0 {
		endLine := msg.EndLine
		if endLine == 0 {
			endLine = msg.Line
		}
		endColumn := msg.EndColumn
		if endColumn == 0 {
			endColumn = msg.Column
		}
		location = &Location{
			Start: Position{Line: msg.Line, Column: msg.Column},
			End:   Position{Line: endLine, Column: endColumn},
		}
	}

	code := "[unknown]"
	if msg.RuleID != nil && *msg.RuleID != "" {
		code = *msg.RuleID
	}

	severity := SeverityError
	if msg.Severity == 1 {
		severity = SeverityWarning
	}

	return Issue{
		Origin:   OriginESLint,
		Severity: severity,
		Code:     code,
		Message:  msg.Message,
		File:     filePath,
		Source:   source,
		Location: location,
	}
}
