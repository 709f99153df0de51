package issue_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/sfcheck/pkg/issue"
)

func TestSort(t *testing.T) {
	t.Parallel()

	issues := []issue.Issue{
		{File: "b.ts", Code: "TS1"},
		{File: "a.ts", Code: "TS2", Location: &issue.Location{Start: issue.Position{Line: 3, Column: 1}}},
		{File: "a.ts", Code: "TS3", Location: &issue.Location{Start: issue.Position{Line: 1, Column: 4}}},
		{File: "a.ts", Code: "TS4"},
	}

	issue.Sort(issues)

	codes := make([]string, 0, len(issues))
	for _, is := range issues {
		codes = append(codes, is.Code)
	}
	assert.Equal(t, []string{"TS4", "TS3", "TS2", "TS1"}, codes)
}

func TestCountBySeverity(t *testing.T) {
	t.Parallel()

	counts := issue.CountBySeverity([]issue.Issue{
		{Severity: issue.SeverityError},
		{Severity: issue.SeverityWarning},
		{Severity: issue.SeverityError},
	})

	assert.Equal(t, 2, counts[issue.SeverityError])
	assert.Equal(t, 1, counts[issue.SeverityWarning])
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	issues := []issue.Issue{
		{File: "a.ts", Severity: issue.SeverityError},
		{File: "a.ts", Severity: issue.SeverityWarning},
		{File: "b.vue", Severity: issue.SeverityError},
		{Severity: issue.SeverityError, Code: "SF1001"},
	}

	stats := issue.Summarize([]string{"a.ts", "b.vue", "c.ts"}, issues)
	assert.Equal(t, 3, stats.FilesChecked)
	assert.Equal(t, 2, stats.FilesWithIssues)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 3, stats.BySeverity[issue.SeverityError])
	assert.Equal(t, 1, stats.BySeverity[issue.SeverityWarning])
}

func TestFromLintResults(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/src/App.vue", []byte("<template></template>\n"), 0o644))

	data := []byte(`[
	  {"filePath": "/src/App.vue", "messages": [
	    {"ruleId": "no-unused-vars", "severity": 1, "message": "unused", "line": 2, "column": 3, "endLine": 2, "endColumn": 9},
	    {"ruleId": null, "severity": 2, "message": "parse error", "line": 4, "column": 1},
	    {"ruleId": "global", "severity": 2, "message": "no position"}
	  ]}
	]`)

	results, err := issue.ParseLintResults(data)
	require.NoError(t, err)

	issues := issue.FromLintResults(results, true, fsys)
	require.Len(t, issues, 3)

	assert.Equal(t, issue.Issue{
		Origin:   "eslint",
		Severity: issue.SeverityWarning,
		Code:     "no-unused-vars",
		Message:  "unused",
		File:     "/src/App.vue",
		Source:   "<template></template>\n",
		Location: &issue.Location{
			Start: issue.Position{Line: 2, Column: 3},
			End:   issue.Position{Line: 2, Column: 9},
		},
	}, issues[0])

	assert.Equal(t, "[unknown]", issues[1].Code)
	assert.Equal(t, issue.SeverityError, issues[1].Severity)
	assert.Equal(t, issue.Position{Line: 4, Column: 1}, issues[1].Location.End)

	assert.Nil(t, issues[2].Location)
}

func TestFromLintResults_WithoutSource(t *testing.T) {
	t.Parallel()

	results := []issue.LintResult{{
		FilePath: "/missing.js",
		Messages: []issue.LintMessage{{Severity: 2, Message: "boom", Line: 1, Column: 1}},
	}}

	issues := issue.FromLintResults(results, true, afero.NewMemMapFs())
	require.Len(t, issues, 1)
	assert.Empty(t, issues[0].Source)
}

func TestParseLintResults_Invalid(t *testing.T) {
	t.Parallel()

	_, err := issue.ParseLintResults([]byte("{"))
	require.Error(t, err)
}
