package formatter_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/sfcheck/pkg/formatter"
	"github.com/yaklabco/sfcheck/pkg/issue"
)

const source = "const foo: number = \"1\";\nconst bar = 1;\n\nfunction baz() {\n  console.log(baz);\n}\n"

func sampleIssue() issue.Issue {
	return issue.Issue{
		Origin:   "typescript",
		Severity: issue.SeverityError,
		Code:     "TS2322",
		Message:  `Type '"1"' is not assignable to type 'number'.`,
		File:     "src/index.ts",
		Source:   source,
		Location: &issue.Location{
			Start: issue.Position{Line: 1, Column: 7},
			End:   issue.Position{Line: 1, Column: 10},
		},
	}
}

func TestBasic(t *testing.T) {
	t.Parallel()

	format := formatter.Basic()
	assert.Equal(t, `TS2322: Type '"1"' is not assignable to type 'number'.`, format(sampleIssue()))

	global := issue.Issue{Code: "TS6053", Message: "File not found."}
	assert.Equal(t, "TS6053: File not found.", format(global))
}

func TestCodeFrame(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts formatter.CodeFrameOptions
		want []string
	}{
		{
			name: "default lines",
			opts: formatter.DefaultCodeFrameOptions(),
			want: []string{
				`TS2322: Type '"1"' is not assignable to type 'number'.`,
				`  > 1 | const foo: number = "1";`,
				`      |       ^^^`,
				`    2 | const bar = 1;`,
				`    3 | `,
				`    4 | function baz() {`,
			},
		},
		{
			name: "one line below",
			opts: formatter.CodeFrameOptions{LinesAbove: 2, LinesBelow: 1},
			want: []string{
				`TS2322: Type '"1"' is not assignable to type 'number'.`,
				`  > 1 | const foo: number = "1";`,
				`      |       ^^^`,
				`    2 | const bar = 1;`,
			},
		},
		{
			name: "no context",
			opts: formatter.CodeFrameOptions{},
			want: []string{
				`TS2322: Type '"1"' is not assignable to type 'number'.`,
				`  > 1 | const foo: number = "1";`,
				`      |       ^^^`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := formatter.CodeFrame(tt.opts)(sampleIssue())
			assert.Equal(t, strings.Join(tt.want, "\n"), got)
		})
	}
}

func TestCodeFrame_FallsBackToBasic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*issue.Issue)
	}{
		{name: "no file", mutate: func(is *issue.Issue) { is.File = "" }},
		{name: "no location", mutate: func(is *issue.Issue) { is.Location = nil }},
		{name: "no source", mutate: func(is *issue.Issue) { is.Source = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			is := sampleIssue()
			tt.mutate(&is)
			got := formatter.CodeFrame(formatter.DefaultCodeFrameOptions())(is)
			assert.Equal(t, formatter.Basic()(is), got)
		})
	}
}

func TestFrame(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		loc  issue.Location
		opts formatter.CodeFrameOptions
		want []string
	}{
		{
			name: "lines above and wide gutter",
			loc: issue.Location{
				Start: issue.Position{Line: 10, Column: 3},
				End:   issue.Position{Line: 10, Column: 4},
			},
			opts: formatter.CodeFrameOptions{LinesAbove: 2, LinesBelow: 0},
			want: []string{
				"   8 | l8",
				"   9 | l9",
				"> 10 | l10",
				"     |   ^",
			},
		},
		{
			name: "empty range gets one caret",
			loc: issue.Location{
				Start: issue.Position{Line: 2, Column: 2},
				End:   issue.Position{Line: 2, Column: 2},
			},
			want: []string{
				"> 2 | l2",
				"    |  ^",
			},
		},
		{
			name: "no column marks the line only",
			loc: issue.Location{
				Start: issue.Position{Line: 3},
				End:   issue.Position{Line: 3},
			},
			want: []string{
				"> 3 | l3",
			},
		},
		{
			name: "multi line range",
			loc: issue.Location{
				Start: issue.Position{Line: 1, Column: 2},
				End:   issue.Position{Line: 3, Column: 2},
			},
			want: []string{
				"> 1 | l1",
				"    |  ^",
				"> 2 | l2",
				"    | ^^",
				"> 3 | l3",
				"    | ^^",
			},
		},
		{
			name: "line past the end is clamped",
			loc: issue.Location{
				Start: issue.Position{Line: 99, Column: 1},
				End:   issue.Position{Line: 99, Column: 2},
			},
			want: []string{
				"> 10 | l10",
				"     | ^",
			},
		},
	}

	lines := make([]string, 0, 10)
	for i := 1; i <= 10; i++ {
		lines = append(lines, "l"+strconv.Itoa(i))
	}
	src := strings.Join(lines, "\n")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := formatter.Frame(src, tt.loc, tt.opts)
			assert.Equal(t, strings.Join(tt.want, "\n"), got)
		})
	}
}

func TestFrame_KeepsTabs(t *testing.T) {
	t.Parallel()

	loc := issue.Location{
		Start: issue.Position{Line: 1, Column: 3},
		End:   issue.Position{Line: 1, Column: 4},
	}
	got := formatter.Frame("\tx y", loc, formatter.CodeFrameOptions{})
	assert.Equal(t, "> 1 | \tx y\n    | \t ^", got)
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		typ       formatter.Type
		wantFrame bool
	}{
		{name: "empty selects basic", typ: ""},
		{name: "basic", typ: formatter.TypeBasic},
		{name: "codeframe", typ: formatter.TypeCodeFrame, wantFrame: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			format, err := formatter.New(tt.typ, formatter.DefaultCodeFrameOptions())
			require.NoError(t, err)

			got := format(sampleIssue())
			assert.Equal(t, tt.wantFrame, strings.Contains(got, "\n  > 1 |"))
		})
	}
}

func TestNew_Unknown(t *testing.T) {
	t.Parallel()

	_, err := formatter.New("unknown-type", formatter.DefaultCodeFrameOptions())
	require.Error(t, err)

	var unknown *formatter.UnknownTypeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, `Unknown "unknown-type" formatter. Available types are: basic, codeframe.`, err.Error())
}
