package formatter

import (
	"strconv"
	"strings"

	"github.com/yaklabco/sfcheck/pkg/issue"
)

// Default frame size.
const (
	DefaultLinesAbove = 2
	DefaultLinesBelow = 3
)

// CodeFrameOptions sizes the frame around an issue.
type CodeFrameOptions struct {
	LinesAbove int `json:"lines_above" yaml:"lines_above" mapstructure:"lines_above"`
	LinesBelow int `json:"lines_below" yaml:"lines_below" mapstructure:"lines_below"`
}

// DefaultCodeFrameOptions returns two lines above and three below.
func DefaultCodeFrameOptions() CodeFrameOptions {
	return CodeFrameOptions{LinesAbove: DefaultLinesAbove, LinesBelow: DefaultLinesBelow}
}

// marker is the caret range drawn under one line. A zero start marks the
// line without drawing carets.
type marker struct {
	column int
	count  int
}

// Frame renders the lines around loc. Marked lines start with ">" and are
// followed by a caret line when the location has columns.
func Frame(source string, loc issue.Location, opts CodeFrameOptions) string {
	lines := strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")

	startLine := clamp(loc.Start.Line, 1, len(lines))
	endLine := clamp(max(loc.End.Line, loc.Start.Line), startLine, len(lines))

	markers := markLines(lines, startLine, endLine, loc.Start.Column, loc.End.Column)

	first := max(startLine-opts.LinesAbove, 1)
	last := min(endLine+max(opts.LinesBelow, 0), len(lines))
	width := len(strconv.Itoa(last))

	var sb strings.Builder
	for n := first; n <= last; n++ {
		if n > first {
			sb.WriteByte('\n')
		}
		line := lines[n-1]
		gutter := " " + padLeft(strconv.Itoa(n), width) + " |"

		m, marked := markers[n]
		if !marked {
			sb.WriteString(" " + gutter + " " + line)
			continue
		}

		sb.WriteString(">" + gutter + " " + line)
		if m.column == 0 && m.count == 0 {
			continue
		}
		sb.WriteString("\n " + strings.Repeat(" ", len(gutter)-1) + "| ")
		sb.WriteString(spacing(line, m.column))
		sb.WriteString(strings.Repeat("^", max(m.count, 1)))
	}
	return sb.String()
}

func markLines(lines []string, startLine, endLine, startCol, endCol int) map[int]marker {
	markers := make(map[int]marker, endLine-startLine+1)

	if startLine == endLine {
		switch {
		case startCol <= 0:
			markers[startLine] = marker{}
		case endCol <= startCol:
			markers[startLine] = marker{column: startCol, count: 1}
		default:
			markers[startLine] = marker{column: startCol, count: endCol - startCol}
		}
		return markers
	}

	for n := startLine; n <= endLine; n++ {
		length := len(lines[n-1])
		switch {
		case startCol <= 0:
			markers[n] = marker{}
		case n == startLine:
			markers[n] = marker{column: startCol, count: length - startCol + 1}
		case n == endLine:
			markers[n] = marker{column: 1, count: endCol}
		default:
			markers[n] = marker{column: 1, count: length}
		}
	}
	return markers
}

// spacing keeps tabs so carets line up with the rendered source.
func spacing(line string, column int) string {
	n := min(max(column-1, 0), len(line))
	var sb strings.Builder
	for _, r := range line[:n] {
		if r == '\t' {
			sb.WriteRune('\t')
		} else {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
