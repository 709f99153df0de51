// Package formatter renders a single issue as text.
//
// Two formatters exist: basic prints "CODE: message", codeframe adds an
// excerpt of the source with the affected range underlined.
package formatter

import (
	"strings"

	"github.com/yaklabco/sfcheck/pkg/issue"
)

// Type names a formatter.
type Type string

const (
	TypeBasic     Type = "basic"
	TypeCodeFrame Type = "codeframe"
)

// Formatter renders one issue.
type Formatter func(issue.Issue) string

// UnknownTypeError is returned by New for an unrecognized formatter type.
type UnknownTypeError struct {
	Type Type
}

func (e *UnknownTypeError) Error() string {
	return `Unknown "` + string(e.Type) + `" formatter. Available types are: basic, codeframe.`
}

// New returns the formatter of type t. An empty type selects basic.
func New(t Type, opts CodeFrameOptions) (Formatter, error) {
	switch t {
	case "", TypeBasic:
		return Basic(), nil
	case TypeCodeFrame:
		return CodeFrame(opts), nil
	default:
		return nil, &UnknownTypeError{Type: t}
	}
}

// Basic renders "CODE: message".
func Basic() Formatter {
	return func(is issue.Issue) string {
		return is.Code + ": " + is.Message
	}
}

// CodeFrame renders the basic line followed by a frame around the issue
// location. The frame is omitted unless the issue has a file, a location
// and its source text.
func CodeFrame(opts CodeFrameOptions) Formatter {
	basic := Basic()
	return func(is issue.Issue) string {
		out := basic(is)
		if is.File == "" || is.Location == nil || is.Source == "" {
			return out
		}

		frame := Frame(is.Source, *is.Location, opts)
		if frame == "" {
			return out
		}

		var sb strings.Builder
		sb.WriteString(out)
		for _, line := range strings.Split(frame, "\n") {
			sb.WriteString("\n  ")
			sb.WriteString(line)
		}
		return sb.String()
	}
}
