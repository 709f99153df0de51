// Package pretty renders issues and run summaries for terminals.
package pretty

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/yaklabco/sfcheck/pkg/issue"
)

// Terminal palette (ANSI 16).
const (
	colorRed    = lipgloss.Color("9")
	colorGreen  = lipgloss.Color("10")
	colorYellow = lipgloss.Color("11")
	colorBlue   = lipgloss.Color("12")
	colorGray   = lipgloss.Color("8")
	colorSilver = lipgloss.Color("7")
)

// Styles holds the renderers for one issue line, its code frame, and the
// summary.
type Styles struct {
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	FilePath lipgloss.Style
	Location lipgloss.Style
	// Origin renders the "(typescript)" or "(eslint)" tag.
	Origin  lipgloss.Style
	Message lipgloss.Style

	SourceLine lipgloss.Style
	Caret      lipgloss.Style

	Success lipgloss.Style
	Dim     lipgloss.Style
}

// NewStyles returns colored styles, or plain ones when colorEnabled is false.
func NewStyles(colorEnabled bool) *Styles {
	if !colorEnabled {
		return newNoColorStyles()
	}
	return newColorStyles()
}

func newColorStyles() *Styles {
	return &Styles{
		Error:   lipgloss.NewStyle().Foreground(colorRed).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(colorYellow).Bold(true),
		Info:    lipgloss.NewStyle().Foreground(colorBlue).Bold(true),

		FilePath: lipgloss.NewStyle().Bold(true),
		Location: lipgloss.NewStyle().Foreground(colorGray),
		Origin:   lipgloss.NewStyle().Foreground(colorGray),
		Message:  lipgloss.NewStyle(),

		SourceLine: lipgloss.NewStyle().Foreground(colorSilver),
		Caret:      lipgloss.NewStyle().Foreground(colorRed),

		Success: lipgloss.NewStyle().Foreground(colorGreen).Bold(true),
		Dim:     lipgloss.NewStyle().Foreground(colorGray),
	}
}

func newNoColorStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Error:      plain,
		Warning:    plain,
		Info:       plain,
		FilePath:   plain,
		Location:   plain,
		Origin:     plain,
		Message:    plain,
		SourceLine: plain,
		Caret:      plain,
		Success:    plain,
		Dim:        plain,
	}
}

// Severity returns the style for sev. Severities other than error and
// warning, such as the suggestions some lint results carry, use Info.
func (s *Styles) Severity(sev issue.Severity) lipgloss.Style {
	switch sev {
	case issue.SeverityError:
		return s.Error
	case issue.SeverityWarning:
		return s.Warning
	default:
		return s.Info
	}
}

// IsColorEnabled reports whether output to writer should be colored.
// Mode values: "auto" (default), "always", "never".
// In auto mode, color is enabled only if the writer is a TTY and NO_COLOR is not set.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		// https://no-color.org/
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		if f, ok := writer.(*os.File); ok {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		return false
	}
}
