package markdown

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

//nolint:gochecknoglobals // Compiled once.
var (
	jsxElement     = regexp.MustCompile(`<[A-Za-z][\w.]*(\s+[\w-]+(=\{|="))?[^<>]*/?>`)
	typeAnnotation = regexp.MustCompile(`(?m)(\binterface\s+\w+\s*\{|\btype\s+\w+(<[^>]*>)?\s*=|\)\s*:\s*\w+|\b(const|let|var)\s+\w+\s*:\s*\w+|\bas\s+const\b|\benum\s+\w+\s*\{)`)
)

// classifierCandidates bounds the enry classifier to the languages fences
// commonly hold.
//
//nolint:gochecknoglobals // Read-only.
var classifierCandidates = []string{
	"JavaScript", "TypeScript", "TSX",
	"Go", "Python", "Shell", "Ruby", "Rust", "Java", "C", "C++",
	"SQL", "JSON", "YAML", "HTML", "CSS", "Markdown", "Dockerfile",
}

// Detect guesses the enry language of untagged fence content. It returns ""
// when nothing is recognized with confidence.
func Detect(content []byte) string {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return ""
	}

	// A shebang is the strongest signal.
	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return lang
	}

	if lang := detectOther(trimmed); lang != "" {
		return lang
	}
	if lang := detectScript(string(content)); lang != "" {
		return lang
	}

	if lang, safe := enry.GetLanguageByClassifier(content, classifierCandidates); safe {
		return lang
	}
	return ""
}

// detectOther recognizes languages whose snippets would otherwise pass the
// script patterns below.
func detectOther(trimmed []byte) string {
	lower := bytes.ToLower(trimmed)
	s := string(trimmed)

	switch {
	case bytes.HasPrefix(trimmed, []byte("package ")):
		return "Go"
	case bytes.Contains(lower, []byte("<!doctype html")), bytes.HasPrefix(lower, []byte("<html")):
		return "HTML"
	case (bytes.HasPrefix(trimmed, []byte("{")) || bytes.HasPrefix(trimmed, []byte("["))) &&
		bytes.Contains(trimmed, []byte(`":`)):
		return "JSON"
	case strings.Contains(s, "def ") && strings.Contains(s, "):"),
		strings.Contains(s, "__name__"):
		return "Python"
	case strings.Contains(s, "fn main()"), strings.Contains(s, "println!"), strings.Contains(s, "let mut "):
		return "Rust"
	case bytes.HasPrefix(trimmed, []byte("FROM ")):
		return "Dockerfile"
	}

	upper := strings.ToUpper(s)
	for _, kw := range []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "CREATE "} {
		if strings.HasPrefix(upper, kw) {
			return "SQL"
		}
	}
	return ""
}

// detectScript separates TypeScript from JavaScript and spots JSX.
func detectScript(s string) string {
	if !looksLikeScript(s) {
		return ""
	}

	typed := typeAnnotation.MatchString(s)
	markup := jsxElement.MatchString(s) && strings.Contains(s, "return")

	switch {
	case typed && markup:
		return langTSX
	case typed:
		return langTypeScript
	case markup:
		return langJSX
	default:
		return langJavaScript
	}
}

func looksLikeScript(s string) bool {
	for _, marker := range []string{
		"=>", "const ", "let ", "console.log", "function ", "import ", "export ",
		"require(", "interface ",
	} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
