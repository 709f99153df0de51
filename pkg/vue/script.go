package vue

import (
	"regexp"
	"strings"

	"github.com/yaklabco/sfcheck/pkg/embedded"
)

// noScriptSource stands in for components without a script block.
const noScriptSource = "export default {};\n"

//nolint:gochecknoglobals // Compiled once.
var (
	tsSuffix  = regexp.MustCompile(`(?i)\.tsx?$`)
	lineBreak = regexp.MustCompile(`\r?\n`)
)

// ExtensionForLang maps a script lang attribute to a native extension.
// A bare attribute (true) or a missing one means plain JavaScript.
func ExtensionForLang(lang any) string {
	s, ok := lang.(string)
	if !ok {
		return ".js"
	}

	switch s {
	case "ts":
		return ".ts"
	case "tsx":
		return ".tsx"
	default:
		return ".js"
	}
}

// scriptSource selects the embedded script of a component.
func scriptSource(text string, script *Block) *embedded.Source {
	switch {
	case script == nil:
		return &embedded.Source{Text: noScriptSource, Extension: ".js"}

	case script.Attr("src") != nil:
		src, _ := script.Attr("src").(string)
		return &embedded.Source{
			Text:      srcShim(src),
			Extension: ExtensionForLang(script.Attr("lang")),
		}

	default:
		return &embedded.Source{
			Text:      padLines(text, script.Start) + script.Content,
			Extension: ExtensionForLang(script.Attr("lang")),
		}
	}
}

// srcShim re-exports an external script. Import paths cannot end in .ts or
// .tsx, so the suffix is dropped. The path is not checked for existence.
func srcShim(src string) string {
	src = tsSuffix.ReplaceAllString(src, "")
	return strings.Join([]string{
		"// @ts-ignore",
		"export { default } from '" + src + "';",
		"// @ts-ignore",
		"export * from '" + src + "';",
	}, "\n")
}

// padLines returns the newlines that put inline script content on the same
// line it starts on in the component document.
func padLines(text string, start int) string {
	start = max(0, min(start, len(text)))
	lines := len(lineBreak.Split(text[:start], -1))
	return strings.Repeat("\n", lines-1)
}
