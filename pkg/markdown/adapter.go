// Package markdown resolves the script embedded in Markdown documents: the
// fenced code blocks written in JavaScript or TypeScript.
//
// Every line outside those blocks is blanked, so a diagnostic on line N of
// the virtual source points at line N of the document. Blocks keep their
// column too: the indentation or blockquote prefix before a fenced line is
// replaced by spaces.
package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-enry/go-enry/v2"
	"github.com/spf13/afero"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/yaklabco/sfcheck/internal/logging"
	"github.com/yaklabco/sfcheck/pkg/embedded"
)

// Flavor identifies the Markdown dialect used to find fenced blocks.
const (
	FlavorCommonMark = "commonmark"
	FlavorGFM        = "gfm"
)

// emptyModule stands in for documents without script blocks.
const emptyModule = "export {};\n"

// Extensions are the host document extensions handled by the adapter.
//
//nolint:gochecknoglobals // Read-only.
var Extensions = []string{".md", ".mdx"}

// Enry language names of the fences that are extracted.
const (
	langJavaScript = "JavaScript"
	langJSX        = "JSX"
	langTypeScript = "TypeScript"
	langTSX        = "TSX"
)

// Compile-time interface check.
var _ embedded.Resolver = (*Adapter)(nil)

// Adapter is an embedded.Resolver for Markdown documents.
type Adapter struct {
	fs     afero.Fs
	flavor string
	detect bool
	md     goldmark.Markdown
	logger *log.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// WithUntaggedDetection makes fences without an info string count when
// their content looks like JavaScript or TypeScript.
func WithUntaggedDetection(enabled bool) Option {
	return func(a *Adapter) {
		a.detect = enabled
	}
}

// New creates an adapter reading documents from fsys. Unknown flavors fall
// back to CommonMark.
func New(fsys afero.Fs, flavor string, opts ...Option) *Adapter {
	f := flavorOrDefault(flavor)
	a := &Adapter{
		fs:     fsys,
		flavor: f,
		md:     newGoldmark(f),
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Flavor returns the configured Markdown flavor.
func (a *Adapter) Flavor() string {
	return a.flavor
}

// Resolve implements embedded.Resolver.
func (a *Adapter) Resolve(hostFileName string) (*embedded.Source, error) {
	data, err := afero.ReadFile(a.fs, hostFileName)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", hostFileName, err)
	}

	blocks := a.scriptBlocks(data)

	a.logger.Debug("markdown script blocks",
		logging.FieldHostFile, hostFileName,
		logging.FieldBlocks, len(blocks))

	if len(blocks) == 0 {
		return &embedded.Source{Text: emptyModule, Extension: ".js"}, nil
	}

	return &embedded.Source{
		Text:      project(data, blocks),
		Extension: extensionFor(blocks),
	}, nil
}

// block is one extracted fence.
type block struct {
	language string
	lines    *text.Segments
}

func (a *Adapter) scriptBlocks(source []byte) []block {
	doc := a.md.Parser().Parse(text.NewReader(source), parser.WithContext(parser.NewContext()))

	var blocks []block
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fence, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		lang := a.fenceLanguage(fence, source)
		if scriptLanguage(lang) {
			blocks = append(blocks, block{language: lang, lines: fence.Lines()})
		}
		return ast.WalkSkipChildren, nil
	})

	return blocks
}

func (a *Adapter) fenceLanguage(fence *ast.FencedCodeBlock, source []byte) string {
	if info := fence.Language(source); len(info) > 0 {
		return languageForTag(string(info))
	}
	if !a.detect {
		return ""
	}

	var content bytes.Buffer
	lines := fence.Lines()
	for i := range lines.Len() {
		seg := lines.At(i)
		content.Write(seg.Value(source))
	}
	return Detect(content.Bytes())
}

// languageForTag resolves a fence info word to an enry language name.
func languageForTag(tag string) string {
	// enry has no alias for React's file extension.
	if strings.EqualFold(tag, "jsx") {
		return langJSX
	}
	if lang, ok := enry.GetLanguageByAlias(tag); ok {
		return lang
	}
	return ""
}

func scriptLanguage(lang string) bool {
	switch lang {
	case langJavaScript, langJSX, langTypeScript, langTSX:
		return true
	default:
		return false
	}
}

// extensionFor picks the one native extension able to hold every block.
func extensionFor(blocks []block) string {
	var ts, tsx, jsx bool
	for _, b := range blocks {
		switch b.language {
		case langTSX:
			tsx = true
		case langTypeScript:
			ts = true
		case langJSX:
			jsx = true
		}
	}

	switch {
	case tsx, ts && jsx:
		return ".tsx"
	case ts:
		return ".ts"
	case jsx:
		return ".jsx"
	default:
		return ".js"
	}
}

// project keeps the fenced lines of blocks at their original line and
// column and blanks everything else.
func project(source []byte, blocks []block) string {
	starts := lineStarts(source)
	lines := make([]string, len(starts))

	for _, b := range blocks {
		for i := range b.lines.Len() {
			seg := b.lines.At(i)
			line := sort.Search(len(starts), func(j int) bool { return starts[j] > seg.Start }) - 1
			indent := max(0, seg.Start-starts[line]-seg.Padding)

			value := strings.TrimRight(string(seg.Value(source)), "\r\n")
			lines[line] = strings.Repeat(" ", indent) + value
		}
	}

	return strings.Join(lines, "\n")
}

// lineStarts returns the offset of the first byte of every line.
func lineStarts(source []byte) []int {
	starts := []int{0}
	for i, c := range source {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func flavorOrDefault(flavor string) string {
	switch flavor {
	case FlavorCommonMark, FlavorGFM:
		return flavor
	default:
		return FlavorCommonMark
	}
}

//nolint:ireturn // goldmark.Markdown is an external interface type
func newGoldmark(flavor string) goldmark.Markdown {
	var opts []goldmark.Option
	if flavor == FlavorGFM {
		opts = append(opts, goldmark.WithExtensions(extension.GFM))
	}
	return goldmark.New(opts...)
}
