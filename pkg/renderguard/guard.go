// Package renderguard rewrites the render function that a template compiler
// appends to an embedded source.
//
// Compiled templates branch with conditional expressions and pass callbacks
// (slot functions, list iterators) from inside those branches. A type checker
// cannot narrow inside such callbacks, so every function literal reached
// through one or more conditionals gets a leading statement re-asserting
// them:
//
//	cond ? items.map(x => x.name) : null
//
// becomes
//
//	cond ? items.map(x => { if (!((cond))) throw ""; return x.name; }) : null
package renderguard

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"
	"github.com/dop251/goja/parser"

	"github.com/yaklabco/sfcheck/pkg/host"
	"github.com/yaklabco/sfcheck/pkg/textedit"
)

// ErrNoBody is returned when a render declaration has no parsable body.
var ErrNoBody = errors.New("render function has no body")

//nolint:gochecknoglobals // Compiled once.
var (
	renderDecl = regexp.MustCompile(`\bfunction\s+render\s*\(`)

	// typeSyntax matches the TypeScript the render shim adds to compiled
	// code; the first group is blanked before parsing.
	typeSyntax = []*regexp.Regexp{
		regexp.MustCompile(`_resolveComponent\([^\n]*\)(!)`),
		regexp.MustCompile(`\(\.\.\.args(: Parameters<typeof [^>\n]*>)\)`),
	}
)

// parsePrefix stands in for the declaration head so the body parses as plain
// JavaScript regardless of parameter type annotations.
const parsePrefix = "function render()"

// Apply rewrites the synthetic region of file in place. It runs at most once
// per file: later calls are no-ops, as are calls on files without a real end
// or without a render function after it.
func Apply(file *host.SourceFile) error {
	if file.Guarded() {
		return nil
	}
	file.MarkGuarded()

	if !file.HasRealEnd() {
		return nil
	}

	text, err := Rewrite(file.Text, file.RealEnd())
	if err != nil {
		return err
	}
	file.Text = text

	return nil
}

// Rewrite guards the function literals of the first render function
// declared at or after offset from. Text before from is never touched.
// When no render function is found, text is returned unchanged.
func Rewrite(text string, from int) (string, error) {
	if from < 0 || from > len(text) {
		return "", fmt.Errorf("offset %d outside text of length %d", from, len(text))
	}

	loc := renderDecl.FindStringIndex(text[from:])
	if loc == nil {
		return text, nil
	}

	open, end, err := locateBody(text, from+loc[1]-1)
	if err != nil {
		return "", err
	}

	edits, err := guardEdits(text, open, end)
	if err != nil {
		return "", err
	}

	return textedit.Apply(text, edits)
}

// locateBody returns the offsets of the braces delimiting the render body,
// given the offset of the opening parenthesis of its parameter list.
func locateBody(text string, paren int) (int, int, error) {
	depth := 0
	closeParen := -1
	for i := paren; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 {
			closeParen = i
			break
		}
	}
	if closeParen < 0 {
		return 0, 0, ErrNoBody
	}

	open := strings.IndexByte(text[closeParen:], '{')
	if open < 0 {
		return 0, 0, ErrNoBody
	}
	open += closeParen

	end, ok := scanCode(text, open+1)
	if !ok {
		return 0, 0, ErrNoBody
	}

	return open, end, nil
}

// guardEdits parses text[open:end+1] as a function body and returns the
// insertions that guard nested function literals.
func guardEdits(text string, open, end int) ([]textedit.Edit, error) {
	src := parsePrefix + maskTypes(text[open:end+1])

	prog, err := parser.ParseFile(nil, "render.js", src, 0, parser.WithDisableSourceMaps)
	if err != nil {
		return nil, fmt.Errorf("parse render function: %w", err)
	}

	w := &walker{
		text: text,
		// file.Idx is 1-based within src.
		base: open - len(parsePrefix) - 1,
	}
	for _, stmt := range prog.Body {
		w.walkValue(reflect.ValueOf(stmt), nil)
	}
	if w.err != nil {
		return nil, w.err
	}

	return w.edits.Edits(), nil
}

// maskTypes replaces type-only syntax with spaces so the body parses as
// JavaScript at unchanged offsets.
func maskTypes(body string) string {
	buf := []byte(body)
	for _, re := range typeSyntax {
		for _, m := range re.FindAllStringSubmatchIndex(body, -1) {
			for i := m[2]; i < m[3]; i++ {
				buf[i] = ' '
			}
		}
	}
	return string(buf)
}

type walker struct {
	text  string
	base  int
	edits textedit.Builder
	err   error
}

func (w *walker) offset(idx file.Idx) int {
	return int(idx) + w.base
}

func (w *walker) source(node ast.Node) string {
	return w.text[w.offset(node.Idx0()):w.offset(node.Idx1())]
}

// walkValue descends into every AST node reachable from v.
func (w *walker) walkValue(v reflect.Value, assertions []string) {
	switch v.Kind() {
	case reflect.Interface:
		if !v.IsNil() {
			w.walkValue(v.Elem(), assertions)
		}
	case reflect.Pointer:
		if v.IsNil() {
			return
		}
		if node, ok := v.Interface().(ast.Node); ok {
			w.walkNode(node, assertions)
			return
		}
		w.walkValue(v.Elem(), assertions)
	case reflect.Struct:
		w.walkFields(v, assertions)
	case reflect.Slice:
		for i := range v.Len() {
			w.walkValue(v.Index(i), assertions)
		}
	default:
	}
}

func (w *walker) walkFields(v reflect.Value, assertions []string) {
	typ := v.Type()
	for i := range v.NumField() {
		field := typ.Field(i)
		// DeclarationList repeats bindings already reachable from the body.
		if !field.IsExported() || field.Name == "DeclarationList" {
			continue
		}
		w.walkValue(v.Field(i), assertions)
	}
}

func (w *walker) walkNode(node ast.Node, assertions []string) {
	switch n := node.(type) {
	case *ast.ConditionalExpression:
		test := "(" + w.source(n.Test) + ")"
		w.walkValue(reflect.ValueOf(n.Consequent), with(assertions, test))
		w.walkValue(reflect.ValueOf(n.Alternate), with(assertions, "!"+test))
		return

	case *ast.FunctionLiteral:
		if len(assertions) > 0 && n.Body != nil {
			w.edits.Insert(w.offset(n.Body.LeftBrace)+1, guard(assertions))
		}

	case *ast.ArrowFunctionLiteral:
		if len(assertions) == 0 {
			break
		}
		switch body := n.Body.(type) {
		case *ast.BlockStatement:
			w.edits.Insert(w.offset(body.LeftBrace)+1, guard(assertions))
		case *ast.ExpressionBody:
			start, end, ok := w.expressionBounds(body.Expression)
			if !ok {
				w.err = fmt.Errorf("arrow function at offset %d: body not found", w.offset(n.Idx0()))
				return
			}
			w.edits.Insert(start, "{ "+guard(assertions)+" return ")
			w.walkFields(reflect.ValueOf(n).Elem(), assertions)
			// Inserted after the children so nested bodies ending at the
			// same offset close first.
			w.edits.Insert(end, "; }")
			return
		}
	}

	w.walkFields(reflect.ValueOf(node).Elem(), assertions)
}

// expressionBounds returns the extent of an arrow body expression,
// including any parentheses wrapping it.
func (w *walker) expressionBounds(expr ast.Expression) (int, int, bool) {
	i, end := w.offset(expr.Idx0()), w.offset(expr.Idx1())

	for {
		i = skipSpaceBack(w.text, i)
		if i > 0 && w.text[i-1] == '(' {
			i--
			continue
		}
		break
	}
	if i < 2 || w.text[i-2:i] != "=>" {
		return 0, 0, false
	}
	start := skipSpace(w.text, i)

	for open := parenBalance(w.text[start:end]); open > 0; open-- {
		j := skipSpace(w.text, end)
		if j >= len(w.text) || w.text[j] != ')' {
			return 0, 0, false
		}
		end = j + 1
	}

	return start, end, true
}

func with(assertions []string, cond string) []string {
	out := make([]string, len(assertions), len(assertions)+1)
	copy(out, assertions)
	return append(out, cond)
}

func guard(assertions []string) string {
	return `if (!(` + strings.Join(assertions, " && ") + `)) throw "";`
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

func skipSpaceBack(s string, i int) int {
	for i > 0 && isSpace(s[i-1]) {
		i--
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
