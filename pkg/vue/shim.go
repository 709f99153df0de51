package vue

import (
	"fmt"
	"regexp"
	"strings"
	"text/template"
	"unicode"
)

// renderSignature is the untyped render declaration emitted by two-call
// compilers.
const renderSignature = "export function render(_ctx, _cache, $props, $setup, $data, $options)"

// unknownClass types the component instance when the script declares no
// class.
const unknownClass = "any"

// singleCallPrelude declares the ambient types the single-call render shim
// refers to.
const singleCallPrelude = `import * as __fakeVue from 'vue';
import * as __fakeVNode from 'vue/types/vnode';
interface __VNodeData<T> extends __fakeVue.VNodeData {
  model?: {value: T, callback(t: T):void, expression: string},
  directives?: any[]
}
type __ElementVNodeData<T, E> = __VNodeData<T> & {on?: {[key in keyof HTMLElementEventMap]?: ((e: HTMLElementEventMap[key] & E) => void)[] | ((e: HTMLElementEventMap[key] & E) => void)}}`

// renderHelpers types the instance helpers compiled render code calls.
const renderHelpers = `{_e: () => __fakeVue.VNode,
  _v: (x: string) => __fakeVue.VNode,
  _s: (x: any) => string,
  _n: (x: string) => string | number,
  _u: (x: ({key: string, fn: __fakeVNode.ScopedSlot, proxy?: boolean} | null)[], b?: any, c?: boolean, d?: number) => {[key: string]: __fakeVNode.ScopedSlot},
  _i: <T>(x: ReadonlyArray<T>, y: T) => number,
  _q: (x: any, y: any) => boolean,
  _m: (x: number, y?: boolean) => __fakeVue.VNodeChildrenArrayContents,
  _k: (a: number, b: string, c: number, d: string, e: string | ReadonlyArray<string>) => boolean,
  _o: (a: __fakeVue.VNodeChildrenArrayContents | __fakeVue.VNode, b: number, c: string | number) => __fakeVue.VNodeChildrenArrayContents | __fakeVue.VNode,
  _t: (a?: string, b?: __fakeVue.VNodeChildrenArrayContents | null, c?: any, d?: any) => __fakeVue.VNode,
  _b: (a: __fakeVue.VNodeData, b: 'tag', c: __fakeVue.VNodeData, d: boolean, e?: boolean) => __fakeVue.VNodeData,
  _l: (<T, U>(x: Iterable<[T, U]> | undefined, y: (a: U, b: T) => __fakeVue.VNode | __fakeVue.VNode[] | void) => __fakeVue.VNode[])
    & (<T>(x: Iterable<T> | undefined, y: (a: T, b: number) => __fakeVue.VNode | __fakeVue.VNode[] | void) => __fakeVue.VNode[])
    & (<T, K extends keyof T>(x: T, y: (a: T[K], b: K, c: number) => __fakeVue.VNode | __fakeVue.VNode[] | void) => __fakeVue.VNode[]),
  _c: ((<T extends keyof HTMLElementTagNameMap>(a: T, b: __ElementVNodeData<T, {target: HTMLElementTagNameMap[T] & {composing: boolean}}>, c?: __fakeVue.VNodeChildrenArrayContents, d?: number) => __fakeVue.VNode) &
    ((a:string | __fakeVue.Component, c?: __fakeVue.VNodeChildrenArrayContents, d?: number) => __fakeVue.VNode) & (<T>(a:string | __fakeVue.Component, b: __VNodeData<T>, c?: __fakeVue.VNodeChildrenArrayContents, d?: number) => __fakeVue.VNode))}`

// shimTemplates holds one template per compiler shape and variant. The
// variant is the functional flag for single-call compilers and the script
// setup flag for two-call compilers.
//
//nolint:gochecknoglobals // Parsed once.
var shimTemplates = template.Must(template.New("shim").Parse(`
{{- define "single-call" }}
{{ .Prelude }}
function __fakeRender(this: {{ .Class }} & {{ .Helpers }}){var _vm = this;{{ .Body }}}
{{ end -}}

{{- define "single-call-functional" }}
{{ .Prelude }}
function __fakeRender(_h: Vue.CreateElement, _vm: Vue.RenderContext<{{ .Class }}> & {{ .Helpers }}){ {{- .Body -}} }
{{ end -}}

{{- define "two-call" -}}
export function render(_ctx: {{ .Class }}, _cache: Function[], $props: void, $setup: void, $data: void, $options: void)
{{- end -}}

{{- define "two-call-setup" -}}
import {Slots as __Slots} from 'vue';
type __Props = Parameters<typeof setup> extends [infer T] ? T : void;
export function render(_ctx: {$slots: __Slots}, _cache: void, $props: __Props, $setup: ReturnType<typeof setup>, $data: void, $options: void)
{{- end -}}
`))

type shimKey struct {
	shape   Shape
	variant bool
}

//nolint:gochecknoglobals // Read-only lookup table.
var shimNames = map[shimKey]string{
	{ShapeSingleCall, false}: "single-call",
	{ShapeSingleCall, true}:  "single-call-functional",
	{ShapeTwoCall, false}:    "two-call",
	{ShapeTwoCall, true}:     "two-call-setup",
}

//nolint:gochecknoglobals // Compiled once.
var classDecl = regexp.MustCompile(`(?i)export\s+default\s+class\s+(\w+)`)

// rewrite is one regular expression substitution applied to compiled
// render code.
type rewrite struct {
	pattern     *regexp.Regexp
	replacement string
}

// classRewrites adapt two-call render code to a class component. Cached
// event handlers take the parameters of the method they forward to.
//
//nolint:gochecknoglobals // Compiled once.
var classRewrites = []rewrite{
	{regexp.MustCompile(`(_resolveComponent\(.*)`), "${1}!"},
	{regexp.MustCompile(`import _imports_(\d+) from '(.*)'`), "const _imports_${1} = require('${2}');"},
	{
		regexp.MustCompile(`\(\.\.\.args\) => \(.*?([^ ]*)\(\.\.\.args\)`),
		"(...args: Parameters<typeof ${1}>) => (${1}(...args)",
	},
}

type shimData struct {
	Prelude string
	Helpers string
	Class   string
	Body    string
}

// componentClass returns the name of the default-exported class of a
// component document, or "any".
func componentClass(text string) string {
	if m := classDecl.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return unknownClass
}

// renderShim builds the text appended to the script so the compiled
// template is type checked against the component.
func renderShim(shape Shape, tmpl *CompiledTemplate, class string) (string, error) {
	switch shape {
	case ShapeSingleCall:
		return execShim(shimKey{shape, tmpl.Functional}, shimData{
			Prelude: singleCallPrelude,
			Helpers: renderHelpers,
			Class:   class,
			Body:    renderBody(tmpl.Code),
		})

	case ShapeTwoCall:
		signature, err := execShim(shimKey{shape, tmpl.ScriptSetup}, shimData{Class: class})
		if err != nil {
			return "", err
		}
		code := strings.Replace(tmpl.Code, renderSignature, signature, 1)
		if !tmpl.ScriptSetup {
			for _, rw := range classRewrites {
				code = rw.pattern.ReplaceAllString(code, rw.replacement)
			}
		}
		return "\n" + code, nil

	default:
		return "", ErrUnsupportedCompiler
	}
}

func execShim(key shimKey, data shimData) (string, error) {
	name, ok := shimNames[key]
	if !ok {
		return "", fmt.Errorf("no render shim for %s compiler", key.shape)
	}

	var out strings.Builder
	if err := shimTemplates.ExecuteTemplate(&out, name, data); err != nil {
		return "", fmt.Errorf("render shim %s: %w", name, err)
	}
	return out.String(), nil
}

// renderBody extracts the statements of a compiled render function: from
// its first return up to the static render functions, without the closing
// brace of the function expression.
func renderBody(code string) string {
	start := strings.Index(code, "return")
	if start < 0 {
		return ""
	}

	end := strings.LastIndex(code, "var staticRenderFns =")
	if end < start {
		end = len(code)
	}

	body := strings.TrimRightFunc(code[start:end], unicode.IsSpace)
	return strings.TrimSuffix(body, "}")
}
