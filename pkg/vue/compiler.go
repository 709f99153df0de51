package vue

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/afero"

	"github.com/yaklabco/sfcheck/pkg/host"
)

// ErrUnsupportedCompiler is returned when the configured template compiler
// exposes neither calling convention. It is fatal for the whole run.
var ErrUnsupportedCompiler = fmt.Errorf(
	"%w: unsupported vue template compiler, it should provide `parse` or `parseComponent` function",
	host.ErrFatal,
)

// ErrNoTemplateCompiler is reported when a single-call compiler can parse a
// component but not compile its template.
var ErrNoTemplateCompiler = errors.New("vue template compiler provides neither `compile` nor `compileTemplate`")

// renderPrologue opens the render function rebuilt around the output of
// compile.
const renderPrologue = "var render = function () {var _vm=this;var _h=_vm.$createElement;var _c=_vm._self._c||_h;"

// Shape is the calling convention of a template compiler.
type Shape int

const (
	ShapeUnknown Shape = iota
	// ShapeSingleCall compilers parse a component with parseComponent and
	// compile its template with compile, or compileTemplate when bundled.
	ShapeSingleCall
	// ShapeTwoCall compilers parse with parse, then compile the script and
	// the template with compileScript and compileTemplate.
	ShapeTwoCall
)

func (s Shape) String() string {
	switch s {
	case ShapeSingleCall:
		return "single-call"
	case ShapeTwoCall:
		return "two-call"
	default:
		return "unknown"
	}
}

// DetectShape inspects the exports of a compiler module.
func DetectShape(exports *goja.Object) Shape {
	has := func(name string) bool {
		_, ok := goja.AssertFunction(exports.Get(name))
		return ok
	}

	switch {
	case has("parseComponent"):
		return ShapeSingleCall
	case has("parse") && has("compileScript") && has("compileTemplate"):
		return ShapeTwoCall
	default:
		return ShapeUnknown
	}
}

// Block is one section of a component document.
type Block struct {
	Content string         `mapstructure:"content"`
	Start   int            `mapstructure:"start"`
	End     int            `mapstructure:"end"`
	Attrs   map[string]any `mapstructure:"attrs"`
}

// Attr returns the attribute value: a string, true for a bare attribute, or
// nil when absent.
func (b *Block) Attr(name string) any {
	if b == nil || b.Attrs == nil {
		return nil
	}
	return b.Attrs[name]
}

// Descriptor is the compiler's view of one component.
type Descriptor struct {
	Script *Block

	// Template is the compiled render code; nil when the component has no
	// template or the compiler cannot compile one.
	Template *CompiledTemplate

	// TemplateSkipped is set when a template exists but was not compiled.
	TemplateSkipped bool
}

// CompiledTemplate is the output of compileTemplate.
type CompiledTemplate struct {
	Code        string
	Functional  bool
	ScriptSetup bool
}

// handler runs one calling convention.
type handler interface {
	parse(c *Compiler, text string) (*Descriptor, error)
}

// Compiler is a template compiler module evaluated in a goja runtime.
type Compiler struct {
	vm      *goja.Runtime
	exports *goja.Object
	name    string
	shape   Shape
	handler handler
}

// LoadCompiler evaluates the compiler module name, resolved from dir the
// way Node resolves require(name), on fsys.
func LoadCompiler(fsys afero.Fs, dir, name string) (*Compiler, error) {
	vm := goja.New()
	loader := newModuleLoader(vm, fsys)

	exports, err := loader.require(dir, name)
	if err != nil {
		return nil, fmt.Errorf("%w: load vue template compiler %q: %w", host.ErrFatal, name, err)
	}

	return NewCompiler(vm, exports, name)
}

// NewCompiler wraps already evaluated compiler exports.
func NewCompiler(vm *goja.Runtime, exports *goja.Object, name string) (*Compiler, error) {
	c := &Compiler{
		vm:      vm,
		exports: exports,
		name:    name,
		shape:   DetectShape(exports),
	}

	switch c.shape {
	case ShapeSingleCall:
		c.handler = singleCall{}
	case ShapeTwoCall:
		c.handler = twoCall{}
	default:
		return nil, ErrUnsupportedCompiler
	}

	return c, nil
}

// Shape returns the detected calling convention.
func (c *Compiler) Shape() Shape {
	return c.shape
}

// Name returns the module name the compiler was loaded from.
func (c *Compiler) Name() string {
	return c.name
}

// Parse parses a component document.
func (c *Compiler) Parse(text string) (*Descriptor, error) {
	return c.handler.parse(c, text)
}

func (c *Compiler) call(name string, args ...goja.Value) (goja.Value, error) {
	fn, ok := goja.AssertFunction(c.exports.Get(name))
	if !ok {
		return nil, fmt.Errorf("vue template compiler has no %s function", name)
	}

	value, err := fn(c.exports, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return value, nil
}

func (c *Compiler) has(name string) bool {
	_, ok := goja.AssertFunction(c.exports.Get(name))
	return ok
}

func (c *Compiler) object(kv ...any) *goja.Object {
	obj := c.vm.NewObject()
	for i := 0; i+1 < len(kv); i += 2 {
		_ = obj.Set(kv[i].(string), kv[i+1])
	}
	return obj
}

// singleCall drives parseComponent + compile.
type singleCall struct{}

func (singleCall) parse(c *Compiler, text string) (*Descriptor, error) {
	parsed, err := c.call("parseComponent", c.vm.ToValue(text))
	if err != nil {
		return nil, err
	}
	obj := parsed.ToObject(c.vm)

	script, err := decodeBlock(obj.Get("script"))
	if err != nil {
		return nil, err
	}
	template, err := decodeBlock(obj.Get("template"))
	if err != nil {
		return nil, err
	}

	desc := &Descriptor{Script: script}
	if template == nil {
		return desc, nil
	}

	functional := truthy(template.Attr("functional"))

	var code string
	switch {
	case c.has("compileTemplate"):
		code, err = compileTemplate(c, template.Content, functional)
	case c.has("compile"):
		code, err = compileRender(c, template.Content, functional)
	default:
		desc.TemplateSkipped = true
		return desc, nil
	}
	if err != nil {
		return nil, err
	}

	desc.Template = &CompiledTemplate{Code: code, Functional: functional}
	return desc, nil
}

// compileTemplate runs a compileTemplate export taking the compiler as an
// option, the way bundles built around component-compiler-utils do.
func compileTemplate(c *Compiler, source string, functional bool) (string, error) {
	compiled, err := c.call("compileTemplate", c.object(
		"source", source,
		"compiler", c.exports,
		"isFunctional", functional,
	))
	if err != nil {
		return "", err
	}
	return stringField(c.vm, compiled, "code")
}

// compileRender runs the compile export of vue-template-compiler and
// rebuilds the render code compileTemplate would produce for it.
func compileRender(c *Compiler, source string, functional bool) (string, error) {
	compiled, err := c.call("compile", c.vm.ToValue(source), c.object("functional", functional))
	if err != nil {
		return "", err
	}

	render, err := stringField(c.vm, compiled, "render")
	if err != nil {
		return "", err
	}

	body, err := stripWith(render)
	if err != nil {
		return "", err
	}

	return renderPrologue + body + "}\nvar staticRenderFns = []\n", nil
}

// twoCall drives parse + compileScript + compileTemplate.
type twoCall struct{}

func (twoCall) parse(c *Compiler, text string) (*Descriptor, error) {
	parsed, err := c.call("parse", c.vm.ToValue(text))
	if err != nil {
		return nil, err
	}

	descriptor := parsed.ToObject(c.vm).Get("descriptor")
	if !present(descriptor) {
		return &Descriptor{}, nil
	}
	descObj := descriptor.ToObject(c.vm)

	desc := &Descriptor{}
	bindings := goja.Undefined()
	scriptSetup := present(descObj.Get("scriptSetup"))

	if present(descObj.Get("script")) || scriptSetup {
		compiled, err := c.call("compileScript", descriptor, c.object(
			"id", "stub",
			"babelParserPlugins", c.vm.NewArray("classProperties"),
		))
		if err != nil {
			return nil, err
		}

		block, err := scriptResultBlock(c.vm, compiled)
		if err != nil {
			return nil, err
		}
		desc.Script = block

		if b := compiled.ToObject(c.vm).Get("bindings"); present(b) {
			bindings = b
		}
	}

	template := descObj.Get("template")
	if !present(template) {
		return desc, nil
	}

	source, err := stringField(c.vm, template, "content")
	if err != nil {
		return nil, err
	}

	compiled, err := c.call("compileTemplate", c.object(
		"id", "stub",
		"source", source,
		"compilerOptions", c.object("bindingMetadata", bindings),
	))
	if err != nil {
		return nil, err
	}

	code, err := stringField(c.vm, compiled, "code")
	if err != nil {
		return nil, err
	}

	desc.Template = &CompiledTemplate{Code: code, ScriptSetup: scriptSetup}
	return desc, nil
}

// scriptResultBlock maps a compileScript result onto a Block.
func scriptResultBlock(vm *goja.Runtime, value goja.Value) (*Block, error) {
	var raw struct {
		Content string         `mapstructure:"content"`
		Attrs   map[string]any `mapstructure:"attrs"`
		Loc     struct {
			Start struct {
				Offset int `mapstructure:"offset"`
			} `mapstructure:"start"`
			End struct {
				Offset int `mapstructure:"offset"`
			} `mapstructure:"end"`
		} `mapstructure:"loc"`
	}

	obj := value.ToObject(vm)
	fields := map[string]any{
		"content": exportOf(obj.Get("content")),
		"attrs":   exportOf(obj.Get("attrs")),
		"loc":     exportOf(obj.Get("loc")),
	}
	if err := mapstructure.Decode(fields, &raw); err != nil {
		return nil, fmt.Errorf("decode compileScript result: %w", err)
	}

	return &Block{
		Content: raw.Content,
		Start:   raw.Loc.Start.Offset,
		End:     raw.Loc.End.Offset,
		Attrs:   raw.Attrs,
	}, nil
}

// decodeBlock converts a parseComponent block; absent blocks yield nil.
func decodeBlock(value goja.Value) (*Block, error) {
	if !present(value) {
		return nil, nil
	}

	var block Block
	if err := mapstructure.Decode(value.Export(), &block); err != nil {
		return nil, fmt.Errorf("decode block: %w", err)
	}
	return &block, nil
}

func stringField(vm *goja.Runtime, value goja.Value, name string) (string, error) {
	if !present(value) {
		return "", fmt.Errorf("missing result object for %q", name)
	}
	field := value.ToObject(vm).Get(name)
	if !present(field) {
		return "", fmt.Errorf("result has no %q", name)
	}
	return field.String(), nil
}

func exportOf(value goja.Value) any {
	if !present(value) {
		return nil
	}
	return value.Export()
}

func present(value goja.Value) bool {
	return value != nil && !goja.IsUndefined(value) && !goja.IsNull(value)
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return true
	default:
		return false
	}
}
