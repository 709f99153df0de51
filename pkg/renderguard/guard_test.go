package renderguard_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/sfcheck/pkg/host"
	"github.com/yaklabco/sfcheck/pkg/renderguard"
)

const script = "export default class App {}\n"

func TestRewrite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "function expression in consequent",
			body: "return _ctx.ok ? _ctx.items.map(function (x) { return x }) : null",
			want: `return _ctx.ok ? _ctx.items.map(function (x) {if (!((_ctx.ok))) throw ""; return x }) : null`,
		},
		{
			name: "parenthesized arrow body",
			body: "return _ctx.ok ? _ctx.list.map((item) => (_ctx.a, item)) : null",
			want: `return _ctx.ok ? _ctx.list.map((item) => { if (!((_ctx.ok))) throw ""; return (_ctx.a, item); }) : null`,
		},
		{
			name: "nested conditional in alternate",
			body: "return _ctx.ok ? 1 : _ctx.other ? () => 2 : null",
			want: `return _ctx.ok ? 1 : _ctx.other ? () => { if (!(!(_ctx.ok) && (_ctx.other))) throw ""; return 2; } : null`,
		},
		{
			name: "arrow with block body",
			body: "return a ? () => { return b } : c",
			want: `return a ? () => {if (!((a))) throw ""; return b } : c`,
		},
		{
			name: "curried arrows close inner first",
			body: "return a ? () => () => x : null",
			want: `return a ? () => { if (!((a))) throw ""; return () => { if (!((a))) throw ""; return x; }; } : null`,
		},
		{
			name: "functions outside conditionals are untouched",
			body: "return _withCtx(() => [_ctx.a])",
			want: "return _withCtx(() => [_ctx.a])",
		},
		{
			name: "test expression is wrapped",
			body: "return a || b ? () => 1 : null",
			want: `return a || b ? () => { if (!((a || b))) throw ""; return 1; } : null`,
		},
		{
			name: "braces inside strings and templates",
			body: "const s = `x${'}'}y`; return a ? () => s : null",
			want: "const s = `x${'}'}y`; return a ? () => { if (!((a))) throw \"\"; return s; } : null",
		},
		{
			name: "typed handlers and asserted components parse",
			body: "const _c = _resolveComponent(\"x\")!\n  " +
				"return _ctx.ok ? _h(_c, { onClick: (...args: Parameters<typeof _ctx.go>) => (_ctx.go(...args)) }) : null",
			want: "const _c = _resolveComponent(\"x\")!\n  " +
				"return _ctx.ok ? _h(_c, { onClick: (...args: Parameters<typeof _ctx.go>) => " +
				`{ if (!((_ctx.ok))) throw ""; return (_ctx.go(...args)); } }) : null`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			head := "export function render(_ctx: App, _cache: Function[]) {\n  "
			tail := "\n}\nexport const trailing: number = 1;\n"
			text := script + head + tt.body + tail

			got, err := renderguard.Rewrite(text, len(script))
			require.NoError(t, err)
			assert.Equal(t, script+head+tt.want+tail, got)
		})
	}
}

func TestRewrite_OnlyAfterOffset(t *testing.T) {
	t.Parallel()

	genuine := "function render() { return a ? () => 1 : 2 }\n"
	text := genuine + "const shim = 1;\n"

	got, err := renderguard.Rewrite(text, len(genuine))
	require.NoError(t, err)
	assert.Equal(t, text, got)
}

func TestRewrite_Errors(t *testing.T) {
	t.Parallel()

	_, err := renderguard.Rewrite("function render() { return ) }", 0)
	require.Error(t, err)

	_, err = renderguard.Rewrite("function render(", 0)
	require.ErrorIs(t, err, renderguard.ErrNoBody)

	_, err = renderguard.Rewrite("abc", 10)
	require.Error(t, err)
}

func TestApply_Idempotent(t *testing.T) {
	t.Parallel()

	shim := "\nfunction render(_ctx) {\n  return _ctx.ok ? () => 1 : null\n}\n"
	file := host.NewSourceFile("/src/App.vue.ts", script+shim)
	end := len(script)
	file.SetRealEnd(&end)

	require.NoError(t, renderguard.Apply(file))
	first := file.Text
	assert.True(t, file.Guarded())
	assert.Equal(t, 1, strings.Count(first, `throw ""`))
	assert.True(t, strings.HasPrefix(first, script), "genuine content is preserved")

	require.NoError(t, renderguard.Apply(file))
	assert.Equal(t, first, file.Text)
}

func TestApply_WithoutRealEnd(t *testing.T) {
	t.Parallel()

	text := "function render(_ctx) { return _ctx.ok ? () => 1 : null }\n"
	file := host.NewSourceFile("/src/plain.ts", text)

	require.NoError(t, renderguard.Apply(file))
	assert.Equal(t, text, file.Text)
	assert.True(t, file.Guarded())
}
