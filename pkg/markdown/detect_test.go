package markdown_test

import (
	"testing"

	"github.com/yaklabco/sfcheck/pkg/markdown"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "node shebang",
			content:  "#!/usr/bin/env node\nconsole.log('hello')",
			expected: "JavaScript",
		},
		{
			name:     "javascript code",
			content:  "const x = () => { return 42; };\nconsole.log(x());",
			expected: "JavaScript",
		},
		{
			name:     "typescript interface",
			content:  "interface User {\n  name: string;\n}\nexport const u: User = { name: 'a' };",
			expected: "TypeScript",
		},
		{
			name:     "typed return with markup",
			content:  "export function App(): JSX.Element {\n  return <div className=\"x\">hi</div>;\n}",
			expected: "TSX",
		},
		{
			name:     "untyped markup",
			content:  "function App() {\n  return <div>hi</div>;\n}",
			expected: "JSX",
		},
		{
			name:     "go code",
			content:  "package main\n\nfunc main() {\n\tfmt.Println(\"hello\")\n}",
			expected: "Go",
		},
		{
			name:     "python code",
			content:  "def foo():\n    pass\n\nif __name__ == '__main__':\n    foo()",
			expected: "Python",
		},
		{
			name:     "json object",
			content:  `{"key": "value", "number": 123}`,
			expected: "JSON",
		},
		{
			name:     "rust code",
			content:  "fn main() {\n    let mut x = 1;\n}",
			expected: "Rust",
		},
		{
			name:     "sql query",
			content:  "SELECT * FROM users WHERE id = 1;",
			expected: "SQL",
		},
		{
			name:     "plain text",
			content:  "just some text without any code patterns",
			expected: "",
		},
		{
			name:     "empty",
			content:  "  \n\t\n",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := markdown.Detect([]byte(tt.content))

			if result != tt.expected {
				t.Errorf("Detect() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestDetect_ShebangTakesPrecedence(t *testing.T) {
	t.Parallel()

	// Looks like Python, runs with node.
	content := []byte("#!/usr/bin/env node\ndef foo():\n    pass")
	result := markdown.Detect(content)

	if result != "JavaScript" {
		t.Errorf("Detect() = %q, want %q (shebang should take precedence)", result, "JavaScript")
	}
}
