package embedded_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/sfcheck/pkg/embedded"
	"github.com/yaklabco/sfcheck/pkg/host"
)

func TestSplit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want embedded.Name
	}{
		{
			name: "src/App.vue.ts",
			want: embedded.Name{HostFileName: "src/App.vue", Extension: ".ts", EmbeddedExtension: ".vue"},
		},
		{
			name: "src/main.ts",
			want: embedded.Name{HostFileName: "src/main", Extension: ".ts", EmbeddedExtension: ""},
		},
		{
			name: "docs/guide.md.tsx",
			want: embedded.Name{HostFileName: "docs/guide.md", Extension: ".tsx", EmbeddedExtension: ".md"},
		},
		{
			name: "App.vue",
			want: embedded.Name{HostFileName: "App", Extension: ".vue", EmbeddedExtension: ""},
		},
		{
			name: "my.component.vue.js",
			want: embedded.Name{HostFileName: "my.component.vue", Extension: ".js", EmbeddedExtension: ".vue"},
		},
		{
			name: "Makefile",
			want: embedded.Name{HostFileName: "Makefile"},
		},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, embedded.Split(tt.name), tt.name)
	}
}

func TestNameFor_SplitRoundTrip(t *testing.T) {
	t.Parallel()

	hosts := []string{"App.vue", "src/components/my.button.vue", "/abs/README.md", "docs/a.mdx"}
	for _, hostName := range hosts {
		for _, ext := range host.NativeExtensions {
			name := embedded.NameFor(hostName, ext)
			parts := embedded.Split(name)

			assert.Equal(t, hostName, parts.HostFileName, name)
			assert.Equal(t, ext, parts.Extension, name)
			assert.Equal(t, embedded.NameFor(parts.HostFileName, parts.Extension), name)
		}
	}
}
