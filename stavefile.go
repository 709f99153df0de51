//go:build stave

package main

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
	"github.com/yaklabco/stave/pkg/target"
)

const binary = "bin/sfcheck"

// Default target runs build.
var Default = Build

// Aliases for common targets.
var Aliases = map[string]any{
	"b":     Build,
	"t":     Test.Default,
	"l":     Lint.Default,
	"c":     Check,
	"vue":   VueCompiler,
	"smoke": Smoke,
}

// Namespace types group related targets.
type (
	Test st.Namespace
	Lint st.Namespace
	CI   st.Namespace
)

// Build compiles sfcheck with version info when its sources changed.
func Build() error {
	rebuild, err := target.Dir(binary, "cmd/", "pkg/", "internal/", "go.mod", "go.sum")
	if err != nil {
		return err
	}
	if !rebuild {
		fmt.Println(binary, "is up to date")
		return nil
	}
	fmt.Println("Building sfcheck...")
	return sh.RunV("go", "build", "-ldflags", ldflags(), "-o", binary, "./cmd/sfcheck")
}

// Check runs format, lint, and test sequentially.
func Check() {
	st.SerialDeps(Lint.Fmt, Lint.Default, Test.Default)
}

// Clean removes build artifacts and the smoke workspace.
func Clean() error {
	for _, path := range []string{"bin", "coverage.out", smokeDir} {
		if err := sh.Rm(path); err != nil {
			return err
		}
	}
	return nil
}

// Install installs sfcheck to $GOBIN or $GOPATH/bin.
func Install() error {
	fmt.Println("Installing sfcheck...")
	return sh.RunV("go", "install", "-ldflags", ldflags(), "./cmd/sfcheck")
}

// VueCompiler installs vue-template-compiler into node_modules so the
// Vue adapter finds a compiler for local runs.
func VueCompiler() error {
	fmt.Println("Installing vue-template-compiler...")
	return sh.RunV("npm", "install", "--no-save", "--no-package-lock", "vue-template-compiler@2")
}

// Test namespace

// Default runs all tests using gotestsum with race detection and coverage.
func (Test) Default() error {
	return gotestsum("pkgname-and-test-fails", "./...")
}

// Host runs the compiler host and embedded-source packages only.
func (Test) Host() error {
	return gotestsum("testname", "./pkg/host/...", "./pkg/embedded/...", "./pkg/renderguard/...")
}

// Adapters runs the Vue and Markdown adapter tests.
func (Test) Adapters() error {
	return gotestsum("testname", "./pkg/vue/...", "./pkg/markdown/...")
}

// Lint namespace

// Default runs golangci-lint with auto-fix.
func (Lint) Default() error {
	fmt.Println("Running linters...")
	return sh.RunV("golangci-lint", "run", "--fix", "./...")
}

// CI runs golangci-lint without auto-fix.
func (Lint) CI() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Fmt formats all Go code.
func (Lint) Fmt() error {
	return sh.RunV("gofmt", "-w", ".")
}

// FmtCheck fails when any Go file is unformatted.
func (Lint) FmtCheck() error {
	out, err := sh.Output("gofmt", "-l", ".")
	if err != nil {
		return fmt.Errorf("gofmt check failed: %w", err)
	}
	if out != "" {
		return fmt.Errorf("unformatted files:\n%s\nRun 'stave lint:fmt' to fix", out)
	}
	return nil
}

// CI namespace

// Gate runs the checks CI runs on every pull request.
func (CI) Gate() {
	st.SerialDeps(Lint.FmtCheck, Lint.CI, Build, Test.Default, CI.ModTidy, Smoke)
}

// ModTidy fails when go mod tidy changes go.mod or go.sum.
func (CI) ModTidy() error {
	before, err := modFiles()
	if err != nil {
		return err
	}
	if err := sh.RunV("go", "mod", "tidy"); err != nil {
		return err
	}
	after, err := modFiles()
	if err != nil {
		return err
	}
	if before != after {
		return errors.New("go.mod or go.sum changed after 'go mod tidy'")
	}
	return nil
}

const smokeDir = "tmp/smoke"

// Smoke builds sfcheck and checks a Markdown document whose fenced
// TypeScript block imports a missing module. The run must fail and report
// the import against the document line.
func Smoke() error {
	st.Deps(Build)

	if err := os.MkdirAll(smokeDir, 0o755); err != nil {
		return err
	}
	doc := "# Guide\n\n```ts\nimport { port } from \"./missing\";\n```\n"
	if err := os.WriteFile(filepath.Join(smokeDir, "guide.md"), []byte(doc), 0o644); err != nil {
		return err
	}

	out, err := sh.Output(binary, "check", "--markdown", "--formatter", "basic", "--no-summary", smokeDir)
	if err == nil {
		return errors.New("smoke: expected sfcheck to report an issue")
	}
	if !strings.Contains(out, "guide.md:4:") || !strings.Contains(out, "SF2307") {
		return fmt.Errorf("smoke: unexpected output:\n%s", out)
	}
	fmt.Println("smoke: issue mapped to guide.md")
	return nil
}

// Helpers

func gotestsum(format string, pkgs ...string) error {
	nCores := cmp.Or(os.Getenv("STAVE_NUM_PROCESSORS"), "4")
	args := []string{
		"tool", "gotestsum",
		"-f", format,
		"--",
		"-race",
		"-p", nCores,
		"-parallel", nCores,
		"-coverprofile=coverage.out",
		"-covermode=atomic",
	}
	return sh.RunV("go", append(args, pkgs...)...)
}

func modFiles() (string, error) {
	mod, err := os.ReadFile("go.mod")
	if err != nil {
		return "", fmt.Errorf("read go.mod: %w", err)
	}
	sum, err := os.ReadFile("go.sum")
	if err != nil {
		return "", fmt.Errorf("read go.sum: %w", err)
	}
	return string(mod) + string(sum), nil
}

// gitOutput runs a git command and returns trimmed stdout, or empty on error.
func gitOutput(args ...string) string {
	out, err := sh.Output("git", args...)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// ldflags returns the linker flags for version injection.
func ldflags() string {
	version := cmp.Or(gitOutput("describe", "--tags", "--always", "--dirty"), "dev")
	commit := cmp.Or(gitOutput("rev-parse", "--short", "HEAD"), "none")
	date := time.Now().UTC().Format(time.RFC3339)
	return fmt.Sprintf("-X main.version=%s -X main.commit=%s -X main.date=%s", version, commit, date)
}
