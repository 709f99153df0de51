package cli_test

import (
	"bytes"
	"testing"

	"github.com/yaklabco/sfcheck/internal/cli"
	"github.com/yaklabco/sfcheck/pkg/issue"
)

func TestNewRootCommand(t *testing.T) {
	t.Parallel()

	info := cli.BuildInfo{
		Version: "test-version",
		Commit:  "test-commit",
		Date:    "test-date",
	}

	cmd := cli.NewRootCommand(info)

	if cmd == nil {
		t.Fatal("NewRootCommand returned nil")
	}

	if cmd.Use != "sfcheck" {
		t.Errorf("expected Use to be 'sfcheck', got %q", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("expected Short description to be set")
	}

	if cmd.Long == "" {
		t.Error("expected Long description to be set")
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test", Commit: "test", Date: "test"})

	expectedSubcommands := []string{"check", "virtual", "ls", "init", "version"}

	for _, name := range expectedSubcommands {
		subCmd, _, err := cmd.Find([]string{name})
		if err != nil {
			t.Errorf("expected subcommand %q to exist, got error: %v", name, err)
			continue
		}

		if subCmd.Name() != name {
			t.Errorf("expected subcommand name %q, got %q", name, subCmd.Name())
		}
	}
}

func TestCheckCommandFlags(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test", Commit: "test", Date: "test"})
	checkCmd, _, err := cmd.Find([]string{"check"})
	if err != nil {
		t.Fatalf("check command not found: %v", err)
	}

	expectedFlags := []string{
		"format",
		"formatter",
		"lines-above",
		"lines-below",
		"compiler",
		"vue",
		"markdown",
		"flavor",
		"detect-untagged",
		"include",
		"exclude",
		"eslint-results",
		"watch",
		"strict",
	}

	for _, flagName := range expectedFlags {
		if checkCmd.Flags().Lookup(flagName) == nil {
			t.Errorf("expected flag %q to exist on check command", flagName)
		}
	}
}

func TestGlobalFlags(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test", Commit: "test", Date: "test"})

	for _, flagName := range []string{"debug", "config", "color"} {
		if cmd.PersistentFlags().Lookup(flagName) == nil {
			t.Errorf("expected global flag %q to exist", flagName)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	info := cli.BuildInfo{
		Version: "1.2.3",
		Commit:  "abc123",
		Date:    "2024-01-01",
	}

	cmd := cli.NewRootCommand(info)
	cmd.SetArgs([]string{"version"})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	if !bytes.Contains(out.Bytes(), []byte("1.2.3")) {
		t.Errorf("expected version in output, got %q", out.String())
	}
}

func TestCheckCommandAcceptsArbitraryArgs(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test", Commit: "test", Date: "test"})
	checkCmd, _, err := cmd.Find([]string{"check"})
	if err != nil {
		t.Fatalf("check command not found: %v", err)
	}

	if err := checkCmd.Args(checkCmd, []string{"App.vue", "main.ts", "src/"}); err != nil {
		t.Errorf("check command should accept arbitrary args, got error: %v", err)
	}
}

func TestVirtualCommandRequiresOneArg(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test", Commit: "test", Date: "test"})
	virtualCmd, _, err := cmd.Find([]string{"virtual"})
	if err != nil {
		t.Fatalf("virtual command not found: %v", err)
	}

	if err := virtualCmd.Args(virtualCmd, nil); err == nil {
		t.Error("virtual command should require a file argument")
	}
	if err := virtualCmd.Args(virtualCmd, []string{"a.vue", "b.vue"}); err == nil {
		t.Error("virtual command should reject two arguments")
	}
}

func TestExitCodeFromStats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		counts map[issue.Severity]int
		strict bool
		want   int
	}{
		{name: "clean", counts: nil, want: cli.ExitSuccess},
		{name: "errors", counts: map[issue.Severity]int{issue.SeverityError: 1}, want: cli.ExitIssueErrors},
		{name: "warnings", counts: map[issue.Severity]int{issue.SeverityWarning: 2}, want: cli.ExitSuccess},
		{
			name:   "warnings strict",
			counts: map[issue.Severity]int{issue.SeverityWarning: 2},
			strict: true,
			want:   cli.ExitIssueWarnings,
		},
		{
			name:   "errors win over warnings",
			counts: map[issue.Severity]int{issue.SeverityError: 1, issue.SeverityWarning: 1},
			strict: true,
			want:   cli.ExitIssueErrors,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := cli.ExitCodeFromStats(issue.Stats{BySeverity: tt.counts}, tt.strict)
			if got != tt.want {
				t.Errorf("ExitCodeFromStats() = %d, want %d", got, tt.want)
			}
		})
	}
}
