package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/yaklabco/sfcheck/internal/logging"
	"github.com/yaklabco/sfcheck/pkg/config"
	"github.com/yaklabco/sfcheck/pkg/formatter"
	"github.com/yaklabco/sfcheck/pkg/host"
	"github.com/yaklabco/sfcheck/pkg/issue"
	"github.com/yaklabco/sfcheck/pkg/reporter"
)

// ErrIssuesFound is returned when the check reports errors.
var ErrIssuesFound = errors.New("issues found")

type checkFlags struct {
	format     string
	formatter  string
	flavor     string
	compiler   string
	eslint     string
	linesAbove int
	linesBelow int
	vue        bool
	markdown   bool
	detect     bool
	strict     bool
	compact    bool
	noSummary  bool
	flat       bool
}

func newCheckCommand(info BuildInfo) *cobra.Command {
	cfg := &config.Config{}
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Check TypeScript and JavaScript sources, including embedded ones",
		Long:  checkLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, cfg, flags, info)
		},
	}

	addCheckFlags(cmd, cfg, flags)

	return cmd
}

const checkLongDescription = `Build a program from the given files and report its issues.

Single-file components (.vue) and, when enabled, fenced script blocks in
Markdown documents are loaded under virtual names such as App.vue.ts.
Issues are reported against the original documents.

By default, checks every source under the current directory.

Examples:
  sfcheck check                          # Check current directory
  sfcheck check src/App.vue              # Check one component
  sfcheck check --markdown docs/         # Include Markdown code blocks
  sfcheck check --formatter basic        # One line per issue
  sfcheck check --format sarif           # SARIF output for CI
  sfcheck check --eslint-results lint.json  # Merge ESLint JSON output
  sfcheck check --watch                  # Re-check on change`

func addCheckFlags(cmd *cobra.Command, cfg *config.Config, flags *checkFlags) {
	cmd.Flags().StringVar(&flags.format, "format", "", "output format: text, json, sarif")
	cmd.Flags().StringVar(&flags.formatter, "formatter", "", "issue formatter for text output: basic, codeframe")
	cmd.Flags().IntVar(&flags.linesAbove, "lines-above", config.DefaultLinesAbove, "code frame lines above the issue")
	cmd.Flags().IntVar(&flags.linesBelow, "lines-below", config.DefaultLinesBelow, "code frame lines below the issue")
	addAdapterFlags(cmd, cfg, flags)
	cmd.Flags().StringVar(&flags.eslint, "eslint-results", "", "ESLint JSON output to merge into the report")
	cmd.Flags().BoolVarP(&cfg.Watch, "watch", "w", false, "re-check when a checked file changes")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "treat warnings as errors for exit code")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact output format")
	cmd.Flags().BoolVar(&flags.noSummary, "no-summary", false, "omit the summary line")
	cmd.Flags().BoolVar(&flags.flat, "flat", false, "list issues in order instead of grouped by file")
}

// addAdapterFlags registers the flags shared by every command that builds
// the host stack.
func addAdapterFlags(cmd *cobra.Command, cfg *config.Config, flags *checkFlags) {
	cmd.Flags().StringVar(&flags.compiler, "compiler", "", "Vue template compiler module or bundle path")
	cmd.Flags().BoolVar(&flags.vue, "vue", true, "load .vue single-file components")
	cmd.Flags().BoolVar(&flags.markdown, "markdown", false, "load fenced script blocks of .md and .mdx documents")
	cmd.Flags().StringVar(&flags.flavor, "flavor", "", "Markdown flavor: commonmark, gfm")
	cmd.Flags().BoolVar(&flags.detect, "detect-untagged", false, "classify fences without a language by content")
	cmd.Flags().StringSliceVar(&cfg.Include, "include", nil, "glob patterns root files must match")
	cmd.Flags().StringSliceVar(&cfg.Exclude, "exclude", nil, "glob patterns to skip")
}

// applyCheckFlags copies the explicitly set flags into cfg.
func applyCheckFlags(cmd *cobra.Command, cfg *config.Config, flags *checkFlags) {
	changed := cmd.Flags().Changed

	cfg.Format = config.OutputFormat(flags.format)
	cfg.Formatter = config.Formatter(flags.formatter)
	cfg.Compiler = flags.compiler
	cfg.Markdown.Flavor = config.Flavor(flags.flavor)
	cfg.ESLintResults = flags.eslint

	if changed("vue") {
		cfg.Extensions.Vue = config.Bool(flags.vue)
	}
	if changed("markdown") {
		cfg.Extensions.Markdown = config.Bool(flags.markdown)
	}
	if changed("detect-untagged") {
		cfg.Markdown.DetectUntagged = config.Bool(flags.detect)
	}
	if changed("lines-above") {
		cfg.CodeFrame.LinesAbove = config.Int(flags.linesAbove)
	}
	if changed("lines-below") {
		cfg.CodeFrame.LinesBelow = config.Int(flags.linesBelow)
	}
}

func runCheck(cmd *cobra.Command, args []string, cliCfg *config.Config, flags *checkFlags, info BuildInfo) error {
	applyCheckFlags(cmd, cliCfg, flags)

	cfg, workDir, err := loadConfig(cmd, cliCfg)
	if err != nil {
		return err
	}

	format, err := formatter.New(formatter.Type(cfg.Formatter), formatter.CodeFrameOptions{
		LinesAbove: cfg.LinesAbove(),
		LinesBelow: cfg.LinesBelow(),
	})
	if err != nil {
		return err
	}

	outFormat, err := reporter.ParseFormat(string(cfg.Format))
	if err != nil {
		return fmt.Errorf("invalid format: %w", err)
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		Format:      outFormat,
		Color:       cfg.Color,
		Formatter:   format,
		ShowSummary: !flags.noSummary,
		GroupByFile: !flags.flat,
		Compact:     flags.compact,
		WorkingDir:  workDir,
		ToolVersion: info.Version,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	sess := newSession(cfg, afero.NewOsFs(), workDir, logging.FromContext(commandContext(cmd)))
	defer func() {
		if closeErr := sess.Close(); closeErr != nil {
			sess.logger.Warn("close file watcher", logging.FieldError, closeErr)
		}
	}()

	ctx := commandContext(cmd)
	if cfg.Watch {
		return sess.watch(ctx, args, rep)
	}

	result, _, err := sess.check(args)
	if err != nil {
		return err
	}

	if _, err := rep.Report(ctx, result); err != nil {
		return fmt.Errorf("report results: %w", err)
	}

	if ExitCodeFromStats(result.Stats(), flags.strict) != ExitSuccess {
		return ErrIssuesFound
	}
	return nil
}

// check builds a program from paths and collects its issues against the
// host documents. It also returns the names the program loaded, virtual
// ones included, for watching.
func (s *session) check(paths []string) (*reporter.Result, []string, error) {
	start := time.Now()

	roots, err := s.rootNames(paths)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Debug("root files discovered", logging.FieldFilesDiscovered, len(roots))

	prog, err := s.host().CreateProgram(roots, host.ProgramOptions{FollowImports: true}, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create program: %w", err)
	}

	issues := prog.Issues()
	deps := prog.Dependencies()
	loaded := deps.Files
	if ext := s.outer(); ext != nil {
		issues = ext.ExtendIssues(issues)
		deps = ext.ExtendDependencies(deps)
	}

	lintIssues, err := s.lintIssues()
	if err != nil {
		return nil, nil, err
	}
	issues = append(issues, lintIssues...)

	s.attachSources(issues)
	issue.Sort(issues)

	s.logger.Debug("check completed",
		logging.FieldFilesLoaded, len(prog.Files()),
		logging.FieldIssuesTotal, len(issues),
		logging.FieldDuration, time.Since(start))

	return &reporter.Result{Files: deps.Files, Issues: issues}, loaded, nil
}

// lintIssues loads the configured ESLint results.
func (s *session) lintIssues() ([]issue.Issue, error) {
	if s.cfg.ESLintResults == "" {
		return nil, nil
	}

	data, err := afero.ReadFile(s.fs, s.absPath(s.cfg.ESLintResults))
	if err != nil {
		return nil, fmt.Errorf("read eslint results: %w", err)
	}

	results, err := issue.ParseLintResults(data)
	if err != nil {
		return nil, err
	}

	return issue.FromLintResults(results, s.wantsSource(), s.fs), nil
}

func (s *session) wantsSource() bool {
	return s.cfg.Format == config.FormatText && s.cfg.Formatter != config.FormatterBasic
}

// attachSources loads the document text of located issues for code frames.
func (s *session) attachSources(issues []issue.Issue) {
	if !s.wantsSource() {
		return
	}

	sources := make(map[string]string)
	for i := range issues {
		is := &issues[i]
		if is.File == "" || is.Location == nil || is.Source != "" {
			continue
		}

		text, ok := sources[is.File]
		if !ok {
			if data, err := afero.ReadFile(s.fs, is.File); err == nil {
				text = string(data)
			}
			sources[is.File] = text
		}
		is.Source = text
	}
}

// watch checks, reports, and checks again whenever a file of the last
// program changes, until ctx is cancelled.
func (s *session) watch(ctx context.Context, paths []string, rep reporter.Reporter) error {
	for {
		result, loaded, err := s.check(paths)
		if err != nil {
			return err
		}
		if _, err := rep.Report(ctx, result); err != nil {
			return fmt.Errorf("report results: %w", err)
		}

		changed, err := s.waitForChange(ctx, loaded)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
	}
}

// waitForChange watches files through the host stack and blocks until one
// of them changes. Virtual names are watched through their documents, which
// evicts their cached sources. It reports false when ctx is done or the
// watcher shut down.
func (s *session) waitForChange(ctx context.Context, files []string) (bool, error) {
	round, stop := context.WithCancel(ctx)
	defer stop()

	watchers := make([]host.Watcher, 0, len(files))
	defer func() {
		for _, w := range watchers {
			if err := w.Close(); err != nil {
				s.logger.Debug("close watch", logging.FieldError, err)
			}
		}
	}()

	for _, name := range files {
		w, err := s.host().WatchFile(name, func(fileName string, kind host.EventKind) {
			s.logger.Info("file changed",
				logging.FieldPath, fileName,
				logging.FieldEvent, kind.String())
			stop()
		}, 0)
		if err != nil {
			return false, fmt.Errorf("watch %s: %w", name, err)
		}
		watchers = append(watchers, w)
	}

	s.logger.Info("watching for changes", logging.FieldFiles, len(watchers))

	err := s.base.Dispatch(round)
	switch {
	case ctx.Err() != nil:
		return false, nil
	case err == nil:
		return false, nil
	case errors.Is(err, context.Canceled):
		return true, nil
	default:
		return false, fmt.Errorf("dispatch watch events: %w", err)
	}
}
