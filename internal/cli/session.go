package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/yaklabco/sfcheck/internal/configloader"
	"github.com/yaklabco/sfcheck/internal/logging"
	"github.com/yaklabco/sfcheck/pkg/config"
	"github.com/yaklabco/sfcheck/pkg/embedded"
	"github.com/yaklabco/sfcheck/pkg/host"
	"github.com/yaklabco/sfcheck/pkg/markdown"
	"github.com/yaklabco/sfcheck/pkg/vue"
)

// defaultExcludes are skipped when enumerating root files.
//
//nolint:gochecknoglobals // Read-only.
var defaultExcludes = []string{"node_modules", "**/node_modules"}

// session is the decorated compiler host built from a resolved configuration.
type session struct {
	cfg     *config.Config
	fs      afero.Fs
	workDir string
	logger  *log.Logger

	base *host.FSHost
	// exts are the enabled decorators, innermost first.
	exts []*embedded.Extension
}

// loadConfig resolves the configuration for cmd, with cliCfg taking
// precedence over every file and environment layer.
func loadConfig(cmd *cobra.Command, cliCfg *config.Config) (*config.Config, string, error) {
	logger := logging.FromContext(commandContext(cmd))

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, "", fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("get working directory: %w", err)
	}

	if cmd.Flags().Changed("color") {
		color, _ := cmd.Flags().GetString("color")
		cliCfg.Color = color
	}

	loadResult, err := configloader.Load(commandContext(cmd), configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, "", errors.Join(errors.New("failed to load configuration"), err)
	}

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", logging.FieldFiles, loadResult.LoadedFrom)
	}

	cfg := loadResult.Config
	logger.Debug("configuration loaded",
		"vue", cfg.VueEnabled(),
		"markdown", cfg.MarkdownEnabled(),
		logging.FieldCompiler, cfg.Compiler,
		"format", cfg.Format,
	)

	return cfg, workDir, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// newSession stacks the enabled adapters over an FSHost on fsys: Markdown
// first, Vue outermost. Every layer logs through logger.
func newSession(cfg *config.Config, fsys afero.Fs, workDir string, logger *log.Logger) *session {
	s := &session{
		cfg:     cfg,
		fs:      fsys,
		workDir: workDir,
		logger:  logger,
		base:    host.NewFSHost(fsys, host.WithLogger(logger)),
	}

	var h host.Host = s.base
	if cfg.MarkdownEnabled() {
		adapter := markdown.New(fsys, string(cfg.Markdown.Flavor),
			markdown.WithLogger(logger),
			markdown.WithUntaggedDetection(cfg.DetectUntaggedEnabled()))
		ext := embedded.New(h, adapter, markdown.Extensions, embedded.WithLogger(logger))
		s.exts = append(s.exts, ext)
		h = ext
	}
	if cfg.VueEnabled() {
		adapter := vue.New(fsys, vue.Config{Compiler: cfg.Compiler, Root: workDir}, vue.WithLogger(logger))
		s.exts = append(s.exts, embedded.New(h, adapter, vue.Extensions, embedded.WithLogger(logger)))
	}

	return s
}

// host returns the outermost host of the stack.
func (s *session) host() host.Host {
	if ext := s.outer(); ext != nil {
		return ext
	}
	return s.base
}

func (s *session) outer() *embedded.Extension {
	if len(s.exts) == 0 {
		return nil
	}
	return s.exts[len(s.exts)-1]
}

// extensionFor returns the decorator handling hostFileName, or nil.
func (s *session) extensionFor(hostFileName string) *embedded.Extension {
	for _, ext := range s.exts {
		if ext.IsForeign(hostFileName) {
			return ext
		}
	}
	return nil
}

// absPath resolves name against the working directory.
func (s *session) absPath(name string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(s.workDir, name)
}

// relativeTo shortens name to a slash path under dir when it lies below it.
func relativeTo(dir, name string) string {
	rel, err := filepath.Rel(dir, name)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return name
	}
	return filepath.ToSlash(rel)
}

// listRoots enumerates the root files under dir as the compiler sees them:
// native files as is, foreign documents under their virtual names.
func (s *session) listRoots(dir string) ([]string, error) {
	excludes := append(append([]string{}, defaultExcludes...), s.cfg.Exclude...)
	names, err := s.host().ReadDirectory(s.absPath(dir), host.NativeExtensions, excludes, s.cfg.Include, 0)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}
	return names, nil
}

// rootNames maps command-line paths to root names. Directories are
// enumerated; foreign documents are replaced by their virtual names. No
// paths means the working directory.
func (s *session) rootNames(paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	var roots []string
	for _, path := range paths {
		abs := s.absPath(path)

		info, err := s.fs.Stat(abs)
		if err == nil && info.IsDir() {
			names, err := s.listRoots(abs)
			if err != nil {
				return nil, err
			}
			roots = append(roots, names...)
			continue
		}

		name, err := s.virtualName(abs)
		if err != nil {
			return nil, err
		}
		roots = append(roots, name)
	}

	return roots, nil
}

// virtualName returns the name the compiler loads hostFileName under.
// Files no decorator handles, and documents without an embedded source,
// keep their name.
func (s *session) virtualName(hostFileName string) (string, error) {
	ext := s.extensionFor(hostFileName)
	if ext == nil {
		return hostFileName, nil
	}

	src, err := ext.Resolve(hostFileName)
	if err != nil {
		return "", err
	}
	if src == nil {
		return hostFileName, nil
	}
	return embedded.NameFor(hostFileName, src.Extension), nil
}

// Close releases the file watcher.
func (s *session) Close() error {
	return s.base.Close()
}
