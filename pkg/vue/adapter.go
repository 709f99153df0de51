// Package vue resolves the embedded script of single-file components
// (.vue documents) through a JavaScript template compiler evaluated in goja.
//
// The script block becomes the virtual source: synthesized when absent,
// re-exported when it points at an external file, or padded so it keeps its
// original line numbers. When the component has a template, its compiled
// render function is appended behind a synthetic boundary together with the
// declarations needed to type check it against the component.
package vue

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/yaklabco/sfcheck/internal/logging"
	"github.com/yaklabco/sfcheck/pkg/embedded"
)

// Extensions are the host document extensions handled by the adapter.
//
//nolint:gochecknoglobals // Read-only.
var Extensions = []string{".vue"}

// DefaultCompiler is the template compiler module used when none is
// configured.
const DefaultCompiler = "vue-template-compiler"

// Config configures the adapter.
type Config struct {
	// Compiler names the template compiler module: a package under
	// node_modules or a path to a CommonJS bundle.
	Compiler string

	// Root is the directory the compiler module is resolved from.
	Root string
}

// Compile-time interface check.
var _ embedded.Resolver = (*Adapter)(nil)

// Adapter is an embedded.Resolver for .vue documents. The template compiler
// is loaded on first use.
type Adapter struct {
	fs     afero.Fs
	cfg    Config
	logger *log.Logger

	load     func() (*Compiler, error)
	compiler *Compiler
	loadErr  error
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// WithCompiler makes the adapter use an already loaded compiler.
func WithCompiler(c *Compiler) Option {
	return func(a *Adapter) {
		a.load = func() (*Compiler, error) { return c, nil }
	}
}

// New creates an adapter reading documents from fsys.
func New(fsys afero.Fs, cfg Config, opts ...Option) *Adapter {
	if cfg.Compiler == "" {
		cfg.Compiler = DefaultCompiler
	}
	if cfg.Root == "" {
		cfg.Root = "."
	}

	a := &Adapter{
		fs:     fsys,
		cfg:    cfg,
		logger: logging.Default(),
	}
	a.load = func() (*Compiler, error) {
		return LoadCompiler(a.fs, a.cfg.Root, a.cfg.Compiler)
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Compiler returns the template compiler, loading it on first call. A load
// failure is remembered and returned by every later call.
func (a *Adapter) Compiler() (*Compiler, error) {
	if a.compiler != nil || a.loadErr != nil {
		return a.compiler, a.loadErr
	}

	compiler, err := a.load()
	if err != nil {
		a.loadErr = err
		return nil, err
	}

	a.logger.Debug("vue template compiler loaded",
		logging.FieldCompiler, a.cfg.Compiler,
		logging.FieldShape, compiler.Shape().String())

	a.compiler = compiler
	return compiler, nil
}

// Resolve implements embedded.Resolver.
func (a *Adapter) Resolve(hostFileName string) (*embedded.Source, error) {
	data, err := afero.ReadFile(a.fs, hostFileName)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", hostFileName, err)
	}

	compiler, err := a.Compiler()
	if err != nil {
		return nil, err
	}

	text := string(data)
	desc, err := compiler.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse component %s: %w", hostFileName, err)
	}

	src := scriptSource(text, desc.Script)

	if desc.TemplateSkipped {
		a.logger.Debug("template not compiled",
			logging.FieldHostFile, hostFileName,
			logging.FieldError, ErrNoTemplateCompiler)
	}
	if desc.Template == nil {
		return src, nil
	}

	shim, err := renderShim(compiler.Shape(), desc.Template, componentClass(text))
	if err != nil {
		return nil, fmt.Errorf("render shim for %s: %w", hostFileName, err)
	}

	end := len(src.Text)
	src.RealEnd = &end
	src.Text += shim

	return src, nil
}
