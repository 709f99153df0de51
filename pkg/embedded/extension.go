// Package embedded lets a compiler host treat sources embedded in foreign
// documents (a component's script block, fenced code in Markdown) as if they
// were native files.
//
// A host document "App.vue" is exposed under the virtual name
// "App.vue<ext>", where <ext> is the native extension its Resolver picks.
// The Extension decorator redirects existence checks, reads, source
// acquisition, directory listings and watches for virtual names to the
// resolved source, and ExtendIssues/ExtendDependencies map virtual names back
// to host document names.
package embedded

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"

	"github.com/yaklabco/sfcheck/internal/logging"
	"github.com/yaklabco/sfcheck/pkg/host"
	"github.com/yaklabco/sfcheck/pkg/issue"
	"github.com/yaklabco/sfcheck/pkg/renderguard"
)

// Resolver derives the embedded source of one foreign format.
//
// Resolve returns a nil source without error when the host document does
// not exist. It must be a pure function of the document content at call
// time.
type Resolver interface {
	Resolve(hostFileName string) (*Source, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(hostFileName string) (*Source, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(hostFileName string) (*Source, error) {
	return f(hostFileName)
}

// Extender maps virtual names in compiler output back to host names.
type Extender interface {
	ExtendIssues(issues []issue.Issue) []issue.Issue
	ExtendDependencies(deps host.Dependencies) host.Dependencies
}

// Compile-time interface checks.
var (
	_ host.Host               = (*Extension)(nil)
	_ host.ResolutionReporter = (*Extension)(nil)
	_ Extender                = (*Extension)(nil)
)

// Extension decorates a host.Host with embedded-source support for a set of
// foreign extensions. Native names pass through to the wrapped host
// unchanged.
//
// Extensions compose: wrapping an Extension in another Extension adds the
// second format, and ExtendIssues/ExtendDependencies walk the chain.
type Extension struct {
	base     host.Host
	resolver Resolver
	foreign  []string
	cache    *Cache
	logger   *log.Logger
}

// Option configures an Extension.
type Option func(*Extension)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Extension) {
		e.logger = logger
	}
}

// WithCache makes the extension use cache instead of a private one.
func WithCache(cache *Cache) Option {
	return func(e *Extension) {
		e.cache = cache
	}
}

// New wraps base so that documents with one of the foreign extensions are
// served through resolver.
func New(base host.Host, resolver Resolver, foreign []string, opts ...Option) *Extension {
	ext := &Extension{
		base:     base,
		resolver: resolver,
		foreign:  slices.Clone(foreign),
		cache:    NewCache(),
		logger:   logging.Default(),
	}
	for _, opt := range opts {
		opt(ext)
	}
	return ext
}

// Base returns the wrapped host.
func (e *Extension) Base() host.Host {
	return e.base
}

// Cache returns the resolution cache.
func (e *Extension) Cache() *Cache {
	return e.cache
}

// ForeignExtensions returns the extensions this decorator handles.
func (e *Extension) ForeignExtensions() []string {
	return slices.Clone(e.foreign)
}

// IsForeign reports whether name is a host document this decorator handles.
func (e *Extension) IsForeign(name string) bool {
	return slices.Contains(e.foreign, filepath.Ext(name))
}

// virtual splits name and reports whether it is a virtual name served by
// this decorator: a native extension on top of a declared foreign one.
func (e *Extension) virtual(name string) (Name, bool) {
	parts := Split(name)
	ok := host.IsNativeExtension(parts.Extension) && slices.Contains(e.foreign, parts.EmbeddedExtension)
	return parts, ok
}

// Resolve returns the embedded source for a host document, consulting the
// cache first. A failure is remembered until the document changes.
func (e *Extension) Resolve(hostFileName string) (*Source, error) {
	return e.cache.GetOrCompute(hostFileName, func(name string) (*Source, error) {
		src, err := e.resolver.Resolve(name)
		if err != nil {
			e.logger.Warn("embedded source failed",
				logging.FieldHostFile, name,
				logging.FieldError, err)
			return nil, fmt.Errorf("resolve %s: %w", name, err)
		}
		if src == nil {
			e.logger.Debug("embedded source absent", logging.FieldHostFile, name)
		} else {
			e.logger.Debug("embedded source resolved",
				logging.FieldHostFile, name,
				logging.FieldExtension, src.Extension)
		}
		return src, nil
	})
}

// FileExists implements host.Host. A virtual name exists when its host
// document resolves to a source of exactly the requested native extension.
// A failed resolution reports false; ResolutionError explains it.
func (e *Extension) FileExists(name string) bool {
	parts, ok := e.virtual(name)
	if !ok {
		return e.base.FileExists(name)
	}

	src, err := e.Resolve(parts.HostFileName)
	return err == nil && src != nil && src.Extension == parts.Extension
}

// ResolutionError implements host.ResolutionReporter. It returns the
// remembered failure of the document behind a virtual name.
func (e *Extension) ResolutionError(name string) error {
	parts, ok := e.virtual(name)
	if !ok {
		if reporter, ok := e.base.(host.ResolutionReporter); ok {
			return reporter.ResolutionError(name)
		}
		return nil
	}
	return e.cache.Failure(parts.HostFileName)
}

// ReadFile implements host.Host.
func (e *Extension) ReadFile(name string) (string, error) {
	parts, ok := e.virtual(name)
	if !ok {
		return e.base.ReadFile(name)
	}

	src, err := e.Resolve(parts.HostFileName)
	if err != nil {
		return "", err
	}
	if src == nil {
		return "", &fs.PathError{Op: "read", Path: name, Err: fs.ErrNotExist}
	}
	return src.Text, nil
}

// GetSourceFile implements host.Host. Virtual sources are tagged with their
// real end and get the render guard applied once.
func (e *Extension) GetSourceFile(name string) (*host.SourceFile, error) {
	parts, ok := e.virtual(name)
	if !ok {
		return e.base.GetSourceFile(name)
	}

	src, err := e.Resolve(parts.HostFileName)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}

	file := host.NewSourceFile(name, src.Text)
	file.SetRealEnd(src.RealEnd)
	e.setupSourceFile(file)

	return file, nil
}

func (e *Extension) setupSourceFile(file *host.SourceFile) {
	if file.Guarded() || !file.HasRealEnd() {
		return
	}

	if err := renderguard.Apply(file); err != nil {
		e.logger.Warn("render guard skipped",
			logging.FieldVirtualFile, file.FileName,
			logging.FieldError, err)
		return
	}

	e.logger.Debug("render guard applied",
		logging.FieldVirtualFile, file.FileName,
		logging.FieldRealEnd, file.RealEnd())
}

// ReadDirectory implements host.Host. The foreign extensions are added to
// the listing and every foreign document that resolves gets its native
// extension appended.
func (e *Extension) ReadDirectory(root string, extensions, excludes, includes []string, depth int) ([]string, error) {
	all := lo.Uniq(append(slices.Clone(extensions), e.foreign...))

	names, err := e.base.ReadDirectory(root, all, excludes, includes, depth)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(names))
	for _, name := range names {
		if !e.IsForeign(name) {
			out = append(out, name)
			continue
		}

		src, err := e.Resolve(name)
		if err != nil {
			return nil, err
		}
		if src == nil {
			out = append(out, name)
			continue
		}
		out = append(out, NameFor(name, src.Extension))
	}

	return out, nil
}

// WatchFile implements host.Host. A virtual name is watched through its
// host document; a change evicts the cached source and reports the virtual
// name to cb.
func (e *Extension) WatchFile(name string, cb host.WatchCallback, interval time.Duration) (host.Watcher, error) {
	parts, ok := e.virtual(name)
	if !ok {
		return e.base.WatchFile(name, cb, interval)
	}

	hostName := parts.HostFileName
	return e.base.WatchFile(hostName, func(_ string, kind host.EventKind) {
		e.cache.Invalidate(hostName)
		e.logger.Debug("embedded source invalidated",
			logging.FieldHostFile, hostName,
			logging.FieldEvent, kind.String())
		cb(name, kind)
	}, interval)
}

// CreateProgram implements host.Host. The program reads its sources through
// h decorated the same way as the receiver, sharing its cache; a nil h means
// the receiver itself.
func (e *Extension) CreateProgram(rootNames []string, opts host.ProgramOptions, h host.Host) (*host.Program, error) {
	via := host.Host(e)
	if h != nil {
		via = &Extension{
			base:     h,
			resolver: e.resolver,
			foreign:  e.foreign,
			cache:    e.cache,
			logger:   e.logger,
		}
	}
	return e.base.CreateProgram(rootNames, opts, via)
}

// hostNameFor returns the host document name for a virtual name served by
// this decorator, or name unchanged.
func (e *Extension) hostNameFor(name string) string {
	if parts, ok := e.virtual(name); ok {
		return parts.HostFileName
	}
	return name
}
