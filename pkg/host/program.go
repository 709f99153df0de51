package host

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/yaklabco/sfcheck/pkg/issue"
)

// ErrFatal marks errors that must abort program construction instead of
// being reported as a per-file issue.
var ErrFatal = errors.New("fatal host error")

// errNoModule is returned by resolve when no candidate exists.
var errNoModule = errors.New("no such module")

// Issue codes produced by Program.
const (
	CodeResolution   = "SF1000"
	CodeFileNotFound = "SF1001"
	CodeNoModule     = "SF2307"
)

// OriginHost is the issue origin for diagnostics produced by Program.
const OriginHost = "host"

// templateMarker prefixes messages of issues re-anchored out of synthetic
// content.
const templateMarker = "[template] "

//nolint:gochecknoglobals // Compiled once.
var importPattern = regexp.MustCompile(
	`(?m)(?:\b(?:import|export)\b[^'";]*?\bfrom\s*|\bimport\s*\(\s*|\bimport\s+|\brequire\s*\(\s*)['"]([^'"\n]+)['"]`,
)

// Program is the set of source files reachable from a list of roots.
type Program struct {
	host  Host
	opts  ProgramOptions
	roots []string

	files  map[string]*SourceFile
	order  []string
	issues []issue.Issue
}

// NewProgram loads rootNames through h. Files that cannot be found or
// resolved become issues; errors wrapping ErrFatal are returned.
func NewProgram(rootNames []string, opts ProgramOptions, h Host) (*Program, error) {
	prog := &Program{
		host:  h,
		opts:  opts,
		roots: slices.Clone(rootNames),
		files: make(map[string]*SourceFile),
	}

	queue := slices.Clone(rootNames)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		if _, seen := prog.files[name]; seen {
			continue
		}

		file, err := prog.load(name)
		if err != nil {
			return nil, err
		}
		if file == nil {
			continue
		}

		if opts.FollowImports {
			imported, err := prog.imports(file)
			if err != nil {
				return nil, err
			}
			queue = append(queue, imported...)
		}
	}

	issue.Sort(prog.issues)

	return prog, nil
}

func (p *Program) load(name string) (*SourceFile, error) {
	file, err := p.host.GetSourceFile(name)
	switch {
	case errors.Is(err, ErrFatal):
		return nil, fmt.Errorf("load %s: %w", name, err)
	case errors.Is(err, fs.ErrNotExist):
		p.issues = append(p.issues, issue.Issue{
			Origin:   OriginHost,
			Severity: issue.SeverityError,
			Code:     CodeFileNotFound,
			Message:  fmt.Sprintf("File '%s' not found.", name),
			File:     name,
		})
		return nil, nil
	case err != nil:
		p.issues = append(p.issues, issue.Issue{
			Origin:   OriginHost,
			Severity: issue.SeverityError,
			Code:     CodeResolution,
			Message:  err.Error(),
			File:     name,
		})
		return nil, nil
	case file == nil:
		return nil, nil
	}

	p.files[name] = file
	p.order = append(p.order, name)

	return file, nil
}

// imports resolves the relative module specifiers of file and reports the
// ones that cannot be found or fail to resolve.
func (p *Program) imports(file *SourceFile) ([]string, error) {
	var resolved []string

	for _, m := range importPattern.FindAllStringSubmatchIndex(file.Text, -1) {
		start, end := m[2], m[3]
		spec := file.Text[start:end]
		if !isRelative(spec) {
			continue
		}

		target, err := p.resolve(file.FileName, spec)
		switch {
		case err == nil:
			resolved = append(resolved, target)
		case errors.Is(err, ErrFatal):
			return nil, fmt.Errorf("resolve %s from %s: %w", spec, file.FileName, err)
		case errors.Is(err, errNoModule):
			p.report(file, start, end, issue.Issue{
				Origin:   OriginHost,
				Severity: issue.SeverityError,
				Code:     CodeNoModule,
				Message:  fmt.Sprintf("Cannot find module '%s'.", spec),
				File:     file.FileName,
			})
		default:
			p.report(file, start, end, issue.Issue{
				Origin:   OriginHost,
				Severity: issue.SeverityError,
				Code:     CodeResolution,
				Message:  err.Error(),
				File:     file.FileName,
			})
		}
	}

	return resolved, nil
}

// resolve finds the file a relative specifier names, trying the specifier
// itself when it carries a native extension, then each native extension,
// then an index file. A candidate the host failed to resolve ends the
// search with that failure.
func (p *Program) resolve(from, spec string) (string, error) {
	base := filepath.Join(filepath.Dir(from), filepath.FromSlash(spec))

	candidates := make([]string, 0, 1+2*len(NativeExtensions))
	if IsNativeExtension(filepath.Ext(base)) {
		candidates = append(candidates, base)
	}
	for _, ext := range NativeExtensions {
		candidates = append(candidates, base+ext)
	}
	for _, ext := range NativeExtensions {
		candidates = append(candidates, filepath.Join(base, "index"+ext))
	}

	reporter, _ := p.host.(ResolutionReporter)
	for _, candidate := range candidates {
		if p.host.FileExists(candidate) {
			return candidate, nil
		}
		if reporter == nil {
			continue
		}
		if err := reporter.ResolutionError(candidate); err != nil {
			return "", err
		}
	}
	return "", errNoModule
}

// report records iss at [start, end) of file. Positions inside synthetic
// content have no meaning in the host document, so the location is dropped
// and the message is marked instead.
func (p *Program) report(file *SourceFile, start, end int, iss issue.Issue) {
	if file.IsSynthetic(start) {
		iss.Message = templateMarker + iss.Message
		p.issues = append(p.issues, iss)
		return
	}

	iss.Location = &issue.Location{
		Start: issue.PositionAt(file.Text, start),
		End:   issue.PositionAt(file.Text, end),
	}
	p.issues = append(p.issues, iss)
}

func isRelative(spec string) bool {
	return strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") || spec == "." || spec == ".."
}

// RootNames returns the names the program was created with.
func (p *Program) RootNames() []string {
	return slices.Clone(p.roots)
}

// Files returns the loaded source files in load order.
func (p *Program) Files() []*SourceFile {
	out := make([]*SourceFile, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, p.files[name])
	}
	return out
}

// SourceFile returns the loaded file with the given name, or nil.
func (p *Program) SourceFile(name string) *SourceFile {
	return p.files[name]
}

// Issues returns the diagnostics collected while loading, sorted.
func (p *Program) Issues() []issue.Issue {
	return slices.Clone(p.issues)
}

// Dependencies lists every loaded file plus the native extensions.
func (p *Program) Dependencies() Dependencies {
	files := slices.Clone(p.order)
	slices.Sort(files)
	return Dependencies{
		Files:      files,
		Extensions: slices.Clone(NativeExtensions),
	}
}
