package embedded

import (
	"slices"

	"github.com/samber/lo"

	"github.com/yaklabco/sfcheck/pkg/host"
	"github.com/yaklabco/sfcheck/pkg/issue"
)

// ExtendIssues returns a copy of issues with virtual file names replaced by
// their host document names. Only File changes. When the wrapped host is
// itself an Extender, its rewrite is applied as well.
func (e *Extension) ExtendIssues(issues []issue.Issue) []issue.Issue {
	out := lo.Map(issues, func(is issue.Issue, _ int) issue.Issue {
		is.File = e.hostNameFor(is.File)
		return is
	})

	if inner, ok := e.base.(Extender); ok {
		return inner.ExtendIssues(out)
	}
	return out
}

// ExtendDependencies maps virtual dependency files back to their host
// documents and adds the foreign extensions to the watched set.
//
// A file is only mapped when the cached source for its host document has
// the same native extension; anything else is left alone.
func (e *Extension) ExtendDependencies(deps host.Dependencies) host.Dependencies {
	files := lo.Map(deps.Files, func(name string, _ int) string {
		parts, ok := e.virtual(name)
		if !ok {
			return name
		}
		src, cached := e.cache.Peek(parts.HostFileName)
		if !cached || src == nil || src.Extension != parts.Extension {
			return name
		}
		return parts.HostFileName
	})

	out := host.Dependencies{
		Files:      files,
		Extensions: append(slices.Clone(deps.Extensions), e.foreign...),
	}

	if inner, ok := e.base.(Extender); ok {
		return inner.ExtendDependencies(out)
	}
	return out
}
