// Package host defines the compiler host contract consumed by the
// embedded-source layer, plus a file-system backed implementation and a
// minimal program builder that drives it.
package host

import (
	"path/filepath"
	"strings"
	"time"
)

// NativeExtensions are the file suffixes the compiler understands directly,
// in module-resolution order.
//
//nolint:gochecknoglobals // Read-only lookup table.
var NativeExtensions = []string{".ts", ".tsx", ".js", ".jsx"}

// IsNativeExtension reports whether ext is one of NativeExtensions.
func IsNativeExtension(ext string) bool {
	for _, native := range NativeExtensions {
		if ext == native {
			return true
		}
	}
	return false
}

// EventKind classifies a file-watch notification.
type EventKind int

const (
	EventCreated EventKind = iota
	EventChanged
	EventDeleted
)

func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventChanged:
		return "changed"
	case EventDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// WatchCallback is invoked with the watched file name when it changes.
type WatchCallback func(fileName string, kind EventKind)

// Watcher is a registered file watch.
type Watcher interface {
	Close() error
}

// ProgramOptions configures program construction.
type ProgramOptions struct {
	// FollowImports loads relative imports of root files transitively.
	FollowImports bool
}

// Host is the set of file-system facing operations a compiler performs.
// Implementations must treat names verbatim: no normalization beyond what
// the underlying file system does.
type Host interface {
	// FileExists reports whether name exists as a regular file.
	FileExists(name string) bool

	// ReadFile returns the content of name. A missing file yields an error
	// wrapping fs.ErrNotExist.
	ReadFile(name string) (string, error)

	// GetSourceFile returns the compiler's source object for name.
	GetSourceFile(name string) (*SourceFile, error)

	// WatchFile registers cb for changes to name. The interval is a hint
	// for polling implementations.
	WatchFile(name string, cb WatchCallback, interval time.Duration) (Watcher, error)

	// ReadDirectory lists files under root whose names end in one of
	// extensions, honoring exclude/include globs and a depth limit
	// (depth <= 0 means unlimited).
	ReadDirectory(root string, extensions, excludes, includes []string, depth int) ([]string, error)

	// CreateProgram builds a program from rootNames. When h is nil the
	// receiver is used for all file access.
	CreateProgram(rootNames []string, opts ProgramOptions, h Host) (*Program, error)
}

// ResolutionReporter is implemented by hosts whose FileExists can be false
// because a name failed to resolve rather than because it is missing.
type ResolutionReporter interface {
	// ResolutionError returns the failure behind name, or nil.
	ResolutionError(name string) error
}

// Dependencies lists the files a program depends on and the extensions a
// watcher must observe to catch new ones.
type Dependencies struct {
	Files      []string
	Extensions []string
}

// ScriptKind is the language of a source file, derived from its extension.
type ScriptKind int

const (
	KindUnknown ScriptKind = iota
	KindJS
	KindJSX
	KindTS
	KindTSX
)

// KindFromName derives the script kind from the file name's last extension.
func KindFromName(name string) ScriptKind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".js", ".mjs", ".cjs":
		return KindJS
	case ".jsx":
		return KindJSX
	case ".ts", ".mts", ".cts":
		return KindTS
	case ".tsx":
		return KindTSX
	default:
		return KindUnknown
	}
}
