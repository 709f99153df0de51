package host

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"

	"github.com/yaklabco/sfcheck/internal/logging"
)

// Compile-time interface check.
var _ Host = (*FSHost)(nil)

// FSHost implements Host on top of an afero file system.
//
// File watching uses fsnotify on the parent directory of each watched file.
// Callbacks are not invoked from a background goroutine: events queue in
// fsnotify until Dispatch is called, and Dispatch runs every callback on the
// caller's goroutine. This keeps the host single-threaded from the point of
// view of its decorators.
type FSHost struct {
	fs     afero.Fs
	logger *log.Logger

	notify   *fsnotify.Watcher
	watches  map[string][]*fileWatch
	dirRefs  map[string]int
	nextID   int
	newWatch func() (*fsnotify.Watcher, error)
}

// Option configures an FSHost.
type Option func(*FSHost)

// WithLogger sets the logger used for watch diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(h *FSHost) {
		h.logger = logger
	}
}

// NewFSHost creates a host backed by fsys.
func NewFSHost(fsys afero.Fs, opts ...Option) *FSHost {
	h := &FSHost{
		fs:       fsys,
		logger:   logging.Default(),
		watches:  make(map[string][]*fileWatch),
		dirRefs:  make(map[string]int),
		newWatch: fsnotify.NewWatcher,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Fs returns the underlying file system.
func (h *FSHost) Fs() afero.Fs {
	return h.fs
}

// FileExists implements Host.
func (h *FSHost) FileExists(name string) bool {
	info, err := h.fs.Stat(name)
	return err == nil && !info.IsDir()
}

// ReadFile implements Host.
func (h *FSHost) ReadFile(name string) (string, error) {
	data, err := afero.ReadFile(h.fs, name)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(data), nil
}

// GetSourceFile implements Host.
func (h *FSHost) GetSourceFile(name string) (*SourceFile, error) {
	text, err := h.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return NewSourceFile(name, text), nil
}

// ReadDirectory implements Host.
func (h *FSHost) ReadDirectory(root string, extensions, excludes, includes []string, depth int) ([]string, error) {
	return readDirectory(h.fs, root, extensions, excludes, includes, depth)
}

// CreateProgram implements Host.
func (h *FSHost) CreateProgram(rootNames []string, opts ProgramOptions, via Host) (*Program, error) {
	if via == nil {
		via = h
	}
	return NewProgram(rootNames, opts, via)
}

// fileWatch is one registered callback.
type fileWatch struct {
	id   int
	name string
	dir  string
	cb   WatchCallback
	host *FSHost
}

// Close removes the watch. Closing twice is a no-op.
func (w *fileWatch) Close() error {
	return w.host.unwatch(w)
}

// WatchFile implements Host. The interval is ignored: fsnotify is event
// driven.
func (h *FSHost) WatchFile(name string, cb WatchCallback, _ time.Duration) (Watcher, error) {
	if h.notify == nil {
		notify, err := h.newWatch()
		if err != nil {
			return nil, fmt.Errorf("create file watcher: %w", err)
		}
		h.notify = notify
	}

	name = filepath.Clean(name)
	dir := filepath.Dir(name)

	if h.dirRefs[dir] == 0 {
		if err := h.notify.Add(dir); err != nil {
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	h.dirRefs[dir]++

	h.nextID++
	w := &fileWatch{id: h.nextID, name: name, dir: dir, cb: cb, host: h}
	h.watches[name] = append(h.watches[name], w)

	h.logger.Debug("watching file", logging.FieldPath, name)

	return w, nil
}

func (h *FSHost) unwatch(w *fileWatch) error {
	list := h.watches[w.name]
	idx := slices.IndexFunc(list, func(x *fileWatch) bool { return x.id == w.id })
	if idx < 0 {
		return nil
	}

	list = slices.Delete(list, idx, idx+1)
	if len(list) == 0 {
		delete(h.watches, w.name)
	} else {
		h.watches[w.name] = list
	}

	h.dirRefs[w.dir]--
	if h.dirRefs[w.dir] > 0 {
		return nil
	}
	delete(h.dirRefs, w.dir)

	if err := h.notify.Remove(w.dir); err != nil && !errors.Is(err, fsnotify.ErrNonExistentWatch) {
		return fmt.Errorf("unwatch %s: %w", w.dir, err)
	}
	return nil
}

// Dispatch delivers pending and future watch events to their callbacks on
// the calling goroutine until ctx is cancelled or Close is called.
func (h *FSHost) Dispatch(ctx context.Context) error {
	if h.notify == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-h.notify.Events:
			if !ok {
				return nil
			}
			h.deliver(event)
		case err, ok := <-h.notify.Errors:
			if !ok {
				return nil
			}
			h.logger.Warn("file watcher error", logging.FieldError, err)
		}
	}
}

func (h *FSHost) deliver(event fsnotify.Event) {
	kind, ok := eventKind(event.Op)
	if !ok {
		return
	}

	name := filepath.Clean(event.Name)
	// Copy: callbacks may close or add watches.
	targets := slices.Clone(h.watches[name])
	for _, w := range targets {
		w.cb(name, kind)
	}
}

func eventKind(op fsnotify.Op) (EventKind, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return EventCreated, true
	case op.Has(fsnotify.Write):
		return EventChanged, true
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return EventDeleted, true
	default:
		return 0, false
	}
}

// Close releases the underlying fsnotify watcher.
func (h *FSHost) Close() error {
	if h.notify == nil {
		return nil
	}
	err := h.notify.Close()
	h.notify = nil
	clear(h.watches)
	clear(h.dirRefs)
	return err
}
