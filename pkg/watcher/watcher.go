// Package watcher reports changes to data files on local disk. It prefers
// fsnotify and falls back to polling file size and modification time when
// fsnotify is unavailable or polling is forced.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/votemap/pkg/debug"
)

// DefaultPollInterval is the polling interval in fallback mode.
const DefaultPollInterval = 2 * time.Second

var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
	ErrNoFiles        = errors.New("no files to watch")
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets the quiet period before a change is reported.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) { w.debounceDuration = d }
}

// WithPollInterval sets the polling interval for fallback mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithOnChange sets the callback invoked after a debounced change. It
// receives the path of the last file that changed in the burst.
func WithOnChange(fn func(path string)) Option {
	return func(w *Watcher) { w.onChange = fn }
}

// WithOnError sets the callback invoked on errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// WithForcePoll forces polling mode.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) { w.forcePoll = force }
}

type fileState struct {
	mtime time.Time
	size  int64
}

// Watcher watches a set of files.
type Watcher struct {
	paths            []string
	debounceDuration time.Duration
	pollInterval     time.Duration
	onChange         func(string)
	onError          func(error)
	forcePoll        bool

	fsWatcher   *fsnotify.Watcher
	debouncer   *Debouncer
	useFallback bool
	states      map[string]fileState

	cancel   context.CancelFunc
	started  bool
	mu       sync.RWMutex
	changeCh chan string
}

// New creates a watcher for paths. Nothing is watched until Start.
func New(paths []string, opts ...Option) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, ErrNoFiles
	}
	abs := make([]string, 0, len(paths))
	for _, p := range paths {
		a, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("watch %s: %w", p, err)
		}
		abs = append(abs, a)
	}

	w := &Watcher{
		paths:            abs,
		debounceDuration: DefaultDebounceDuration,
		pollInterval:     DefaultPollInterval,
		onChange:         func(string) {},
		onError:          func(error) {},
		changeCh:         make(chan string, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounceDuration)
	return w, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}

	var ctx context.Context
	ctx, w.cancel = context.WithCancel(context.Background())

	w.states = make(map[string]fileState, len(w.paths))
	for _, p := range w.paths {
		info, err := os.Stat(p)
		switch {
		case err == nil:
			w.states[p] = fileState{mtime: info.ModTime(), size: info.Size()}
		case os.IsPermission(err):
			w.cancel()
			return fmt.Errorf("%s: %w", p, ErrPermission)
		}
		// A missing file may appear later.
	}

	w.useFallback = w.forcePoll || envBool("VOTEMAP_FORCE_POLL")
	if !w.useFallback {
		if err := w.startFsnotify(ctx); err != nil {
			debug.Log("watcher: fsnotify unavailable, polling: %v", err)
			w.useFallback = true
		}
	}
	if w.useFallback {
		go w.watchPolling(ctx)
	}

	w.started = true
	debug.Log("watcher: watching %d files (polling=%v)", len(w.paths), w.useFallback)
	return nil
}

func (w *Watcher) startFsnotify(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Directories rather than files, so atomic rename-over writes are seen.
	dirs := make(map[string]struct{})
	for _, p := range w.paths {
		dirs[filepath.Dir(p)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return err
		}
	}
	w.fsWatcher = fsw
	go w.watchFsnotify(ctx, fsw.Events, fsw.Errors)
	return nil
}

// Stop stops watching. The Changed channel is left open.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}
	w.cancel()
	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}
	w.debouncer.Cancel()
	w.started = false
}

// IsPolling reports whether the watcher runs in polling mode.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.useFallback
}

// IsStarted reports whether the watcher is running.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// Changed delivers the path of each debounced change. Sends never block;
// a change is dropped when the previous one has not been received yet.
func (w *Watcher) Changed() <-chan string {
	return w.changeCh
}

// Paths returns the absolute paths being watched.
func (w *Watcher) Paths() []string {
	return append([]string(nil), w.paths...)
}

func (w *Watcher) watched(name string) (string, bool) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", false
	}
	for _, p := range w.paths {
		if p == abs {
			return p, true
		}
	}
	return "", false
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

func (w *Watcher) watchFsnotify(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			path, ok := w.watched(event.Name)
			if !ok {
				continue
			}
			switch {
			case event.Op&fsnotify.Remove != 0:
				w.onError(fmt.Errorf("%s: %w", path, ErrFileRemoved))
			case event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				w.debouncer.Trigger(func() { w.notifyChange(path) })
			}

		case err, ok := <-errs:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) watchPolling(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, p := range w.paths {
				w.poll(p)
			}
		}
	}
}

func (w *Watcher) poll(path string) {
	info, err := os.Stat(path)
	if err != nil {
		w.mu.Lock()
		_, had := w.states[path]
		delete(w.states, path)
		w.mu.Unlock()
		switch {
		case os.IsNotExist(err):
			if had {
				w.onError(fmt.Errorf("%s: %w", path, ErrFileRemoved))
			}
		case os.IsPermission(err):
			w.onError(fmt.Errorf("%s: %w", path, ErrPermission))
		default:
			w.onError(err)
		}
		return
	}

	w.mu.Lock()
	prev, had := w.states[path]
	changed := !had || info.ModTime().After(prev.mtime) || info.Size() != prev.size
	if changed {
		w.states[path] = fileState{mtime: info.ModTime(), size: info.Size()}
	}
	w.mu.Unlock()

	if changed {
		w.debouncer.Trigger(func() { w.notifyChange(path) })
	}
}

func (w *Watcher) notifyChange(path string) {
	w.mu.RLock()
	started := w.started
	w.mu.RUnlock()
	if !started {
		return
	}

	debug.Log("watcher: %s changed", path)
	w.onChange(path)
	select {
	case w.changeCh <- path:
	default:
	}
}
