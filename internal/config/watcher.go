package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Logger is the logging surface used by the watcher.
type Logger interface {
	Debug(format string, args ...any)
	Warn(format string, args ...any)
}

// Watcher reloads a Store when one of its files changes.
type Watcher struct {
	store    *Store
	log      Logger
	debounce time.Duration

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	files   map[string]bool
	timer   *time.Timer
	closeCh chan struct{}
	wg      sync.WaitGroup
	onLoad  func(error)
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long to wait for further events before reloading.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithWatchLogger sets the logger for reload failures.
func WithWatchLogger(l Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// WithReloadHook calls fn after every reload attempt with its result.
func WithReloadHook(fn func(error)) WatcherOption {
	return func(w *Watcher) {
		w.onLoad = fn
	}
}

// ErrWatcherClosed is returned by Start on a stopped watcher.
var ErrWatcherClosed = errors.New("config: watcher closed")

// NewWatcher creates a watcher for store.
func NewWatcher(store *Store, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		store:    store,
		log:      nopLogger{},
		debounce: 100 * time.Millisecond,
		files:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start watches the directories of the store's loaded files. Directories
// are watched rather than files so editors that replace files on save are
// still seen.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closeCh != nil {
		select {
		case <-w.closeCh:
			return ErrWatcherClosed
		default:
			return nil
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dirs := make(map[string]bool)
	for _, path := range w.store.Paths() {
		abs, err := filepath.Abs(path)
		if err != nil {
			fsw.Close()
			return err
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			w.log.Debug("config dir %s does not exist, not watching", dir)
			continue
		}
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return err
		}
	}

	w.fsw = fsw
	w.closeCh = make(chan struct{})
	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop ends watching. It is safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.closeCh == nil {
		w.closeCh = make(chan struct{})
		close(w.closeCh)
		w.mu.Unlock()
		return nil
	}
	select {
	case <-w.closeCh:
		w.mu.Unlock()
		return nil
	default:
	}
	close(w.closeCh)
	if w.timer != nil {
		w.timer.Stop()
	}
	fsw := w.fsw
	w.mu.Unlock()

	err := fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil || !w.files[abs] {
				continue
			}
			w.log.Debug("config file changed: %s", abs)
			w.schedule()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher: %v", err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	select {
	case <-w.closeCh:
		return
	default:
	}

	err := w.store.Reload()
	if err != nil {
		w.log.Warn("config reload failed: %v", err)
	}
	if w.onLoad != nil {
		w.onLoad(err)
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
