// Package watch follows a file on disk and reports its text after each change.
package watch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/bastiangx/docwords/internal/logger"
	"github.com/bastiangx/docwords/internal/utils"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the file has to stay quiet before it is read.
const DefaultDebounce = 200 * time.Millisecond

// ChangeFunc receives the full file text.
type ChangeFunc func(text string)

// FileWatcher watches one file. The parent directory is watched instead of
// the file itself so editors that save by rename keep being followed.
type FileWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onChange ChangeFunc
	debounce time.Duration
	log      *log.Logger

	mu      sync.Mutex
	timer   *time.Timer
	started bool
	stopped bool
	done    chan struct{}
}

// NewFileWatcher creates a watcher for path. A debounce of zero or less uses
// DefaultDebounce.
func NewFileWatcher(path string, debounce time.Duration, onChange ChangeFunc) (*FileWatcher, error) {
	path = filepath.Clean(utils.GetAbsolutePath(path))
	if !utils.FileExists(path) {
		return nil, errors.Newf("watched file %s does not exist", path)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create fsnotify watcher")
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "watch directory of %s", path)
	}

	return &FileWatcher{
		path:     path,
		watcher:  watcher,
		onChange: onChange,
		debounce: debounce,
		log:      logger.New("watch"),
		done:     make(chan struct{}),
	}, nil
}

// Path returns the absolute path being watched.
func (w *FileWatcher) Path() string {
	return w.path
}

// Load reads the file and hands its text to the callback right away.
func (w *FileWatcher) Load() error {
	text, err := utils.ReadTextFile(w.path)
	if err != nil {
		return err
	}
	w.onChange(text)
	return nil
}

// Start begins watching in a new goroutine.
func (w *FileWatcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.stopped {
		return
	}
	w.started = true
	go w.watchLoop()
}

func (w *FileWatcher) watchLoop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.log.Debug("File changed", "file", event.Name, "op", event.Op.String())
				w.schedule()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("Watcher error", "err", err)
		}
	}
}

// schedule restarts the debounce timer.
func (w *FileWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *FileWatcher) reload() {
	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()
	if stopped {
		return
	}

	if err := w.Load(); err != nil {
		w.log.Error("Reading watched file failed", "file", w.path, "err", err)
	}
}

// Stop ends the watch. Pending reloads are dropped.
func (w *FileWatcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	started := w.started
	w.mu.Unlock()

	err := w.watcher.Close()
	if started {
		<-w.done
	}
	return err
}
