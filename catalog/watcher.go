package catalog

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/AiDave71/Bannerlord.LauncherManager/errors"
	"github.com/AiDave71/Bannerlord.LauncherManager/logger"
)

// Watcher watches a catalog path (document file or game Modules directory)
// and triggers reload callbacks when modules change on disk.
type Watcher struct {
	path           string
	watcher        *fsnotify.Watcher
	callbacks      []ReloadCallback
	mu             sync.Mutex
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
	reload         func() (*Catalog, Selection, error)
}

// ReloadCallback receives the freshly loaded catalog and selection
type ReloadCallback func(*Catalog, Selection) error

// WatchDocument watches a catalog document file
func WatchDocument(path string) (*Watcher, error) {
	return newWatcher(path, func() (*Catalog, Selection, error) {
		return LoadDocument(path)
	})
}

// WatchModulesDir watches a game directory's Modules tree
func WatchModulesDir(gamePath string) (*Watcher, error) {
	return newWatcher(gamePath, func() (*Catalog, Selection, error) {
		return ScanModulesDir(gamePath)
	})
}

func newWatcher(path string, reload func() (*Catalog, Selection, error)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return nil, errors.Wrapf(err, "failed to watch catalog path %s", path)
	}

	return &Watcher{
		path:           path,
		watcher:        fsw,
		debouncePeriod: 500 * time.Millisecond, // module installs touch many files at once
		reload:         reload,
	}, nil
}

// OnReload registers a callback invoked after each successful reload
func (w *Watcher) OnReload(callback ReloadCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Start begins watching in a background goroutine
func (w *Watcher) Start() {
	go w.watchLoop()
}

// Stop closes the underlying filesystem watcher
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) watchLoop() {
	log := logger.Logger.Named("catalog.watcher")
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				log.Debugw("Catalog change detected",
					"file", event.Name,
					"op", event.Op.String())
				w.scheduleReload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warnw("Catalog watcher error", "error", err)
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debouncePeriod, w.doReload)
}

func (w *Watcher) doReload() {
	log := logger.Logger.Named("catalog.watcher")

	cat, selection, err := w.reload()
	if err != nil {
		log.Errorw("Catalog reload failed",
			"path", w.path,
			"error", err)
		return
	}

	log.Infow("Catalog reloaded",
		"path", w.path,
		"modules", cat.Len())

	w.mu.Lock()
	callbacks := make([]ReloadCallback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	for _, callback := range callbacks {
		if err := callback(cat, selection); err != nil {
			log.Warnw("Catalog reload callback error", "error", err)
		}
	}
}
