package media

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"medvault/internal/domain/repositories"
)

// maxWatchedDirs keeps the watcher well under typical inotify limits; folders
// past the cap still get the index mtime check
const maxWatchedDirs = 2048

// Watcher drops folder index entries when files are added, removed or renamed
// out-of-band (copied from a USB stick, written by a recorder)
type Watcher struct {
	watcher *fsnotify.Watcher
	index   repositories.FolderIndex
	logger  *slog.Logger

	mu   sync.Mutex
	dirs map[string]string // Watched dir -> root ID

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewWatcher creates a watcher and starts its event loop
func NewWatcher(index repositories.FolderIndex, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher: fw,
		index:   index,
		logger:  logger,
		dirs:    make(map[string]string),
		stop:    make(chan struct{}),
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Watch starts watching dir. Repeat calls are no-ops.
func (w *Watcher) Watch(rootID, dir string) {
	dir = filepath.Clean(dir)

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.dirs[dir]; ok {
		return
	}
	if len(w.dirs) >= maxWatchedDirs {
		return
	}
	if err := w.watcher.Add(dir); err != nil {
		w.logger.Debug("failed to watch folder", "path", dir, "error", err)
		return
	}
	w.dirs[dir] = rootID
}

// Watched reports whether dir is being watched
func (w *Watcher) Watched(dir string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.dirs[filepath.Clean(dir)]
	return ok
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.stop:
			return
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				// Lost events could be anywhere
				w.invalidateAll()
				continue
			}
			w.logger.Warn("folder watcher error", "error", err)
		case evt, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(evt)
		}
	}
}

func (w *Watcher) handle(evt fsnotify.Event) {
	if !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Remove) && !evt.Has(fsnotify.Rename) && !evt.Has(fsnotify.Write) {
		return
	}

	path := filepath.Clean(evt.Name)
	if strings.HasPrefix(filepath.Base(path), ".") {
		// Our own temp files; the rename that follows is what matters
		return
	}

	dir := filepath.Dir(path)

	w.mu.Lock()
	rootID, watched := w.dirs[dir]
	selfRoot, isDir := w.dirs[path]
	if isDir && (evt.Has(fsnotify.Remove) || evt.Has(fsnotify.Rename)) {
		delete(w.dirs, path)
		_ = w.watcher.Remove(path)
	}
	w.mu.Unlock()

	ctx := context.Background()
	if watched {
		w.invalidate(ctx, rootID, dir)
	}
	if isDir {
		w.invalidate(ctx, selfRoot, path)
	}
}

func (w *Watcher) invalidate(ctx context.Context, rootID, dir string) {
	if err := w.index.Invalidate(ctx, rootID, dir); err != nil {
		w.logger.Warn("failed to invalidate folder index", "root_id", rootID, "path", dir, "error", err)
		return
	}
	w.logger.Debug("folder index invalidated", "root_id", rootID, "path", dir)
}

func (w *Watcher) invalidateAll() {
	w.mu.Lock()
	dirs := make(map[string]string, len(w.dirs))
	for dir, rootID := range w.dirs {
		dirs[dir] = rootID
	}
	w.mu.Unlock()

	ctx := context.Background()
	for dir, rootID := range dirs {
		w.invalidate(ctx, rootID, dir)
	}
}

// Close stops the event loop and releases every watch
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.stop)
		err = w.watcher.Close()
	})
	w.wg.Wait()
	return err
}
