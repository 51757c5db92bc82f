package repo

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// headDebounce coalesces the burst of writes git makes while updating HEAD.
const headDebounce = 100 * time.Millisecond

// Watcher notifies a callback when the repository's HEAD file changes, so
// the UI can show a branch switch without waiting for the next refresh tick.
type Watcher struct {
	watcher  *fsnotify.Watcher
	gitDir   string
	onChange func()
	stopCh   chan struct{}
}

// NewWatcher creates a watcher for <gitDir>/HEAD. The callback runs on the
// watcher's goroutine; keep it cheap and marshal to your own loop.
func NewWatcher(gitDir string, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fsw,
		gitDir:   gitDir,
		onChange: onChange,
		stopCh:   make(chan struct{}),
	}

	// Watch the directory rather than the file: git replaces HEAD by
	// rename, which drops a watch on the file itself.
	if err := fsw.Add(gitDir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch git dir: %w", err)
	}

	return w, nil
}

// Start begins watching for HEAD changes.
func (w *Watcher) Start() {
	go w.watchLoop()
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.stopCh)
	_ = w.watcher.Close()
}

// watchLoop processes filesystem events for the git directory.
func (w *Watcher) watchLoop() {
	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C // drain initial timer

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != headFileName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			debounceTimer.Reset(headDebounce)

		case <-debounceTimer.C:
			if w.onChange != nil {
				w.onChange()
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}
