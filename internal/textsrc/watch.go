package textsrc

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle is how long a burst of file events must be quiet before Next
// reports a change. Editors often write a file in several steps.
const settle = 100 * time.Millisecond

// Watcher reports changes to a single file.
type Watcher struct {
	w    *fsnotify.Watcher
	path string
}

// Watch starts watching path. The parent directory is watched so that
// editors which replace the file on save are still seen.
func Watch(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("unable to get absolute path: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("unable to watch %s: %w", abs, err)
	}
	return &Watcher{w: w, path: abs}, nil
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Next blocks until the file was written, created or replaced and the
// events have settled, or until ctx is done.
func (w *Watcher) Next(ctx context.Context) error {
	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-w.w.Errors:
			if !ok {
				return fsnotify.ErrClosed
			}
			return fmt.Errorf("watch %s: %w", w.path, err)
		case ev, ok := <-w.w.Events:
			if !ok {
				return fsnotify.ErrClosed
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer = time.After(settle)
			}
		case <-timer:
			return nil
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.w.Close()
}
