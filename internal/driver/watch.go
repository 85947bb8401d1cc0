package driver

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 250 * time.Millisecond

// Watch re-runs onChange whenever one of the watched files changes. Parent
// directories are watched rather than the files themselves, so editors that
// replace files on save still trigger. Bursts of events collapse into one
// call per debounce window. Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, paths []string, debounce time.Duration, onChange func()) error {
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		_ = w.Close()
	}()

	watched := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		p = filepath.Clean(p)
		watched[p] = true
		dirs[filepath.Dir(p)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return err
		}
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Clean(ev.Name)] {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(debounce)
			pending = true
		case <-timer.C:
			pending = false
			onChange()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
