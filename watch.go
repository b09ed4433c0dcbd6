package ttdviewer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file has to be left alone before it is
// reloaded.
const DefaultDebounce = 250 * time.Millisecond

// debouncer coalesces rapid event bursts into a single callback.
type debouncer struct {
	mu     sync.Mutex
	timer  *time.Timer
	delay  time.Duration
	onFire func()
}

func newDebouncer(delay time.Duration, onFire func()) *debouncer {
	return &debouncer{
		delay:  delay,
		onFire: onFire,
	}
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Reset(d.delay)
		return
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		d.timer = nil
		d.mu.Unlock()
		d.onFire()
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Watch reloads the current sprite whenever its file changes, until ctx is
// cancelled. A file that fails to decode is logged and the previous sprite
// is kept.
func (v *Viewer) Watch(ctx context.Context, delay time.Duration) error {
	file := v.Path()
	if file == "" {
		return errors.New("no file to watch")
	}

	abs, err := filepath.Abs(file)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory as editors often replace the file rather than
	// write to it
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	db := newDebouncer(delay, func() {
		if err := v.Open(file); err != nil {
			v.logger.Printf("Reload failed, keeping previous image: %s\n", err)
			return
		}
		v.logger.Printf("Reloaded \"%s\"\n", file)
	})
	defer db.stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				db.trigger()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			v.logger.Printf("Watcher error: %s\n", err)
		}
	}
}
