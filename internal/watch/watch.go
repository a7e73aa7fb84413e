package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event is a wrapper around fsnotify.Event
type Event struct {
	Name string
	Op   fsnotify.Op
}

// Watcher reports settled changes under a directory tree.
type Watcher struct {
	watcher  *fsnotify.Watcher
	Root     string
	Debounce time.Duration
	OnEvent  func(Event)
}

// New creates a watcher over root and every non-hidden directory below it.
// Directories are registered before New returns.
func New(root string, debounce time.Duration, onEvent func(Event)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		Root:     root,
		Debounce: debounce,
		OnEvent:  onEvent,
	}
	if err := w.addTree(root); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		// Skip hidden directories like .git
		if path != w.Root && strings.HasPrefix(filepath.Base(path), ".") {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// Run delivers events until ctx is cancelled, then releases the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
		if err := w.watcher.Close(); err != nil {
			slog.Warn("Failed to close file watcher", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}

			// Handle new directories
			if event.Op&fsnotify.Create == fsnotify.Create {
				info, err := os.Stat(event.Name)
				if err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						slog.Warn("Failed to watch new directory", "path", event.Name, "error", err)
					}
				}
			}

			if timer != nil {
				timer.Stop()
			}
			ev := Event{Name: event.Name, Op: event.Op}
			timer = time.AfterFunc(w.Debounce, func() {
				w.OnEvent(ev)
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", "error", err)
		}
	}
}
