package loader

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/stwalsh4118/minerals/internal/logger"
)

const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// Watcher reports changes to docket data files so cached values can be
// dropped before their next use.
//
// Files are watched through their parent directory because editors and
// deploy tools usually replace files rather than write them in place.
type Watcher struct {
	fsw   *fsnotify.Watcher
	files map[string]bool
	dirs  map[string]bool
	log   *logger.Logger
}

// NewWatcher creates a Watcher with nothing registered.
func NewWatcher(log *logger.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Watcher{
		fsw:   fsw,
		files: make(map[string]bool),
		dirs:  make(map[string]bool),
		log:   log.Component("watcher"),
	}, nil
}

// AddFile reports changes to a single file.
func (w *Watcher) AddFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.watchDir(filepath.Dir(abs)); err != nil {
		return err
	}
	w.files[abs] = true
	return nil
}

// AddDir reports changes to any file directly inside dir.
func (w *Watcher) AddDir(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if err := w.watchDir(abs); err != nil {
		return err
	}
	w.dirs[abs] = true
	return nil
}

func (w *Watcher) watchDir(dir string) error {
	for _, existing := range w.fsw.WatchList() {
		if existing == dir {
			return nil
		}
	}
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return nil
}

// Run delivers relevant changes to onChange until ctx is cancelled.
// Registration must be finished before Run is called.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&relevantOps == 0 {
				continue
			}
			if w.matches(event.Name) {
				w.log.Debug("Data file changed", logger.Fields{
					"path": event.Name,
					"op":   event.Op.String(),
				})
				onChange(event.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("File watcher error", logger.Fields{"error": err.Error()})
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) matches(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	return w.files[abs] || w.dirs[filepath.Dir(abs)]
}
