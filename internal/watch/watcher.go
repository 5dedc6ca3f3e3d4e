// Package watch re-runs the pipeline whenever the host build rewrites the entry
// document.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/webupdate/internal/foundation/errors"
	"git.home.luguber.info/inful/webupdate/internal/inject"
	"git.home.luguber.info/inful/webupdate/internal/logfields"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 500 * time.Millisecond

// Trigger runs one pipeline pass.
type Trigger func(ctx context.Context) error

// Watcher monitors one entry document.
type Watcher struct {
	path     string
	trigger  Trigger
	debounce time.Duration
}

// New returns a watcher for the entry document at path.
func New(path string, trigger Trigger, debounce time.Duration) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve entry document path").
			WithContext("path", path).Build()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{path: absPath, trigger: trigger, debounce: debounce}, nil
}

// Run blocks until ctx is cancelled. A pass is triggered on start and after every
// settled change, but only while the document lacks an injection, so the
// pipeline's own rewrite does not loop.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create file watcher").Build()
	}
	defer func() {
		if cerr := fw.Close(); cerr != nil {
			slog.Error("Error closing file watcher", logfields.Error(cerr))
		}
	}()

	// The directory is watched since hosts typically replace the file.
	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to watch output directory").
			WithContext("path", dir).Build()
	}
	slog.Info("Watching entry document", logfields.Path(w.path))

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				slog.Debug("Entry document change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
				timer.Reset(w.debounce)
			}
		case werr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Error("Watcher error", logfields.Error(werr))
		case <-timer.C:
			if !w.needsInjection() {
				continue
			}
			slog.Info("Entry document rewritten, re-running pipeline", logfields.Path(w.path))
			if err := w.trigger(ctx); err != nil {
				slog.Error("Pipeline run failed", logfields.Path(w.path), logfields.Error(err))
			}
		}
	}
}

func (w *Watcher) needsInjection() bool {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return false
	}
	return !inject.AlreadyInjected(string(data))
}
