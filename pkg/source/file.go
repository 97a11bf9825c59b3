package source

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	errs "github.com/matzehuels/stormgraph/pkg/errors"
	"github.com/matzehuels/stormgraph/pkg/graph"
)

// DefaultDebounce collapses bursts of file events into one reload.
const DefaultDebounce = 200 * time.Millisecond

// File reads a graph from a JSON or YAML file.
type File struct {
	path     string
	debounce time.Duration
}

// NewFile creates a file source.
func NewFile(path string) (*File, error) {
	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}
	return &File{path: path, debounce: DefaultDebounce}, nil
}

// Name implements Source.
func (f *File) Name() string { return "file" }

// Path returns the file path.
func (f *File) Path() string { return f.path }

// Fetch implements Source.
func (f *File) Fetch(ctx context.Context) (graph.Graph, error) {
	if err := ctx.Err(); err != nil {
		return graph.Graph{}, err
	}
	return graph.ReadFile(f.path)
}

// Watch calls onChange with a fresh Fetch result every time the file is
// written or replaced, until ctx is done. It watches the parent directory
// so that editors that save by rename are picked up.
func (f *File) Watch(ctx context.Context, onChange func(graph.Graph, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "create file watcher")
	}
	defer w.Close()

	abs, err := filepath.Abs(f.path)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidPath, err, "resolve %s", f.path)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidPath, err, "watch %s", filepath.Dir(abs))
	}

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(f.debounce)
			} else {
				timer.Reset(f.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			g, err := f.Fetch(ctx)
			onChange(g, err)

		case _, ok := <-w.Errors:
			if !ok {
				return nil
			}
		}
	}
}
