// Package watch reports changes to a fixed set of files.
//
// Directories are watched rather than the files themselves so that editors
// and atomic rewrites, which replace a file by renaming a temp file over it,
// keep being observed.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period a file must reach before it is reported.
const DefaultDebounce = 200 * time.Millisecond

// minTick bounds how often pending files are polled.
const minTick = time.Millisecond

// Watcher reports settled writes to a set of files.
type Watcher struct {
	fsw      *fsnotify.Watcher
	targets  map[string]bool
	debounce time.Duration
	log      *log.Logger
	pending  map[string]time.Time
}

// New starts watching the directories that contain paths. A debounce of zero
// uses DefaultDebounce. logger may be nil.
func New(paths []string, debounce time.Duration, logger *log.Logger) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		targets:  make(map[string]bool, len(paths)),
		debounce: debounce,
		log:      logger,
		pending:  make(map[string]time.Time),
	}
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		w.targets[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	return w, nil
}

// Run delivers changed paths to onChange until ctx is done, then closes the
// watcher. Paths are absolute. A burst of writes to one file produces a
// single call once the file has been quiet for the debounce period.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	defer w.fsw.Close()

	ticker := time.NewTicker(max(w.debounce/2, minTick))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			if w.log != nil {
				w.log.Warn("watch error", "err", err)
			}

		case now := <-ticker.C:
			for _, path := range w.settled(now) {
				onChange(path)
			}
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	// Removes and renames away are followed by a create when a file is replaced.
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	path := filepath.Clean(event.Name)
	if !w.targets[path] {
		return
	}
	if w.log != nil {
		w.log.Debug("file event", "path", path, "op", event.Op.String())
	}
	w.pending[path] = time.Now()
}

// settled removes and returns the pending paths quiet since the debounce
// period, sorted.
func (w *Watcher) settled(now time.Time) []string {
	var ready []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	sort.Strings(ready)
	return ready
}
