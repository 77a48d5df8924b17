package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/canopyviz/canopy/pkg/graph"
	"github.com/canopyviz/canopy/pkg/reconcile"
)

// DefaultDebounce is how long structural changes settle before a re-parse.
// Editors tend to burst events (write temp, rename over target), so a single
// snapshot per burst is enough.
const DefaultDebounce = 250 * time.Millisecond

// Event is one watcher notification. Exactly one field is set: Snapshot for
// a full workspace re-parse, Delta for a single-node update.
type Event struct {
	Snapshot *graph.Graph
	Delta    reconcile.Delta
}

// Watcher monitors a workspace directory and emits graph updates.
//
// In-place writes take the fast path: the changed file is re-parsed on its
// own and emitted as an upsert delta. Creates, removes and renames change
// the shape of the workspace, so they trigger a debounced full snapshot.
type Watcher struct {
	root     string
	fs       *fsnotify.Watcher
	logger   *log.Logger
	debounce time.Duration

	events chan Event
	errs   chan error

	// resolver reflects the node IDs of the last emitted snapshot so the
	// fast path can resolve wikilinks without re-walking the directory.
	resolver Resolver
}

// NewWatcher creates a watcher for the directory tree rooted at root.
// Call Run to start it.
func NewWatcher(root string, logger *log.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}

	w := &Watcher{
		root:     root,
		fs:       fsw,
		logger:   logger,
		debounce: DefaultDebounce,
		events:   make(chan Event, 16),
		errs:     make(chan error, 1),
	}
	if err := w.addDirs(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// SetDebounce adjusts how long structural changes settle before a snapshot.
// Call before Run; non-positive values are ignored.
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// Events returns the channel of graph updates.
func (w *Watcher) Events() <-chan Event { return w.events }

// Errors returns the channel of watch errors.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Close stops the underlying file watcher.
func (w *Watcher) Close() error { return w.fs.Close() }

// addDirs registers root and every subdirectory with fsnotify.
func (w *Watcher) addDirs(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && len(d.Name()) > 0 && d.Name()[0] == '.' {
			return filepath.SkipDir
		}
		if err := w.fs.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}

// Run emits an initial snapshot and then translates file events until ctx is
// cancelled. It closes the event channel on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)

	if err := w.snapshot(ctx); err != nil {
		return err
	}

	// Debounce timer for structural changes. Stopped until armed.
	settle := time.NewTimer(w.debounce)
	if !settle.Stop() {
		<-settle.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-settle.C:
			pending = false
			if err := w.snapshot(ctx); err != nil {
				return err
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
			select {
			case w.errs <- err:
			default:
			}

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if w.handle(ctx, ev) {
				if pending && !settle.Stop() {
					<-settle.C
				}
				settle.Reset(w.debounce)
				pending = true
			}
		}
	}
}

// handle processes one fsnotify event and reports whether a full snapshot
// should be scheduled.
func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) bool {
	// New directories need watching; their contents arrive as later events.
	if ev.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addDirs(ev.Name); err != nil {
				w.logger.Debug("watch new path", "path", ev.Name, "error", err)
			}
			return true
		}
	}

	if !IsMarkdown(ev.Name) {
		return false
	}

	switch {
	case ev.Op.Has(fsnotify.Write):
		node, ok, err := ParseFile(w.root, ev.Name, w.resolver)
		if err != nil {
			w.logger.Warn("re-parse failed", "path", ev.Name, "error", err)
			return true
		}
		if !ok {
			return false
		}
		w.logger.Debug("note updated", "node", node.ID)
		w.emit(ctx, Event{Delta: reconcile.UpsertNode{Node: node}})
		return false

	case ev.Op.Has(fsnotify.Create), ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		return true
	}
	return false
}

// snapshot re-parses the workspace and emits the full graph.
func (w *Watcher) snapshot(ctx context.Context) error {
	g, err := Parse(w.root)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", w.root, err)
	}
	w.resolver = ResolverFor(g)
	w.logger.Debug("workspace snapshot", "nodes", g.NodeCount(), "edges", g.EdgeCount())
	w.emit(ctx, Event{Snapshot: &g})
	return nil
}

func (w *Watcher) emit(ctx context.Context, ev Event) {
	select {
	case w.events <- ev:
	case <-ctx.Done():
	}
}
