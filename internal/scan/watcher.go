package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/projectd/projectd/internal/debug"
)

// EventType classifies a debounced file event.
type EventType int

const (
	EventWrite EventType = iota
	EventRemove
)

// Watcher monitors source directories and reports debounced file changes
// through callbacks. Rapid event bursts from editors collapse into one
// callback per path.
type Watcher struct {
	watcher   *fsnotify.Watcher
	scanner   *Scanner
	root      string
	debouncer *eventDebouncer
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	// OnChanged fires for created or modified matching files, OnRemoved for
	// deleted or renamed-away ones. Both run on the debouncer's timer
	// goroutine; set them before Start.
	OnChanged func(path string)
	OnRemoved func(path string)
}

// NewWatcher creates a watcher over root, filtering events through the
// scanner's patterns.
func NewWatcher(root string, scanner *Scanner, debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		watcher: fsWatcher,
		scanner: scanner,
		root:    root,
		ctx:     ctx,
		cancel:  cancel,
	}
	w.debouncer = newEventDebouncer(debounce, w)
	return w, nil
}

// Start adds watches for every directory under the root and begins event
// processing.
func (w *Watcher) Start() error {
	if err := w.addWatches(w.root); err != nil {
		return fmt.Errorf("failed to add watches starting from %s: %w", w.root, err)
	}

	w.wg.Add(1)
	go w.processEvents()

	debug.LogScan("watching %s\n", w.root)
	return nil
}

// Stop shuts the watcher down and waits for its goroutine. Events pending in
// the debouncer at shutdown are dropped.
func (w *Watcher) Stop() error {
	w.cancel()
	err := w.watcher.Close()
	w.wg.Wait()
	w.debouncer.stop()
	return err
}

// addWatches recursively watches all directories, guarding against symlink
// cycles.
func (w *Watcher) addWatches(root string) error {
	visited := make(map[string]bool)

	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}

		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil
		}
		if visited[realPath] {
			return filepath.SkipDir
		}
		visited[realPath] = true

		if err := w.watcher.Add(path); err != nil {
			debug.LogScan("failed to watch %s: %v\n", path, err)
		}
		return nil
	})
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			debug.LogScan("watch error: %v\n", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	info, err := os.Stat(path)
	if err != nil {
		// Gone: removal or rename-away.
		if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && w.matches(path) {
			w.debouncer.add(path, EventRemove)
		}
		return
	}

	if info.IsDir() {
		// Watch newly created directories.
		if event.Op&fsnotify.Create != 0 {
			if err := w.watcher.Add(path); err != nil {
				debug.LogScan("failed to watch new directory %s: %v\n", path, err)
			}
		}
		return
	}

	if !w.matches(path) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
		w.debouncer.add(path, EventWrite)
	}
}

func (w *Watcher) matches(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	return w.scanner.Matches(filepath.ToSlash(rel))
}

// eventDebouncer batches file events so an editor's save burst triggers one
// rebuild.
type eventDebouncer struct {
	mu       sync.Mutex
	events   map[string]EventType
	debounce time.Duration
	timer    *time.Timer
	watcher  *Watcher
	stopped  bool

	// flushMu is held for the whole of a flush, callbacks included, so stop
	// can wait out an in-flight delivery.
	flushMu sync.Mutex
}

func newEventDebouncer(debounce time.Duration, w *Watcher) *eventDebouncer {
	return &eventDebouncer{
		events:   make(map[string]EventType),
		debounce: debounce,
		watcher:  w,
	}
}

// add records the latest event for a path and restarts the quiet-period timer.
func (d *eventDebouncer) add(path string, eventType EventType) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.events[path] = eventType

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.debounce, d.flush)
}

// stop cancels the pending timer and waits for any in-flight flush, so no
// callback runs after it returns.
func (d *eventDebouncer) stop() {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()

	d.flushMu.Lock()
	d.flushMu.Unlock()
}

// flush delivers all accumulated events. Removals run first so a rename shows
// up as remove-then-change.
func (d *eventDebouncer) flush() {
	d.flushMu.Lock()
	defer d.flushMu.Unlock()

	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	events := d.events
	d.events = make(map[string]EventType)
	d.mu.Unlock()

	if len(events) == 0 {
		return
	}
	debug.LogScan("processing %d debounced events\n", len(events))

	for path, eventType := range events {
		if eventType == EventRemove && d.watcher.OnRemoved != nil {
			d.watcher.scanner.Forget(path)
			d.watcher.OnRemoved(path)
		}
	}
	for path, eventType := range events {
		if eventType == EventWrite && d.watcher.OnChanged != nil {
			d.watcher.OnChanged(path)
		}
	}
}
