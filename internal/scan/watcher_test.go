package scan

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForPath(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case path := <-ch:
		return path
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher event")
		return ""
	}
}

func TestWatcherReportsChangedFile(t *testing.T) {
	root := t.TempDir()
	changed := make(chan string, 16)

	w, err := NewWatcher(root, NewScanner(nil, nil), 50*time.Millisecond)
	require.NoError(t, err)
	w.OnChanged = func(path string) { changed <- path }
	require.NoError(t, w.Start())
	defer w.Stop()

	path := writeFile(t, root, "widget.hpp", "struct A {};")
	assert.Equal(t, path, waitForPath(t, changed))
}

func TestWatcherIgnoresNonMatchingFile(t *testing.T) {
	root := t.TempDir()
	changed := make(chan string, 16)

	w, err := NewWatcher(root, NewScanner(nil, nil), 50*time.Millisecond)
	require.NoError(t, err)
	w.OnChanged = func(path string) { changed <- path }
	require.NoError(t, w.Start())
	defer w.Stop()

	writeFile(t, root, "notes.txt", "not a header")

	select {
	case path := <-changed:
		t.Fatalf("unexpected event for %s", path)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherReportsRemovedFile(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "widget.hpp", "struct A {};")

	removed := make(chan string, 16)
	w, err := NewWatcher(root, NewScanner(nil, nil), 50*time.Millisecond)
	require.NoError(t, err)
	w.OnRemoved = func(path string) { removed <- path }
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.Remove(path))
	assert.Equal(t, path, waitForPath(t, removed))
}

func TestDebouncerStopWaitsForInFlightFlush(t *testing.T) {
	w := &Watcher{scanner: NewScanner(nil, nil)}
	finished := make(chan time.Time, 1)
	w.OnChanged = func(string) {
		time.Sleep(50 * time.Millisecond)
		finished <- time.Now()
	}
	d := newEventDebouncer(time.Millisecond, w)

	d.add("a.hpp", EventWrite)
	// Let the timer fire so the flush is underway when stop is called.
	time.Sleep(20 * time.Millisecond)
	d.stop()
	stopReturned := time.Now()

	select {
	case at := <-finished:
		assert.False(t, at.After(stopReturned), "callback still running after stop returned")
	case <-time.After(200 * time.Millisecond):
		// The flush lost the race with stop and was suppressed entirely.
	}

	// Events after stop never fire.
	d.add("b.hpp", EventWrite)
	select {
	case <-finished:
		t.Fatal("callback fired after stop")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWatcherPicksUpNewDirectories(t *testing.T) {
	root := t.TempDir()
	changed := make(chan string, 16)

	w, err := NewWatcher(root, NewScanner(nil, nil), 50*time.Millisecond)
	require.NoError(t, err)
	w.OnChanged = func(path string) { changed <- path }
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0755))
	// Give the watcher a moment to register the new directory.
	time.Sleep(200 * time.Millisecond)

	path := writeFile(t, root, "sub/deep.hpp", "struct B {};")
	assert.Equal(t, path, waitForPath(t, changed))
}
