package watcher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() (context.Context, context.CancelFunc) {
	return context.WithCancel(context.Background())
}

type fakeFSWatcher struct {
	events chan fsnotify.Event
	errors chan error
	added  []string
	mu     sync.Mutex
}

func newFakeFSWatcher() *fakeFSWatcher {
	return &fakeFSWatcher{
		events: make(chan fsnotify.Event, 64),
		errors: make(chan error, 8),
	}
}

func (f *fakeFSWatcher) Add(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, name)
	return nil
}
func (f *fakeFSWatcher) Close() error                        { return nil }
func (f *fakeFSWatcher) Events() <-chan fsnotify.Event       { return f.events }
func (f *fakeFSWatcher) Errors() <-chan error                { return f.errors }

func newTestWatcher(t *testing.T, debounce, quiet time.Duration, dispatch Dispatch) (*Watcher, *fakeFSWatcher) {
	t.Helper()
	fw := newFakeFSWatcher()
	w := &Watcher{
		root:     t.TempDir(),
		fs:       fw,
		debounce: debounce,
		quiet:    quiet,
		dispatch: dispatch,
		pending:  make(map[string]*pendingEntry),
		gens:     make(map[string]uint64),
		fireCh:   make(chan fireEvent, 256),
	}
	w.ctx, w.cancel = testContext()
	w.done = make(chan struct{})
	go w.loop()
	return w, fw
}

func TestWatcherDebouncesBurstOfModifies(t *testing.T) {
	var mu sync.Mutex
	var changes []Change
	dispatch := func(c Change) bool {
		mu.Lock()
		defer mu.Unlock()
		changes = append(changes, c)
		return true
	}

	w, fw := newTestWatcher(t, 30*time.Millisecond, 100*time.Millisecond, dispatch)
	defer w.Close()

	for i := 0; i < 5; i++ {
		fw.events <- fsnotify.Event{Name: "/ws/main.go", Op: fsnotify.Write}
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(changes) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, ChangeModified, changes[0].Kind)
}

func TestWatcherCoalescesDeleteThenCreateIntoModify(t *testing.T) {
	var mu sync.Mutex
	var changes []Change
	dispatch := func(c Change) bool {
		mu.Lock()
		defer mu.Unlock()
		changes = append(changes, c)
		return true
	}

	w, fw := newTestWatcher(t, 20*time.Millisecond, 200*time.Millisecond, dispatch)
	defer w.Close()

	fw.events <- fsnotify.Event{Name: "/ws/main.go", Op: fsnotify.Remove}
	time.Sleep(10 * time.Millisecond)
	fw.events <- fsnotify.Event{Name: "/ws/main.go", Op: fsnotify.Create}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(changes) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, ChangeModified, changes[0].Kind)
}

func TestWatcherBacksOffOnSaturatedQueue(t *testing.T) {
	var attempts int
	var mu sync.Mutex
	dispatch := func(c Change) bool {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		return attempts > 1
	}

	w, fw := newTestWatcher(t, 10*time.Millisecond, 100*time.Millisecond, dispatch)
	defer w.Close()

	fw.events <- fsnotify.Event{Name: "/ws/main.go", Op: fsnotify.Write}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return attempts == 2
	}, 2*time.Second, 5*time.Millisecond)
}
