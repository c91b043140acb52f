package ic

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestDebouncerBatchesEvents(t *testing.T) {
	batches := make(chan []fsnotify.Event, 4)
	d := newDebouncer(20*time.Millisecond, func(events []fsnotify.Event) {
		batches <- events
	})
	defer d.stop()

	d.addEvent(fsnotify.Event{Name: "a.css", Op: fsnotify.Write})
	d.addEvent(fsnotify.Event{Name: "b.css", Op: fsnotify.Write})
	d.addEvent(fsnotify.Event{Name: "a.css", Op: fsnotify.Write})

	select {
	case batch := <-batches:
		if len(batch) != 3 {
			t.Errorf("batch has %d events, want 3", len(batch))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("debouncer never flushed")
	}

	select {
	case batch := <-batches:
		t.Errorf("unexpected second batch %v", batch)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestDebouncerStop(t *testing.T) {
	called := make(chan struct{}, 1)
	d := newDebouncer(20*time.Millisecond, func([]fsnotify.Event) {
		called <- struct{}{}
	})

	d.addEvent(fsnotify.Event{Name: "a.css", Op: fsnotify.Write})
	d.stop()

	select {
	case <-called:
		t.Error("callback ran after stop")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestDebouncerRunsCallbacksOneAtATime(t *testing.T) {
	var inFlight, maxInFlight, calls atomic.Int32
	started := make(chan struct{}, 4)

	d := newDebouncer(10*time.Millisecond, func([]fsnotify.Event) {
		n := inFlight.Add(1)
		for {
			m := maxInFlight.Load()
			if n <= m || maxInFlight.CompareAndSwap(m, n) {
				break
			}
		}
		started <- struct{}{}
		time.Sleep(80 * time.Millisecond)
		inFlight.Add(-1)
		calls.Add(1)
	})
	defer d.stop()

	d.addEvent(fsnotify.Event{Name: "a.css", Op: fsnotify.Write})

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("first batch never flushed")
	}

	// flushes while the first callback is still running
	d.addEvent(fsnotify.Event{Name: "b.css", Op: fsnotify.Write})

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if got := calls.Load(); got != 2 {
		t.Fatalf("ran %d callbacks, want 2", got)
	}
	if got := maxInFlight.Load(); got != 1 {
		t.Errorf("%d callbacks overlapped, want 1 at a time", got)
	}
}
