package ic

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debouncer collects events until interval passes with no new event, then
// hands the whole batch to callback. Callbacks run one at a time; a batch
// that becomes ready while one is running waits for it.
type debouncer struct {
	interval time.Duration
	callback func([]fsnotify.Event)

	runMu sync.Mutex

	mu     sync.Mutex
	timer  *time.Timer
	events []fsnotify.Event
}

func newDebouncer(interval time.Duration, callback func([]fsnotify.Event)) *debouncer {
	return &debouncer{interval: interval, callback: callback}
}

func (d *debouncer) addEvent(evt fsnotify.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.events = append(d.events, evt)

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.flush)
}

func (d *debouncer) flush() {
	d.mu.Lock()
	events := d.events
	d.events = nil
	d.timer = nil
	d.mu.Unlock()

	if len(events) > 0 {
		d.runMu.Lock()
		defer d.runMu.Unlock()
		d.callback(events)
	}
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.events = nil
}
