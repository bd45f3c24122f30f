package console

import (
	"sync"
	"time"
)

// DefaultDebounce is the pause after the last keystroke before a search or
// autocomplete request fires.
const DefaultDebounce = 250 * time.Millisecond

// Debouncer coalesces rapid calls into one. Each Call supersedes any pending
// one; a superseded function never runs, even if its timer already fired.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	gen   uint64
}

// NewDebouncer creates a debouncer. A non-positive delay gets the default.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay}
}

// Call schedules fn after the delay, replacing any pending call.
func (d *Debouncer) Call(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		live := d.gen == gen
		d.mu.Unlock()
		if live {
			fn()
		}
	})
}

// Stop cancels any pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
