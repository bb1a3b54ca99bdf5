package drafts

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of edits into a single delayed flush. Each
// Trigger call resets the timer; the flush runs only after the configured
// quiet period with no further triggers. This is the autosave policy: the
// rule engines know nothing about time, scheduling lives entirely here with
// the caller.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	flush func()
}

// NewDebouncer creates a debouncer that invokes flush after delay of
// inactivity following the last Trigger.
func NewDebouncer(delay time.Duration, flush func()) *Debouncer {
	return &Debouncer{delay: delay, flush: flush}
}

// Trigger schedules (or reschedules) the flush
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.flush)
}

// Cancel drops any pending flush, e.g. when the editing session is abandoned
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Flush runs the pending flush immediately, if one is scheduled
func (d *Debouncer) Flush() {
	d.mu.Lock()
	scheduled := d.timer != nil && d.timer.Stop()
	d.timer = nil
	d.mu.Unlock()

	if scheduled {
		d.flush()
	}
}
