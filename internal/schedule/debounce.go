package schedule

import (
	"sync"
	"time"
)

// Debouncer runs the most recently triggered function once no new trigger has
// arrived for the configured delay.
type Debouncer struct {
	mu        sync.Mutex
	scheduler Scheduler
	delay     time.Duration
	timer     Timer
	fn        func()
	seq       int64
}

// NewDebouncer returns a Debouncer; a nil scheduler uses RealScheduler.
func NewDebouncer(scheduler Scheduler, delay time.Duration) *Debouncer {
	return &Debouncer{scheduler: OrReal(scheduler), delay: delay}
}

// Trigger cancels any pending call and schedules fn after the delay.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.fn = fn
	d.timer = d.scheduler.AfterFunc(d.delay, func() {
		d.fire(seq)
	})
}

// Cancel drops the pending call. It reports whether one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clearLocked()
}

// Flush runs the pending call immediately on the calling goroutine. It reports
// whether a call was pending.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	fn := d.fn
	pending := d.clearLocked()
	d.mu.Unlock()
	if pending && fn != nil {
		fn()
	}
	return pending
}

// Pending reports whether a call is waiting to run.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fn != nil
}

func (d *Debouncer) fire(seq int64) {
	d.mu.Lock()
	if seq != d.seq || d.fn == nil {
		d.mu.Unlock()
		return
	}
	fn := d.fn
	d.fn = nil
	d.timer = nil
	d.mu.Unlock()
	fn()
}

func (d *Debouncer) clearLocked() bool {
	pending := d.fn != nil
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = nil
	d.fn = nil
	d.seq++
	return pending
}
