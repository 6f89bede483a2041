package schedule

import (
	"sync"
	"time"
)

// Repeater runs a function every interval between Start and Stop.
type Repeater struct {
	mu        sync.Mutex
	scheduler Scheduler
	interval  time.Duration
	fn        func()
	timer     Timer
	running   bool
	seq       int64
}

// NewRepeater returns a stopped Repeater; a nil scheduler uses RealScheduler.
func NewRepeater(scheduler Scheduler, interval time.Duration, fn func()) *Repeater {
	return &Repeater{scheduler: OrReal(scheduler), interval: interval, fn: fn}
}

// Start begins repeating. Starting a running Repeater is a no-op.
func (r *Repeater) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	r.running = true
	r.seq++
	r.scheduleLocked(r.seq)
}

// Stop cancels the next run. Stopping a stopped Repeater is a no-op.
func (r *Repeater) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	r.running = false
	r.seq++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// Running reports whether the Repeater is active.
func (r *Repeater) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Repeater) scheduleLocked(seq int64) {
	r.timer = r.scheduler.AfterFunc(r.interval, func() {
		r.tick(seq)
	})
}

func (r *Repeater) tick(seq int64) {
	r.mu.Lock()
	if !r.running || seq != r.seq {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	r.fn()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running && seq == r.seq {
		r.scheduleLocked(seq)
	}
}
