// Package schedule provides cancelable deferred tasks: a Scheduler that runs a
// function after a delay, a Debouncer that restarts its delay on every
// trigger, and a Repeater that runs a function on a fixed period until
// stopped. ManualScheduler drives all of them deterministically in tests.
package schedule

import (
	"sort"
	"sync"
	"time"
)

// Timer is a scheduled call that can be canceled.
type Timer interface {
	// Stop cancels the call. It reports false when the call already ran or was stopped.
	Stop() bool
}

// Scheduler runs fn once after d has elapsed.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// RealScheduler schedules on the runtime timer wheel.
type RealScheduler struct{}

// AfterFunc implements Scheduler.
func (RealScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// OrReal returns s, or RealScheduler when s is nil.
func OrReal(s Scheduler) Scheduler {
	if s == nil {
		return RealScheduler{}
	}
	return s
}

// ManualScheduler holds scheduled calls until Advance moves its clock past
// their deadline. Calls run synchronously on the goroutine calling Advance.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Time
	nextSeq int64
	pending map[int64]*manualTimer
}

type manualTimer struct {
	scheduler *ManualScheduler
	seq       int64
	deadline  time.Time
	fn        func()
}

// NewManualScheduler returns a scheduler whose clock starts at start.
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start, pending: make(map[int64]*manualTimer)}
}

// AfterFunc implements Scheduler.
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	timer := &manualTimer{scheduler: s, seq: s.nextSeq, deadline: s.now.Add(d), fn: fn}
	s.pending[timer.seq] = timer
	return timer
}

// Now returns the scheduler's clock, usable as a clock.Clock.
func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending reports the number of calls waiting to run.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Advance moves the clock forward by d, running every call whose deadline is
// reached in deadline order. Calls scheduled while advancing run too when
// they fall inside the window.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		s.mu.Lock()
		next := s.nextDueLocked(target)
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		delete(s.pending, next.seq)
		if next.deadline.After(s.now) {
			s.now = next.deadline
		}
		s.mu.Unlock()
		next.fn()
	}
}

func (s *ManualScheduler) nextDueLocked(target time.Time) *manualTimer {
	due := make([]*manualTimer, 0, len(s.pending))
	for _, timer := range s.pending {
		if !timer.deadline.After(target) {
			due = append(due, timer)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].deadline.Equal(due[j].deadline) {
			return due[i].seq < due[j].seq
		}
		return due[i].deadline.Before(due[j].deadline)
	})
	return due[0]
}

func (t *manualTimer) Stop() bool {
	t.scheduler.mu.Lock()
	defer t.scheduler.mu.Unlock()
	if _, ok := t.scheduler.pending[t.seq]; !ok {
		return false
	}
	delete(t.scheduler.pending, t.seq)
	return true
}
