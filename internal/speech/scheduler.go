package speech

import (
	"sync"
	"time"
)

// Scheduler runs functions after a delay. Guidance uses it for the two
// follow-up utterances that trail a maneuver announcement; each one can be
// cancelled individually when the session that scheduled it moves on, and
// Close cancels everything at shutdown.
type Scheduler struct {
	mu     sync.Mutex
	closed bool
	next   int
	timers map[int]*time.Timer
}

// NewScheduler creates an empty scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{timers: make(map[int]*time.Timer)}
}

// After runs fn once d has elapsed and returns a cancel function. Cancel is
// safe to call after the timer fired and safe to call more than once.
func (s *Scheduler) After(d time.Duration, fn func()) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return func() {}
	}

	id := s.next
	s.next++

	timer := time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		fn()
	})
	s.timers[id] = timer

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if t, ok := s.timers[id]; ok {
			t.Stop()
			delete(s.timers, id)
		}
	}
}

// Close cancels every pending function. The scheduler accepts no new work
// afterwards.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
