package detection

import (
	"sync"
	"time"
)

// steadyTracker is the auto-capture state machine: idle until position and
// quality are simultaneously good, then pending from the first good tick,
// then fired once the hold delay elapses. Any bad tick resets it. The fired
// flag blocks refiring until the next reset.
type steadyTracker struct {
	mu        sync.Mutex
	delay     time.Duration
	startedAt time.Time
	fired     bool
}

func newSteadyTracker(delay time.Duration) *steadyTracker {
	return &steadyTracker{delay: delay}
}

// Observe records whether position and quality were both good at now.
func (s *steadyTracker) Observe(good bool, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !good {
		s.startedAt = time.Time{}
		s.fired = false
		return
	}

	if s.startedAt.IsZero() {
		s.startedAt = now
	}
}

// ShouldCapture reports whether the steady hold has lasted the configured
// delay. It returns true at most once per steady period.
func (s *steadyTracker) ShouldCapture(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fired || s.startedAt.IsZero() {
		return false
	}
	if now.Sub(s.startedAt) < s.delay {
		return false
	}

	s.fired = true
	return true
}

func (s *steadyTracker) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startedAt = time.Time{}
	s.fired = false
}
