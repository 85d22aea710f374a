package detection

import (
	"sync"
	"time"

	"DocuCapture/internal/entity"
)

const debounceWindow = 16 * time.Millisecond

// feedbackEmitter republishes feedback events to the UI with a debounce of
// roughly one display frame: within a window only the latest event survives.
// Consecutive identical events are allowed through; the debounce alone
// protects the render budget.
type feedbackEmitter struct {
	mu      sync.Mutex
	window  time.Duration
	pending *entity.FeedbackEvent
	timer   *time.Timer
	out     chan entity.FeedbackEvent
	closed  bool
}

func newFeedbackEmitter(window time.Duration) *feedbackEmitter {
	return &feedbackEmitter{
		window: window,
		out:    make(chan entity.FeedbackEvent, 16),
	}
}

func (e *feedbackEmitter) Publish(ev entity.FeedbackEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}

	e.pending = &ev
	if e.timer == nil {
		e.timer = time.AfterFunc(e.window, e.flush)
	}
}

func (e *feedbackEmitter) flush() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.timer = nil
	if e.closed || e.pending == nil {
		return
	}

	ev := *e.pending
	e.pending = nil

	select {
	case e.out <- ev:
	default:
	}
}

func (e *feedbackEmitter) Events() <-chan entity.FeedbackEvent {
	return e.out
}

func (e *feedbackEmitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.closed = true

	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}

	close(e.out)
}
