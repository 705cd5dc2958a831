package escalation

import (
	"sync"
	"time"

	"github.com/clearpathfinancial/clearpath-api/internal/models"
)

// RevealDelay is the pause between the visitor's reply and the specialist
// call-to-action becoming visible. The delay avoids flashing the prompt the
// instant the visitor hits send.
const RevealDelay = 5 * time.Second

// Watcher drives one widget instance's escalation state. At most one reveal
// timer is live at a time; any change to the message list cancels a stale
// timer before a new one is considered.
type Watcher struct {
	mu          sync.Mutex
	delay       time.Duration
	activeID    string
	dismissedID string
	decided     State // Idle or Dismissed when no countdown is live
	revealed    bool
	escalated   bool
	timer       *time.Timer
	onChange    func(State)
}

// NewWatcher creates a watcher with the production reveal delay. onChange,
// when non-nil, fires whenever the reveal timer promotes the state.
func NewWatcher(onChange func(State)) *Watcher {
	return &Watcher{delay: RevealDelay, onChange: onChange}
}

// NewWatcherWithDelay exists for tests that cannot wait five seconds.
func NewWatcherWithDelay(delay time.Duration, onChange func(State)) *Watcher {
	return &Watcher{delay: delay, onChange: onChange}
}

// Update re-evaluates state from the current message list. Call it on every
// poll result and after every local append.
func (w *Watcher) Update(msgs []models.ChatMessage) {
	w.mu.Lock()
	defer w.mu.Unlock()

	id, state := Decide(msgs, w.dismissedID)

	switch state {
	case Idle, Dismissed:
		w.stopTimer()
		w.activeID = ""
		w.revealed = false
		w.decided = state
	case AwaitingReveal:
		if id == w.activeID {
			return // countdown (or reveal) already in progress for this request
		}
		w.stopTimer()
		w.activeID = id
		w.revealed = false
		w.timer = time.AfterFunc(w.delay, func() { w.reveal(id) })
	}
}

func (w *Watcher) reveal(id string) {
	w.mu.Lock()
	if w.activeID != id {
		w.mu.Unlock()
		return // superseded before the countdown fired
	}
	w.revealed = true
	cb := w.onChange
	w.mu.Unlock()

	if cb != nil {
		cb(Revealed)
	}
}

// Dismiss hides the call-to-action and remembers the request id so the
// identical request never resurfaces.
func (w *Watcher) Dismiss() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.activeID == "" {
		return
	}
	w.stopTimer()
	w.dismissedID = w.activeID
	w.activeID = ""
	w.revealed = false
	w.decided = Dismissed
}

// VisitorSent clears the dismissal memory: a future, distinct escalation
// request is free to go through the reveal cycle again.
func (w *Watcher) VisitorSent() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dismissedID = ""
	if w.decided == Dismissed {
		w.decided = Idle
	}
}

// Confirm marks the conversation escalated, which disables plain-text
// sending in the widget.
func (w *Watcher) Confirm() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopTimer()
	w.escalated = true
	w.activeID = ""
	w.revealed = false
	w.decided = Idle
}

// Escalated reports whether the visitor confirmed the hand-off.
func (w *Watcher) Escalated() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.escalated
}

// State reports the current externally visible state.
func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case w.revealed:
		return Revealed
	case w.activeID != "":
		return AwaitingReveal
	default:
		return w.decided
	}
}

// Reset drops all per-conversation state, for when the widget switches to a
// different visitor email.
func (w *Watcher) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopTimer()
	w.activeID = ""
	w.dismissedID = ""
	w.decided = Idle
	w.revealed = false
	w.escalated = false
}

func (w *Watcher) stopTimer() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}
