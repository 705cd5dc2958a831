// Package escalation implements the widget-side "talk to a specialist"
// state machine. State is always re-derived from the full message list,
// never mutated incrementally, so the decision logic stays a pure function
// that the timer-driven watcher layers on top of.
package escalation

import (
	"github.com/clearpathfinancial/clearpath-api/internal/models"
)

type State int

const (
	// Idle: no escalation request pending, or the visitor has not replied
	// to the latest one yet.
	Idle State = iota
	// AwaitingReveal: the visitor replied to an escalation request and the
	// reveal countdown is running.
	AwaitingReveal
	// Revealed: the specialist call-to-action is visible.
	Revealed
	// Dismissed: the visitor closed the call-to-action for this specific
	// request; it never resurfaces for the same message id.
	Dismissed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingReveal:
		return "awaiting-reveal"
	case Revealed:
		return "revealed"
	case Dismissed:
		return "dismissed"
	}
	return "unknown"
}

// Decide recomputes the pre-timer state from the message list. It returns
// the id of the escalation request the state refers to (empty for Idle).
//
// The visitor "replied" when their most recent message sorts after the
// escalation request; no attempt is made to check the reply is semantically
// responsive.
func Decide(msgs []models.ChatMessage, dismissedID string) (string, State) {
	escIdx := -1
	for i, m := range msgs {
		if m.SenderRole == models.RoleAI && m.Escalation {
			escIdx = i
		}
	}
	if escIdx < 0 {
		return "", Idle
	}

	lastVisitorIdx := -1
	for i, m := range msgs {
		if m.SenderRole == models.RoleVisitor {
			lastVisitorIdx = i
		}
	}
	if lastVisitorIdx <= escIdx {
		return "", Idle
	}

	id := msgs[escIdx].ID
	if id == dismissedID {
		return id, Dismissed
	}
	return id, AwaitingReveal
}
