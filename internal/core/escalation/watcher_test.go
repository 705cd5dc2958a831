package escalation

import (
	"testing"
	"time"

	"github.com/clearpathfinancial/clearpath-api/internal/models"
)

const testDelay = 20 * time.Millisecond

func waitForReveal(t *testing.T, ch <-chan State) {
	t.Helper()
	select {
	case s := <-ch:
		if s != Revealed {
			t.Fatalf("unexpected state change: %v", s)
		}
	case <-time.After(time.Second):
		t.Fatal("reveal never fired")
	}
}

func revealConversation() []models.ChatMessage {
	return []models.ChatMessage{
		visitorMsg("v1", "I got a summons"),
		aiMsg("a1", "A specialist should take over.", true),
		visitorMsg("v2", "ok"),
	}
}

func TestWatcherRevealsAfterDelay(t *testing.T) {
	ch := make(chan State, 1)
	w := NewWatcherWithDelay(testDelay, func(s State) { ch <- s })

	msgs := revealConversation()
	w.Update(msgs)
	if got := w.State(); got != AwaitingReveal {
		t.Fatalf("expected AwaitingReveal before the timer, got %v", got)
	}

	waitForReveal(t, ch)
	if got := w.State(); got != Revealed {
		t.Fatalf("expected Revealed, got %v", got)
	}

	// re-polling the same conversation must not restart the countdown
	w.Update(msgs)
	if got := w.State(); got != Revealed {
		t.Fatalf("repeat update reset state to %v", got)
	}
}

func TestWatcherNewRequestRestartsCountdown(t *testing.T) {
	ch := make(chan State, 2)
	w := NewWatcherWithDelay(testDelay, func(s State) { ch <- s })

	msgs := revealConversation()
	w.Update(msgs)

	// a second escalation request lands before the first reveal fires
	msgs = append(msgs,
		aiMsg("a2", "Let me flag this for a specialist.", true),
		visitorMsg("v3", "please"),
	)
	w.Update(msgs)

	waitForReveal(t, ch)

	// only the superseding request reveals; the stale timer was cancelled
	select {
	case s := <-ch:
		t.Fatalf("stale timer fired with state %v", s)
	case <-time.After(3 * testDelay):
	}
}

func TestWatcherDismissSticksForSameRequest(t *testing.T) {
	w := NewWatcherWithDelay(time.Hour, nil)

	msgs := revealConversation()
	w.Update(msgs)
	w.Dismiss()

	if got := w.State(); got != Dismissed {
		t.Fatalf("expected Dismissed, got %v", got)
	}

	// same conversation polled again: the dismissed request never resurfaces
	w.Update(msgs)
	if got := w.State(); got != Dismissed {
		t.Fatalf("dismissed request resurfaced as %v", got)
	}
}

func TestWatcherVisitorMessageClearsDismissal(t *testing.T) {
	ch := make(chan State, 1)
	w := NewWatcherWithDelay(testDelay, func(s State) { ch <- s })

	msgs := revealConversation()
	w.Update(msgs)
	w.Dismiss()
	w.VisitorSent()

	if got := w.State(); got != Idle {
		t.Fatalf("expected Idle after dismissal cleared, got %v", got)
	}

	// a distinct escalation request now goes through the full cycle
	msgs = append(msgs,
		visitorMsg("v3", "actually it got worse"),
		aiMsg("a2", "This needs a specialist.", true),
		visitorMsg("v4", "ok"),
	)
	w.Update(msgs)
	waitForReveal(t, ch)
}

func TestWatcherConfirm(t *testing.T) {
	w := NewWatcherWithDelay(time.Hour, nil)

	w.Update(revealConversation())
	w.Confirm()

	if !w.Escalated() {
		t.Fatal("expected Escalated after Confirm")
	}
	if got := w.State(); got != Idle {
		t.Fatalf("expected Idle after Confirm, got %v", got)
	}
}

func TestWatcherReset(t *testing.T) {
	w := NewWatcherWithDelay(time.Hour, nil)

	w.Update(revealConversation())
	w.Dismiss()
	w.Confirm()
	w.Reset()

	if w.Escalated() {
		t.Fatal("Reset must clear the escalated flag")
	}
	if got := w.State(); got != Idle {
		t.Fatalf("expected Idle after Reset, got %v", got)
	}
}
