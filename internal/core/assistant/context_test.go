package assistant

import (
	"strings"
	"testing"
	"time"

	"github.com/clearpathfinancial/clearpath-api/internal/models"
)

func msg(role, body string) models.ChatMessage {
	return models.ChatMessage{
		SenderRole: role,
		Body:       body,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestBuildContextFirstInteraction(t *testing.T) {
	pc := BuildContext(nil, "Can you help me fix my credit?")

	if pc.SystemPrompt != promptFirstInteraction {
		t.Fatalf("expected first-interaction prompt")
	}
	if pc.ForceEscalation {
		t.Fatal("first interaction should not force escalation")
	}
	if len(pc.Turns) != 1 || pc.Turns[0].Role != "user" {
		t.Fatalf("expected single user turn, got %+v", pc.Turns)
	}
}

func TestBuildContextSessionBoundary(t *testing.T) {
	history := []models.ChatMessage{
		msg(models.RoleAI, Greeting),
		msg(models.RoleVisitor, "what is debt validation?"),
		msg(models.RoleAI, "Debt validation means... [NO_ESCALATE]"),
		// visitor returns days later, widget greets again
		msg(models.RoleAI, Greeting),
		msg(models.RoleVisitor, "hi again"),
		msg(models.RoleAI, "Welcome back! How can I help?"),
	}

	pc := BuildContext(history, "can you check my report?")

	// only the second greeting onward plus the incoming message
	if len(pc.Turns) != 4 {
		t.Fatalf("expected 4 turns, got %d: %+v", len(pc.Turns), pc.Turns)
	}
	for _, turn := range pc.Turns {
		if strings.Contains(turn.Text, "debt validation") {
			t.Fatalf("previous session leaked into context: %+v", pc.Turns)
		}
	}
	if last := pc.Turns[len(pc.Turns)-1]; last.Role != "user" || last.Text != "can you check my report?" {
		t.Fatalf("incoming message must be the final user turn, got %+v", last)
	}
}

func TestBuildContextRoleMapping(t *testing.T) {
	history := []models.ChatMessage{
		msg(models.RoleAI, Greeting),
		msg(models.RoleVisitor, "hello"),
		msg(models.RoleAdmin, "Hi, this is Dana from support."),
	}

	pc := BuildContext(history, "thanks")

	wantRoles := []string{"model", "user", "user", "user"}
	if len(pc.Turns) != len(wantRoles) {
		t.Fatalf("expected %d turns, got %d", len(wantRoles), len(pc.Turns))
	}
	for i, want := range wantRoles {
		if pc.Turns[i].Role != want {
			t.Fatalf("turn %d: got role %q, want %q", i, pc.Turns[i].Role, want)
		}
	}
}

func TestBuildContextUrgentOverridesEverything(t *testing.T) {
	// even on a first interaction, urgency wins
	pc := BuildContext(nil, "I just got a summons about a lawsuit over an old debt")

	if pc.SystemPrompt != promptUrgent {
		t.Fatalf("expected urgency prompt")
	}
	if !pc.ForceEscalation {
		t.Fatal("urgent keywords must force escalation")
	}
}

func TestBuildContextUrgentKeywords(t *testing.T) {
	cases := []struct {
		text   string
		urgent bool
	}{
		{"my wages are being garnished", true},
		{"a collection agency keeps calling", true},
		{"I have a court date next week", true},
		{"what does a judgment mean for my score?", true},
		{"how do I dispute a late payment?", false},
		{"can you explain bureau verification?", false},
	}
	for _, tc := range cases {
		pc := BuildContext(nil, tc.text)
		if got := pc.ForceEscalation; got != tc.urgent {
			t.Errorf("%q: ForceEscalation = %v, want %v", tc.text, got, tc.urgent)
		}
	}
}

func TestBuildContextNoReuploadHint(t *testing.T) {
	history := []models.ChatMessage{
		msg(models.RoleAI, Greeting),
		msg(models.RoleVisitor, "I uploaded my credit report"),
		msg(models.RoleAI, "Your analysis shows two negative items. [NO_ESCALATE]"),
	}

	pc := BuildContext(history, "what should I do about them?")

	if !strings.Contains(pc.SystemPrompt, "Do not ask them to upload") {
		t.Fatalf("expected no-reupload hint in prompt:\n%s", pc.SystemPrompt)
	}
}

func TestBuildContextCoveredTopicsSuppressed(t *testing.T) {
	history := []models.ChatMessage{
		msg(models.RoleAI, Greeting),
		msg(models.RoleVisitor, "how does this work?"),
		msg(models.RoleAI, "We start by disputing inaccurate items and requesting debt validation. [NO_ESCALATE]"),
	}

	pc := BuildContext(history, "tell me more")

	if !strings.Contains(pc.SystemPrompt, "disputing inaccurate items") ||
		!strings.Contains(pc.SystemPrompt, "debt validation") {
		t.Fatalf("expected covered-topic suppression in prompt:\n%s", pc.SystemPrompt)
	}
	// topic mentioned only by the visitor doesn't count as covered
	if strings.Contains(pc.SystemPrompt, "payment options") {
		t.Fatalf("uncovered topic listed as covered:\n%s", pc.SystemPrompt)
	}
}

func TestBuildContextLongSessionSuggestsSpecialist(t *testing.T) {
	history := []models.ChatMessage{
		msg(models.RoleAI, Greeting),
		msg(models.RoleVisitor, "question one"),
		msg(models.RoleAI, "answer one"),
		msg(models.RoleVisitor, "question two"),
		msg(models.RoleAI, "answer two"),
		msg(models.RoleVisitor, "question three"),
	}

	pc := BuildContext(history, "still confused")

	if !strings.Contains(pc.SystemPrompt, "specialist") {
		t.Fatalf("expected specialist hint after repeated turns:\n%s", pc.SystemPrompt)
	}
}
