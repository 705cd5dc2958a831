package assistant

import (
	"fmt"
	"strings"

	"github.com/clearpathfinancial/clearpath-api/internal/core"
	"github.com/clearpathfinancial/clearpath-api/internal/models"
)

// PromptContext is everything the chat service needs for one model call:
// the bounded history (oldest first, incoming message last), the chosen
// system prompt, and whether escalation is forced regardless of the
// model's own marker.
type PromptContext struct {
	Turns           []core.ChatTurn
	SystemPrompt    string
	ForceEscalation bool
}

// Topic keywords the assistant tends to circle back to. When one already
// appears in an AI message this session, the model is told not to repeat it.
var coveredTopics = []struct {
	keyword string
	label   string
}{
	{"disput", "disputing inaccurate items"},
	{"bureau verification", "bureau verification"},
	{"debt validation", "debt validation"},
	{"payment option", "payment options"},
	{"payment plan", "payment options"},
}

// Urgent-situation keywords. Any hit switches to the urgency prompt and
// forces the stored reply's escalation flag to true.
var urgentKeywords = []string{
	"collection",
	"collections agency",
	"lawsuit",
	"sued",
	"summons",
	"garnish",
	"garnishment",
	"judgment",
	"repossession",
	"court date",
}

// BuildContext assembles the bounded conversation and system prompt for a
// new visitor message. Only the current session (latest greeting onward) is
// ever sent to the model, even though the full history exists in storage.
func BuildContext(history []models.ChatMessage, incoming string) PromptContext {
	session := sessionMessages(history)

	turns := make([]core.ChatTurn, 0, len(session)+1)
	for _, m := range session {
		role := "user"
		if m.SenderRole == models.RoleAI {
			role = "model"
		}
		turns = append(turns, core.ChatTurn{Role: role, Text: m.Body})
	}
	turns = append(turns, core.ChatTurn{Role: "user", Text: incoming})

	if containsUrgentKeyword(incoming) {
		return PromptContext{Turns: turns, SystemPrompt: promptUrgent, ForceEscalation: true}
	}

	if len(session) <= 1 {
		return PromptContext{Turns: turns, SystemPrompt: promptFirstInteraction}
	}

	prompt := promptOperating
	if sessionReferencesAnalysis(session) {
		prompt += "\nThe visitor already received a document analysis this session. Do not ask them to upload their report again."
	}
	if topics := topicsAlreadyCovered(session); len(topics) > 0 {
		prompt += fmt.Sprintf("\nYou have already covered these topics this session: %s. Do not repeat them.", strings.Join(topics, ", "))
	}
	if visitorTurnCount(session) >= 3 {
		prompt += "\nThe visitor has gone back and forth several times. Offer to connect them with a ClearPath specialist instead of circling."
	}

	return PromptContext{Turns: turns, SystemPrompt: prompt}
}

// sessionMessages returns the slice of history from the most recent AI
// greeting onward. With no greeting on record the whole history is the
// session.
func sessionMessages(history []models.ChatMessage) []models.ChatMessage {
	start := 0
	for i, m := range history {
		if m.SenderRole == models.RoleAI && strings.Contains(m.Body, GreetingPhrase) {
			start = i
		}
	}
	return history[start:]
}

func sessionReferencesAnalysis(session []models.ChatMessage) bool {
	for _, m := range session {
		lower := strings.ToLower(m.Body)
		if strings.Contains(lower, "analysis") || strings.Contains(lower, "report") || strings.Contains(lower, "pdf") {
			return true
		}
	}
	return false
}

func topicsAlreadyCovered(session []models.ChatMessage) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range session {
		if m.SenderRole != models.RoleAI {
			continue
		}
		lower := strings.ToLower(m.Body)
		for _, t := range coveredTopics {
			if strings.Contains(lower, t.keyword) && !seen[t.label] {
				seen[t.label] = true
				out = append(out, t.label)
			}
		}
	}
	return out
}

func visitorTurnCount(session []models.ChatMessage) int {
	n := 0
	for _, m := range session {
		if m.SenderRole == models.RoleVisitor {
			n++
		}
	}
	return n
}

func containsUrgentKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range urgentKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
