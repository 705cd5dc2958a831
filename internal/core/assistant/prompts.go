package assistant

import (
	"strings"
)

// GreetingPhrase identifies the AI greeting that opens a widget session.
// The context builder never sends anything stored before the most recent
// occurrence of this phrase.
const GreetingPhrase = "I'm Ava, your ClearPath credit assistant"

// Greeting is the full opener the widget shows when a conversation starts.
const Greeting = "Hi there! I'm Ava, your ClearPath credit assistant. " +
	"I can answer questions about credit repair, tax services, and your credit report. How can I help today?"

// Escalation markers the model appends to the very end of a reply.
// Exactly one of the two is expected; both are stripped before storage.
const (
	MarkerEscalate   = "[ESCALATE]"
	MarkerNoEscalate = "[NO_ESCALATE]"
)

const promptOperating = `You are Ava, the virtual assistant for ClearPath Financial, a credit repair and tax services firm.
Answer questions about credit reports, disputing inaccurate items, bureau verification, debt validation, tax filing, and ClearPath's services.
Keep replies short, warm, and concrete. Never give legal advice; never promise specific score increases.
If the visitor needs hands-on help that you cannot provide in chat, offer to connect them with a ClearPath specialist.
End every reply with exactly one marker on the final line: [ESCALATE] if a specialist should take over, otherwise [NO_ESCALATE].`

const promptFirstInteraction = `You are Ava, the virtual assistant for ClearPath Financial, a credit repair and tax services firm.
This is the visitor's first message of the session. Greet them briefly, answer what you can, and ask one clarifying question about their credit or tax goals.
Do not reference any document analysis; none has been given.
End your reply with exactly one marker on the final line: [ESCALATE] or [NO_ESCALATE].`

const promptUrgent = `You are Ava, the virtual assistant for ClearPath Financial.
The visitor is describing an urgent collection, lawsuit, or wage garnishment situation. Time matters.
Acknowledge the urgency in one or two sentences, tell them a ClearPath specialist needs to handle this directly, and do not attempt self-help coaching.
End your reply with the marker [ESCALATE] on the final line.`

// AnalysisInstruction is the vision prompt for uploaded credit reports.
// It demands structured output only, so the normalizer has little to strip.
const AnalysisInstruction = `Analyze this credit report page for a ClearPath Financial client.
Respond with structured analysis only - no greeting, no conversational preamble, no closing remarks.
Format: use '# ' section headers (Accounts, Negative Items, Recommendations), '- ' bullet points for findings, and 'Label: value' lines for figures such as estimated score range or total accounts.
If the image is not a credit report, describe in the same structure what was received and note that a specialist will review it.`

// ParseEscalationMarker strips the trailing escalation marker from a model
// reply and reports whether it requested escalation.
func ParseEscalationMarker(reply string) (string, bool) {
	s := strings.TrimSpace(reply)
	switch {
	case strings.HasSuffix(s, MarkerEscalate):
		return strings.TrimSpace(strings.TrimSuffix(s, MarkerEscalate)), true
	case strings.HasSuffix(s, MarkerNoEscalate):
		return strings.TrimSpace(strings.TrimSuffix(s, MarkerNoEscalate)), false
	default:
		return s, false
	}
}
