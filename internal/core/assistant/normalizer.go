package assistant

import (
	"regexp"
	"strings"
)

// FallbackAnalysis replaces model output that failed or normalized to
// nothing usable. The pipeline never persists a near-empty analysis.
const FallbackAnalysis = "# Document Received\n" +
	"Status: Pending manual review\n" +
	"We have received your document and a ClearPath specialist will review it shortly. " +
	"You will be contacted with a full breakdown of your credit report and the steps we recommend."

// minUsableChars is the floor below which cleaned output counts as unusable.
const minUsableChars = 50

// Leading conversational openers stripped from the start of model output.
// Applied repeatedly until none match.
var openerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^i['’]?m sorry[^.\n]*[.!]?\s*`),
	regexp.MustCompile(`(?i)^i apologize[^.\n]*[.!]?\s*`),
	regexp.MustCompile(`(?i)^(sure|certainly|of course|absolutely)[,!.]?\s*`),
	regexp.MustCompile(`(?i)^here['’]?s [^:\n]*:?\s*`),
	regexp.MustCompile(`(?i)^here is [^:\n]*:?\s*`),
	regexp.MustCompile(`(?i)^as an ai[^.\n]*[.!]?\s*`),
	regexp.MustCompile(`(?i)^i['’]?ve (reviewed|analyzed|taken a look at)[^.\n]*[.!]?\s*`),
	regexp.MustCompile(`(?i)^let me (break|walk you through)[^.\n:]*[.:!]?\s*`),
}

// Lines containing any of these phrases are conversational filler, not
// analysis content.
var denylistPhrases = []string{
	"unable to view",
	"would be happy",
	"i can guide",
	"i'm sorry",
	"i apologize",
	"apologies",
}

// NormalizeAnalysis cleans raw model output for storage and rendering.
// It returns an empty string when nothing usable remains so the caller can
// substitute FallbackAnalysis.
func NormalizeAnalysis(raw string) string {
	s := strings.ReplaceAll(raw, "```", "")
	s = strings.TrimSpace(s)

	for {
		trimmed := false
		for _, p := range openerPatterns {
			if loc := p.FindStringIndex(s); loc != nil && loc[0] == 0 {
				s = strings.TrimSpace(s[loc[1]:])
				trimmed = true
			}
		}
		if !trimmed {
			break
		}
	}

	var kept []string
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if isDenylisted(trimmed) {
			continue
		}
		kept = append(kept, line)
	}

	out := strings.TrimSpace(strings.Join(kept, "\n"))
	if len(out) < minUsableChars {
		return ""
	}
	return out
}

func isDenylisted(line string) bool {
	lower := strings.ToLower(line)
	for _, phrase := range denylistPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
