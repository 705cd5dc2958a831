package assistant

import (
	"strings"
	"testing"
)

func TestNormalizeAnalysisStripsOpeners(t *testing.T) {
	raw := "I'm sorry, I can only see one page. Sure, here's the breakdown:\n" +
		"# Accounts\n" +
		"- Capital One credit card, opened 2019, current\n" +
		"- Auto loan, 2 late payments in the last 12 months\n" +
		"Estimated score range: 580-620"

	got := NormalizeAnalysis(raw)
	if strings.HasPrefix(got, "I'm sorry") || strings.Contains(got, "here's") {
		t.Fatalf("opener not stripped: %q", got)
	}
	if !strings.HasPrefix(got, "# Accounts") {
		t.Fatalf("expected output to start at the first section, got %q", got)
	}
}

func TestNormalizeAnalysisDropsFillerLines(t *testing.T) {
	raw := "# Accounts\n" +
		"- Two open revolving accounts\n" +
		"I would be happy to explain any of these items in more detail.\n" +
		"- One collection account from 2021\n" +
		"Total accounts: 3"

	got := NormalizeAnalysis(raw)
	if strings.Contains(got, "happy") {
		t.Fatalf("denylisted line kept: %q", got)
	}
	if !strings.Contains(got, "collection account") {
		t.Fatalf("content line lost: %q", got)
	}
}

func TestNormalizeAnalysisRemovesCodeFences(t *testing.T) {
	raw := "```\n# Negative Items\n- Charge-off reported by Midland Credit, balance $1,240\n- 30-day late payment on auto loan, March 2024\n```"
	got := NormalizeAnalysis(raw)
	if strings.Contains(got, "```") {
		t.Fatalf("code fence survived: %q", got)
	}
	if !strings.HasPrefix(got, "# Negative Items") {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestNormalizeAnalysisTooShortReturnsEmpty(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t  "},
		{"short remainder", "Sure! # Accounts"},
		{"only filler", "I'm sorry, I am unable to view this document.\nI would be happy to help if you describe it."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeAnalysis(tc.raw); got != "" {
				t.Fatalf("expected empty, got %q", got)
			}
		})
	}
}

func TestParseEscalationMarker(t *testing.T) {
	cases := []struct {
		name         string
		reply        string
		wantBody     string
		wantEscalate bool
	}{
		{"escalate", "A specialist should look at this.\n[ESCALATE]", "A specialist should look at this.", true},
		{"no escalate", "Happy to help with that.\n[NO_ESCALATE]", "Happy to help with that.", false},
		{"missing marker", "Happy to help with that.", "Happy to help with that.", false},
		{"marker only", "[ESCALATE]", "", true},
		{"trailing whitespace", "On it.\n[NO_ESCALATE]\n  ", "On it.", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, escalate := ParseEscalationMarker(tc.reply)
			if body != tc.wantBody || escalate != tc.wantEscalate {
				t.Fatalf("got (%q, %v), want (%q, %v)", body, escalate, tc.wantBody, tc.wantEscalate)
			}
		})
	}
}
