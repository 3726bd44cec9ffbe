package classify

import (
	"testing"

	"ai-datachat-be/pkg/rag"
)

func TestIsCasual(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"plain greeting", "hi", true},
		{"greeting with punctuation", "Hello!", true},
		{"good morning", "good morning", true},
		{"thanks", "thanks", true},
		{"acknowledgement", "sounds good", true},
		{"farewell", "bye", true},
		{"meta question", "what can you do?", true},
		{"empty", "   ", true},
		{"short without info keyword", "nice one mate", true},
		{"short with info keyword", "revenue last month?", false},
		{"short question word", "what happened?", false},
		{"real question", "what was our total revenue in march", false},
		{"long statement", "please summarize the onboarding document for new hires", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCasual(tt.query); got != tt.want {
				t.Errorf("IsCasual(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestIsListQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"what are my", "What are my open projects", true},
		{"list my", "list my uploaded files", true},
		{"show me", "Show me all customers", true},
		{"give me a list", "give me a list of invoices", true},
		{"enumerate", "enumerate the tasks", true},
		{"specific question", "what is the status of project apollo", false},
		{"casual", "hello", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsListQuery(tt.query); got != tt.want {
				t.Errorf("IsListQuery(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestDetectRequestedSource(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  rag.SourceType
	}{
		{"github by name", "any open issues in our github?", rag.SourceGitHub},
		{"repository keyword", "what changed in the api repository last week", rag.SourceGitHub},
		{"notion", "find the roadmap page in notion", rag.SourceNotion},
		{"airtable", "how many records are in the airtable base", rag.SourceAirtable},
		{"uploaded file", "summarize the uploaded csv", rag.SourceFile},
		{"document keyword", "what does the onboarding document say", rag.SourceFile},
		{"no source named", "what was revenue in q2", rag.SourceType("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectRequestedSource(tt.query); got != tt.want {
				t.Errorf("DetectRequestedSource(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestDetectRequestedSource_FirstMatchWins(t *testing.T) {
	// A query naming both github and files resolves to github because the
	// github rule sits earlier in the table.
	if got := DetectRequestedSource("compare the github issues with the uploaded files"); got != rag.SourceGitHub {
		t.Errorf("expected github to win, got %q", got)
	}
}
