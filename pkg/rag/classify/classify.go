// Package classify performs lightweight lexical classification of chat
// queries so the retrieval pipeline can skip or reshape expensive work.
// All checks are regex tables over the lowercased, trimmed query; no model
// call is involved.
package classify

import (
	"regexp"
	"strings"

	"ai-datachat-be/pkg/rag"
)

type patternRule struct {
	pattern *regexp.Regexp
	tag     string
}

// casualPatterns match greetings, acknowledgements, farewells and questions
// about the assistant itself. Order matters only for the tag reported back.
var casualPatterns = []patternRule{
	{regexp.MustCompile(`^(hi|hello|hey|yo|sup|howdy)[\s!.,]*$`), "greeting"},
	{regexp.MustCompile(`^good\s+(morning|afternoon|evening|night)[\s!.,]*$`), "greeting"},
	{regexp.MustCompile(`^(thanks|thank\s+you|thx|ty|cheers)[\s!.,]*$`), "acknowledgement"},
	{regexp.MustCompile(`^(ok|okay|cool|nice|great|got\s+it|sounds\s+good)[\s!.,]*$`), "acknowledgement"},
	{regexp.MustCompile(`^(bye|goodbye|see\s+you|later|good\s+night)[\s!.,]*$`), "farewell"},
	{regexp.MustCompile(`^(who|what)\s+are\s+you[\s?!.]*$`), "meta"},
	{regexp.MustCompile(`^what\s+can\s+you\s+do[\s?!.]*$`), "meta"},
	{regexp.MustCompile(`^(help|how\s+do\s+(you|i)\s+work)[\s?!.]*$`), "meta"},
}

// infoKeywords mark a short query as still worth retrieving for. A three
// word query containing one of these is a real question, not small talk.
var infoKeywords = []string{
	"what", "when", "where", "who", "why", "how", "which",
	"show", "list", "find", "search", "get", "give",
	"data", "file", "document", "report", "revenue", "sales",
	"project", "task", "customer", "order", "invoice", "number",
}

var listPatterns = []patternRule{
	{regexp.MustCompile(`^what\s+are\s+(my|the|all)\s+`), "what-are"},
	{regexp.MustCompile(`^list\s+(my|the|all)?\s*`), "list"},
	{regexp.MustCompile(`^show\s+me\s+(my|the|all)?\s*`), "show-me"},
	{regexp.MustCompile(`^(give|get)\s+me\s+(a\s+list|all)\s+`), "give-all"},
	{regexp.MustCompile(`^enumerate\s+`), "enumerate"},
}

// sourcePatterns route a query to one backing source when the user names it
// explicitly. First match wins, so more specific sources come first.
var sourcePatterns = []struct {
	pattern *regexp.Regexp
	source  rag.SourceType
}{
	{regexp.MustCompile(`\b(github|repo|repository|repositories|pull\s+request|issue\s+tracker)\b`), rag.SourceGitHub},
	{regexp.MustCompile(`\b(notion|wiki|workspace\s+page)\b`), rag.SourceNotion},
	{regexp.MustCompile(`\b(airtable|base|table\s+records?)\b`), rag.SourceAirtable},
	{regexp.MustCompile(`\b(file|files|document|documents|upload|uploaded|csv|pdf|spreadsheet)\b`), rag.SourceFile},
}

func normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// IsCasual reports whether the query is conversational filler that needs no
// retrieval at all. Two signals: a match in the casual table, or a very
// short query that carries no information seeking keyword.
func IsCasual(query string) bool {
	q := normalize(query)
	if q == "" {
		return true
	}

	for _, rule := range casualPatterns {
		if rule.pattern.MatchString(q) {
			return true
		}
	}

	words := strings.Fields(q)
	if len(words) <= 3 {
		for _, w := range words {
			cleaned := strings.Trim(w, "?!.,")
			for _, kw := range infoKeywords {
				if cleaned == kw {
					return false
				}
			}
		}
		return true
	}
	return false
}

// IsListQuery reports whether the user is asking for an enumeration rather
// than a specific answer. List queries favor breadth over depth downstream.
func IsListQuery(query string) bool {
	q := normalize(query)
	for _, rule := range listPatterns {
		if rule.pattern.MatchString(q) {
			return true
		}
	}
	return false
}

// DetectRequestedSource returns the source the user named explicitly, or
// empty when the query does not pin one. First matching rule wins.
func DetectRequestedSource(query string) rag.SourceType {
	q := normalize(query)
	for _, rule := range sourcePatterns {
		if rule.pattern.MatchString(q) {
			return rule.source
		}
	}
	return ""
}
