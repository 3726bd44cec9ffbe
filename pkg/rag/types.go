package rag

import (
	"time"

	"github.com/google/uuid"
)

// SourceType identifies where a piece of evidence came from.
type SourceType string

const (
	SourceFile     SourceType = "file"
	SourceGitHub   SourceType = "github"
	SourceNotion   SourceType = "notion"
	SourceAirtable SourceType = "airtable"
)

// ScoredChunk is a hydrated document chunk paired with its similarity score.
type ScoredChunk struct {
	ChunkId    uuid.UUID
	DocumentId uuid.UUID
	Content    string
	Filename   string
	ChunkIndex int
	Score      float64
}

// SourceSummary is the per-filename rollup of accepted file evidence.
type SourceSummary struct {
	Filename string
	Score    float64
}

// RAGContext is the token-budgeted evidence set selected for one query.
type RAGContext struct {
	Chunks      []ScoredChunk
	TotalTokens int
	Sources     []SourceSummary
}

// IntegrationResult is a single raw hit from an external search backend.
type IntegrationResult struct {
	Source       SourceType
	Title        string
	Url          string
	Content      string
	LastModified *time.Time
}

// ConsolidatedSource is one entry in the user-facing citation list.
type ConsolidatedSource struct {
	Type      SourceType
	Name      string
	Url       string
	Relevance float64
}

// EstimateTokens approximates token usage with the fixed 4-chars-per-token
// heuristic used throughout the retrieval path. Callers must not assume
// tokenizer-exact counts.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + 3) / 4
}
