package service

import (
	"testing"

	"ai-datachat-be/pkg/llm"
	"ai-datachat-be/pkg/rag"
	"ai-datachat-be/pkg/rag/retrieval"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildChatMessages_WithContext(t *testing.T) {
	result := &retrieval.Result{
		Context: &rag.RAGContext{
			Chunks: []rag.ScoredChunk{
				{Filename: "report.pdf", Content: "Q3 revenue grew 12 percent."},
				{Filename: "notes.txt", Content: "Churn stayed flat."},
			},
		},
	}
	history := []llm.Message{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	}

	messages := buildChatMessages("how was Q3?", result, history)

	require.Len(t, messages, 4)
	assert.Equal(t, "system", messages[0].Role)
	assert.Contains(t, messages[0].Content, "[report.pdf]")
	assert.Contains(t, messages[0].Content, "Q3 revenue grew 12 percent.")
	assert.Contains(t, messages[0].Content, "[notes.txt]")

	assert.Equal(t, history[0], messages[1])
	assert.Equal(t, history[1], messages[2])
	assert.Equal(t, llm.Message{Role: "user", Content: "how was Q3?"}, messages[3])
}

func TestBuildChatMessages_EmptyContext(t *testing.T) {
	messages := buildChatMessages("hello", &retrieval.Result{}, nil)

	require.Len(t, messages, 2)
	assert.Contains(t, messages[0].Content, "No relevant documents were found")
	assert.Equal(t, "user", messages[1].Role)
}

func TestCitationsFromSources(t *testing.T) {
	messageId := uuid.New()
	sources := []rag.ConsolidatedSource{
		{Type: rag.SourceFile, Name: "report.pdf", Relevance: 0.91},
		{Type: rag.SourceAirtable, Name: "Acme Base", Url: "https://airtable.com/appAcme", Relevance: 1.0},
	}

	citations := citationsFromSources(messageId, sources)

	require.Len(t, citations, 2)
	for i, c := range citations {
		assert.Equal(t, messageId, c.ChatMessageId)
		assert.Equal(t, string(sources[i].Type), c.SourceType)
		assert.Equal(t, sources[i].Name, c.Name)
		assert.Equal(t, sources[i].Url, c.Url)
		assert.Equal(t, sources[i].Relevance, c.Relevance)
		assert.NotEqual(t, uuid.Nil, c.Id)
	}
}

func TestCitationDTOs_Empty(t *testing.T) {
	assert.Empty(t, citationDTOs(nil))
	assert.NotNil(t, citationDTOs(nil))
}
