package retrieval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-datachat-be/internal/pkg/logger"
	"ai-datachat-be/pkg/rag"
)

type fakeAssembler struct {
	result *rag.RAGContext
	err    error
	delay  time.Duration
}

func (f *fakeAssembler) Assemble(ctx context.Context, _ uuid.UUID, _ string) (*rag.RAGContext, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeSearchProvider struct {
	source  rag.SourceType
	results []rag.IntegrationResult
	err     error
	panics  bool
}

func (f *fakeSearchProvider) Type() rag.SourceType {
	return f.source
}

func (f *fakeSearchProvider) Search(_ context.Context, _ uuid.UUID, _ string, _ int) ([]rag.IntegrationResult, error) {
	if f.panics {
		panic("backend exploded")
	}
	return f.results, f.err
}

func contextFixture() *rag.RAGContext {
	return &rag.RAGContext{
		Chunks:      []rag.ScoredChunk{{ChunkId: uuid.New(), Content: "evidence", Filename: "report.pdf", Score: 0.9}},
		TotalTokens: 2,
		Sources:     []rag.SourceSummary{{Filename: "report.pdf", Score: 0.9}},
	}
}

func TestRetrieveAndConsolidate_CasualQuerySkipsEverything(t *testing.T) {
	assembler := &fakeAssembler{result: contextFixture()}
	provider := &fakeSearchProvider{source: rag.SourceGitHub, panics: true}

	retriever := NewRetriever(assembler, []SearchProvider{provider}, logger.NewNopLogger())

	result, err := retriever.RetrieveAndConsolidate(context.Background(), uuid.New(), "hi", []rag.SourceType{rag.SourceGitHub})
	require.NoError(t, err)

	// The provider would panic if called; a casual query never reaches it.
	assert.Empty(t, result.Context.Chunks)
	assert.Empty(t, result.Sources)
}

func TestRetrieveAndConsolidate_MergesAllBranches(t *testing.T) {
	assembler := &fakeAssembler{result: contextFixture()}
	github := &fakeSearchProvider{source: rag.SourceGitHub, results: []rag.IntegrationResult{
		{Source: rag.SourceGitHub, Title: "acme/api", Url: "https://github.com/acme/api"},
	}}
	notion := &fakeSearchProvider{source: rag.SourceNotion, results: []rag.IntegrationResult{
		{Source: rag.SourceNotion, Title: "Roadmap", Url: "https://notion.so/roadmap"},
	}}

	retriever := NewRetriever(assembler, []SearchProvider{github, notion}, logger.NewNopLogger())

	result, err := retriever.RetrieveAndConsolidate(context.Background(), uuid.New(),
		"summarize the quarterly report findings", []rag.SourceType{rag.SourceGitHub, rag.SourceNotion})
	require.NoError(t, err)

	assert.Len(t, result.Context.Chunks, 1)
	require.Len(t, result.Sources, 3)
	assert.Equal(t, "acme/api", result.Sources[0].Name)
	assert.Equal(t, "Roadmap", result.Sources[1].Name)
	assert.Equal(t, "report.pdf", result.Sources[2].Name)
}

func TestRetrieveAndConsolidate_FailingBranchIsIsolated(t *testing.T) {
	assembler := &fakeAssembler{result: contextFixture()}
	github := &fakeSearchProvider{source: rag.SourceGitHub, err: errors.New("rate limited")}
	notion := &fakeSearchProvider{source: rag.SourceNotion, panics: true}
	airtable := &fakeSearchProvider{source: rag.SourceAirtable, results: []rag.IntegrationResult{
		{Source: rag.SourceAirtable, Title: "Acme Base / Projects", Url: "https://airtable.com/appAcme/tblProjects"},
	}}

	retriever := NewRetriever(assembler, []SearchProvider{github, notion, airtable}, logger.NewNopLogger())

	result, err := retriever.RetrieveAndConsolidate(context.Background(), uuid.New(),
		"what projects are active in the data", []rag.SourceType{rag.SourceGitHub, rag.SourceNotion, rag.SourceAirtable})
	require.NoError(t, err)

	// The erroring and panicking branches contribute nothing; the healthy
	// branches still produce a full result.
	require.Len(t, result.Sources, 2)
	assert.Equal(t, "Acme Base", result.Sources[0].Name)
	assert.Equal(t, "report.pdf", result.Sources[1].Name)
}

func TestRetrieveAndConsolidate_VectorFailureDegradesToEmptyContext(t *testing.T) {
	assembler := &fakeAssembler{err: errors.New("embedding provider down")}
	github := &fakeSearchProvider{source: rag.SourceGitHub, results: []rag.IntegrationResult{
		{Source: rag.SourceGitHub, Title: "acme/api", Url: "https://github.com/acme/api"},
	}}

	retriever := NewRetriever(assembler, []SearchProvider{github}, logger.NewNopLogger())

	result, err := retriever.RetrieveAndConsolidate(context.Background(), uuid.New(),
		"what changed in the repository", []rag.SourceType{rag.SourceGitHub})
	require.NoError(t, err)

	assert.Empty(t, result.Context.Chunks)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "acme/api", result.Sources[0].Name)
}

func TestRetrieveAndConsolidate_CancellationDiscardsPartialResults(t *testing.T) {
	assembler := &fakeAssembler{result: contextFixture(), delay: 50 * time.Millisecond}
	github := &fakeSearchProvider{source: rag.SourceGitHub, results: []rag.IntegrationResult{
		{Source: rag.SourceGitHub, Title: "acme/api", Url: "https://github.com/acme/api"},
	}}

	retriever := NewRetriever(assembler, []SearchProvider{github}, logger.NewNopLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	result, err := retriever.RetrieveAndConsolidate(ctx, uuid.New(),
		"what changed in the repository", []rag.SourceType{rag.SourceGitHub})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, result)
}

func TestRetrieveAndConsolidate_UnknownSourceTagIgnored(t *testing.T) {
	assembler := &fakeAssembler{result: contextFixture()}
	retriever := NewRetriever(assembler, nil, logger.NewNopLogger())

	result, err := retriever.RetrieveAndConsolidate(context.Background(), uuid.New(),
		"summarize the quarterly report findings", []rag.SourceType{"slack"})
	require.NoError(t, err)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "report.pdf", result.Sources[0].Name)
}
