package assembler

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-datachat-be/internal/pkg/logger"
	"ai-datachat-be/pkg/rag"
	"ai-datachat-be/pkg/vectorindex"
)

type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeSearcher struct {
	matches []vectorindex.Match
	err     error
}

func (f *fakeSearcher) Query(_ context.Context, _ uuid.UUID, _ []float32, _ int, _ vectorindex.Filter) ([]vectorindex.Match, error) {
	return f.matches, f.err
}

type fakeChunkStore struct {
	records map[uuid.UUID]ChunkRecord
	err     error
}

func (f *fakeChunkStore) GetChunksByIds(_ context.Context, _ uuid.UUID, ids []uuid.UUID) ([]ChunkRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []ChunkRecord
	for _, id := range ids {
		if r, ok := f.records[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func chunkFixture(filename, content string) (uuid.UUID, ChunkRecord) {
	id := uuid.New()
	return id, ChunkRecord{
		Id:         id,
		DocumentId: uuid.New(),
		Content:    content,
		Filename:   filename,
		Index:      0,
	}
}

func TestAssemble_SelectsByScoreUnderBudget(t *testing.T) {
	idA, recA := chunkFixture("report.pdf", strings.Repeat("a", 400)) // 100 tokens
	idB, recB := chunkFixture("notes.txt", strings.Repeat("b", 400))
	idC, recC := chunkFixture("report.pdf", strings.Repeat("c", 400))

	store := &fakeChunkStore{records: map[uuid.UUID]ChunkRecord{idA: recA, idB: recB, idC: recC}}
	searcher := &fakeSearcher{matches: []vectorindex.Match{
		{Id: idB.String(), Score: 0.7},
		{Id: idA.String(), Score: 0.9},
		{Id: idC.String(), Score: 0.8},
	}}

	asm := NewAssembler(&fakeEmbedder{}, searcher, store, logger.NewNopLogger(), Config{TopK: 10, MaxContextTokens: 2000})

	result, err := asm.Assemble(context.Background(), uuid.New(), "what does the report say")
	require.NoError(t, err)

	require.Len(t, result.Chunks, 3)
	assert.Equal(t, idA, result.Chunks[0].ChunkId)
	assert.Equal(t, idC, result.Chunks[1].ChunkId)
	assert.Equal(t, idB, result.Chunks[2].ChunkId)
	assert.Equal(t, 300, result.TotalTokens)

	// One summary per filename, carrying the best score seen.
	require.Len(t, result.Sources, 2)
	assert.Equal(t, rag.SourceSummary{Filename: "report.pdf", Score: 0.9}, result.Sources[0])
	assert.Equal(t, rag.SourceSummary{Filename: "notes.txt", Score: 0.7}, result.Sources[1])
}

func TestAssemble_BudgetStopsNotSkips(t *testing.T) {
	idA, recA := chunkFixture("a.txt", strings.Repeat("a", 400)) // 100 tokens
	idB, recB := chunkFixture("b.txt", strings.Repeat("b", 800)) // 200 tokens, overflows
	idC, recC := chunkFixture("c.txt", strings.Repeat("c", 40))  // 10 tokens, would fit

	store := &fakeChunkStore{records: map[uuid.UUID]ChunkRecord{idA: recA, idB: recB, idC: recC}}
	searcher := &fakeSearcher{matches: []vectorindex.Match{
		{Id: idA.String(), Score: 0.9},
		{Id: idB.String(), Score: 0.8},
		{Id: idC.String(), Score: 0.7},
	}}

	asm := NewAssembler(&fakeEmbedder{}, searcher, store, logger.NewNopLogger(), Config{TopK: 10, MaxContextTokens: 150})

	result, err := asm.Assemble(context.Background(), uuid.New(), "query")
	require.NoError(t, err)

	// The overflowing second chunk terminates selection. The small third
	// chunk is not pulled in even though it would fit, so the context stays
	// a strict relevance prefix.
	require.Len(t, result.Chunks, 1)
	assert.Equal(t, idA, result.Chunks[0].ChunkId)
	assert.Equal(t, 100, result.TotalTokens)
}

func TestAssemble_NoMatchesYieldsEmptyContext(t *testing.T) {
	asm := NewAssembler(&fakeEmbedder{}, &fakeSearcher{}, &fakeChunkStore{}, logger.NewNopLogger(), Config{})

	result, err := asm.Assemble(context.Background(), uuid.New(), "anything")
	require.NoError(t, err)
	assert.Empty(t, result.Chunks)
	assert.Zero(t, result.TotalTokens)
	assert.Empty(t, result.Sources)
}

func TestAssemble_DropsStaleMatches(t *testing.T) {
	idA, recA := chunkFixture("kept.txt", "still here")
	staleId := uuid.New()

	store := &fakeChunkStore{records: map[uuid.UUID]ChunkRecord{idA: recA}}
	searcher := &fakeSearcher{matches: []vectorindex.Match{
		{Id: staleId.String(), Score: 0.95},
		{Id: idA.String(), Score: 0.6},
	}}

	asm := NewAssembler(&fakeEmbedder{}, searcher, store, logger.NewNopLogger(), Config{})

	result, err := asm.Assemble(context.Background(), uuid.New(), "query")
	require.NoError(t, err)
	require.Len(t, result.Chunks, 1)
	assert.Equal(t, idA, result.Chunks[0].ChunkId)
}

func TestAssemble_EmbedFailure(t *testing.T) {
	asm := NewAssembler(&fakeEmbedder{err: errors.New("provider down")}, &fakeSearcher{}, &fakeChunkStore{}, logger.NewNopLogger(), Config{})

	_, err := asm.Assemble(context.Background(), uuid.New(), "query")
	assert.Error(t, err)
}

func TestAssemble_CachesQueryEmbedding(t *testing.T) {
	embedder := &fakeEmbedder{}
	asm := NewAssembler(embedder, &fakeSearcher{}, &fakeChunkStore{}, logger.NewNopLogger(), Config{})

	_, err := asm.Assemble(context.Background(), uuid.New(), "repeated query")
	require.NoError(t, err)
	_, err = asm.Assemble(context.Background(), uuid.New(), "repeated query")
	require.NoError(t, err)

	assert.Equal(t, 1, embedder.calls)
}
