package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-datachat-be/internal/pkg/logger"
)

// fakeProvider returns a one-element vector encoding the text's position in
// the overall input so ordering across groups is checkable.
type fakeProvider struct {
	calls     [][]string
	tokens    int
	failAfter int // fail on call N (1-based), 0 = never
}

func (f *fakeProvider) Embed(_ context.Context, texts []string) (*BatchResponse, error) {
	f.calls = append(f.calls, texts)
	if f.failAfter > 0 && len(f.calls) >= f.failAfter {
		return nil, errors.New("provider unavailable")
	}

	vectors := make([][]float32, len(texts))
	for i := range texts {
		seen := 0
		for _, c := range f.calls[:len(f.calls)-1] {
			seen += len(c)
		}
		vectors[i] = []float32{float32(seen + i)}
	}
	return &BatchResponse{Vectors: vectors, TotalTokens: f.tokens}, nil
}

func TestEmbedBatchGroupsAndPreservesOrder(t *testing.T) {
	provider := &fakeProvider{tokens: 100}
	batcher := NewBatcher(provider, logger.NewNopLogger())

	texts := make([]string, 250)
	for i := range texts {
		texts[i] = fmt.Sprintf("chunk %d", i)
	}

	vectors, usage, err := batcher.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)

	require.Len(t, provider.calls, 3)
	assert.Len(t, provider.calls[0], 100)
	assert.Len(t, provider.calls[1], 100)
	assert.Len(t, provider.calls[2], 50)

	require.Len(t, vectors, 250)
	for i, v := range vectors {
		assert.Equal(t, float32(i), v[0], "vector %d out of order", i)
	}

	assert.Equal(t, 300, usage.TotalTokens)
	assert.Len(t, usage.PerText, 250)
}

func TestEmbedBatchProviderFailurePropagates(t *testing.T) {
	provider := &fakeProvider{failAfter: 2, tokens: 10}
	batcher := NewBatcher(provider, logger.NewNopLogger())

	texts := make([]string, 150)
	for i := range texts {
		texts[i] = "t"
	}

	_, _, err := batcher.EmbedBatch(context.Background(), texts)
	assert.Error(t, err)
}

func TestEmbedBatchEmpty(t *testing.T) {
	provider := &fakeProvider{}
	batcher := NewBatcher(provider, logger.NewNopLogger())

	vectors, usage, err := batcher.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
	assert.Zero(t, usage.TotalTokens)
	assert.Empty(t, provider.calls)
}

func TestEmbedQuery(t *testing.T) {
	provider := &fakeProvider{tokens: 5}
	batcher := NewBatcher(provider, logger.NewNopLogger())

	vec, err := batcher.EmbedQuery(context.Background(), "what is our churn rate")
	require.NoError(t, err)
	assert.Len(t, vec, 1)
}

func TestAttributeUsageProportional(t *testing.T) {
	perText := attributeUsage([]string{"aaaa", "aaaaaaaaaaaa"}, 40)
	require.Len(t, perText, 2)
	assert.Equal(t, 10, perText[0])
	assert.Equal(t, 30, perText[1])
}
