package embedding

import (
	"context"
	"fmt"

	"ai-datachat-be/internal/pkg/logger"
)

// ProviderBatchLimit is the maximum number of texts sent to the provider in
// a single call.
const ProviderBatchLimit = 100

// Usage is the token accounting for one EmbedBatch call. PerText attributes
// the aggregate provider count proportionally by character length, since
// providers only report a per-call total.
type Usage struct {
	TotalTokens int
	PerText     []int
}

// Batcher groups texts into provider-sized batches, one external call per
// group, preserving input order across groups.
type Batcher struct {
	provider  Provider
	batchSize int
	log       logger.ILogger
}

func NewBatcher(provider Provider, log logger.ILogger) *Batcher {
	return &Batcher{
		provider:  provider,
		batchSize: ProviderBatchLimit,
		log:       log,
	}
}

// EmbedBatch embeds all texts and returns vectors in input order together
// with attributed token usage. A provider failure on any group propagates
// as a hard error.
func (b *Batcher) EmbedBatch(ctx context.Context, texts []string) ([][]float32, Usage, error) {
	usage := Usage{PerText: make([]int, 0, len(texts))}
	if len(texts) == 0 {
		return nil, usage, nil
	}

	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += b.batchSize {
		end := start + b.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		group := texts[start:end]

		resp, err := b.provider.Embed(ctx, group)
		if err != nil {
			return nil, Usage{}, fmt.Errorf("embed batch [%d:%d]: %w", start, end, err)
		}
		if len(resp.Vectors) != len(group) {
			return nil, Usage{}, fmt.Errorf("embed batch [%d:%d]: provider returned %d vectors for %d texts", start, end, len(resp.Vectors), len(group))
		}

		vectors = append(vectors, resp.Vectors...)
		usage.TotalTokens += resp.TotalTokens
		usage.PerText = append(usage.PerText, attributeUsage(group, resp.TotalTokens)...)
	}

	b.log.Debug("embedding", "Embedded batch", map[string]interface{}{
		"texts":        len(texts),
		"total_tokens": usage.TotalTokens,
	})

	return vectors, usage, nil
}

// EmbedQuery embeds a single query string.
func (b *Batcher) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	resp, err := b.provider.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(resp.Vectors) != 1 {
		return nil, fmt.Errorf("embed query: provider returned %d vectors", len(resp.Vectors))
	}
	return resp.Vectors[0], nil
}

// attributeUsage splits an aggregate token count across a group
// proportionally to each text's character length.
func attributeUsage(texts []string, total int) []int {
	perText := make([]int, len(texts))

	var totalChars int
	for _, t := range texts {
		totalChars += len(t)
	}
	if totalChars == 0 {
		return perText
	}

	for i, t := range texts {
		perText[i] = total * len(t) / totalChars
	}
	return perText
}
