// Package assembler turns a chat query into a token-budgeted evidence set:
// embed the query, find nearest chunks in the vector index, hydrate them
// from the chunk store and greedily pack them under the context budget.
package assembler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"ai-datachat-be/internal/pkg/logger"
	"ai-datachat-be/pkg/rag"
	"ai-datachat-be/pkg/vectorindex"
)

const (
	queryEmbeddingTTL     = 10 * time.Minute
	queryEmbeddingCleanup = 15 * time.Minute
)

// ChunkRecord is the stored form of one chunk, without a score.
type ChunkRecord struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	Content    string
	Filename   string
	Index      int
}

// ChunkStore hydrates chunk ids returned by the vector index into full
// records. Ids with no backing row are silently absent from the result.
type ChunkStore interface {
	GetChunksByIds(ctx context.Context, tenantId uuid.UUID, ids []uuid.UUID) ([]ChunkRecord, error)
}

// QueryEmbedder produces a single query vector.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorSearcher is the slice of the index adapter the assembler needs.
type VectorSearcher interface {
	Query(ctx context.Context, tenantId uuid.UUID, vector []float32, topK int, filter vectorindex.Filter) ([]vectorindex.Match, error)
}

type Config struct {
	TopK             int
	MaxContextTokens int
}

func (c Config) sanitized() Config {
	if c.TopK <= 0 {
		c.TopK = 10
	}
	if c.MaxContextTokens <= 0 {
		c.MaxContextTokens = 2000
	}
	return c
}

type Assembler struct {
	embedder QueryEmbedder
	index    VectorSearcher
	chunks   ChunkStore
	cache    *gocache.Cache
	log      logger.ILogger
	config   Config
}

func NewAssembler(embedder QueryEmbedder, index VectorSearcher, chunks ChunkStore, log logger.ILogger, config Config) *Assembler {
	return &Assembler{
		embedder: embedder,
		index:    index,
		chunks:   chunks,
		cache:    gocache.New(queryEmbeddingTTL, queryEmbeddingCleanup),
		log:      log,
		config:   config.sanitized(),
	}
}

// Assemble builds the evidence context for one query. Zero index matches is
// a normal outcome and yields an empty context with no error.
func (a *Assembler) Assemble(ctx context.Context, tenantId uuid.UUID, query string) (*rag.RAGContext, error) {
	vector, err := a.embedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	matches, err := a.index.Query(ctx, tenantId, vector, a.config.TopK, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query vector index: %w", err)
	}
	if len(matches) == 0 {
		return &rag.RAGContext{}, nil
	}

	scored, err := a.hydrate(ctx, tenantId, matches)
	if err != nil {
		return nil, err
	}

	result := a.pack(scored)

	a.log.Debug("assembler", "Assembled retrieval context", map[string]interface{}{
		"tenant_id":    tenantId.String(),
		"matches":      len(matches),
		"selected":     len(result.Chunks),
		"total_tokens": result.TotalTokens,
	})
	return result, nil
}

func (a *Assembler) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if cached, found := a.cache.Get(query); found {
		return cached.([]float32), nil
	}
	vector, err := a.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	a.cache.Set(query, vector, gocache.DefaultExpiration)
	return vector, nil
}

// hydrate resolves index matches to stored chunks. Matches whose chunk row
// is gone, usually a document deleted between indexing and query, are
// dropped rather than surfaced as errors.
func (a *Assembler) hydrate(ctx context.Context, tenantId uuid.UUID, matches []vectorindex.Match) ([]rag.ScoredChunk, error) {
	ids := make([]uuid.UUID, 0, len(matches))
	scores := make(map[uuid.UUID]float64, len(matches))
	for _, m := range matches {
		id, err := uuid.Parse(m.Id)
		if err != nil {
			continue
		}
		ids = append(ids, id)
		scores[id] = m.Score
	}

	records, err := a.chunks.GetChunksByIds(ctx, tenantId, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to hydrate chunks: %w", err)
	}
	if len(records) < len(ids) {
		a.log.Debug("assembler", "Dropped stale vector matches", map[string]interface{}{
			"matched":  len(ids),
			"resolved": len(records),
		})
	}

	scored := make([]rag.ScoredChunk, 0, len(records))
	for _, r := range records {
		scored = append(scored, rag.ScoredChunk{
			ChunkId:    r.Id,
			DocumentId: r.DocumentId,
			Content:    r.Content,
			Filename:   r.Filename,
			ChunkIndex: r.Index,
			Score:      scores[r.Id],
		})
	}
	return scored, nil
}

// pack selects chunks best-first until the token budget is reached. The
// first chunk that would overflow the budget stops selection entirely;
// later, smaller chunks are not considered, keeping the result a strict
// relevance prefix.
func (a *Assembler) pack(scored []rag.ScoredChunk) *rag.RAGContext {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	result := &rag.RAGContext{}
	bestByFile := make(map[string]float64)

	for _, chunk := range scored {
		tokens := rag.EstimateTokens(chunk.Content)
		if result.TotalTokens+tokens > a.config.MaxContextTokens {
			break
		}
		result.Chunks = append(result.Chunks, chunk)
		result.TotalTokens += tokens
		if chunk.Score > bestByFile[chunk.Filename] {
			bestByFile[chunk.Filename] = chunk.Score
		}
	}

	for filename, score := range bestByFile {
		result.Sources = append(result.Sources, rag.SourceSummary{Filename: filename, Score: score})
	}
	sort.Slice(result.Sources, func(i, j int) bool {
		if result.Sources[i].Score != result.Sources[j].Score {
			return result.Sources[i].Score > result.Sources[j].Score
		}
		return result.Sources[i].Filename < result.Sources[j].Filename
	})
	return result
}
