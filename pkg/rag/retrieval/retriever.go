// Package retrieval orchestrates a single query end to end: classify, fan
// out across the vector pipeline and every connected integration, join,
// then consolidate citations. It is the one entry point the chat layer
// calls before composing an answer.
package retrieval

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"ai-datachat-be/internal/pkg/logger"
	"ai-datachat-be/pkg/rag"
	"ai-datachat-be/pkg/rag/classify"
	"ai-datachat-be/pkg/rag/consolidate"
)

const defaultSearchLimit = 5

// ContextProvider is the vector retrieval branch, normally the assembler.
type ContextProvider interface {
	Assemble(ctx context.Context, tenantId uuid.UUID, query string) (*rag.RAGContext, error)
}

// SearchProvider is one integration search branch.
type SearchProvider interface {
	Type() rag.SourceType
	Search(ctx context.Context, tenantId uuid.UUID, query string, limit int) ([]rag.IntegrationResult, error)
}

// Result is everything the answer generator needs from retrieval.
type Result struct {
	Context *rag.RAGContext
	Sources []rag.ConsolidatedSource
}

type Retriever struct {
	assembler   ContextProvider
	providers   map[rag.SourceType]SearchProvider
	searchLimit int
	log         logger.ILogger
}

func NewRetriever(assembler ContextProvider, providers []SearchProvider, log logger.ILogger) *Retriever {
	byType := make(map[rag.SourceType]SearchProvider, len(providers))
	for _, p := range providers {
		byType[p.Type()] = p
	}
	return &Retriever{
		assembler:   assembler,
		providers:   byType,
		searchLimit: defaultSearchLimit,
		log:         log,
	}
}

// RetrieveAndConsolidate runs the full retrieval pipeline for one query.
// Casual queries short-circuit with empty evidence. Every branch failure
// degrades to empty results for that branch only; the only hard error is
// caller cancellation, which discards partial results.
func (r *Retriever) RetrieveAndConsolidate(ctx context.Context, tenantId uuid.UUID, query string, connectedSources []rag.SourceType) (*Result, error) {
	isCasual := classify.IsCasual(query)
	isListQuery := classify.IsListQuery(query)
	requestedSource := classify.DetectRequestedSource(query)

	if isCasual {
		return &Result{Context: &rag.RAGContext{}, Sources: []rag.ConsolidatedSource{}}, nil
	}

	var wg sync.WaitGroup
	var mu sync.Mutex

	ragContext := &rag.RAGContext{}
	resultsBySource := make(map[rag.SourceType][]rag.IntegrationResult)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer r.recoverBranch("vector")

		assembled, err := r.assembler.Assemble(ctx, tenantId, query)
		if err != nil {
			r.log.Warn("retrieval", "Vector branch degraded to empty context", map[string]interface{}{
				"tenant_id": tenantId.String(),
				"error":     err.Error(),
			})
			return
		}
		mu.Lock()
		ragContext = assembled
		mu.Unlock()
	}()

	for _, source := range connectedSources {
		provider, ok := r.providers[source]
		if !ok {
			continue
		}

		wg.Add(1)
		go func(provider SearchProvider) {
			defer wg.Done()
			defer r.recoverBranch(string(provider.Type()))

			found, err := provider.Search(ctx, tenantId, query, r.searchLimit)
			if err != nil {
				r.log.Warn("retrieval", "Integration branch degraded to empty results", map[string]interface{}{
					"tenant_id": tenantId.String(),
					"source":    string(provider.Type()),
					"error":     err.Error(),
				})
				return
			}
			mu.Lock()
			resultsBySource[provider.Type()] = found
			mu.Unlock()
		}(provider)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Flatten in the caller's declared source order so consolidation ties
	// break deterministically regardless of branch completion order.
	var integrationResults []rag.IntegrationResult
	for _, source := range connectedSources {
		integrationResults = append(integrationResults, resultsBySource[source]...)
	}

	sources := consolidate.Consolidate(ragContext.Sources, integrationResults, requestedSource, isCasual, isListQuery)
	return &Result{Context: ragContext, Sources: sources}, nil
}

// recoverBranch keeps a panic in one branch from taking down its siblings
// or the request. The branch simply contributes nothing.
func (r *Retriever) recoverBranch(branch string) {
	if rec := recover(); rec != nil {
		r.log.Error("retrieval", "Retrieval branch panicked", map[string]interface{}{
			"branch": branch,
			"panic":  rec,
		})
	}
}
