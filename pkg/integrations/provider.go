// Package integrations holds the search providers for connected external
// sources. Each provider wraps one backend API behind a uniform Search
// contract so the retrieval pipeline can fan out across them.
package integrations

import (
	"context"

	"github.com/google/uuid"

	"ai-datachat-be/pkg/rag"
)

// Provider searches one external source for a tenant. Implementations
// should return an explicit error on backend failure; the retrieval layer
// degrades errors to empty results per branch.
type Provider interface {
	Type() rag.SourceType
	Search(ctx context.Context, tenantId uuid.UUID, query string, limit int) ([]rag.IntegrationResult, error)
}

// TokenSource resolves the stored credential a tenant connected for one
// source, typically from the integration connection repository.
type TokenSource interface {
	AccessToken(ctx context.Context, tenantId uuid.UUID, source rag.SourceType) (string, error)
}
