package embedding

import "context"

// BatchResponse carries the vectors for one provider call, in input order,
// plus the aggregate token count the provider reported for the call.
type BatchResponse struct {
	Vectors     [][]float32
	TotalTokens int
}

// Provider defines the interface for generating text embeddings.
type Provider interface {
	Embed(ctx context.Context, texts []string) (*BatchResponse, error)
}
