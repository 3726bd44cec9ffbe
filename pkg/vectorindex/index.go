// Package vectorindex provides per-tenant namespaced vector storage for
// chunk embeddings: upsert, top-K cosine similarity query and bulk delete.
package vectorindex

import "context"

// Record is one embedded chunk addressed by its chunk id.
type Record struct {
	Id       string
	Values   []float32
	Metadata map[string]interface{}
}

// Match is a similarity hit. Score is cosine similarity.
type Match struct {
	Id    string
	Score float64
}

// Filter restricts a query to records whose metadata matches every pair.
type Filter map[string]string

// Index is the raw vector store. Implementations are namespace-blind about
// tenancy; namespace derivation happens in the Adapter.
type Index interface {
	Upsert(ctx context.Context, namespace string, records []Record) error
	Query(ctx context.Context, namespace string, vector []float32, topK int, filter Filter) ([]Match, error)
	DeleteByIds(ctx context.Context, namespace string, ids []string) error
}
