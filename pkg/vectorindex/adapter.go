package vectorindex

import (
	"context"

	"github.com/google/uuid"

	"ai-datachat-be/internal/pkg/logger"
)

const (
	// FilterQueryLimit caps the broad lookup phase of DeleteByFilter.
	// Matching records beyond the cap survive the delete.
	FilterQueryLimit = 10000

	// DeleteBatchSize bounds how many ids go into one delete statement.
	DeleteBatchSize = 1000
)

// Adapter scopes every index operation to a tenant namespace so that one
// tenant can never read or delete another tenant's vectors.
type Adapter struct {
	index     Index
	dimension int
	log       logger.ILogger
}

func NewAdapter(index Index, dimension int, log logger.ILogger) *Adapter {
	return &Adapter{index: index, dimension: dimension, log: log}
}

func namespaceFor(tenantId uuid.UUID) string {
	return "tenant-" + tenantId.String()
}

func (a *Adapter) Upsert(ctx context.Context, tenantId uuid.UUID, records []Record) error {
	return a.index.Upsert(ctx, namespaceFor(tenantId), records)
}

func (a *Adapter) Query(ctx context.Context, tenantId uuid.UUID, vector []float32, topK int, filter Filter) ([]Match, error) {
	return a.index.Query(ctx, namespaceFor(tenantId), vector, topK, filter)
}

func (a *Adapter) DeleteByIds(ctx context.Context, tenantId uuid.UUID, ids []string) error {
	return a.index.DeleteByIds(ctx, namespaceFor(tenantId), ids)
}

// DeleteByFilter removes every record in the tenant namespace whose metadata
// matches the filter. The store has no native delete-by-metadata, so this
// runs in two phases: a broad zero-vector query to collect matching ids,
// then batched deletes. Returns the number of ids deleted.
func (a *Adapter) DeleteByFilter(ctx context.Context, tenantId uuid.UUID, filter Filter) (int, error) {
	namespace := namespaceFor(tenantId)

	matches, err := a.index.Query(ctx, namespace, make([]float32, a.dimension), FilterQueryLimit, filter)
	if err != nil {
		return 0, err
	}
	if len(matches) == 0 {
		return 0, nil
	}
	if len(matches) >= FilterQueryLimit {
		a.log.Warn("vectorindex", "Filter delete hit the lookup cap, some records may remain", map[string]interface{}{
			"namespace": namespace,
			"cap":       FilterQueryLimit,
		})
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.Id)
	}

	deleted := 0
	for start := 0; start < len(ids); start += DeleteBatchSize {
		end := start + DeleteBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		if err := a.index.DeleteByIds(ctx, namespace, ids[start:end]); err != nil {
			return deleted, err
		}
		deleted += end - start
	}
	return deleted, nil
}
