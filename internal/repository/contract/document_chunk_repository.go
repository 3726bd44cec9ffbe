package contract

import (
	"context"

	"ai-datachat-be/internal/entity"
	"ai-datachat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentChunkRepository interface {
	Create(ctx context.Context, chunk *entity.DocumentChunk) error
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error // Hard delete all
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocumentChunk, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// FindByIds hydrates chunk ids from a vector query, scoped to the owner.
	// Ids with no surviving row are absent from the result, not an error.
	FindByIds(ctx context.Context, userId uuid.UUID, ids []uuid.UUID) ([]*entity.DocumentChunk, error)
}
