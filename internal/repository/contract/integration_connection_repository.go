package contract

import (
	"context"

	"ai-datachat-be/internal/entity"
	"ai-datachat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type IntegrationConnectionRepository interface {
	Create(ctx context.Context, connection *entity.IntegrationConnection) error
	Update(ctx context.Context, connection *entity.IntegrationConnection) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.IntegrationConnection, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.IntegrationConnection, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
