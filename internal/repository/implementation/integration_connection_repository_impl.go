package implementation

import (
	"context"
	"errors"

	"ai-datachat-be/internal/entity"
	"ai-datachat-be/internal/mapper"
	"ai-datachat-be/internal/model"
	"ai-datachat-be/internal/repository/contract"
	"ai-datachat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IntegrationConnectionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.IntegrationMapper
}

func NewIntegrationConnectionRepository(db *gorm.DB) contract.IntegrationConnectionRepository {
	return &IntegrationConnectionRepositoryImpl{
		db:     db,
		mapper: mapper.NewIntegrationMapper(),
	}
}

func (r *IntegrationConnectionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *IntegrationConnectionRepositoryImpl) Create(ctx context.Context, connection *entity.IntegrationConnection) error {
	m := r.mapper.ToModel(connection)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*connection = *r.mapper.ToEntity(m)
	return nil
}

func (r *IntegrationConnectionRepositoryImpl) Update(ctx context.Context, connection *entity.IntegrationConnection) error {
	m := r.mapper.ToModel(connection)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*connection = *r.mapper.ToEntity(m)
	return nil
}

func (r *IntegrationConnectionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.IntegrationConnection{}, id).Error
}

func (r *IntegrationConnectionRepositoryImpl) DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Where("user_id = ?", userId).Delete(&model.IntegrationConnection{}).Error
}

func (r *IntegrationConnectionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.IntegrationConnection, error) {
	var m model.IntegrationConnection
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *IntegrationConnectionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.IntegrationConnection, error) {
	var models []*model.IntegrationConnection
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *IntegrationConnectionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.IntegrationConnection{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
