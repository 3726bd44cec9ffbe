package mapper

import (
	"time"

	"ai-datachat-be/internal/entity"
	"ai-datachat-be/internal/model"

	"gorm.io/gorm"
)

type IntegrationMapper struct{}

func NewIntegrationMapper() *IntegrationMapper {
	return &IntegrationMapper{}
}

func (m *IntegrationMapper) ToEntity(c *model.IntegrationConnection) *entity.IntegrationConnection {
	if c == nil {
		return nil
	}

	var deletedAt *time.Time
	if c.DeletedAt.Valid {
		t := c.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.IntegrationConnection{
		Id:          c.Id,
		UserId:      c.UserId,
		Source:      c.Source,
		AccessToken: c.AccessToken,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   c.DeletedAt.Valid,
	}
}

func (m *IntegrationMapper) ToEntities(models []*model.IntegrationConnection) []*entity.IntegrationConnection {
	entities := make([]*entity.IntegrationConnection, 0, len(models))
	for _, c := range models {
		entities = append(entities, m.ToEntity(c))
	}
	return entities
}

func (m *IntegrationMapper) ToModel(c *entity.IntegrationConnection) *model.IntegrationConnection {
	if c == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if c.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *c.DeletedAt, Valid: true}
	} else if c.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.IntegrationConnection{
		Id:          c.Id,
		UserId:      c.UserId,
		Source:      c.Source,
		AccessToken: c.AccessToken,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
	}
}
