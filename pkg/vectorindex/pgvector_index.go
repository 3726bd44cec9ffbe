package vectorindex

import (
	"context"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type vectorRecordRow struct {
	Namespace string            `gorm:"column:namespace;primaryKey;type:varchar(64)"`
	Id        string            `gorm:"column:id;primaryKey;type:uuid"`
	Embedding pgvector.Vector   `gorm:"column:embedding;type:vector(1536)"`
	Metadata  datatypes.JSONMap `gorm:"column:metadata;type:jsonb"`
	CreatedAt time.Time         `gorm:"column:created_at"`
	UpdatedAt time.Time         `gorm:"column:updated_at"`
}

func (vectorRecordRow) TableName() string {
	return "vector_records"
}

// PgVectorIndex stores embeddings in a single pgvector table, partitioned
// logically by the namespace column.
type PgVectorIndex struct {
	db *gorm.DB
}

func NewPgVectorIndex(db *gorm.DB) *PgVectorIndex {
	return &PgVectorIndex{db: db}
}

func (p *PgVectorIndex) Upsert(ctx context.Context, namespace string, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]vectorRecordRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, vectorRecordRow{
			Namespace: namespace,
			Id:        r.Id,
			Embedding: pgvector.NewVector(r.Values),
			Metadata:  datatypes.JSONMap(r.Metadata),
		})
	}

	err := p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"embedding", "metadata", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to upsert vector records: %w", err)
	}
	return nil
}

func (p *PgVectorIndex) Query(ctx context.Context, namespace string, vector []float32, topK int, filter Filter) ([]Match, error) {
	queryVector := pgvector.NewVector(vector)

	tx := p.db.WithContext(ctx).
		Model(&vectorRecordRow{}).
		Select("id, 1 - (embedding <=> ?) as score", queryVector).
		Where("namespace = ?", namespace)

	for key, value := range filter {
		tx = tx.Where("metadata ->> ? = ?", key, value)
	}

	var matches []Match
	err := tx.Order(clause.Expr{SQL: "embedding <=> ?", Vars: []interface{}{queryVector}}).
		Limit(topK).
		Scan(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query vector records: %w", err)
	}
	return matches, nil
}

func (p *PgVectorIndex) DeleteByIds(ctx context.Context, namespace string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	err := p.db.WithContext(ctx).
		Where("namespace = ? AND id IN ?", namespace, ids).
		Delete(&vectorRecordRow{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete vector records: %w", err)
	}
	return nil
}
