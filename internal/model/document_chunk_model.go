package model

import (
	"time"

	"github.com/google/uuid"
)

type DocumentChunk struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId uuid.UUID `gorm:"type:uuid;not null;index"`
	UserId     uuid.UUID `gorm:"type:uuid;not null;index"`
	ChunkIndex int       `gorm:"default:0"` // 0-based index for ordering
	Content    string    `gorm:"type:text;not null"`
	StartChar  int       `gorm:"default:0"`
	EndChar    int       `gorm:"default:0"`
	Tokens     int       `gorm:"default:0"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
