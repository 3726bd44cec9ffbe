package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Document struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Filename     string         `gorm:"type:varchar(255);not null"`
	ContentType  string         `gorm:"type:varchar(100);not null"`
	Content      string         `gorm:"type:text"`
	Status       string         `gorm:"type:varchar(20);not null;default:'pending';index"`
	ChunkCount   int            `gorm:"default:0"`
	ErrorMessage string         `gorm:"type:text"`
	UserId       uuid.UUID      `gorm:"type:uuid;not null;index"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
