package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IntegrationConnection struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID      `gorm:"type:uuid;not null;index:idx_integration_user_source,unique"`
	Source      string         `gorm:"type:varchar(50);not null;index:idx_integration_user_source,unique"`
	AccessToken string         `gorm:"type:text;not null"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (IntegrationConnection) TableName() string {
	return "integration_connections"
}
