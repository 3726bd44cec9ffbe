package entity

import (
	"time"

	"github.com/google/uuid"
)

type IntegrationConnection struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	Source      string
	AccessToken string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}
