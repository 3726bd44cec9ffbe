package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string
type UserStatus string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"

	UserStatusPending UserStatus = "pending"
	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

type User struct {
	Id                    uuid.UUID
	Email                 string
	PasswordHash          *string
	FullName              string
	Role                  UserRole
	Status                UserStatus
	EmailVerified         bool
	EmailVerifiedAt       *time.Time
	AiDailyUsage          int
	AiDailyUsageLastReset time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type UserRefreshToken struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}
