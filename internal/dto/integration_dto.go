package dto

import (
	"time"

	"github.com/google/uuid"
)

type ConnectIntegrationRequest struct {
	Source      string `json:"source" validate:"required,oneof=github notion airtable"`
	AccessToken string `json:"access_token" validate:"required"`
}

type ConnectIntegrationResponse struct {
	Id     uuid.UUID `json:"id"`
	Source string    `json:"source"`
}

type ListIntegrationsResponse struct {
	Id        uuid.UUID `json:"id"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}
