package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatCitation struct {
	Id            uuid.UUID
	ChatMessageId uuid.UUID
	SourceType    string
	Name          string
	Url           string
	Relevance     float64
	CreatedAt     time.Time
}
