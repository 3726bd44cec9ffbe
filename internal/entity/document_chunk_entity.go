package entity

import (
	"time"

	"github.com/google/uuid"
)

type DocumentChunk struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	UserId     uuid.UUID
	ChunkIndex int
	Content    string
	StartChar  int
	EndChar    int
	Tokens     int
	CreatedAt  time.Time
}
