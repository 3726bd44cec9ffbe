package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeDocumentReady  = "DOCUMENT_READY"
	TypeDocumentFailed = "DOCUMENT_FAILED"
	TypeChatAnswered   = "CHAT_ANSWERED"
)

func NewDocumentReadyEvent(documentId, userId uuid.UUID, chunkCount int) Event {
	return BaseEvent{
		Type: TypeDocumentReady,
		Data: map[string]interface{}{
			"document_id": documentId.String(),
			"user_id":     userId.String(),
			"chunk_count": chunkCount,
		},
		OccurredAt: time.Now(),
	}
}

func NewDocumentFailedEvent(documentId, userId uuid.UUID, reason string) Event {
	return BaseEvent{
		Type: TypeDocumentFailed,
		Data: map[string]interface{}{
			"document_id": documentId.String(),
			"user_id":     userId.String(),
			"reason":      reason,
		},
		OccurredAt: time.Now(),
	}
}

func NewChatAnsweredEvent(sessionId, userId uuid.UUID, sourceCount int) Event {
	return BaseEvent{
		Type: TypeChatAnswered,
		Data: map[string]interface{}{
			"session_id":   sessionId.String(),
			"user_id":      userId.String(),
			"source_count": sourceCount,
		},
		OccurredAt: time.Now(),
	}
}
