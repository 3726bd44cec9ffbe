package service

import (
	"context"

	"ai-datachat-be/internal/pkg/logger"
	"ai-datachat-be/pkg/events"
	pktNats "ai-datachat-be/pkg/nats"
)

type IEventLogService interface {
	Start() error
}

// eventLogService consumes every domain event off the broker and writes it
// to the structured log. It is the audit trail for async processing.
type eventLogService struct {
	subscriber *pktNats.Subscriber
	log        logger.ILogger
}

func NewEventLogService(subscriber *pktNats.Subscriber, log logger.ILogger) IEventLogService {
	return &eventLogService{
		subscriber: subscriber,
		log:        log,
	}
}

func (s *eventLogService) Start() error {
	if s.subscriber == nil {
		return nil
	}
	return s.subscriber.Subscribe("events.>", "event-log", s.handle)
}

func (s *eventLogService) handle(ctx context.Context, event events.Event) error {
	s.log.Info("events", "domain event", map[string]interface{}{
		"type":    event.EventType(),
		"payload": event.Payload(),
	})
	return nil
}
