package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-datachat-be/internal/dto"
	"ai-datachat-be/internal/entity"
	"ai-datachat-be/internal/pkg/logger"
	"ai-datachat-be/internal/repository/specification"
	"ai-datachat-be/internal/repository/unitofwork"
	"ai-datachat-be/pkg/chunker"
	"ai-datachat-be/pkg/embedding"
	"ai-datachat-be/pkg/events"
	pktNats "ai-datachat-be/pkg/nats"
	"ai-datachat-be/pkg/vectorindex"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	batcher        *embedding.Batcher
	vectorAdapter  *vectorindex.Adapter
	chunkConfig    chunker.Config
	eventPublisher *pktNats.Publisher
	log            logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	batcher *embedding.Batcher,
	vectorAdapter *vectorindex.Adapter,
	chunkConfig chunker.Config,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		uowFactory:     uowFactory,
		batcher:        batcher,
		vectorAdapter:  vectorAdapter,
		chunkConfig:    chunkConfig,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage acks poison messages (bad payload, deleted document) so
// they never loop forever, and nacks retriable failures.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIngestDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("consumer", "failed to unmarshal ingest message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack()
		return
	}

	cs.log.Info("consumer", "processing document", map[string]interface{}{
		"document_id": payload.DocumentId,
	})

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		cs.log.Error("consumer", "failed to fetch document", map[string]interface{}{
			"document_id": payload.DocumentId,
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}
	if doc == nil {
		// Deleted between publish and consume.
		msg.Ack()
		return
	}

	if err := uow.DocumentRepository().UpdateStatus(ctx, doc.Id, entity.DocumentStatusProcessing, ""); err != nil {
		msg.Nack()
		return
	}

	if err := cs.embedDocument(ctx, uow, doc, payload.UserId); err != nil {
		cs.log.Error("consumer", "embedding pipeline failed", map[string]interface{}{
			"document_id": doc.Id,
			"error":       err.Error(),
		})
		// Failure is terminal for this attempt. The document stays
		// queryable via Reprocess; re-embedding overwrites vectors by
		// chunk id, so no rollback of partial upserts is needed.
		if updErr := uow.DocumentRepository().UpdateStatus(ctx, doc.Id, entity.DocumentStatusFailed, err.Error()); updErr != nil {
			cs.log.Error("consumer", "failed to mark document failed", map[string]interface{}{
				"document_id": doc.Id,
				"error":       updErr.Error(),
			})
		}
		cs.publishEvent(ctx, events.NewDocumentFailedEvent(doc.Id, payload.UserId, err.Error()))
		msg.Ack()
		return
	}

	msg.Ack()
}

func (cs *consumerService) embedDocument(ctx context.Context, uow unitofwork.UnitOfWork, doc *entity.Document, userId uuid.UUID) error {
	chunks, err := cs.split(doc)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return fmt.Errorf("document %s produced no chunks", doc.Id)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, usage, err := cs.batcher.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}

	chunkEntities := make([]*entity.DocumentChunk, len(chunks))
	records := make([]vectorindex.Record, len(chunks))
	for i, c := range chunks {
		chunkId := uuid.New()
		chunkEntities[i] = &entity.DocumentChunk{
			Id:         chunkId,
			DocumentId: doc.Id,
			UserId:     userId,
			ChunkIndex: c.Index,
			Content:    c.Content,
			StartChar:  c.StartChar,
			EndChar:    c.EndChar,
			Tokens:     usage.PerText[i],
			CreatedAt:  time.Now(),
		}
		records[i] = vectorindex.Record{
			Id:     chunkId.String(),
			Values: vectors[i],
			Metadata: map[string]interface{}{
				"document_id":  doc.Id.String(),
				"filename":     doc.Filename,
				"chunk_index":  c.Index,
				"total_chunks": len(chunks),
			},
		}
	}

	if err := cs.vectorAdapter.Upsert(ctx, userId, records); err != nil {
		return fmt.Errorf("vector upsert: %w", err)
	}

	// Replace chunk rows after the vectors land. On reprocess the old
	// vectors were already overwritten above, so only the rows remain.
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, doc.Id); err != nil {
		uow.Rollback()
		return err
	}
	if err := uow.DocumentChunkRepository().CreateBulk(ctx, chunkEntities); err != nil {
		uow.Rollback()
		return err
	}

	now := time.Now()
	doc.Status = entity.DocumentStatusReady
	doc.ChunkCount = len(chunks)
	doc.ErrorMessage = ""
	doc.UpdatedAt = &now
	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		uow.Rollback()
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	cs.log.Info("consumer", "document embedded", map[string]interface{}{
		"document_id":  doc.Id,
		"chunks":       len(chunks),
		"total_tokens": usage.TotalTokens,
	})
	cs.publishEvent(ctx, events.NewDocumentReadyEvent(doc.Id, userId, len(chunks)))

	return nil
}

func (cs *consumerService) split(doc *entity.Document) ([]chunker.Chunk, error) {
	switch doc.ContentType {
	case "text/csv":
		return chunker.SplitCSV(doc.Content, cs.chunkConfig), nil
	case "application/json":
		return chunker.SplitJSON([]byte(doc.Content), cs.chunkConfig)
	default:
		return chunker.Split(doc.Content, cs.chunkConfig), nil
	}
}

func (cs *consumerService) publishEvent(ctx context.Context, evt events.Event) {
	if cs.eventPublisher == nil {
		return
	}
	// Events feed auxiliary consumers; failures are logged, never fatal.
	if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
		cs.log.Warn("consumer", "failed to publish event", map[string]interface{}{
			"event": evt.EventType(),
			"error": err.Error(),
		})
	}
}
