package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ai-datachat-be/internal/dto"
	"ai-datachat-be/internal/entity"
	"ai-datachat-be/internal/repository/specification"
	"ai-datachat-be/internal/repository/unitofwork"
	"ai-datachat-be/pkg/vectorindex"

	"github.com/google/uuid"
)

var ErrDocumentNotFound = errors.New("document not found")

type IDocumentService interface {
	Ingest(ctx context.Context, userId uuid.UUID, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowDocumentResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.ShowDocumentResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	Reprocess(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ReprocessDocumentResponse, error)
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	vectorAdapter    *vectorindex.Adapter
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	vectorAdapter *vectorindex.Adapter,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		vectorAdapter:    vectorAdapter,
	}
}

// Ingest stores the raw document and hands it to the embedding worker.
// The response reports status "pending"; chunking and embedding happen
// asynchronously.
func (s *documentService) Ingest(ctx context.Context, userId uuid.UUID, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc := entity.Document{
		Id:          uuid.New(),
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Content:     req.Content,
		Status:      entity.DocumentStatusPending,
		UserId:      userId,
		CreatedAt:   time.Now(),
	}

	if err := uow.DocumentRepository().Create(ctx, &doc); err != nil {
		return nil, err
	}

	if err := s.publishIngest(ctx, doc.Id, userId); err != nil {
		return nil, err
	}

	return &dto.IngestDocumentResponse{
		Id:     doc.Id,
		Status: string(doc.Status),
	}, nil
}

func (s *documentService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	return documentToResponse(doc), nil
}

func (s *documentService) List(ctx context.Context, userId uuid.UUID) ([]*dto.ShowDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	docs, err := uow.DocumentRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ShowDocumentResponse, 0, len(docs))
	for _, doc := range docs {
		res = append(res, documentToResponse(doc))
	}
	return res, nil
}

// Delete removes the document row, its chunk rows and its vectors. The
// row deletes run in one transaction; the vector cleanup follows after
// commit so a vector store outage never leaves orphaned rows behind.
func (s *documentService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrDocumentNotFound
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, id); err != nil {
		uow.Rollback()
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, id); err != nil {
		uow.Rollback()
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	_, err = s.vectorAdapter.DeleteByFilter(ctx, userId, vectorindex.Filter{
		"document_id": id.String(),
	})
	return err
}

// Reprocess resets a document to pending and re-queues it. Re-embedding
// upserts by the same chunk ids, so stale vectors are overwritten rather
// than leaked.
func (s *documentService) Reprocess(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ReprocessDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}

	if err := uow.DocumentRepository().UpdateStatus(ctx, id, entity.DocumentStatusPending, ""); err != nil {
		return nil, err
	}

	if err := s.publishIngest(ctx, id, userId); err != nil {
		return nil, err
	}

	return &dto.ReprocessDocumentResponse{
		Id:     id,
		Status: string(entity.DocumentStatusPending),
	}, nil
}

func (s *documentService) publishIngest(ctx context.Context, documentId, userId uuid.UUID) error {
	payload, err := json.Marshal(dto.PublishIngestDocumentMessage{
		DocumentId: documentId,
		UserId:     userId,
	})
	if err != nil {
		return err
	}
	return s.publisherService.Publish(ctx, payload)
}

func documentToResponse(doc *entity.Document) *dto.ShowDocumentResponse {
	return &dto.ShowDocumentResponse{
		Id:           doc.Id,
		Filename:     doc.Filename,
		ContentType:  doc.ContentType,
		Status:       string(doc.Status),
		ChunkCount:   doc.ChunkCount,
		ErrorMessage: doc.ErrorMessage,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}
