package service

import (
	"context"

	"ai-datachat-be/internal/repository/specification"
	"ai-datachat-be/internal/repository/unitofwork"
	"ai-datachat-be/pkg/rag/assembler"

	"github.com/google/uuid"
)

// chunkStore backs the context assembler with the relational chunk rows.
type chunkStore struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewChunkStore(uowFactory unitofwork.RepositoryFactory) assembler.ChunkStore {
	return &chunkStore{uowFactory: uowFactory}
}

func (s *chunkStore) GetChunksByIds(ctx context.Context, tenantId uuid.UUID, ids []uuid.UUID) ([]assembler.ChunkRecord, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	chunks, err := uow.DocumentChunkRepository().FindByIds(ctx, tenantId, ids)
	if err != nil {
		return nil, err
	}

	// Filenames ride along from the owning documents so the assembler can
	// attribute chunks without another query per chunk.
	docIds := make(map[uuid.UUID]struct{})
	for _, c := range chunks {
		docIds[c.DocumentId] = struct{}{}
	}
	filenames, err := s.filenamesByDocument(ctx, uow, docIds)
	if err != nil {
		return nil, err
	}

	records := make([]assembler.ChunkRecord, 0, len(chunks))
	for _, c := range chunks {
		records = append(records, assembler.ChunkRecord{
			Id:         c.Id,
			DocumentId: c.DocumentId,
			Content:    c.Content,
			Filename:   filenames[c.DocumentId],
			Index:      c.ChunkIndex,
		})
	}
	return records, nil
}

func (s *chunkStore) filenamesByDocument(ctx context.Context, uow unitofwork.UnitOfWork, docIds map[uuid.UUID]struct{}) (map[uuid.UUID]string, error) {
	if len(docIds) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(docIds))
	for id := range docIds {
		ids = append(ids, id)
	}

	docs, err := uow.DocumentRepository().FindAll(ctx, specification.ByIDs{IDs: ids})
	if err != nil {
		return nil, err
	}

	filenames := make(map[uuid.UUID]string, len(docs))
	for _, doc := range docs {
		filenames[doc.Id] = doc.Filename
	}
	return filenames, nil
}
