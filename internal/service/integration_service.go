package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-datachat-be/internal/dto"
	"ai-datachat-be/internal/entity"
	"ai-datachat-be/internal/repository/specification"
	"ai-datachat-be/internal/repository/unitofwork"
	"ai-datachat-be/pkg/rag"

	"github.com/google/uuid"
)

var ErrIntegrationNotFound = errors.New("integration not connected")

type IIntegrationService interface {
	Connect(ctx context.Context, userId uuid.UUID, req *dto.ConnectIntegrationRequest) (*dto.ConnectIntegrationResponse, error)
	Disconnect(ctx context.Context, userId uuid.UUID, source string) error
	List(ctx context.Context, userId uuid.UUID) ([]*dto.ListIntegrationsResponse, error)

	// AccessToken implements integrations.TokenSource for the search
	// providers.
	AccessToken(ctx context.Context, tenantId uuid.UUID, source rag.SourceType) (string, error)

	// ConnectedSources returns the source types the user has linked, in a
	// stable order.
	ConnectedSources(ctx context.Context, userId uuid.UUID) ([]rag.SourceType, error)
}

type integrationService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewIntegrationService(uowFactory unitofwork.RepositoryFactory) IIntegrationService {
	return &integrationService{uowFactory: uowFactory}
}

// Connect links a source for the user, replacing the token when the source
// is already linked.
func (s *integrationService) Connect(ctx context.Context, userId uuid.UUID, req *dto.ConnectIntegrationRequest) (*dto.ConnectIntegrationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.IntegrationConnectionRepository()

	existing, err := repo.FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.BySource{Source: req.Source},
	)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		now := time.Now()
		existing.AccessToken = req.AccessToken
		existing.UpdatedAt = &now
		if err := repo.Update(ctx, existing); err != nil {
			return nil, err
		}
		return &dto.ConnectIntegrationResponse{Id: existing.Id, Source: existing.Source}, nil
	}

	conn := entity.IntegrationConnection{
		Id:          uuid.New(),
		UserId:      userId,
		Source:      req.Source,
		AccessToken: req.AccessToken,
		CreatedAt:   time.Now(),
	}
	if err := repo.Create(ctx, &conn); err != nil {
		return nil, err
	}
	return &dto.ConnectIntegrationResponse{Id: conn.Id, Source: conn.Source}, nil
}

func (s *integrationService) Disconnect(ctx context.Context, userId uuid.UUID, source string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.IntegrationConnectionRepository()

	conn, err := repo.FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.BySource{Source: source},
	)
	if err != nil {
		return err
	}
	if conn == nil {
		return ErrIntegrationNotFound
	}
	return repo.Delete(ctx, conn.Id)
}

func (s *integrationService) List(ctx context.Context, userId uuid.UUID) ([]*dto.ListIntegrationsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	conns, err := uow.IntegrationConnectionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ListIntegrationsResponse, 0, len(conns))
	for _, conn := range conns {
		res = append(res, &dto.ListIntegrationsResponse{
			Id:        conn.Id,
			Source:    conn.Source,
			CreatedAt: conn.CreatedAt,
		})
	}
	return res, nil
}

func (s *integrationService) AccessToken(ctx context.Context, tenantId uuid.UUID, source rag.SourceType) (string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	conn, err := uow.IntegrationConnectionRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: tenantId},
		specification.BySource{Source: string(source)},
	)
	if err != nil {
		return "", err
	}
	if conn == nil {
		return "", fmt.Errorf("%w: %s", ErrIntegrationNotFound, source)
	}
	return conn.AccessToken, nil
}

func (s *integrationService) ConnectedSources(ctx context.Context, userId uuid.UUID) ([]rag.SourceType, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	conns, err := uow.IntegrationConnectionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	sources := make([]rag.SourceType, 0, len(conns))
	for _, conn := range conns {
		sources = append(sources, rag.SourceType(conn.Source))
	}
	return sources, nil
}
