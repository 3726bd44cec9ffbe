package service

import (
	"context"
	"time"

	"ai-datachat-be/internal/dto"
	"ai-datachat-be/internal/repository/specification"
	"ai-datachat-be/internal/repository/unitofwork"
	"ai-datachat-be/pkg/vectorindex"

	"github.com/google/uuid"
)

type IUserService interface {
	Profile(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error)
	UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserProfileResponse, error)
	DeleteAccount(ctx context.Context, userId uuid.UUID) error
}

type userService struct {
	uowFactory    unitofwork.RepositoryFactory
	vectorAdapter *vectorindex.Adapter
}

func NewUserService(uowFactory unitofwork.RepositoryFactory, vectorAdapter *vectorindex.Adapter) IUserService {
	return &userService{
		uowFactory:    uowFactory,
		vectorAdapter: vectorAdapter,
	}
}

func (s *userService) Profile(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return &dto.UserProfileResponse{
		Id:           user.Id,
		Email:        user.Email,
		FullName:     user.FullName,
		Role:         string(user.Role),
		Status:       string(user.Status),
		AiDailyUsage: user.AiDailyUsage,
		CreatedAt:    user.CreatedAt,
	}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	user.FullName = req.FullName
	if req.Email != "" && req.Email != user.Email {
		existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrEmailTaken
		}
		user.Email = req.Email
	}
	user.UpdatedAt = time.Now()

	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return nil, err
	}
	return s.Profile(ctx, userId)
}

// DeleteAccount hard deletes everything the user owns. Row deletes run in
// one transaction; the vector namespace is wiped afterwards, since an
// empty filter matches every record in the user's namespace.
func (s *userService) DeleteAccount(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return err
	}

	steps := []func(context.Context, uuid.UUID) error{
		uow.ChatCitationRepository().DeleteAllByUserIdUnscoped,
		uow.ChatMessageRepository().DeleteAllByUserIdUnscoped,
		uow.ChatSessionRepository().DeleteAllByUserIdUnscoped,
		uow.DocumentChunkRepository().DeleteAllByUserIdUnscoped,
		uow.DocumentRepository().DeleteAllByUserIdUnscoped,
		uow.IntegrationConnectionRepository().DeleteAllByUserIdUnscoped,
		uow.UserRepository().DeleteUnscoped,
	}
	for _, step := range steps {
		if err := step(ctx, userId); err != nil {
			uow.Rollback()
			return err
		}
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	_, err := s.vectorAdapter.DeleteByFilter(ctx, userId, vectorindex.Filter{})
	return err
}
