package implementation

import (
	"context"

	"ai-datachat-be/internal/entity"
	"ai-datachat-be/internal/mapper"
	"ai-datachat-be/internal/model"
	"ai-datachat-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatCitationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatCitationRepository(db *gorm.DB) contract.ChatCitationRepository {
	return &ChatCitationRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatCitationRepositoryImpl) Create(ctx context.Context, citation *entity.ChatCitation) error {
	m := r.mapper.ChatCitationToModel(citation)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*citation = *r.mapper.ChatCitationToEntity(m)
	return nil
}

func (r *ChatCitationRepositoryImpl) CreateBulk(ctx context.Context, citations []*entity.ChatCitation) error {
	if len(citations) == 0 {
		return nil
	}

	models := make([]*model.ChatCitation, 0, len(citations))
	for _, c := range citations {
		models = append(models, r.mapper.ChatCitationToModel(c))
	}
	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*citations[i] = *r.mapper.ChatCitationToEntity(m)
	}
	return nil
}

func (r *ChatCitationRepositoryImpl) FindAllByMessageIds(ctx context.Context, messageIds []uuid.UUID) ([]*entity.ChatCitation, error) {
	if len(messageIds) == 0 {
		return nil, nil
	}

	var models []*model.ChatCitation
	err := r.db.WithContext(ctx).
		Where("chat_message_id IN ?", messageIds).
		Order("relevance DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ChatCitationToEntities(models), nil
}

func (r *ChatCitationRepositoryImpl) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("chat_message_id IN (?)",
			r.db.Model(&model.ChatMessage{}).Select("id").Where("chat_session_id = ?", sessionId),
		).
		Delete(&model.ChatCitation{}).Error
}

func (r *ChatCitationRepositoryImpl) DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().
		Where("chat_message_id IN (?)",
			r.db.Model(&model.ChatMessage{}).Select("chat_messages.id").
				Joins("JOIN chat_sessions ON chat_sessions.id = chat_messages.chat_session_id").
				Where("chat_sessions.user_id = ?", userId),
		).
		Delete(&model.ChatCitation{}).Error
}
