package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-datachat-be/internal/dto"
	"ai-datachat-be/internal/entity"
	"ai-datachat-be/internal/pkg/logger"
	"ai-datachat-be/internal/repository/specification"
	"ai-datachat-be/internal/repository/unitofwork"
	"ai-datachat-be/pkg/events"
	"ai-datachat-be/pkg/llm"
	pktNats "ai-datachat-be/pkg/nats"
	"ai-datachat-be/pkg/rag"
	"ai-datachat-be/pkg/rag/retrieval"

	"github.com/google/uuid"
)

const (
	// aiDailyLimit caps chat turns per user per day.
	aiDailyLimit = 50

	// historyWindow is how many prior messages feed the model.
	historyWindow = 10

	sessionTitleMaxLen = 60
)

var (
	ErrSessionNotFound = errors.New("chat session not found")
	ErrAiLimitExceeded = errors.New("daily ai usage limit exceeded")
	ErrUserNotFound    = errors.New("user not found")
)

type IChatService interface {
	CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, req *dto.DeleteSessionRequest) error
}

type chatService struct {
	uowFactory         unitofwork.RepositoryFactory
	retriever          *retrieval.Retriever
	integrationService IIntegrationService
	llmProvider        llm.LLMProvider
	eventPublisher     *pktNats.Publisher
	log                logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	retriever *retrieval.Retriever,
	integrationService IIntegrationService,
	llmProvider llm.LLMProvider,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:         uowFactory,
		retriever:          retriever,
		integrationService: integrationService,
		llmProvider:        llmProvider,
		eventPublisher:     eventPublisher,
		log:                log,
	}
}

func (s *chatService) CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session := entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     "New Chat",
		CreatedAt: time.Now(),
	}
	if err := uow.ChatSessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}
	return &dto.CreateSessionResponse{Id: session.Id}, nil
}

func (s *chatService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetAllSessionsResponse, 0, len(sessions))
	for _, session := range sessions {
		res = append(res, &dto.GetAllSessionsResponse{
			Id:        session.Id,
			Title:     session.Title,
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
		})
	}
	return res, nil
}

func (s *chatService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.findOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: session.Id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	citationsByMessage, err := s.loadCitations(ctx, uow, messages)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetChatHistoryResponse, 0, len(messages))
	for _, msg := range messages {
		res = append(res, &dto.GetChatHistoryResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Chat:      msg.Chat,
			CreatedAt: msg.CreatedAt,
			Citations: citationsByMessage[msg.Id],
		})
	}
	return res, nil
}

// SendChat runs a full retrieval-augmented turn: persist the user message,
// gather context across the vector store and connected integrations,
// generate the reply and persist it with its consolidated citations.
func (s *chatService) SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.findOwnedSession(ctx, uow, userId, req.ChatSessionId)
	if err != nil {
		return nil, err
	}

	if err := s.checkAiUsage(ctx, uow, userId); err != nil {
		return nil, err
	}

	userMessage := entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          req.Chat,
		Role:          "user",
		ChatSessionId: session.Id,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, &userMessage); err != nil {
		return nil, err
	}

	if session.Title == "New Chat" {
		s.retitleSession(ctx, uow, session, req.Chat)
	}

	connectedSources, err := s.integrationService.ConnectedSources(ctx, userId)
	if err != nil {
		s.log.Warn("chat", "failed to list connected sources", map[string]interface{}{
			"user_id": userId,
			"error":   err.Error(),
		})
		connectedSources = nil
	}

	result, err := s.retriever.RetrieveAndConsolidate(ctx, userId, req.Chat, connectedSources)
	if err != nil {
		return nil, err
	}

	history, err := s.recentHistory(ctx, uow, session.Id, userMessage.Id)
	if err != nil {
		return nil, err
	}

	reply, err := s.llmProvider.Chat(ctx, buildChatMessages(req.Chat, result, history))
	if err != nil {
		return nil, fmt.Errorf("llm chat: %w", err)
	}

	assistantMessage := entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          reply,
		Role:          "assistant",
		ChatSessionId: session.Id,
		CreatedAt:     time.Now(),
	}

	citations := citationsFromSources(assistantMessage.Id, result.Sources)

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	if err := uow.ChatMessageRepository().Create(ctx, &assistantMessage); err != nil {
		uow.Rollback()
		return nil, err
	}
	if len(citations) > 0 {
		if err := uow.ChatCitationRepository().CreateBulk(ctx, citations); err != nil {
			uow.Rollback()
			return nil, err
		}
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if err := uow.UserRepository().IncrementAiUsage(ctx, userId); err != nil {
		s.log.Warn("chat", "failed to increment ai usage", map[string]interface{}{
			"user_id": userId,
			"error":   err.Error(),
		})
	}

	if s.eventPublisher != nil {
		evt := events.NewChatAnsweredEvent(session.Id, userId, len(result.Sources))
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("chat", "failed to publish chat event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return &dto.SendChatResponse{
		ChatSessionId:    session.Id,
		ChatSessionTitle: session.Title,
		Sent: &dto.SendChatResponseChat{
			Id:        userMessage.Id,
			Chat:      userMessage.Chat,
			Role:      userMessage.Role,
			CreatedAt: userMessage.CreatedAt,
		},
		Reply: &dto.SendChatResponseChat{
			Id:        assistantMessage.Id,
			Chat:      assistantMessage.Chat,
			Role:      assistantMessage.Role,
			CreatedAt: assistantMessage.CreatedAt,
			Citations: citationDTOs(citations),
		},
	}, nil
}

func (s *chatService) DeleteSession(ctx context.Context, userId uuid.UUID, req *dto.DeleteSessionRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.findOwnedSession(ctx, uow, userId, req.ChatSessionId)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := uow.ChatCitationRepository().DeleteByChatSessionId(ctx, session.Id); err != nil {
		uow.Rollback()
		return err
	}
	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, session.Id); err != nil {
		uow.Rollback()
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, session.Id); err != nil {
		uow.Rollback()
		return err
	}
	return uow.Commit()
}

func (s *chatService) findOwnedSession(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId uuid.UUID) (*entity.ChatSession, error) {
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// checkAiUsage enforces the daily cap, resetting the counter when the last
// reset happened on a previous day.
func (s *chatService) checkAiUsage(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) error {
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	now := time.Now()
	lastReset := user.AiDailyUsageLastReset
	if lastReset.Year() != now.Year() || lastReset.YearDay() != now.YearDay() {
		if err := uow.UserRepository().ResetAiUsage(ctx, userId); err != nil {
			return err
		}
		return nil
	}

	if user.AiDailyUsage >= aiDailyLimit {
		return ErrAiLimitExceeded
	}
	return nil
}

func (s *chatService) retitleSession(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.ChatSession, firstChat string) {
	title := strings.TrimSpace(firstChat)
	if len(title) > sessionTitleMaxLen {
		title = title[:sessionTitleMaxLen]
	}
	if title == "" {
		return
	}

	now := time.Now()
	session.Title = title
	session.UpdatedAt = &now
	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		s.log.Warn("chat", "failed to retitle session", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
		session.Title = "New Chat"
	}
}

func (s *chatService) recentHistory(ctx context.Context, uow unitofwork.UnitOfWork, sessionId, excludeId uuid.UUID) ([]llm.Message, error) {
	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: historyWindow + 1},
	)
	if err != nil {
		return nil, err
	}

	history := make([]llm.Message, 0, len(messages))
	// Walk backwards so the result is oldest-first.
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Id == excludeId {
			continue
		}
		history = append(history, llm.Message{
			Role:    messages[i].Role,
			Content: messages[i].Chat,
		})
	}
	return history, nil
}

func (s *chatService) loadCitations(ctx context.Context, uow unitofwork.UnitOfWork, messages []*entity.ChatMessage) (map[uuid.UUID][]dto.CitationDTO, error) {
	if len(messages) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(messages))
	for _, msg := range messages {
		ids = append(ids, msg.Id)
	}

	citations, err := uow.ChatCitationRepository().FindAllByMessageIds(ctx, ids)
	if err != nil {
		return nil, err
	}

	byMessage := make(map[uuid.UUID][]dto.CitationDTO)
	for _, c := range citations {
		byMessage[c.ChatMessageId] = append(byMessage[c.ChatMessageId], dto.CitationDTO{
			SourceType: c.SourceType,
			Name:       c.Name,
			Url:        c.Url,
			Relevance:  c.Relevance,
		})
	}
	return byMessage, nil
}

// buildChatMessages composes the system prompt from the retrieved chunks
// and appends recent history plus the current question.
func buildChatMessages(question string, result *retrieval.Result, history []llm.Message) []llm.Message {
	var sb strings.Builder
	sb.WriteString("You are a helpful assistant answering questions about the user's connected data.\n")

	if result != nil && result.Context != nil && len(result.Context.Chunks) > 0 {
		sb.WriteString("\nUse the following context to answer. If the context does not contain the answer, say so.\n\n")
		for _, chunk := range result.Context.Chunks {
			fmt.Fprintf(&sb, "[%s]\n%s\n\n", chunk.Filename, chunk.Content)
		}
	} else {
		sb.WriteString("\nNo relevant documents were found for this question.\n")
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: sb.String()})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: question})
	return messages
}

func citationsFromSources(messageId uuid.UUID, sources []rag.ConsolidatedSource) []*entity.ChatCitation {
	citations := make([]*entity.ChatCitation, 0, len(sources))
	for _, src := range sources {
		citations = append(citations, &entity.ChatCitation{
			Id:            uuid.New(),
			ChatMessageId: messageId,
			SourceType:    string(src.Type),
			Name:          src.Name,
			Url:           src.Url,
			Relevance:     src.Relevance,
			CreatedAt:     time.Now(),
		})
	}
	return citations
}

func citationDTOs(citations []*entity.ChatCitation) []dto.CitationDTO {
	res := make([]dto.CitationDTO, 0, len(citations))
	for _, c := range citations {
		res = append(res, dto.CitationDTO{
			SourceType: c.SourceType,
			Name:       c.Name,
			Url:        c.Url,
			Relevance:  c.Relevance,
		})
	}
	return res
}
