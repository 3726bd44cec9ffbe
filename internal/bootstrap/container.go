package bootstrap

import (
	"log"

	"ai-datachat-be/internal/config"
	"ai-datachat-be/internal/controller"
	"ai-datachat-be/internal/pkg/logger"
	"ai-datachat-be/internal/repository/unitofwork"
	"ai-datachat-be/internal/service"
	"ai-datachat-be/pkg/chunker"
	"ai-datachat-be/pkg/embedding"
	"ai-datachat-be/pkg/integrations"
	"ai-datachat-be/pkg/llm/factory"
	pktNats "ai-datachat-be/pkg/nats"
	"ai-datachat-be/pkg/rag/assembler"
	"ai-datachat-be/pkg/rag/retrieval"
	"ai-datachat-be/pkg/vectorindex"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController        controller.IAuthController
	UserController        controller.IUserController
	DocumentController    controller.IDocumentController
	ChatController        controller.IChatController
	IntegrationController controller.IIntegrationController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	EventLogService service.IEventLogService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS is auxiliary; a missing broker degrades to no events, not a crash.
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		natsSub = nil
	}

	// 3. AI Stack
	var embeddingProvider embedding.Provider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	case "gemini":
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	default:
		embeddingProvider = embedding.NewOpenAIProvider(cfg.Keys.OpenAI, cfg.Ai.OpenAIModel)
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.OpenAIModel)
	}
	batcher := embedding.NewBatcher(embeddingProvider, sysLogger)

	llmBaseURL := cfg.Ai.OllamaBaseURL
	if cfg.Ai.LLMProvider == "openai" {
		llmBaseURL = cfg.Ai.OpenAIBaseURL
	}
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		llmBaseURL,
		cfg.Keys.OpenAI,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Vector Index
	vectorIndex := vectorindex.NewPgVectorIndex(db)
	vectorAdapter := vectorindex.NewAdapter(vectorIndex, cfg.Ai.EmbeddingDimension, sysLogger)

	// 5. Retrieval Pipeline
	integrationService := service.NewIntegrationService(uowFactory)
	searchProviders := []retrieval.SearchProvider{
		integrations.NewGitHubProvider(integrationService),
		integrations.NewNotionProvider(integrationService),
		integrations.NewAirtableProvider(integrationService),
	}
	contextAssembler := assembler.NewAssembler(
		batcher,
		vectorAdapter,
		service.NewChunkStore(uowFactory),
		sysLogger,
		assembler.Config{
			TopK:             cfg.Ai.TopK,
			MaxContextTokens: cfg.Ai.MaxContextTokens,
		},
	)
	retriever := retrieval.NewRetriever(contextAssembler, searchProviders, sysLogger)

	// 6. Services
	publisherService := service.NewPublisherService(cfg.Keys.IngestTopic, pubSub)
	authService := service.NewAuthService(uowFactory, cfg.App.JwtSecret)
	userService := service.NewUserService(uowFactory, vectorAdapter)
	documentService := service.NewDocumentService(uowFactory, publisherService, vectorAdapter)
	chatService := service.NewChatService(uowFactory, retriever, integrationService, llmProvider, natsPub, sysLogger)

	chunkConfig := chunker.Config{
		ChunkSize:    cfg.Ai.ChunkSize,
		ChunkOverlap: cfg.Ai.ChunkOverlap,
		MinChunkSize: cfg.Ai.MinChunkSize,
	}
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.IngestTopic,
		uowFactory,
		batcher,
		vectorAdapter,
		chunkConfig,
		natsPub,
		sysLogger,
	)

	// 7. Controllers
	return &Container{
		AuthController:        controller.NewAuthController(authService),
		UserController:        controller.NewUserController(userService),
		DocumentController:    controller.NewDocumentController(documentService),
		ChatController:        controller.NewChatController(chatService),
		IntegrationController: controller.NewIntegrationController(integrationService),
		ConsumerService:       consumerService,
		EventLogService:       service.NewEventLogService(natsSub, sysLogger),
	}
}
