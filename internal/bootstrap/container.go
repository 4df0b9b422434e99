package bootstrap

import (
	"context"
	"log"

	"legal-chatbot-be/internal/config"
	"legal-chatbot-be/internal/controller"
	"legal-chatbot-be/internal/handler"
	"legal-chatbot-be/internal/pkg/lock"
	"legal-chatbot-be/internal/pkg/logger"
	"legal-chatbot-be/internal/pkg/serverutils"
	"legal-chatbot-be/internal/repository"
	"legal-chatbot-be/internal/repository/memory"
	"legal-chatbot-be/internal/repository/unitofwork"
	"legal-chatbot-be/internal/service"
	"legal-chatbot-be/internal/websocket"
	"legal-chatbot-be/pkg/embedding"
	"legal-chatbot-be/pkg/events"
	"legal-chatbot-be/pkg/ingest"
	"legal-chatbot-be/pkg/llm/factory"
	pktNats "legal-chatbot-be/pkg/nats"
	"legal-chatbot-be/pkg/rag/conversation"
	"legal-chatbot-be/pkg/rag/router"
	"legal-chatbot-be/pkg/rag/search"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	ingestConsumerName = "legal-chatbot-ingest"
	hubConsumerName    = "legal-chatbot-hub"
)

type Container struct {
	// Controllers
	AuthController     controller.IAuthController
	UserController     controller.IUserController
	ChatbotController  controller.IChatbotController
	DocumentController controller.IDocumentController

	// Background services, started by Start
	IngestService service.IIngestService

	// WebSockets
	EventsHandler *handler.EventsHandler
	WebSocketHub  *websocket.Hub

	Logger logger.ILogger

	natsPub *pktNats.Publisher
	natsSub *pktNats.Subscriber
	pubSub  *gochannel.GoChannel
	rdb     *redis.Client
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	ctx := context.Background()

	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.IsProduction())
	ragLogger := logger.NewIsolatedLogger(cfg.App.RagLogFilePath)
	eventsLogger := logger.NewIsolatedLogger(cfg.App.EventsLogFilePath)

	// 2. Infrastructure
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
	rdb := NewRedisClient(ctx, cfg.App.RedisURL)

	wsHub := websocket.NewHub(rdb, eventsLogger)

	var sessionEvents events.Publisher = wsHub
	var ingestEvents events.Publisher = wsHub
	if natsPub != nil {
		sessionEvents = events.Multi{wsHub, natsPub}
		// The hub receives ingestion events back through the NATS bridge.
		ingestEvents = natsPub
	}

	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)

	// 3. AI providers
	baseEmbedder, err := NewEmbeddingProvider(cfg)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Embedding Provider: %v", err)
	}
	queryEmbedder := embedding.NewCachedProvider(baseEmbedder, cfg.Ai.EmbeddingCacheTTL)

	llmProvider, err := factory.NewLLMProvider(factory.Config{
		Provider:   cfg.Ai.LLMProvider,
		Model:      cfg.Ai.LLMModel,
		BaseURL:    cfg.Ai.LLMBaseURL,
		APIKey:     llmAPIKey(cfg),
		Timeout:    cfg.Ai.LLMTimeout,
		MaxRetries: cfg.Ai.LLMMaxRetries,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	index, err := NewVectorIndex(ctx, cfg, uowFactory)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize vector index: %v", err)
	}

	// 4. Conversation pipeline
	var locker conversation.Locker = conversation.NewLocalLocker()
	if cfg.Chat.SessionLock == "redis" {
		if rdb != nil {
			locker = lock.NewRedisLocker(rdb, SessionLockLease(cfg), sysLogger)
		} else {
			log.Println("[WARN] SESSION_LOCK=redis but Redis is unavailable, using in-process locks")
		}
	}

	orchestrator := search.NewOrchestrator(queryEmbedder, index, search.Config{
		TopK:     cfg.Retrieval.TopK,
		MinScore: cfg.Retrieval.MinScore,
	}, ragLogger)

	manager := conversation.NewManager(
		repository.NewSessionStore(uowFactory),
		locker,
		memory.NewActiveSessionRepository(),
		router.NewRouter(ragLogger),
		orchestrator,
		llmProvider,
		sessionEvents,
		ragLogger,
		conversation.Config{
			TopK:         cfg.Retrieval.TopK,
			HistoryLimit: cfg.Chat.HistoryLimit,
			ModelTimeout: cfg.Ai.LLMTimeout,
			Temperature:  cfg.Ai.LLMTemperature,
		},
	)

	// 5. Services
	pipeline := ingest.NewPipeline(baseEmbedder, index, cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap, sysLogger)
	ingestService := service.NewIngestService(pubSub, pubSub, cfg.Ingest.Topic, pipeline, ingestEvents, sysLogger)

	authService := service.NewAuthService(uowFactory, sessionEvents, cfg.Auth.JwtSecret, cfg.Auth.JwtTTL, sysLogger)
	userService := service.NewUserService(uowFactory)
	chatbotService := service.NewChatbotService(manager)

	// 6. Controllers
	jwtMiddleware := serverutils.NewJwtMiddleware(cfg.Auth.JwtSecret)
	return &Container{
		AuthController:     controller.NewAuthController(authService),
		UserController:     controller.NewUserController(userService, jwtMiddleware),
		ChatbotController:  controller.NewChatbotController(chatbotService, jwtMiddleware),
		DocumentController: controller.NewDocumentController(ingestService, jwtMiddleware),

		IngestService: ingestService,
		EventsHandler: handler.NewEventsHandler(wsHub, cfg.Auth.JwtSecret, eventsLogger),
		WebSocketHub:  wsHub,
		Logger:        sysLogger,

		natsPub: natsPub,
		natsSub: natsSub,
		pubSub:  pubSub,
		rdb:     rdb,
	}
}

// Start runs the hub, the ingestion worker and the NATS subscriptions until ctx is done.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)

	if err := c.IngestService.Consume(ctx); err != nil {
		return err
	}

	if c.natsSub == nil {
		return nil
	}
	if err := c.natsSub.Subscribe(ctx, events.TypeDocumentSubmitted, ingestConsumerName, c.IngestService.HandleSubmittedEvent); err != nil {
		return err
	}
	return c.natsSub.Subscribe(ctx, events.TypeDocumentIngested, hubConsumerName, c.EventsHandler.ForwardToHub)
}

func (c *Container) Close() {
	if c.natsSub != nil {
		c.natsSub.Close()
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if err := c.pubSub.Close(); err != nil {
		log.Printf("[WARN] Failed to close ingest queue: %v", err)
	}
	if c.rdb != nil {
		c.rdb.Close()
	}
	_ = c.Logger.Sync()
}

func llmAPIKey(cfg *config.Config) string {
	if cfg.Ai.LLMProvider == "huggingface" {
		return cfg.Ai.HuggingFaceAPIKey
	}
	return cfg.Ai.OpenAIAPIKey
}
