package bootstrap

import (
	"context"
	"log"

	"tai-backend/internal/config"
	"tai-backend/internal/controller"
	"tai-backend/internal/pkg/logger"
	"tai-backend/internal/pkg/mailer"
	"tai-backend/internal/pkg/quota"
	"tai-backend/internal/repository/memory"
	"tai-backend/internal/repository/unitofwork"
	"tai-backend/internal/service"
	"tai-backend/pkg/assistant"
	"tai-backend/pkg/chunker"
	"tai-backend/pkg/embedding"
	"tai-backend/pkg/events"
	"tai-backend/pkg/guardrail"
	"tai-backend/pkg/llm/factory"

	pktNats "tai-backend/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController   controller.IAuthController
	UserController   controller.IUserController
	CourseController controller.ICourseController
	ChatController   controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
			cfg.Ai.EmbeddingDimension,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewOpenAIProvider(
			cfg.Ai.OpenAIApiKey,
			cfg.Ai.OpenAIBaseURL,
			cfg.Ai.EmbeddingModel,
			cfg.Ai.EmbeddingDimension,
		)
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.EmbeddingModel)
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OpenAIApiKey,
		cfg.Ai.OpenAIBaseURL,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	splitter, err := chunker.New(cfg.Rag.ChunkTargetTokens, cfg.Rag.ChunkOverlapTokens)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize chunker: %v", err)
	}

	engine := guardrail.NewEngine(llmProvider)
	synthesizer := assistant.NewSynthesizer(llmProvider)

	// In-memory policy cache, invalidated on guardrail updates.
	policyCache := memory.NewPolicyCache()

	// 4. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Durable audit trail: every domain event lands in the structured log.
	if natsSub != nil {
		err := natsSub.Subscribe("tai.events.>", "tai-audit-log", func(ctx context.Context, event events.Event) error {
			sysLogger.Info("events", event.EventType(), event.Payload())
			return nil
		})
		if err != nil {
			log.Printf("[WARN] Failed to subscribe to event stream: %v", err)
		}
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb = nil
	}
	limiter := quota.NewLimiter(rdb, cfg.Quota.DailyChatLimit)

	publisherService := service.NewPublisherService(cfg.App.IndexTopicName, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.IndexTopicName,
		uowFactory,
		splitter,
		embeddingProvider,
		natsPub,
	)

	// 5. Services
	authService := service.NewAuthService(uowFactory, emailService)
	userService := service.NewUserService(uowFactory, natsPub)
	courseService := service.NewCourseService(uowFactory, policyCache, natsPub)
	uploadService := service.NewUploadService(uowFactory, publisherService, cfg.App.UploadDir)
	chatService := service.NewChatService(
		uowFactory,
		courseService,
		embeddingProvider,
		engine,
		synthesizer,
		limiter,
		natsPub,
		cfg.Rag.RetrievalTopK,
	)

	sysLogger.Info("bootstrap", "container initialized", map[string]interface{}{
		"embedding_provider": cfg.Ai.EmbeddingProvider,
		"llm_provider":       cfg.Ai.LLMProvider,
	})

	// 6. Controllers
	return &Container{
		AuthController:   controller.NewAuthController(authService),
		UserController:   controller.NewUserController(userService),
		CourseController: controller.NewCourseController(courseService, uploadService),
		ChatController:   controller.NewChatController(chatService),

		ConsumerService: consumerService,

		Logger: sysLogger,
	}
}
