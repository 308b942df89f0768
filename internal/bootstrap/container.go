package bootstrap

import (
	"log"

	"onboarding-ai-be/internal/config"
	"onboarding-ai-be/internal/controller"
	"onboarding-ai-be/internal/pkg/logger"
	"onboarding-ai-be/internal/pkg/mailer"
	"onboarding-ai-be/internal/repository/contract"
	"onboarding-ai-be/internal/repository/implementation"
	"onboarding-ai-be/internal/repository/memory"
	"onboarding-ai-be/internal/service"
	"onboarding-ai-be/pkg/agi"
	"onboarding-ai-be/pkg/history"
	"onboarding-ai-be/pkg/intent"
	"onboarding-ai-be/pkg/intercom"

	pktNats "onboarding-ai-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

const escalationTopicName = "ESCALATION_CREATED"

type Container struct {
	// Controllers
	ChatbotController controller.IChatbotController
	AdminController   controller.IAdminController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Held for shutdown
	NatsPublisher *pktNats.Publisher
	Logger        logger.ILogger
}

// NewContainer wires the whole application. db may be nil when no database
// is configured; the escalation audit trail is then skipped.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
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

	// 2.5 Infrastructure
	// NATS
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

	// 3. Domain clients
	agiClient, err := agi.NewClient(agi.Config{
		APIKey:        cfg.Agi.APIKey,
		BaseURL:       cfg.Agi.BaseURL,
		AgentName:     cfg.Agi.AgentName,
		MaxDocChars:   cfg.Agi.MaxDocChars,
		PollInterval:  cfg.Agi.PollInterval,
		StatusTimeout: cfg.Agi.StatusTimeout,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize agent client: %v", err)
	}

	intercomClient, err := intercom.NewClient(intercom.Config{
		AccessToken: cfg.Intercom.AccessToken,
		APIBase:     cfg.Intercom.APIBase,
		FromType:    cfg.Intercom.FromType,
		FromId:      cfg.Intercom.FromId,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize ticketing client: %v", err)
	}

	// 4. In-memory repositories
	sessionRepo := memory.NewAgentSessionRepository()
	historyRepo := memory.NewQueryHistoryRepository(history.Config{
		Window:              cfg.Chatbot.RepeatWindow,
		MinQueryLen:         cfg.Chatbot.MinQueryLen,
		SimilarityThreshold: cfg.Chatbot.SimilarityThreshold,
	})
	classifier := intent.NewClassifier(historyRepo, cfg.Chatbot.RepeatCountThreshold)

	// 5. Persistence (optional)
	var escalationRepo contract.EscalationRepository
	if db != nil {
		escalationRepo = implementation.NewEscalationRepository(db)
	} else {
		log.Printf("[WARN] No database configured, escalation audit trail disabled")
	}

	// 6. Services
	publisherService := service.NewPublisherService(escalationTopicName, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		escalationTopicName,
		emailService,
		cfg.App.DocsTeamEmail,
	)

	var eventPublisher service.EventPublisher
	if natsPub != nil {
		eventPublisher = natsPub
	}

	chatbotService := service.NewChatbotService(
		agiClient,
		intercomClient,
		sessionRepo,
		historyRepo,
		classifier,
		escalationRepo,
		publisherService,
		eventPublisher,
		sysLogger,
	)

	adminService := service.NewAdminService(sysLogger, escalationRepo)

	// Start Service (Worker)
	if natsSub != nil {
		auditService := service.NewEventAuditService(natsSub, sysLogger)
		go auditService.Start()
	}

	// 7. Controllers
	return &Container{
		ChatbotController: controller.NewChatbotController(chatbotService),
		AdminController:   controller.NewAdminController(adminService),

		ConsumerService: consumerService,

		NatsPublisher: natsPub,
		Logger:        sysLogger,
	}
}
