package main

import (
	"context"
	"log"

	api "outreach-backend/cmd/api"
	activitydomain "outreach-backend/internal/activity/domain"
	activityRepo "outreach-backend/internal/activity/repository"
	leadDelivery "outreach-backend/internal/lead/delivery"
	leaddomain "outreach-backend/internal/lead/domain"
	leadRepo "outreach-backend/internal/lead/repository"
	leadUsecase "outreach-backend/internal/lead/usecase"
	"outreach-backend/internal/notification"
	"outreach-backend/internal/notify"
	notifyDelivery "outreach-backend/internal/notify/delivery"
	notifydomain "outreach-backend/internal/notify/domain"
	notifyRepo "outreach-backend/internal/notify/repository"
	outreachDelivery "outreach-backend/internal/outreach/delivery"
	outreachdomain "outreach-backend/internal/outreach/domain"
	outreachRepo "outreach-backend/internal/outreach/repository"
	"outreach-backend/internal/outreach/scheduler"
	outreachUsecase "outreach-backend/internal/outreach/usecase"
	"outreach-backend/internal/plan/cache"
	planDelivery "outreach-backend/internal/plan/delivery"
	planUsecase "outreach-backend/internal/plan/usecase"
	quotaDelivery "outreach-backend/internal/quota/delivery"
	quotadomain "outreach-backend/internal/quota/domain"
	quotaRepo "outreach-backend/internal/quota/repository"
	"outreach-backend/internal/queue"
	"outreach-backend/pkg/ai"
	"outreach-backend/pkg/config"
	"outreach-backend/pkg/database"
	"outreach-backend/pkg/fcm"
	"outreach-backend/pkg/provider"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&leaddomain.Lead{},
		&outreachdomain.OutreachTask{},
		&outreachdomain.VoiceCall{},
		&outreachdomain.OutreachBlock{},
		&quotadomain.UsageCounter{},
		&quotadomain.RateLimitConfig{},
		&activitydomain.Activity{},
		&notifydomain.DeviceToken{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	leadRepository := leadRepo.NewGormLeadRepository(db)
	taskRepository := outreachRepo.NewGormTaskRepository(db)
	voiceCallRepository := outreachRepo.NewGormVoiceCallRepository(db)
	blockRepository := outreachRepo.NewGormBlockRepository(db)
	ledger := quotaRepo.NewGormLedger(db)
	configRepository := quotaRepo.NewGormConfigRepository(db)
	activityRepository := activityRepo.NewGormActivityRepository(db)
	tokenRepository := notifyRepo.NewGormDeviceTokenRepository(db)

	// AI assistant (content generation and plan revision)
	assistant, err := ai.NewOutreachAssistant(ai.Config{
		Provider:     ai.ProviderType(cfg.AIProvider),
		GeminiAPIKey: cfg.GeminiAPIKey,
	})
	if err != nil {
		log.Fatal("Failed to initialize AI assistant:", err)
	}

	// Delivery providers
	providers := provider.NewRegistry()
	providers.Register(outreachdomain.ChannelVoice, provider.NewVoiceProvider(voiceCallRepository))
	providers.Register(outreachdomain.ChannelEmail,
		provider.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom))
	providers.Register(outreachdomain.ChannelWhatsApp,
		provider.NewWhatsAppProvider(cfg.WhatsAppPhoneID, cfg.WhatsAppToken))

	// Push notifications for the approval queue
	var fcmClient *fcm.Client
	if cfg.FirebaseCredentials != "" {
		fcmClient, err = fcm.NewClient(cfg.FirebaseCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize FCM client (push notifications disabled): %v", err)
		}
	}
	notifier := notify.NewPushNotifier(tokenRepository, fcmClient)

	// Initialize use cases (dependency injection)
	slotFinder := outreachUsecase.NewSlotFinder(taskRepository)
	outreachUC := outreachUsecase.NewOutreachUsecase(
		taskRepository, leadRepository, blockRepository,
		ledger, configRepository, activityRepository,
		slotFinder, assistant, providers, notifier,
	)
	leadUC := leadUsecase.NewLeadUsecase(leadRepository, taskRepository, blockRepository, configRepository)

	// Plan cache: Redis when configured, in-process otherwise
	var planStore cache.Store
	if cfg.RedisAddr != "" {
		planStore = cache.NewRedisStore(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
		log.Printf("[PlanCache] Using Redis at %s", cfg.RedisAddr)
	} else {
		memStore := cache.NewMemoryStore()
		memStore.StartSweeper()
		planStore = memStore
	}
	planUC := planUsecase.NewPlanUsecase(planStore, leadUC, outreachUC, assistant)

	// Dispatch queue: RabbitMQ when configured, in-process otherwise
	var q queue.Queue
	if cfg.AmqpURL != "" {
		amqpQueue, err := queue.NewAmqpQueue(cfg.AmqpURL)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ:", err)
		}
		defer amqpQueue.Close()
		q = amqpQueue
		log.Println("[Queue] Using RabbitMQ")
	} else {
		q = queue.NewInMemoryQueue()
	}

	// Dispatch worker and due-task scheduler
	dispatcher := scheduler.NewDispatcher(outreachUC, q)
	if err := dispatcher.Start(); err != nil {
		log.Fatal("Failed to start dispatcher:", err)
	}
	outreachScheduler := scheduler.NewOutreachScheduler(taskRepository, q)
	outreachScheduler.Start()
	defer outreachScheduler.Stop()

	// Delivery-outcome subscriber (Pub/Sub)
	if cfg.GoogleProjectID != "" {
		notifService, err := notification.NewService(cfg.GoogleProjectID, cfg.OutcomeTopic, cfg.GoogleCredentials, outreachUC)
		if err != nil {
			log.Printf("[ERROR] Failed to initialize outcome subscriber: %v", err)
		} else {
			go notifService.Start(context.Background())
		}
	} else {
		log.Println("[WARN] GoogleProjectID not configured, outcome subscriber disabled")
	}

	// HTTP surface
	r := gin.Default()
	api.SetupRoutes(r, cfg, api.Handlers{
		Lead:     leadDelivery.NewLeadHandler(leadUC),
		Outreach: outreachDelivery.NewOutreachHandler(outreachUC),
		Plan:     planDelivery.NewPlanHandler(planUC),
		Settings: quotaDelivery.NewSettingsHandler(configRepository),
		Notify:   notifyDelivery.NewNotifyHandler(tokenRepository),
		Activity: activityRepository,
	})

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
