package bootstrap

import (
	"context"
	"log"

	"support-chat-be/internal/cache"
	"support-chat-be/internal/config"
	"support-chat-be/internal/controller"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/pkg/storage"
	"support-chat-be/internal/repository/memory"
	"support-chat-be/internal/repository/unitofwork"
	"support-chat-be/internal/service"
	"support-chat-be/internal/websocket"

	pktNats "support-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// activityTopic is the in-process topic chat services record activity on.
const activityTopic = "chat.activity"

// cacheWorkerDurable names the durable bus consumer for cache invalidation.
// Every instance shares it so each event is handled once per deployment.
const cacheWorkerDurable = "chat-cache-worker"

type Container struct {
	ChatController controller.IChatController
	Gateway        *websocket.Gateway
	WebSocketHub   *websocket.Hub

	// Background services, exposed for main.go to run.
	ConsumerService service.IConsumerService
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

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis. A nil client keeps the app serving: the cache misses and the
	// fabric degrades to single-instance delivery.
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	} else {
		log.Printf("[WARN] REDIS_URL not set, running without cache and fabric")
	}

	chatCache := cache.NewChatCache(rdb, sysLogger)
	attachmentStorage := storage.NewLocalStorage(cfg.App.UploadDir, cfg.App.BaseURL)

	// Presence registry feeds is_online; hub entries expire on their own.
	presenceRepo := memory.NewPresenceRepository()
	var presenceChecker service.PresenceChecker
	if cfg.Chat.PresenceEnabled {
		presenceChecker = presenceRepo
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/chat.log")
	wsHub := websocket.NewHub(rdb, presenceRepo, cfg.Chat.PresenceEnabled, wsLogger)
	go wsHub.Run()

	// 3. Services
	publisherService := service.NewPublisherService(activityTopic, pubSub)
	activityService := service.NewActivityService(publisherService, sysLogger)
	consumerService := service.NewConsumerService(
		pubSub,
		activityTopic,
		uowFactory,
		natsPub,
		sysLogger,
	)

	roomService := service.NewChatRoomService(
		uowFactory,
		chatCache,
		presenceChecker,
		attachmentStorage,
		activityService,
		sysLogger,
		cfg.Chat.PageSize,
	)
	messageService := service.NewChatMessageService(
		uowFactory,
		chatCache,
		presenceChecker,
		attachmentStorage,
		wsHub,
		activityService,
		sysLogger,
		cfg.Chat.PageSize,
	)
	userService := service.NewUserService(uowFactory, presenceChecker)

	// 3.5 Bus worker: peers converge their caches after a write here.
	cacheWorker := service.NewCacheWorker(natsSub, uowFactory, chatCache, sysLogger)
	if err := cacheWorker.Start(cacheWorkerDurable); err != nil {
		log.Printf("[WARN] Failed to start cache worker: %v", err)
	}

	gateway := websocket.NewGateway(wsHub, uowFactory, messageService, wsLogger)

	// 4. Controllers
	return &Container{
		ChatController:  controller.NewChatController(roomService, messageService, userService),
		Gateway:         gateway,
		WebSocketHub:    wsHub,
		ConsumerService: consumerService,
	}
}
