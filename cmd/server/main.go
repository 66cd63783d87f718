package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"talkwire/config"
	"talkwire/infrastructure/cache"
	"talkwire/infrastructure/db"
	"talkwire/infrastructure/events"
	"talkwire/infrastructure/ws"
	httpHandler "talkwire/internal/delivery/http"
	"talkwire/internal/delivery/websocket"
	"talkwire/internal/integrity"
	"talkwire/internal/notify"
	"talkwire/internal/repository"
	"talkwire/internal/usecase"
	"talkwire/pkg/jwt"
	"talkwire/pkg/logger"
	"talkwire/pkg/pool"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("godotenv: error loading .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.Development)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	ctx := context.Background()

	mongoDb, err := db.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		zlog.Fatalw("mongodb connect failed", "error", err)
	}
	defer mongoDb.Close(ctx)
	zlog.Info("connected to MongoDB")

	// Cache backend: redis when configured, in-memory for single-server runs.
	var store cache.Store
	if cfg.RedisAddr != "" {
		redisStore, err := cache.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			zlog.Fatalw("redis connect failed", "error", err)
		}
		defer redisStore.Close()
		store = redisStore
		zlog.Infow("using redis cache", "addr", cfg.RedisAddr)
	} else {
		memStore := cache.NewMemStore(time.Minute)
		defer memStore.Close()
		store = memStore
		zlog.Info("using in-memory cache (single server)")
	}

	// Repositories
	userRepo := repository.NewUserRepository(*mongoDb.DB)
	messageRepo := repository.NewMessageRepository(*mongoDb.DB)

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "your-secret-key-change-this-in-production"
		zlog.Warn("using default JWT secret, set JWT_SECRET in .env for production")
	}
	jwtManager := jwt.NewJWTManager(cfg.JWTSecret, cfg.AccessTokenTTL)

	// Use cases
	authUc := usecase.NewAuthUsecase(userRepo, jwtManager)
	userUc := usecase.NewUserUsecase(userRepo)
	messageUc := usecase.NewMessageUsecase(messageRepo, cfg.MaxMessageLength)

	factory := integrity.NewFactory(store, messageRepo, integrity.TTLConfig{
		Dialog:  cfg.DialogIntegrityTTL,
		Dialogs: cfg.DialogsIntegrityTTL,
		Unread:  cfg.UnreadDialogsTTL,
	})

	hub := ws.NewGroupHub(zlog)
	workers := pool.New(int64(cfg.StoreWorkers))

	producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	if producer != nil {
		defer producer.Close()
		zlog.Infow("kafka producer enabled", "topic", cfg.KafkaTopic)
	}

	notifier := notify.New(messageRepo, producer, cfg.NewMessagesPeriod, zlog)
	go notifier.Run(ctx)

	router := chi.NewRouter()
	router.Use(middleware.Logger)

	// Handlers
	websocketH := websocket.NewWebsocketHandler(hub, authUc, messageUc, factory, producer, workers, zlog)
	httpH := httpHandler.NewHttpHandler(userUc, zlog)
	authH := httpHandler.NewAuthHandler(authUc, zlog)
	authMiddleware := httpHandler.NewAuthMiddleware(authUc)

	httpHandler.MapHttpRoutes(router, httpH, websocketH, authH, authMiddleware)

	zlog.Infow("http server is running", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		zlog.Fatalw("server stopped", "error", err)
	}
}
