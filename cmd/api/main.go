package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/instasocial/social-api/internal/config"
	"github.com/instasocial/social-api/internal/handlers"
	"github.com/instasocial/social-api/internal/middleware"
	"github.com/instasocial/social-api/internal/repository"
	"github.com/instasocial/social-api/internal/services"
	"github.com/instasocial/social-api/pkg/cache"
	"github.com/instasocial/social-api/pkg/logger"
	"github.com/instasocial/social-api/pkg/queue"
	gobreaker "github.com/sony/gobreaker/v2"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.NewLogger(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting InstaSocial API server...")

	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	ctx := context.Background()
	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	if err := db.Ping(pingCtx); err != nil {
		logger.WithError(err).Fatal("Database is not reachable")
	}
	cancelPing()

	if err := db.AutoMigrate(); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	var followingCache cache.Cache = cache.NopCache{}
	if cfg.Redis.Enabled {
		redisClient := cache.NewRedisClientWith(redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Addr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}), cache.BreakerSettings{
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.WithFields(map[string]interface{}{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				}).Warn("Cache breaker changed state")
			},
		})
		defer redisClient.Close()

		// reads fall back to the store while Redis is away
		if err := redisClient.Ping(ctx); err != nil {
			logger.WithError(err).Warn("Redis is not reachable, following sets will be read from the database")
		}
		followingCache = redisClient
	}

	var producer queue.Publisher = queue.NopProducer{}
	if cfg.Kafka.Enabled {
		kafkaProducer := queue.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaProducer.Close()
		producer = kafkaProducer
	}

	userRepo := repository.NewUserRepository(db.DB)
	followRepo := repository.NewFollowRepository(db.DB)
	postRepo := repository.NewPostRepository(db.DB)
	reactionRepo := repository.NewReactionRepository(db.DB)
	savedRepo := repository.NewSavedPostRepository(db.DB)
	commentRepo := repository.NewCommentRepository(db.DB)
	storyRepo := repository.NewStoryRepository(db.DB)
	messageRepo := repository.NewMessageRepository(db.DB)
	notificationRepo := repository.NewNotificationRepository(db.DB)
	reelRepo := repository.NewReelRepository(db.DB)

	following := services.NewFollowingSet(followRepo, followingCache, cfg.Redis.FollowingTTL, logger)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, logger)
	authService := services.NewAuthService(userRepo, producer, logger)
	userService := services.NewUserService(userRepo, followRepo, following, notificationService, producer, logger)
	postService := services.NewPostService(postRepo, reactionRepo, savedRepo, userRepo, following, notificationService, producer, &cfg.Feed, logger)
	commentService := services.NewCommentService(commentRepo, postRepo, userRepo, notificationService, producer, logger)
	storyService := services.NewStoryService(storyRepo, userRepo, following, logger)
	messageService := services.NewMessageService(messageRepo, userRepo, producer, logger)
	reelService := services.NewReelService(reelRepo, userRepo, producer, logger)
	uploadService := services.NewUploadService(logger)

	jwtConfig := &middleware.JWTConfig{Secret: cfg.JWT.Secret, ExpireTime: cfg.JWT.ExpireTime}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handlers.NewRouter(&handlers.Handlers{
		Auth:         handlers.NewAuthHandler(authService, jwtConfig, logger),
		User:         handlers.NewUserHandler(userService, logger),
		Post:         handlers.NewPostHandler(postService, commentService, logger),
		Story:        handlers.NewStoryHandler(storyService, logger),
		Message:      handlers.NewMessageHandler(messageService, logger),
		Notification: handlers.NewNotificationHandler(notificationService, logger),
		Reel:         handlers.NewReelHandler(reelService, logger),
		Upload:       handlers.NewUploadHandler(uploadService, logger),
	}, handlers.RouterConfig{
		JWT:         jwtConfig,
		Users:       userRepo,
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

func init() {
	if err := os.MkdirAll("configs", 0755); err != nil {
		log.Printf("Failed to create directory configs: %v", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := createDefaultConfig(configPath); err != nil {
			log.Printf("Failed to create default config: %v", err)
		}
	}
}

func createDefaultConfig(path string) error {
	defaultConfig := `server:
  port: ":8001"
  mode: "debug"
  read_timeout: 30s
  write_timeout: 30s
  cors_origins:
    - "*"

database:
  host: "localhost"
  port: 5432
  user: "social"
  password: "social"
  dbname: "instasocial"
  sslmode: "disable"
  max_open_conns: 50
  max_idle_conns: 10
  log_level: "warn"

redis:
  enabled: false
  host: "localhost"
  port: 6379
  password: ""
  db: 0
  pool_size: 50
  min_idle_conns: 5
  following_ttl: 10m

kafka:
  enabled: false
  brokers:
    - "localhost:9092"
  topic: "social-events"
  group_id: "counter-reconciler"

jwt:
  secret: "your-secret-key-change-this-in-production"
  expire_time: 168h

feed:
  default_limit: 10
  max_limit: 100
  explore_limit: 30

log:
  level: "info"
  format: "json"`

	return os.WriteFile(path, []byte(defaultConfig), 0644)
}
