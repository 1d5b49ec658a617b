package main

import (
	"context"
	"time"

	"content-orchestrator/config"
	"content-orchestrator/internal/contentstudio"
	"content-orchestrator/internal/handler"
	"content-orchestrator/internal/mapper"
	"content-orchestrator/internal/redis"
	"content-orchestrator/internal/repository"
	"content-orchestrator/internal/server"
	"content-orchestrator/internal/services"
	"content-orchestrator/internal/storage"
	"content-orchestrator/internal/transport/httpdto"
	"content-orchestrator/pkg/database"
	"content-orchestrator/pkg/logger"

	"go.uber.org/zap"
)

const (
	serviceName    = "content-orchestrator"
	serviceVersion = "1.0.0"
)

func main() {
	cfg := config.LoadConfig()

	appLogger := logger.New(cfg.AppMode)
	logger.SetGlobalLogger(appLogger)
	defer appLogger.Sync()

	if cfg.ContentStudioAPIKey == "" {
		appLogger.Fatal("CONTENTSTUDIO_API_KEY is required")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		appLogger.Fatal("database connection failed", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db); err != nil {
			appLogger.Error("database close failed", zap.Error(err))
		}
	}()
	if err := repository.InitSchema(db); err != nil {
		appLogger.Fatal("schema migration failed", zap.Error(err))
	}

	postRepo := repository.NewPostRepository(db)
	webhookRepo := repository.NewWebhookEventRepository(db)
	mappingRepo := repository.NewAccountMappingRepository(db)
	mediaRepo := repository.NewMediaRepository(db)

	var (
		limiter *redis.RateLimiter
		locker  services.KeyLocker = services.NopLocker{}
		cache   services.DirectoryCache
	)
	if cfg.RedisEnabled() {
		redisClient := redis.NewClient(redis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()

		if err := redis.Ping(context.Background(), redisClient); err != nil {
			appLogger.Warn("redis unreachable, running without rate limits, cache or submission locks", zap.Error(err))
		} else {
			limiter = redis.NewRateLimiter(redisClient, redis.RateLimitConfig{
				Limit:  cfg.RateLimitPerMinute,
				Window: time.Minute,
			})
			cache = redis.NewCacheStore(redisClient, redis.DefaultCacheConfig())
			locker = redis.NewKeyLocker(redisClient, lockTTL(cfg))
			appLogger.Info("redis connected", zap.String("addr", cfg.RedisAddr))
		}
	}

	var objectStore services.ObjectStore
	if cfg.S3Enabled() {
		s3Client, err := storage.NewClient(context.Background(), storage.S3Config{
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Endpoint:   cfg.S3Endpoint,
			PublicBase: cfg.S3PublicBase,
			PresignTTL: cfg.S3PresignTTL,
		})
		if err != nil {
			appLogger.Warn("s3 client init failed, media uploads disabled", zap.Error(err))
		} else {
			objectStore = s3Client
		}
	}

	snapshot, err := mapper.ParseSnapshot(cfg.AccountMapJSON)
	if err != nil {
		appLogger.Error("ACCOUNT_MAP_JSON ignored", zap.Error(err))
		snapshot = mapper.Snapshot{}
	}
	channelMapper := mapper.New(snapshot, mappingRepo)

	csClient, err := contentstudio.NewClient(contentstudio.ClientConfig{
		BaseURL: cfg.ContentStudioBaseURL,
		APIKey:  cfg.ContentStudioAPIKey,
		Timeout: cfg.ContentStudioTimeout,
		RPS:     cfg.ContentStudioRPS,
	})
	if err != nil {
		appLogger.Fatal("contentstudio client init failed", zap.Error(err))
	}
	submitter := contentstudio.NewSubmitter(csClient, cfg.SubmitMaxAttempts, cfg.SubmitBaseDelay,
		contentstudio.WithLogger(appLogger))

	postService := services.NewPostService(postRepo, channelMapper, submitter, locker, cfg.DefaultTimezone, appLogger)
	webhookService := services.NewWebhookService(webhookRepo, postRepo, appLogger)
	accountService := services.NewAccountService(csClient, cache, appLogger)
	mappingService := services.NewMappingService(mappingRepo, channelMapper)
	mediaService := services.NewMediaService(mediaRepo, objectStore, appLogger)

	sweeper := services.NewWebhookSweeper(webhookService, cfg.WebhookReplayInterval, cfg.WebhookReplayWindow, appLogger)
	sweeper.Start()
	defer sweeper.Stop()

	if err := httpdto.RegisterValidators(); err != nil {
		appLogger.Fatal("validator registration failed", zap.Error(err))
	}

	srv := server.New(cfg, appLogger)
	srv.SetupRoutes(&server.Handlers{
		Health:  handler.NewHealthHandler(db, serviceName, serviceVersion),
		Post:    handler.NewPostHandler(postService),
		Webhook: handler.NewWebhookHandler(webhookService),
		Account: handler.NewAccountHandler(accountService),
		Mapping: handler.NewMappingHandler(mappingService),
		Media:   handler.NewMediaHandler(mediaService),
	}, limiter)

	if err := srv.Start(); err != nil {
		appLogger.Error("server stopped with error", zap.Error(err))
	}
}

// lockTTL covers one full submission including every retry and backoff delay.
func lockTTL(cfg *config.Config) time.Duration {
	attempts := cfg.SubmitMaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	ttl := cfg.ContentStudioTimeout * time.Duration(attempts)
	delay := cfg.SubmitBaseDelay
	for i := 1; i < attempts; i++ {
		ttl += delay
		delay *= 2
	}
	return ttl + 5*time.Second
}
