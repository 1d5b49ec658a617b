package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"content-orchestrator/config"
	"content-orchestrator/internal/handler"
	"content-orchestrator/internal/middleware"
	"content-orchestrator/internal/redis"
	"content-orchestrator/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Health  *handler.HealthHandler
	Post    *handler.PostHandler
	Webhook *handler.WebhookHandler
	Account *handler.AccountHandler
	Mapping *handler.MappingHandler
	Media   *handler.MediaHandler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.AppPort),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

// Engine exposes the router, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// SetupRoutes registers middleware and routes. limiter may be nil when Redis is not configured.
func (s *Server) SetupRoutes(handlers *Handlers, limiter *redis.RateLimiter) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware(s.config.CORSOrigins))
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/", handlers.Health.Root)
	s.engine.GET("/health", handlers.Health.Health)

	posts := s.engine.Group("/posts")
	{
		posts.POST("/bulk", middleware.RateLimitMiddleware(limiter, "bulk", s.logger), handlers.Post.BulkSchedule)
		posts.GET("", handlers.Post.List)
		posts.GET("/:id", handlers.Post.GetByID)
	}

	s.engine.POST("/webhooks/contentstudio",
		middleware.RateLimitMiddleware(limiter, "webhook", s.logger),
		handlers.Webhook.ContentStudio,
	)

	s.engine.GET("/workspaces", handlers.Account.ListWorkspaces)
	s.engine.GET("/accounts", handlers.Account.ListAccounts)

	mappings := s.engine.Group("/mappings")
	{
		mappings.GET("", handlers.Mapping.List)
		mappings.POST("", handlers.Mapping.Upsert)
		mappings.POST("/bulk", handlers.Mapping.BulkUpsert)
		mappings.GET("/resolve", handlers.Mapping.Resolve)
		mappings.DELETE("/:id", handlers.Mapping.Delete)
	}

	media := s.engine.Group("/media")
	{
		media.POST("/presign", handlers.Media.Presign)
		media.POST("", handlers.Media.Create)
		media.GET("", handlers.Media.List)
		media.GET("/folders", handlers.Media.Folders)
		media.GET("/:id", handlers.Media.GetByID)
		media.DELETE("/:id", handlers.Media.Delete)
	}
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.AppPort)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
