package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Mhdiwe/Viral/auth"
	"github.com/Mhdiwe/Viral/internal/config"
	"github.com/Mhdiwe/Viral/internal/platform"
	"github.com/Mhdiwe/Viral/videos"
	"github.com/Mhdiwe/Viral/webhooks"
	"github.com/Mhdiwe/Viral/worker"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type Server struct {
	Config   *config.Config
	DB       *gorm.DB
	Redis    *redis.Client
	Services *platform.Services
	Router   *gin.Engine
}

func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}

	db, err := platform.NewDBConnection(cfg)
	if err != nil {
		return nil, err
	}
	rdb, err := platform.NewRedisClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	services, err := platform.NewServices(ctx, cfg)
	if err != nil {
		rdb.Close()
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	server := &Server{
		Config:   cfg,
		DB:       db,
		Redis:    rdb,
		Services: services,
		Router:   router,
	}
	server.setupRoutes()
	return server, nil
}

func (s *Server) setupRoutes() {
	// Health check (no auth required)
	s.Router.GET("/health", func(c *gin.Context) {
		sqlDB, err := s.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "connected"})
	})

	webhookHandler := webhooks.NewHandler(s.DB, s.Config.Shotstack.WebhookToken)
	videoHandler := videos.NewHandler(
		s.DB,
		&worker.Queue{RDB: s.Redis},
		s.Services.Pipeline,
		s.Services.Voices,
		string(s.Config.RenderBackend),
	)

	// Webhook routes (public - no auth, but token verified in handler)
	webhookRoutes := s.Router.Group("/webhooks")
	{
		webhookRoutes.POST("/render", webhookHandler.HandleRenderCallback)
	}

	v1 := s.Router.Group("/v1")
	v1.Use(auth.Middleware(s.Config.JWTSecret))
	videoHandler.Register(v1)
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + s.Config.Port,
		Handler: s.Router,
		// Voiceover requests wait on synthesis and recognition.
		WriteTimeout: 10 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", s.Config.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	slog.Info("server shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) Close() {
	s.Services.Close()
	s.Redis.Close()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	platform.SetupLogging(cfg)
	if cfg.SlogLevel() > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := NewServer(ctx, cfg)
	if err != nil {
		slog.Error("failed to create server", "error", err)
		os.Exit(1)
	}
	defer server.Close()

	if err := server.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
