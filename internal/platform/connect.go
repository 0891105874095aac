package platform

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Mhdiwe/Viral/internal/config"
	"github.com/Mhdiwe/Viral/models"
	"github.com/go-redis/redis/v8"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupLogging installs a text slog handler at the configured level.
func SetupLogging(cfg *config.Config) {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})
	slog.SetDefault(slog.New(handler))
}

// NewDBConnection opens Postgres and migrates the video tables.
func NewDBConnection(cfg *config.Config) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.SlogLevel() <= slog.LevelDebug {
		level = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying SQL DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database connection test failed: %w", err)
	}

	if err := db.AutoMigrate(&models.Video{}, &models.VideoAsset{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	slog.Info("database connected")
	return db, nil
}

// NewRedisClient connects to Redis and checks the connection.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisURL, err)
	}

	slog.Info("redis client initialized", "addr", cfg.RedisURL)
	return rdb, nil
}
