package main

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/roomgate-dev/roomgate/db"
	"github.com/roomgate-dev/roomgate/internal/auth"
	"github.com/roomgate-dev/roomgate/internal/config"
	"github.com/roomgate-dev/roomgate/internal/handlers"
	"github.com/roomgate-dev/roomgate/internal/livekit"
	"github.com/roomgate-dev/roomgate/internal/middleware"
	"github.com/roomgate-dev/roomgate/internal/router"
	"github.com/sirupsen/logrus"
)

func main() {
	// .env is optional; plain environment variables work the same.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		gin.SetMode(gin.ReleaseMode)
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	}
	logrus.SetOutput(os.Stdout)

	auth.SetJWTSecret(cfg.JWTSecret)

	if err := db.ConnectDatabase(cfg.DatabaseURL); err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	logrus.Info("Database connected")

	if err := db.MigrateDatabase(); err != nil {
		logrus.Fatalf("Failed to migrate database: %v", err)
	}
	logrus.Info("Database migrated")

	lk, err := livekit.NewRoomClient(cfg.LiveKitAPIKey, cfg.LiveKitAPISecret, cfg.LiveKitURL)
	if err != nil {
		logrus.Fatalf("Failed to configure LiveKit client: %v", err)
	}

	var extra []gin.HandlerFunc
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		extra = append(extra, middleware.RateLimit(redisClient, 100, time.Second))
		logrus.Info("Rate limiting enabled")
	}

	r := router.NewRouter(handlers.NewRoomHandler(lk), extra...)

	addr := cfg.Host + ":" + cfg.Port
	logrus.Infof("Server starting on %s", addr)
	if err := r.Run(addr); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}
