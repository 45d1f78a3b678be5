package config

import (
	"fmt"
	"os"
)

// Config holds everything the process reads from the environment. The three
// LiveKit values and the session secret are required; the service refuses to
// start without them.
type Config struct {
	DatabaseURL string

	LiveKitAPIKey    string
	LiveKitAPISecret string
	LiveKitURL       string

	JWTSecret string

	Host  string
	Port  string
	Debug bool

	// Optional: rate limiting is enabled only when RedisAddr is set.
	RedisAddr     string
	RedisPassword string
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		LiveKitAPIKey:    os.Getenv("LIVEKIT_API_KEY"),
		LiveKitAPISecret: os.Getenv("LIVEKIT_API_SECRET"),
		LiveKitURL:       os.Getenv("LIVEKIT_URL"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		Host:             os.Getenv("HOST"),
		Port:             os.Getenv("PORT"),
		Debug:            os.Getenv("DEBUG") == "true",
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	if cfg.LiveKitAPIKey == "" || cfg.LiveKitAPISecret == "" || cfg.LiveKitURL == "" {
		return nil, fmt.Errorf("LiveKit configuration is incomplete: LIVEKIT_API_KEY, LIVEKIT_API_SECRET and LIVEKIT_URL must be set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	if cfg.Port == "" {
		cfg.Port = "8000"
	}

	return cfg, nil
}
