package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	Addr       string
	JWTSecret  string
	RedisAddr  string
	SessionTTL time.Duration
	CORSOrigin string
	LogLevel   string
	Env        string // dev|prod
}

func Load() (*Config, error) {
	ttl, err := time.ParseDuration(getenv("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}
	cfg := &Config{
		Addr:       getenv("ADDR", ":8080"),
		JWTSecret:  mustEnv("JWT_SECRET"),
		RedisAddr:  getenv("REDIS_ADDR", "localhost:6379"),
		SessionTTL: ttl,
		CORSOrigin: getenv("CORS_ORIGIN", "http://localhost:3000"),
		LogLevel:   getenv("LOG_LEVEL", "info"),
		Env:        getenv("ENV", "dev"),
	}
	return cfg, nil
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("required env " + k + " is empty")
	}
	return v
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
