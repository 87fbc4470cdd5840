// Package config loads this core's server-level configuration: listen
// address, graceful-shutdown timeout, HTTP client timeouts, and body-size
// limits. Upstream AWS credentials are never read from the environment —
// they arrive per-request via the headers in spec.md §6 — so this config
// is deliberately small next to the teacher's multi-provider Config.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds this gateway core's server-level configuration values.
type Config struct {
	// Addr is the server's listen address.
	Addr string
	// Env is "development" or "production"; development enables debug
	// logging, matching the teacher's logger/logger.go.
	Env string
	// GracefulTimeout bounds how long shutdown waits for in-flight
	// requests (including open SSE streams) to drain.
	GracefulTimeout time.Duration
	// DefaultUpstreamTimeout bounds a single upstream Bedrock/S3 call
	// when the request doesn't override it via header.
	DefaultUpstreamTimeout time.Duration
	// MaxBodyBytes caps inbound request body size for non-file-upload
	// operations; file uploads stream instead of buffering and are not
	// subject to this limit.
	MaxBodyBytes int64
}

// Load reads configuration from environment variables and an optional
// .env file, following the teacher's Load()/getEnv* shape.
func Load() *Config {
	_ = godotenv.Load()

	gracefulSec := getEnvInt("GATEWAY_GRACEFUL_TIMEOUT_SEC", 15)
	upstreamSec := getEnvInt("GATEWAY_UPSTREAM_TIMEOUT_SEC", 120)

	return &Config{
		Addr:                   getEnv("GATEWAY_ADDR", ":8080"),
		Env:                    getEnv("ENV", "development"),
		GracefulTimeout:        time.Duration(gracefulSec) * time.Second,
		DefaultUpstreamTimeout: time.Duration(upstreamSec) * time.Second,
		MaxBodyBytes:           int64(getEnvInt("GATEWAY_MAX_BODY_BYTES", 25*1024*1024)),
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
