// Package config builds the explicit configuration object the service is
// wired with. Business logic never reads the environment directly; everything
// ambient is resolved here once at startup.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings for the interviewer API.
type Config struct {
	// HTTP
	ListenAddr string

	// PostgreSQL DSN (pgx).
	DatabaseDSN string

	// Token signing secret (HS256) and bearer lifetime.
	AuthSecret string
	TokenTTL   time.Duration

	// Google OAuth client identifier trusted for external assertions.
	GoogleClientID string

	// Generative assistant upstream.
	OpenAIAPIKey   string
	OpenAIModel    string
	GatewayTimeout time.Duration

	// Optional S3-compatible recording storage. Empty bucket keeps
	// recordings inline in the interview row.
	S3Region    string
	S3Endpoint  string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string

	// Rate limiting (token bucket per client IP).
	RateBurst  int
	RatePerSec int
}

// Load reads an optional .env file and the process environment.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set env directly.
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:     getEnv("INTERVIEWER_ADDR", ":8080"),
		DatabaseDSN:    os.Getenv("INTERVIEWER_PG_DSN"),
		AuthSecret:     os.Getenv("INTERVIEWER_AUTH_SECRET"),
		TokenTTL:       getDuration("INTERVIEWER_TOKEN_TTL", 30*time.Minute),
		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),
		OpenAIAPIKey:   os.Getenv("LLM_API_KEY"),
		OpenAIModel:    getEnv("LLM_MODEL", "gpt-3.5-turbo"),
		GatewayTimeout: getDuration("LLM_TIMEOUT", 30*time.Second),
		S3Region:       getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:     os.Getenv("S3_ENDPOINT"),
		S3Bucket:       os.Getenv("S3_BUCKET"),
		S3AccessKey:    os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:    os.Getenv("S3_SECRET_KEY"),
		RateBurst:      getInt("INTERVIEWER_RATE_BURST", 20),
		RatePerSec:     getInt("INTERVIEWER_RATE_PER_SEC", 10),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.AuthSecret == "" {
		return errors.New("config: INTERVIEWER_AUTH_SECRET is required")
	}
	if c.OpenAIAPIKey == "" {
		return errors.New("config: LLM_API_KEY is required")
	}
	return nil
}

// UseS3Recordings reports whether recordings go to object storage.
func (c *Config) UseS3Recordings() bool {
	return c.S3Bucket != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
