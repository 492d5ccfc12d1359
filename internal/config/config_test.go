package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("INTERVIEWER_AUTH_SECRET", "secret")
	t.Setenv("LLM_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("unexpected addr: %s", cfg.ListenAddr)
	}
	if cfg.OpenAIModel != "gpt-3.5-turbo" {
		t.Fatalf("unexpected model: %s", cfg.OpenAIModel)
	}
	if cfg.TokenTTL != 30*time.Minute {
		t.Fatalf("unexpected token ttl: %s", cfg.TokenTTL)
	}
	if cfg.GatewayTimeout != 30*time.Second {
		t.Fatalf("unexpected gateway timeout: %s", cfg.GatewayTimeout)
	}
	if cfg.UseS3Recordings() {
		t.Fatal("S3 must be off without a bucket")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("INTERVIEWER_AUTH_SECRET", "secret")
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("INTERVIEWER_ADDR", ":9090")
	t.Setenv("INTERVIEWER_TOKEN_TTL", "2h")
	t.Setenv("LLM_MODEL", "gpt-4o-mini")
	t.Setenv("LLM_TIMEOUT", "45s")
	t.Setenv("S3_BUCKET", "recordings")
	t.Setenv("INTERVIEWER_RATE_BURST", "50")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":9090" {
		t.Fatalf("unexpected addr: %s", cfg.ListenAddr)
	}
	if cfg.TokenTTL != 2*time.Hour {
		t.Fatalf("unexpected ttl: %s", cfg.TokenTTL)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Fatalf("unexpected model: %s", cfg.OpenAIModel)
	}
	if cfg.GatewayTimeout != 45*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.GatewayTimeout)
	}
	if !cfg.UseS3Recordings() {
		t.Fatal("expected S3 recordings enabled")
	}
	if cfg.RateBurst != 50 {
		t.Fatalf("unexpected burst: %d", cfg.RateBurst)
	}
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("INTERVIEWER_AUTH_SECRET", "")
	t.Setenv("LLM_API_KEY", "sk-test")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without auth secret")
	}

	t.Setenv("INTERVIEWER_AUTH_SECRET", "secret")
	t.Setenv("LLM_API_KEY", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without gateway key")
	}
}
