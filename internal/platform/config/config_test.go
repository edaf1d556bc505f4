package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected defaults to load, got %v", err)
	}
	if cfg.ServiceName != "autoboard" || cfg.HTTPPort != "8080" {
		t.Fatalf("unexpected service defaults %+v", cfg)
	}
	if cfg.VerificationCodeTTL != 15*time.Minute {
		t.Fatalf("expected 15m verification ttl, got %s", cfg.VerificationCodeTTL)
	}
	if cfg.QuotaBaseLimit != 3 || cfg.VerificationMaxAttempts != 0 {
		t.Fatalf("unexpected quota/verification defaults %+v", cfg)
	}
	if len(cfg.KafkaBrokers) != 0 {
		t.Fatalf("expected push channel to be disabled by default, got %v", cfg.KafkaBrokers)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("VERIFICATION_CODE_TTL", "30m")
	t.Setenv("VERIFICATION_MAX_ATTEMPTS", "5")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("CONTENT_BLOCKLIST", "scam, replica")
	t.Setenv("BREAK_GLASS_EMAIL", " ops@autoboard.test ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected env config to load, got %v", err)
	}
	if cfg.HTTPPort != "9090" || cfg.VerificationCodeTTL != 30*time.Minute || cfg.VerificationMaxAttempts != 5 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "kafka-2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if len(cfg.ContentBlocklist) != 2 || cfg.BreakGlassEmail != "ops@autoboard.test" {
		t.Fatalf("unexpected moderation config %+v", cfg)
	}
}

func TestLoadRejectsInvalidTTL(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("VERIFICATION_CODE_TTL", "0s")

	if _, err := Load(); err == nil {
		t.Fatalf("expected zero ttl to be rejected")
	}
}
