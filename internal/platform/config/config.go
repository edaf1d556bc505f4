package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string
	LogLevel    string
	AutoMigrate bool

	JWTSecret       string
	BreakGlassEmail string
	PublicBaseURL   string

	VerificationCodeTTL     time.Duration
	VerificationMaxAttempts int
	VerificationHashCost    int
	QuotaBaseLimit          int
	NotificationConcurrency int
	ContentBlocklist        []string

	MeilisearchHost   string
	MeilisearchAPIKey string
	MeilisearchIndex  string

	KafkaBrokers []string
	PushTopic    string
}

// Load reads an optional .env file, then the process environment.
// Environment variables always win over .env values.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	ttl := v.GetDuration("VERIFICATION_CODE_TTL")
	if ttl <= 0 {
		return Config{}, fmt.Errorf("VERIFICATION_CODE_TTL must be positive, got %q", v.GetString("VERIFICATION_CODE_TTL"))
	}
	if v.GetInt("VERIFICATION_MAX_ATTEMPTS") < 0 {
		return Config{}, errors.New("VERIFICATION_MAX_ATTEMPTS must not be negative")
	}
	if v.GetInt("QUOTA_BASE_LIMIT") <= 0 {
		return Config{}, errors.New("QUOTA_BASE_LIMIT must be positive")
	}

	return Config{
		ServiceName: v.GetString("SERVICE_NAME"),
		HTTPPort:    v.GetString("HTTP_PORT"),
		PostgresDSN: strings.TrimSpace(v.GetString("POSTGRES_DSN")),
		LogLevel:    strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL"))),
		AutoMigrate: v.GetBool("AUTO_MIGRATE"),

		JWTSecret:       v.GetString("JWT_SECRET"),
		BreakGlassEmail: strings.TrimSpace(v.GetString("BREAK_GLASS_EMAIL")),
		PublicBaseURL:   strings.TrimSpace(v.GetString("PUBLIC_BASE_URL")),

		VerificationCodeTTL:     ttl,
		VerificationMaxAttempts: v.GetInt("VERIFICATION_MAX_ATTEMPTS"),
		VerificationHashCost:    v.GetInt("VERIFICATION_HASH_COST"),
		QuotaBaseLimit:          v.GetInt("QUOTA_BASE_LIMIT"),
		NotificationConcurrency: v.GetInt("NOTIFICATION_CONCURRENCY"),
		ContentBlocklist:        splitList(v.GetString("CONTENT_BLOCKLIST")),

		MeilisearchHost:   strings.TrimSpace(v.GetString("MEILISEARCH_HOST")),
		MeilisearchAPIKey: v.GetString("MEILISEARCH_API_KEY"),
		MeilisearchIndex:  v.GetString("MEILISEARCH_INDEX"),

		KafkaBrokers: splitList(v.GetString("KAFKA_BROKERS")),
		PushTopic:    v.GetString("PUSH_TOPIC"),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "autoboard")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("AUTO_MIGRATE", false)
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("VERIFICATION_CODE_TTL", "15m")
	v.SetDefault("VERIFICATION_MAX_ATTEMPTS", 0)
	v.SetDefault("VERIFICATION_HASH_COST", 10)
	v.SetDefault("QUOTA_BASE_LIMIT", 3)
	v.SetDefault("NOTIFICATION_CONCURRENCY", 8)
	v.SetDefault("MEILISEARCH_INDEX", "listings")
	v.SetDefault("PUSH_TOPIC", "listing.notifications")
}

func splitList(raw string) []string {
	var out []string
	for _, value := range strings.Split(raw, ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			out = append(out, value)
		}
	}
	return out
}
