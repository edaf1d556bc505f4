package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	listingservice "autoboard/contexts/marketplace/listing-service"
	"autoboard/contexts/marketplace/listing-service/adapters/email"
	"autoboard/contexts/marketplace/listing-service/adapters/events"
	"autoboard/contexts/marketplace/listing-service/adapters/memory"
	postgresadapter "autoboard/contexts/marketplace/listing-service/adapters/postgres"
	"autoboard/contexts/marketplace/listing-service/adapters/search"
	"autoboard/contexts/marketplace/listing-service/adapters/security"
	"autoboard/contexts/marketplace/listing-service/domain/entities"
	"autoboard/contexts/marketplace/listing-service/ports"
	"autoboard/internal/platform/config"
	"autoboard/internal/platform/db"
	"autoboard/internal/platform/httpserver"
	"autoboard/internal/platform/messaging"
	"autoboard/internal/platform/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	kafka    *messaging.Kafka
	logger   *slog.Logger
}

// Maintenance owns the store and search handles used by one-shot commands.
type Maintenance struct {
	postgres *db.Postgres
	repo     *postgresadapter.Repository
	index    *search.MeiliIndex
	logger   *slog.Logger
}

func BuildAPI(ctx context.Context) (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := NewLogger(cfg, "api")

	pg, err := connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := postgresadapter.Migrate(pg.DB); err != nil {
			_ = pg.Close()
			return nil, err
		}
	}
	repo := postgresadapter.NewRepository(pg.DB, logger)

	var searchIndex ports.SearchIndex = memory.NewCatalogIndex()
	if cfg.MeilisearchHost != "" {
		index := search.NewMeiliIndex(cfg.MeilisearchHost, cfg.MeilisearchAPIKey, cfg.MeilisearchIndex, logger)
		if err := index.Configure(); err != nil {
			logger.Warn("meilisearch settings not applied",
				"event", "bootstrap_search_configure_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
		searchIndex = index
	}

	var (
		kafka *messaging.Kafka
		push  ports.PushPublisher
	)
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err = messaging.NewKafka(cfg.KafkaBrokers, logger)
		if err != nil {
			_ = pg.Close()
			return nil, err
		}
		push = events.PushPublisher{
			Publisher:     kafka,
			Topic:         cfg.PushTopic,
			SourceService: cfg.ServiceName,
		}
	}

	recorder := metrics.NewRecorder()
	if err := recorder.Register(prometheus.DefaultRegisterer); err != nil {
		_ = pg.Close()
		return nil, err
	}

	module := listingservice.NewModule(listingservice.Dependencies{
		Listings:               repo,
		Favorites:              repo,
		Notifications:          repo,
		Audit:                  repo,
		Profiles:               repo,
		Email:                  email.LogSender{Logger: logger},
		Moderator:              memory.NewKeywordModerator(cfg.ContentBlocklist),
		Cache:                  memory.NewPageCache(),
		Search:                 searchIndex,
		Push:                   push,
		Hasher:                 security.NewBcryptHasher(cfg.VerificationHashCost),
		Clock:                  postgresadapter.SystemClock{},
		IDGenerator:            postgresadapter.UUIDGenerator{},
		Metrics:                recorder,
		BaseQuota:              cfg.QuotaBaseLimit,
		VerificationTTL:        cfg.VerificationCodeTTL,
		MaxVerificationAttempt: cfg.VerificationMaxAttempts,
		BreakGlassEmail:        cfg.BreakGlassEmail,
		PublicBaseURL:          cfg.PublicBaseURL,
		FanOutConcurrency:      cfg.NotificationConcurrency,
		Logger:                 logger,
	})

	if strings.TrimSpace(cfg.JWTSecret) == "" {
		logger.Warn("JWT_SECRET is empty; every bearer token will be rejected",
			"event", "bootstrap_jwt_secret_missing",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	server := httpserver.New(module, httpserver.Options{
		Addr:      normalizeAddr(cfg.HTTPPort),
		JWTSecret: cfg.JWTSecret,
		Metrics:   recorder,
		Gatherer:  prometheus.DefaultGatherer,
		Ready:     pg.Ping,
		Logger:    logger,
	})
	return &APIApp{
		server:   server,
		postgres: pg,
		kafka:    kafka,
		logger:   logger,
	}, nil
}

func BuildMaintenance(ctx context.Context) (*Maintenance, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := NewLogger(cfg, "maintenance")
	pg, err := connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	m := &Maintenance{
		postgres: pg,
		repo:     postgresadapter.NewRepository(pg.DB, logger),
		logger:   logger,
	}
	if cfg.MeilisearchHost != "" {
		m.index = search.NewMeiliIndex(cfg.MeilisearchHost, cfg.MeilisearchAPIKey, cfg.MeilisearchIndex, logger)
	}
	return m, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	a.logger.Info("api app stopping",
		"event", "bootstrap_api_stopping",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (a *APIApp) Close() error {
	var errs []error
	if a.kafka != nil {
		errs = append(errs, a.kafka.Close())
	}
	if a.postgres != nil {
		errs = append(errs, a.postgres.Close())
	}
	return errors.Join(errs...)
}

func (m *Maintenance) Migrate() error {
	if err := postgresadapter.Migrate(m.postgres.DB); err != nil {
		return err
	}
	m.logger.Info("schema migrated",
		"event", "bootstrap_schema_migrated",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	return nil
}

// Reindex pushes every active listing to the search index and returns the
// number of listings synced.
func (m *Maintenance) Reindex(ctx context.Context) (int, error) {
	if m.index == nil {
		return 0, errors.New("MEILISEARCH_HOST is required for reindex")
	}
	if err := m.index.Configure(); err != nil {
		return 0, err
	}
	listings, err := m.repo.ListListings(ctx, ports.ListingFilter{
		Statuses: []entities.ListingStatus{entities.ListingStatusActive},
	})
	if err != nil {
		return 0, err
	}
	synced := 0
	for _, listing := range listings {
		if err := m.index.SyncListing(ctx, listing); err != nil {
			m.logger.Warn("listing reindex failed",
				"event", "bootstrap_reindex_item_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"listing_id", listing.ListingID,
				"error", err.Error(),
			)
			continue
		}
		synced++
	}
	m.logger.Info("search index rebuilt",
		"event", "bootstrap_reindex_completed",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"synced", synced,
		"total", len(listings),
	)
	return synced, nil
}

func (m *Maintenance) Close() error {
	if m.postgres != nil {
		return m.postgres.Close()
	}
	return nil
}

// NewLogger builds the process JSON logger at the configured level.
func NewLogger(cfg config.Config, process string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})
	logger := slog.New(handler).With("service", cfg.ServiceName, "process", process)
	slog.SetDefault(logger)
	return logger
}

func connect(ctx context.Context, cfg config.Config) (*db.Postgres, error) {
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}
	return db.Connect(ctx, cfg.PostgresDSN)
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
