package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	listingservice "autoboard/contexts/marketplace/listing-service"
	_ "autoboard/internal/platform/httpserver/docs"
	"autoboard/internal/platform/metrics"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

const maxBodyBytes = 1 << 20

type Options struct {
	Addr      string
	JWTSecret string
	// Metrics is optional; without it /metrics still serves the gatherer.
	Metrics  *metrics.Recorder
	Gatherer prometheus.Gatherer
	// Ready backs /readyz. Nil means always ready.
	Ready  func(ctx context.Context) error
	Logger *slog.Logger
}

type Server struct {
	mux      *http.ServeMux
	handler  http.Handler
	http     *http.Server
	logger   *slog.Logger
	addr     string
	listings listingservice.Module
	auth     bearerAuthenticator
	ready    func(ctx context.Context) error
}

func New(listings listingservice.Module, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	addr := opts.Addr
	if addr == "" {
		addr = ":8080"
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		listings: listings,
		auth:     bearerAuthenticator{secret: []byte(opts.JWTSecret)},
		ready:    opts.Ready,
	}
	s.registerRoutes(gatherer)

	var handler http.Handler = s.mux
	if opts.Metrics != nil {
		// Innermost so the matched route pattern is visible after ServeHTTP.
		handler = opts.Metrics.Middleware(handler)
	}
	handler = middleware.Recoverer(handler)
	handler = middleware.RequestID(handler)
	s.handler = handler
	return s
}

// Handler exposes the full middleware chain for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	s.http = &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) registerRoutes(gatherer prometheus.Gatherer) {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /readyz", s.handleReady)

	s.mux.HandleFunc("POST /v1/listings", s.handleSubmitListing)
	s.mux.HandleFunc("GET /v1/listings", s.handleListListings)
	s.mux.HandleFunc("GET /v1/listings/{listing_id}", s.handleGetListing)
	s.mux.HandleFunc("PATCH /v1/listings/{listing_id}", s.withPrincipal(s.handleUpdateListing))
	s.mux.HandleFunc("DELETE /v1/listings/{listing_id}", s.withPrincipal(s.handleDeleteListing))
	s.mux.HandleFunc("POST /v1/listings/{listing_id}/verification", s.handleResendVerification)
	s.mux.HandleFunc("POST /v1/listings/{listing_id}/verification/confirm", s.handleConfirmVerification)
	s.mux.HandleFunc("POST /v1/listings/{listing_id}/favorite", s.withPrincipal(s.handleAddFavorite))
	s.mux.HandleFunc("DELETE /v1/listings/{listing_id}/favorite", s.withPrincipal(s.handleRemoveFavorite))

	s.mux.HandleFunc("GET /v1/me/listings", s.withPrincipal(s.handleMyListings))
	s.mux.HandleFunc("GET /v1/me/quota", s.withPrincipal(s.handleMyQuota))
	s.mux.HandleFunc("GET /v1/notifications", s.withPrincipal(s.handleListNotifications))
	s.mux.HandleFunc("POST /v1/notifications/read-all", s.withPrincipal(s.handleMarkAllNotificationsRead))
	s.mux.HandleFunc("POST /v1/notifications/{notification_id}/read", s.withPrincipal(s.handleMarkNotificationRead))

	s.mux.HandleFunc("GET /v1/admin/moderation/queue", s.withPrincipal(s.handleModerationQueue))
	s.mux.HandleFunc("POST /v1/admin/listings/bulk-approve", s.withPrincipal(s.handleBulkApprove))
	s.mux.HandleFunc("POST /v1/admin/listings/bulk-reject", s.withPrincipal(s.handleBulkReject))
	s.mux.HandleFunc("POST /v1/admin/listings/{listing_id}/approve", s.withPrincipal(s.handleApproveListing))
	s.mux.HandleFunc("POST /v1/admin/listings/{listing_id}/reject", s.withPrincipal(s.handleRejectListing))
	s.mux.HandleFunc("GET /v1/admin/audit", s.withPrincipal(s.handleListAudit))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.logger.Warn("readiness check failed",
				"event", "http_readiness_failed",
				"module", "internal/platform/httpserver",
				"layer", "platform",
				"error", err.Error(),
			)
			writeError(w, http.StatusServiceUnavailable, "not_ready", "dependencies unavailable", nil)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
