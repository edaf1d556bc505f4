package commands

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"

	application "autoboard/contexts/marketplace/listing-service/application"
	"autoboard/contexts/marketplace/listing-service/application/fanout"
	"autoboard/contexts/marketplace/listing-service/domain/entities"
	"autoboard/contexts/marketplace/listing-service/domain/services"
	"autoboard/contexts/marketplace/listing-service/ports"
)

var tracer = otel.Tracer("autoboard/marketplace/listing-service")

// Invalidation refreshes rendered pages and the search index after a
// listing changes. Failures are logged and never returned.
type Invalidation struct {
	Cache  ports.CacheInvalidator
	Search ports.SearchIndex
	Logger *slog.Logger
}

func (i Invalidation) Refresh(ctx context.Context, listing entities.Listing) {
	i.invalidate(ctx, listing.ListingID)
	if i.Search == nil {
		return
	}
	if err := i.Search.SyncListing(ctx, listing); err != nil {
		i.logFailure("search index sync failed", "listing_search_sync_failed", listing.ListingID, err)
	}
}

func (i Invalidation) Purge(ctx context.Context, listingID string) {
	i.invalidate(ctx, listingID)
	if i.Search == nil {
		return
	}
	if err := i.Search.RemoveListing(ctx, listingID); err != nil {
		i.logFailure("search index removal failed", "listing_search_remove_failed", listingID, err)
	}
}

func (i Invalidation) invalidate(ctx context.Context, listingID string) {
	if i.Cache == nil {
		return
	}
	if err := i.Cache.InvalidatePaths(ctx, services.InvalidationPaths(listingID)); err != nil {
		i.logFailure("cache invalidation failed", "listing_cache_invalidation_failed", listingID, err)
	}
}

func (i Invalidation) logFailure(msg string, event string, listingID string, err error) {
	application.ResolveLogger(i.Logger).Warn(msg,
		"event", event,
		"module", "marketplace/listing-service",
		"layer", "application",
		"listing_id", listingID,
		"error", err.Error(),
	)
}

func logDispatch(logger *slog.Logger, listingID string, report fanout.DispatchReport) {
	logger.Info("listing notifications dispatched",
		"event", "listing_notifications_dispatched",
		"module", "marketplace/listing-service",
		"layer", "application",
		"listing_id", listingID,
		"rule", report.Rule,
		"attempted", report.Attempted,
		"delivered", report.Delivered,
		"failed", report.Failed,
	)
}
