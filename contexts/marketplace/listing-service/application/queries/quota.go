package queries

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	application "autoboard/contexts/marketplace/listing-service/application"
	"autoboard/contexts/marketplace/listing-service/domain/entities"
	domainerrors "autoboard/contexts/marketplace/listing-service/domain/errors"
	"autoboard/contexts/marketplace/listing-service/domain/services"
	"autoboard/contexts/marketplace/listing-service/ports"
)

// QuotaEvaluator counts an owner's active listings against the role limit.
// It fails open: infrastructure errors never block a seller.
type QuotaEvaluator struct {
	Listings ports.ListingRepository
	Profiles ports.ProfileDirectory
	Limits   services.QuotaLimits
	Logger   *slog.Logger
}

func (q QuotaEvaluator) Evaluate(ctx context.Context, ownerID string) entities.QuotaSnapshot {
	logger := application.ResolveLogger(q.Logger)
	ownerID = strings.TrimSpace(ownerID)

	role := entities.RoleUser
	isFounder := false
	profile, err := q.Profiles.GetProfile(ctx, ownerID)
	switch {
	case err == nil:
		if profile.Role != "" {
			role = profile.Role
		}
		isFounder = profile.IsFounder
	case errors.Is(err, domainerrors.ErrProfileNotFound):
	default:
		q.logFailOpen(logger, ownerID, err)
		return services.FailOpenQuota(role)
	}

	count, err := q.Listings.CountListings(ctx, ownerID, entities.ListingStatusActive)
	if err != nil {
		q.logFailOpen(logger, ownerID, err)
		return services.FailOpenQuota(role)
	}
	return services.EvaluateQuota(role, isFounder, count, q.Limits.LimitFor(role, isFounder))
}

func (q QuotaEvaluator) logFailOpen(logger *slog.Logger, ownerID string, err error) {
	logger.Warn("quota evaluation failed open",
		"event", "listing_quota_fail_open",
		"module", "marketplace/listing-service",
		"layer", "application",
		"owner_id", ownerID,
		"error", err.Error(),
	)
}
