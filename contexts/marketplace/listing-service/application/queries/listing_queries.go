package queries

import (
	"context"
	"log/slog"
	"strings"

	application "autoboard/contexts/marketplace/listing-service/application"
	"autoboard/contexts/marketplace/listing-service/domain/entities"
	domainerrors "autoboard/contexts/marketplace/listing-service/domain/errors"
	"autoboard/contexts/marketplace/listing-service/domain/services"
	"autoboard/contexts/marketplace/listing-service/ports"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type ListPublicQuery struct {
	Brand string
	Model string
	Limit int
}

type QueryUseCase struct {
	Listings      ports.ListingRepository
	Notifications ports.NotificationRepository
	Audit         ports.AuditRepository
	Authorizer    application.Authorizer
	Logger        *slog.Logger
}

// ListPublic is the public catalog: active listings only.
func (uc QueryUseCase) ListPublic(ctx context.Context, query ListPublicQuery) ([]entities.Listing, error) {
	return uc.Listings.ListListings(ctx, ports.ListingFilter{
		Brand:    strings.TrimSpace(query.Brand),
		Model:    strings.TrimSpace(query.Model),
		Statuses: []entities.ListingStatus{entities.ListingStatusActive},
		Limit:    resolveLimit(query.Limit),
	})
}

// GetPublic hides every non-active listing behind NotFound.
func (uc QueryUseCase) GetPublic(ctx context.Context, listingID string) (entities.Listing, error) {
	listing, err := uc.Listings.GetListing(ctx, listingID)
	if err != nil {
		return entities.Listing{}, err
	}
	if !listing.IsPublic() {
		return entities.Listing{}, domainerrors.ErrListingNotFound
	}
	return listing, nil
}

func (uc QueryUseCase) ListOwned(ctx context.Context, principal entities.Principal) ([]entities.Listing, error) {
	if !principal.Authenticated() {
		return nil, domainerrors.ErrUnauthorized
	}
	return uc.Listings.ListListings(ctx, ports.ListingFilter{OwnerID: principal.UserID})
}

func (uc QueryUseCase) ModerationQueue(ctx context.Context, principal entities.Principal, limit int) ([]entities.Listing, error) {
	if _, err := uc.Authorizer.Require(ctx, principal, services.ModerationRoles); err != nil {
		return nil, err
	}
	return uc.Listings.ListListings(ctx, ports.ListingFilter{
		Statuses: []entities.ListingStatus{entities.ListingStatusPending, entities.ListingStatusPendingValidation},
		Limit:    resolveLimit(limit),
	})
}

func (uc QueryUseCase) ListNotifications(ctx context.Context, principal entities.Principal, unreadOnly bool, limit int) ([]entities.Notification, error) {
	if !principal.Authenticated() {
		return nil, domainerrors.ErrUnauthorized
	}
	return uc.Notifications.ListNotifications(ctx, principal.UserID, unreadOnly, resolveLimit(limit))
}

// ListAudit is restricted to admins.
func (uc QueryUseCase) ListAudit(ctx context.Context, principal entities.Principal, targetID string, limit int) ([]entities.AuditEntry, error) {
	if _, err := uc.Authorizer.Require(ctx, principal, services.AdminOnly); err != nil {
		return nil, err
	}
	return uc.Audit.ListAudit(ctx, strings.TrimSpace(targetID), resolveLimit(limit))
}

func resolveLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultPageSize
	case limit > maxPageSize:
		return maxPageSize
	default:
		return limit
	}
}
