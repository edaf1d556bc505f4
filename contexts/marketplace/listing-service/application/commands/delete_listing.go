package commands

import (
	"context"
	"log/slog"
	"strings"

	application "autoboard/contexts/marketplace/listing-service/application"
	"autoboard/contexts/marketplace/listing-service/application/fanout"
	"autoboard/contexts/marketplace/listing-service/domain/entities"
	domainerrors "autoboard/contexts/marketplace/listing-service/domain/errors"
	"autoboard/contexts/marketplace/listing-service/domain/services"
	"autoboard/contexts/marketplace/listing-service/ports"
)

type DeleteListingCommand struct {
	Principal entities.Principal
	ListingID string
}

// DeleteListingUseCase lets an owner remove their listing, or an admin
// remove anyone's. Admin removals are audited.
type DeleteListingUseCase struct {
	Listings     ports.ListingRepository
	Audit        ports.AuditRepository
	Authorizer   application.Authorizer
	FanOut       fanout.Engine
	Invalidation Invalidation
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

func (uc DeleteListingUseCase) Execute(ctx context.Context, cmd DeleteListingCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	if !cmd.Principal.Authenticated() {
		return domainerrors.ErrUnauthorized
	}
	listing, err := uc.Listings.GetListing(ctx, strings.TrimSpace(cmd.ListingID))
	if err != nil {
		return err
	}
	byAdmin := false
	if listing.OwnerID != cmd.Principal.UserID {
		if _, err := uc.Authorizer.Require(ctx, cmd.Principal, services.AdminOnly); err != nil {
			return err
		}
		byAdmin = true
	}

	plan := uc.FanOut.PlanDelete(ctx, listing)
	if err := uc.Listings.DeleteListing(ctx, listing.ListingID); err != nil {
		return err
	}
	logDispatch(logger, listing.ListingID, uc.FanOut.Deliver(ctx, plan))
	uc.Invalidation.Purge(ctx, listing.ListingID)

	if byAdmin {
		auditWriter{Audit: uc.Audit, Clock: uc.Clock, IDGen: uc.IDGen, Logger: uc.Logger}.append(ctx, entities.AuditEntry{
			ActorID:     cmd.Principal.UserID,
			Action:      entities.AuditActionAdminDelete,
			TargetID:    listing.ListingID,
			Description: "listing deleted by admin",
			Metadata: map[string]any{
				"owner_id": listing.OwnerID,
				"status":   string(listing.Status),
			},
		})
	}

	logger.Info("listing deleted",
		"event", "listing_deleted",
		"module", "marketplace/listing-service",
		"layer", "application",
		"listing_id", listing.ListingID,
		"by_admin", byAdmin,
	)
	return nil
}
