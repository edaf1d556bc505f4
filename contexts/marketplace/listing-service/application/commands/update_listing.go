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

type UpdateListingCommand struct {
	Principal entities.Principal
	ListingID string
	Patch     entities.ListingPatch
	// ExpectedVersion guards against lost updates when set; zero means
	// "whatever was just read".
	ExpectedVersion int64
}

type UpdateListingUseCase struct {
	Listings     ports.ListingRepository
	Moderator    ports.ContentModerator
	Authorizer   application.Authorizer
	FanOut       fanout.Engine
	Invalidation Invalidation
	Clock        ports.Clock
	Logger       *slog.Logger
}

func (uc UpdateListingUseCase) Execute(ctx context.Context, cmd UpdateListingCommand) (entities.Listing, error) {
	logger := application.ResolveLogger(uc.Logger)
	if !cmd.Principal.Authenticated() {
		return entities.Listing{}, domainerrors.ErrUnauthorized
	}
	current, err := uc.Listings.GetListing(ctx, strings.TrimSpace(cmd.ListingID))
	if err != nil {
		return entities.Listing{}, err
	}
	if current.OwnerID != cmd.Principal.UserID {
		if _, err := uc.Authorizer.Require(ctx, cmd.Principal, services.ModerationRoles); err != nil {
			return entities.Listing{}, err
		}
	}
	if current.Status == entities.ListingStatusWaitingEmailVerification {
		return entities.Listing{}, domainerrors.ErrInvalidStatusTransition
	}
	if cmd.ExpectedVersion > 0 && cmd.ExpectedVersion != current.Version {
		return entities.Listing{}, domainerrors.ErrVersionConflict
	}

	now := uc.Clock.Now().UTC()
	before := current.Payload()
	merged, err := services.ValidateListingPayload(cmd.Patch.Merge(services.UnescapePayload(before)), now)
	if err != nil {
		return entities.Listing{}, err
	}
	if err := checkContent(ctx, uc.Moderator, merged); err != nil {
		return entities.Listing{}, err
	}

	sensitive := services.ChangedSensitiveFields(before, merged)
	next := current
	next.ApplyPayload(merged)
	next.Status = services.StatusAfterEdit(current.Status, len(sensitive) > 0)
	if next.Status != entities.ListingStatusRejected {
		next.RejectionReason = ""
	}
	next.UpdatedAt = now
	updated, err := uc.Listings.UpdateListing(ctx, next, current.Version)
	if err != nil {
		return entities.Listing{}, err
	}

	logger.Info("listing updated",
		"event", "listing_updated",
		"module", "marketplace/listing-service",
		"layer", "application",
		"listing_id", updated.ListingID,
		"old_status", string(current.Status),
		"new_status", string(updated.Status),
		"sensitive_fields", strings.Join(sensitive, ","),
	)

	if before.Price != updated.Price {
		logDispatch(logger, updated.ListingID, uc.FanOut.OnPriceChange(ctx, updated, before.Price, updated.Price))
	}
	if updated.Status == entities.ListingStatusPendingValidation && current.Status != entities.ListingStatusPendingValidation {
		logDispatch(logger, updated.ListingID, uc.FanOut.OnSubmitNewForModeration(ctx, updated))
	}
	uc.Invalidation.Refresh(ctx, updated)
	return updated, nil
}
