package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	application "autoboard/contexts/marketplace/listing-service/application"
	"autoboard/contexts/marketplace/listing-service/application/fanout"
	"autoboard/contexts/marketplace/listing-service/application/queries"
	"autoboard/contexts/marketplace/listing-service/domain/entities"
	domainerrors "autoboard/contexts/marketplace/listing-service/domain/errors"
	"autoboard/contexts/marketplace/listing-service/domain/services"
	"autoboard/contexts/marketplace/listing-service/ports"

	"go.opentelemetry.io/otel/attribute"
)

// SubmitListingCommand creates a listing. An authenticated principal owns
// the listing; otherwise GuestEmail identifies the seller.
type SubmitListingCommand struct {
	Principal  entities.Principal
	GuestEmail string
	Payload    entities.ListingPayload
}

type SubmitListingUseCase struct {
	Listings     ports.ListingRepository
	Moderator    ports.ContentModerator
	Quota        queries.QuotaEvaluator
	Verification VerificationUseCase
	FanOut       fanout.Engine
	Invalidation Invalidation
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Metrics      ports.Metrics
	Logger       *slog.Logger
}

func (uc SubmitListingUseCase) Execute(ctx context.Context, cmd SubmitListingCommand) (entities.Listing, error) {
	ctx, span := tracer.Start(ctx, "listing.submit")
	defer span.End()

	logger := application.ResolveLogger(uc.Logger)
	now := uc.Clock.Now().UTC()
	authenticated := cmd.Principal.Authenticated()
	span.SetAttributes(attribute.Bool("listing.authenticated", authenticated))

	verr := domainerrors.NewValidationError()
	payload, err := services.ValidateListingPayload(cmd.Payload, now)
	collectFieldErrors(verr, err)
	guestEmail := ""
	if !authenticated {
		guestEmail, err = services.ValidateGuestEmail(cmd.GuestEmail)
		collectFieldErrors(verr, err)
	}
	if verr.HasErrors() {
		return entities.Listing{}, verr
	}

	if err := checkContent(ctx, uc.Moderator, payload); err != nil {
		return entities.Listing{}, err
	}

	if authenticated {
		snapshot := uc.Quota.Evaluate(ctx, cmd.Principal.UserID)
		if !snapshot.CanCreate {
			logger.Info("listing creation blocked by quota",
				"event", "listing_quota_exceeded",
				"module", "marketplace/listing-service",
				"layer", "application",
				"owner_id", cmd.Principal.UserID,
				"current_count", snapshot.CurrentCount,
				"max_limit", snapshot.MaxLimit,
			)
			return entities.Listing{}, &domainerrors.QuotaExceededError{Snapshot: snapshot}
		}
	}

	listingID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Listing{}, err
	}
	listing := entities.Listing{
		ListingID: listingID,
		Status:    services.InitialStatus(authenticated),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	listing.ApplyPayload(payload)
	if authenticated {
		listing.OwnerID = strings.TrimSpace(cmd.Principal.UserID)
	} else {
		listing.GuestEmail = guestEmail
	}
	if !listing.HasSingleIdentity() {
		return entities.Listing{}, domainerrors.NewValidationError(domainerrors.FieldError{Field: "owner", Message: "exactly one of owner or guest email is required"})
	}
	if err := uc.Listings.CreateListing(ctx, listing); err != nil {
		return entities.Listing{}, err
	}

	path := "authenticated"
	if authenticated {
		logDispatch(logger, listing.ListingID, uc.FanOut.OnSubmitNewForModeration(ctx, listing))
	} else {
		path = "guest"
		issued, err := uc.Verification.issue(ctx, listing)
		if err != nil {
			logger.Error("verification code issue failed",
				"event", "listing_verification_issue_failed",
				"module", "marketplace/listing-service",
				"layer", "application",
				"listing_id", listing.ListingID,
				"error", err.Error(),
			)
		} else {
			listing = issued
		}
	}
	uc.Invalidation.Refresh(ctx, listing)
	if uc.Metrics != nil {
		uc.Metrics.ListingSubmitted(path)
	}

	logger.Info("listing submitted",
		"event", "listing_submitted",
		"module", "marketplace/listing-service",
		"layer", "application",
		"listing_id", listing.ListingID,
		"status", string(listing.Status),
		"path", path,
	)
	return listing, nil
}

func checkContent(ctx context.Context, moderator ports.ContentModerator, payload entities.ListingPayload) error {
	if moderator == nil {
		return nil
	}
	verdict, err := moderator.IsAllowed(ctx, payload.Brand, payload.Model, payload.Description)
	if err != nil {
		return err
	}
	if !verdict.Allowed {
		return &domainerrors.ContentRejectedError{Reasons: verdict.Reasons}
	}
	return nil
}

func collectFieldErrors(into *domainerrors.ValidationError, err error) {
	if err == nil {
		return
	}
	var verr *domainerrors.ValidationError
	if errors.As(err, &verr) {
		into.Fields = append(into.Fields, verr.Fields...)
		return
	}
	into.Add("payload", err.Error())
}
