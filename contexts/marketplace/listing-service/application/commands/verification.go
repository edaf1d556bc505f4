package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "autoboard/contexts/marketplace/listing-service/application"
	"autoboard/contexts/marketplace/listing-service/application/fanout"
	"autoboard/contexts/marketplace/listing-service/domain/entities"
	domainerrors "autoboard/contexts/marketplace/listing-service/domain/errors"
	"autoboard/contexts/marketplace/listing-service/domain/services"
	"autoboard/contexts/marketplace/listing-service/ports"
)

const DefaultVerificationTTL = 15 * time.Minute

type IssueVerificationCommand struct {
	ListingID string
}

type ValidateVerificationCommand struct {
	ListingID string
	Code      string
}

// VerificationUseCase issues and checks the code that proves a guest seller
// owns the contact email.
type VerificationUseCase struct {
	Listings     ports.ListingRepository
	Hasher       ports.CodeHasher
	Email        ports.EmailSender
	FanOut       fanout.Engine
	Invalidation Invalidation
	Clock        ports.Clock
	CodeTTL      time.Duration
	// MaxAttempts enables lockout after that many wrong codes. Zero disables it.
	MaxAttempts int
	Logger      *slog.Logger
}

// Issue (re)sends a fresh code. The listing status is left unchanged.
func (uc VerificationUseCase) Issue(ctx context.Context, cmd IssueVerificationCommand) error {
	listing, err := uc.Listings.GetListing(ctx, strings.TrimSpace(cmd.ListingID))
	if err != nil {
		return err
	}
	_, err = uc.issue(ctx, listing)
	return err
}

func (uc VerificationUseCase) issue(ctx context.Context, listing entities.Listing) (entities.Listing, error) {
	logger := application.ResolveLogger(uc.Logger)
	if listing.EmailVerified {
		return entities.Listing{}, domainerrors.ErrAlreadyVerified
	}
	if !listing.IsGuest() || listing.Status != entities.ListingStatusWaitingEmailVerification {
		return entities.Listing{}, domainerrors.ErrInvalidStatusTransition
	}

	code, err := services.GenerateVerificationCode()
	if err != nil {
		return entities.Listing{}, err
	}
	hash, err := uc.Hasher.Hash(code)
	if err != nil {
		return entities.Listing{}, err
	}

	now := uc.Clock.Now().UTC()
	expiresAt := now.Add(uc.resolveTTL())
	listing.Verification = entities.VerificationAttempt{
		CodeHash:  hash,
		ExpiresAt: &expiresAt,
	}
	listing.UpdatedAt = now
	updated, err := uc.Listings.UpdateListing(ctx, listing, listing.Version)
	if err != nil {
		return entities.Listing{}, err
	}

	if err := uc.Email.SendVerificationCode(ctx, updated.GuestEmail, code, updated.ListingID); err != nil {
		logger.Error("verification email delivery failed",
			"event", "listing_verification_email_failed",
			"module", "marketplace/listing-service",
			"layer", "application",
			"listing_id", updated.ListingID,
			"error", err.Error(),
		)
	}

	logger.Info("verification code issued",
		"event", "listing_verification_code_issued",
		"module", "marketplace/listing-service",
		"layer", "application",
		"listing_id", updated.ListingID,
		"expires_at", expiresAt.Format(time.RFC3339),
	)
	return updated, nil
}

// Validate returns true when the code matches or the listing is already
// verified. A wrong code returns false and leaves the stored code usable.
func (uc VerificationUseCase) Validate(ctx context.Context, cmd ValidateVerificationCommand) (bool, error) {
	logger := application.ResolveLogger(uc.Logger)
	listing, err := uc.Listings.GetListing(ctx, strings.TrimSpace(cmd.ListingID))
	if err != nil {
		return false, err
	}
	if listing.EmailVerified {
		return true, nil
	}
	if !listing.Verification.Issued() {
		return false, domainerrors.ErrNoCodeIssued
	}

	now := uc.Clock.Now().UTC()
	if listing.Verification.ExpiredAt(now) {
		return false, domainerrors.ErrVerificationExpired
	}
	if uc.MaxAttempts > 0 && listing.Verification.FailedAttempts >= uc.MaxAttempts {
		return false, domainerrors.ErrTooManyAttempts
	}

	code := strings.TrimSpace(cmd.Code)
	matched := false
	if services.IsWellFormedCode(code) {
		matched, err = uc.Hasher.Compare(listing.Verification.CodeHash, code)
		if err != nil {
			return false, err
		}
	}

	if !matched {
		if uc.MaxAttempts > 0 {
			listing.Verification.FailedAttempts++
			listing.UpdatedAt = now
			if _, err := uc.Listings.UpdateListing(ctx, listing, listing.Version); err != nil {
				return false, err
			}
		}
		logger.Info("verification code mismatch",
			"event", "listing_verification_code_mismatch",
			"module", "marketplace/listing-service",
			"layer", "application",
			"listing_id", listing.ListingID,
		)
		return false, nil
	}

	listing.Verification = entities.VerificationAttempt{}
	listing.EmailVerified = true
	listing.Status = entities.ListingStatusPendingValidation
	listing.UpdatedAt = now
	updated, err := uc.Listings.UpdateListing(ctx, listing, listing.Version)
	if err != nil {
		return false, err
	}

	logger.Info("listing email verified",
		"event", "listing_email_verified",
		"module", "marketplace/listing-service",
		"layer", "application",
		"listing_id", updated.ListingID,
	)
	logDispatch(logger, updated.ListingID, uc.FanOut.OnSubmitNewForModeration(ctx, updated))
	uc.Invalidation.Refresh(ctx, updated)
	return true, nil
}

func (uc VerificationUseCase) resolveTTL() time.Duration {
	if uc.CodeTTL <= 0 {
		return DefaultVerificationTTL
	}
	return uc.CodeTTL
}
