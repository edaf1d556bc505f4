package application

import (
	"context"
	"errors"
	"log/slog"

	"autoboard/contexts/marketplace/listing-service/domain/entities"
	domainerrors "autoboard/contexts/marketplace/listing-service/domain/errors"
	"autoboard/contexts/marketplace/listing-service/domain/services"
	"autoboard/contexts/marketplace/listing-service/ports"
)

// Authorizer resolves the role of an explicit principal. The break-glass
// identity is honoured when the role record is missing, unreadable or
// insufficient.
type Authorizer struct {
	Profiles        ports.ProfileDirectory
	BreakGlassEmail string
	Logger          *slog.Logger
}

func (a Authorizer) Require(ctx context.Context, principal entities.Principal, allowed []entities.Role) (entities.Role, error) {
	logger := ResolveLogger(a.Logger)
	if !principal.Authenticated() {
		return "", domainerrors.ErrUnauthorized
	}

	var lookupErr error
	if a.Profiles != nil {
		profile, err := a.Profiles.GetProfile(ctx, principal.UserID)
		if err == nil && services.RoleAllowed(profile.Role, allowed) {
			return profile.Role, nil
		}
		if err != nil && !errors.Is(err, domainerrors.ErrProfileNotFound) {
			lookupErr = err
		}
	}

	if services.IsBreakGlass(principal, a.BreakGlassEmail) {
		attrs := []any{
			"event", "listing_break_glass_authorized",
			"module", "marketplace/listing-service",
			"layer", "application",
			"user_id", principal.UserID,
		}
		if lookupErr != nil {
			attrs = append(attrs, "error", lookupErr.Error())
		}
		logger.Warn("break-glass operator authorized", attrs...)
		return entities.RoleAdmin, nil
	}

	if lookupErr != nil {
		logger.Error("role lookup failed",
			"event", "listing_role_lookup_failed",
			"module", "marketplace/listing-service",
			"layer", "application",
			"user_id", principal.UserID,
			"error", lookupErr.Error(),
		)
	}
	return "", domainerrors.ErrUnauthorized
}

// IsStaff reports whether the principal may act on listings it does not own.
func (a Authorizer) IsStaff(ctx context.Context, principal entities.Principal) bool {
	_, err := a.Require(ctx, principal, services.ModerationRoles)
	return err == nil
}
