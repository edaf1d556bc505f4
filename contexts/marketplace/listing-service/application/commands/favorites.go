package commands

import (
	"context"
	"log/slog"
	"strings"

	application "autoboard/contexts/marketplace/listing-service/application"
	"autoboard/contexts/marketplace/listing-service/domain/entities"
	domainerrors "autoboard/contexts/marketplace/listing-service/domain/errors"
	"autoboard/contexts/marketplace/listing-service/ports"
)

type FavoriteCommand struct {
	Principal entities.Principal
	ListingID string
}

type FavoritesUseCase struct {
	Listings  ports.ListingRepository
	Favorites ports.FavoriteRepository
	Clock     ports.Clock
	Logger    *slog.Logger
}

// Add only accepts listings visible in the public catalog.
func (uc FavoritesUseCase) Add(ctx context.Context, cmd FavoriteCommand) error {
	if !cmd.Principal.Authenticated() {
		return domainerrors.ErrUnauthorized
	}
	listing, err := uc.Listings.GetListing(ctx, strings.TrimSpace(cmd.ListingID))
	if err != nil {
		return err
	}
	if !listing.IsPublic() {
		return domainerrors.ErrListingNotFound
	}
	if err := uc.Favorites.AddFavorite(ctx, cmd.Principal.UserID, listing.ListingID, uc.Clock.Now().UTC()); err != nil {
		return err
	}
	application.ResolveLogger(uc.Logger).Debug("listing favorited",
		"event", "listing_favorited",
		"module", "marketplace/listing-service",
		"layer", "application",
		"listing_id", listing.ListingID,
		"user_id", cmd.Principal.UserID,
	)
	return nil
}

func (uc FavoritesUseCase) Remove(ctx context.Context, cmd FavoriteCommand) error {
	if !cmd.Principal.Authenticated() {
		return domainerrors.ErrUnauthorized
	}
	return uc.Favorites.RemoveFavorite(ctx, cmd.Principal.UserID, strings.TrimSpace(cmd.ListingID))
}
