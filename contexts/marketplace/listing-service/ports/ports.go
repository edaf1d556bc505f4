package ports

import (
	"context"
	"time"

	"autoboard/contexts/marketplace/listing-service/domain/entities"
)

type ListingFilter struct {
	OwnerID  string
	Brand    string
	Model    string
	Statuses []entities.ListingStatus
	IDs      []string
	Limit    int
}

// ListingRepository is a pure persistence boundary; it triggers no side effects.
type ListingRepository interface {
	CreateListing(ctx context.Context, listing entities.Listing) error
	GetListing(ctx context.Context, listingID string) (entities.Listing, error)
	// UpdateListing writes the row only if its stored version still equals
	// expectedVersion, and returns the listing with its bumped version.
	UpdateListing(ctx context.Context, listing entities.Listing, expectedVersion int64) (entities.Listing, error)
	// DeleteListing hard-deletes the listing and its favorites.
	DeleteListing(ctx context.Context, listingID string) error
	ListListings(ctx context.Context, filter ListingFilter) ([]entities.Listing, error)
	CountListings(ctx context.Context, ownerID string, status entities.ListingStatus) (int, error)
}

type FavoriteRepository interface {
	AddFavorite(ctx context.Context, userID string, listingID string, at time.Time) error
	RemoveFavorite(ctx context.Context, userID string, listingID string) error
	ListFavoriterIDs(ctx context.Context, listingID string) ([]string, error)
}

type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification entities.Notification) error
	ListNotifications(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]entities.Notification, error)
	MarkNotificationRead(ctx context.Context, recipientID string, notificationID string, at time.Time) error
	MarkAllNotificationsRead(ctx context.Context, recipientID string, at time.Time) (int, error)
}

type AuditRepository interface {
	AppendAudit(ctx context.Context, entry entities.AuditEntry) error
	ListAudit(ctx context.Context, targetID string, limit int) ([]entities.AuditEntry, error)
}

type ProfileDirectory interface {
	GetProfile(ctx context.Context, userID string) (entities.Profile, error)
	ListUserIDsByRoles(ctx context.Context, roles []entities.Role) ([]string, error)
}

type EmailSender interface {
	SendVerificationCode(ctx context.Context, email string, code string, listingID string) error
}

type ContentVerdict struct {
	Allowed bool
	Reasons []string
}

// ContentModerator is an opaque, side-effect free predicate.
type ContentModerator interface {
	IsAllowed(ctx context.Context, brand string, model string, description string) (ContentVerdict, error)
}

type CacheInvalidator interface {
	InvalidatePaths(ctx context.Context, paths []string) error
}

// SearchIndex mirrors the public catalog. Only active listings are indexed.
type SearchIndex interface {
	SyncListing(ctx context.Context, listing entities.Listing) error
	RemoveListing(ctx context.Context, listingID string) error
}

// PushPublisher is a best-effort channel for notifications already persisted.
type PushPublisher interface {
	PublishNotification(ctx context.Context, notification entities.Notification) error
}

type CodeHasher interface {
	Hash(code string) (string, error)
	Compare(hash string, code string) (bool, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// Metrics receives lifecycle counters. Implementations must be safe for
// concurrent use.
type Metrics interface {
	ListingSubmitted(path string)
	ModerationAction(action string, outcome string)
	NotificationsDispatched(rule string, delivered int, failed int)
}
