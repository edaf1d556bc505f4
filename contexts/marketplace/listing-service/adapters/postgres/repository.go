package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"autoboard/contexts/marketplace/listing-service/domain/entities"
	domainerrors "autoboard/contexts/marketplace/listing-service/domain/errors"
	"autoboard/contexts/marketplace/listing-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates or updates every table the listing service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&listingModel{},
		&favoriteModel{},
		&notificationModel{},
		&auditModel{},
		&profileModel{},
	)
}

func (r *Repository) CreateListing(ctx context.Context, listing entities.Listing) error {
	if listing.Version == 0 {
		listing.Version = 1
	}
	row := listingModelFromEntity(listing)
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.Persistence(errors.New("listing already exists"))
		}
		return domainerrors.Persistence(err)
	}
	return nil
}

func (r *Repository) GetListing(ctx context.Context, listingID string) (entities.Listing, error) {
	var row listingModel
	err := r.db.WithContext(ctx).
		Where("listing_id = ?", strings.TrimSpace(listingID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Listing{}, domainerrors.ErrListingNotFound
		}
		return entities.Listing{}, domainerrors.Persistence(err)
	}
	return row.toEntity(), nil
}

func (r *Repository) UpdateListing(ctx context.Context, listing entities.Listing, expectedVersion int64) (entities.Listing, error) {
	nextVersion := expectedVersion + 1
	result := r.db.WithContext(ctx).
		Model(&listingModel{}).
		Where("listing_id = ?", strings.TrimSpace(listing.ListingID)).
		Where("version = ?", expectedVersion).
		Updates(listingUpdates(listing, nextVersion))
	if result.Error != nil {
		return entities.Listing{}, domainerrors.Persistence(result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&listingModel{}).
			Where("listing_id = ?", strings.TrimSpace(listing.ListingID)).
			Count(&count).
			Error; err != nil {
			return entities.Listing{}, domainerrors.Persistence(err)
		}
		if count == 0 {
			return entities.Listing{}, domainerrors.ErrListingNotFound
		}
		return entities.Listing{}, domainerrors.ErrVersionConflict
	}
	listing.Version = nextVersion
	return listing, nil
}

func (r *Repository) DeleteListing(ctx context.Context, listingID string) error {
	id := strings.TrimSpace(listingID)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("listing_id = ?", id).Delete(&favoriteModel{}).Error; err != nil {
			return domainerrors.Persistence(err)
		}
		result := tx.Where("listing_id = ?", id).Delete(&listingModel{})
		if result.Error != nil {
			return domainerrors.Persistence(result.Error)
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrListingNotFound
		}
		return nil
	})
}

func (r *Repository) ListListings(ctx context.Context, filter ports.ListingFilter) ([]entities.Listing, error) {
	tx := r.db.WithContext(ctx).Model(&listingModel{})
	if owner := strings.TrimSpace(filter.OwnerID); owner != "" {
		tx = tx.Where("owner_id = ?", owner)
	}
	if brand := strings.TrimSpace(filter.Brand); brand != "" {
		tx = tx.Where("LOWER(brand) = LOWER(?)", brand)
	}
	if model := strings.TrimSpace(filter.Model); model != "" {
		tx = tx.Where("LOWER(model) = LOWER(?)", model)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			statuses = append(statuses, string(status))
		}
		tx = tx.Where("status IN ?", statuses)
	}
	if len(filter.IDs) > 0 {
		tx = tx.Where("listing_id IN ?", filter.IDs)
	}
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}

	var rows []listingModel
	if err := tx.Order("created_at DESC").Order("listing_id ASC").Find(&rows).Error; err != nil {
		return nil, domainerrors.Persistence(err)
	}
	items := make([]entities.Listing, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) CountListings(ctx context.Context, ownerID string, status entities.ListingStatus) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&listingModel{}).
		Where("owner_id = ?", strings.TrimSpace(ownerID)).
		Where("status = ?", string(status)).
		Count(&count).
		Error; err != nil {
		return 0, domainerrors.Persistence(err)
	}
	return int(count), nil
}

func (r *Repository) AddFavorite(ctx context.Context, userID string, listingID string, at time.Time) error {
	row := favoriteModel{
		UserID:    strings.TrimSpace(userID),
		ListingID: strings.TrimSpace(listingID),
		CreatedAt: at.UTC(),
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).
		Error; err != nil {
		return domainerrors.Persistence(err)
	}
	return nil
}

func (r *Repository) RemoveFavorite(ctx context.Context, userID string, listingID string) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Where("listing_id = ?", strings.TrimSpace(listingID)).
		Delete(&favoriteModel{}).
		Error; err != nil {
		return domainerrors.Persistence(err)
	}
	return nil
}

func (r *Repository) ListFavoriterIDs(ctx context.Context, listingID string) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&favoriteModel{}).
		Where("listing_id = ?", strings.TrimSpace(listingID)).
		Order("created_at ASC").
		Order("user_id ASC").
		Pluck("user_id", &ids).
		Error; err != nil {
		return nil, domainerrors.Persistence(err)
	}
	return ids, nil
}

func (r *Repository) CreateNotification(ctx context.Context, notification entities.Notification) error {
	metadata, err := encodeMetadata(notification.Metadata)
	if err != nil {
		return err
	}
	row := notificationModel{
		NotificationID: notification.NotificationID,
		RecipientID:    notification.RecipientID,
		Title:          notification.Title,
		Message:        notification.Message,
		Severity:       string(notification.Severity),
		Link:           notification.Link,
		IsRead:         notification.IsRead,
		ReadAt:         normalizeOptionalTime(notification.ReadAt),
		Metadata:       metadata,
		CreatedAt:      notification.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domainerrors.Persistence(err)
	}
	return nil
}

func (r *Repository) ListNotifications(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]entities.Notification, error) {
	tx := r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("recipient_id = ?", strings.TrimSpace(recipientID))
	if unreadOnly {
		tx = tx.Where("is_read = ?", false)
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	var rows []notificationModel
	if err := tx.Order("created_at DESC").Order("notification_id ASC").Find(&rows).Error; err != nil {
		return nil, domainerrors.Persistence(err)
	}
	items := make([]entities.Notification, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) MarkNotificationRead(ctx context.Context, recipientID string, notificationID string, at time.Time) error {
	var row notificationModel
	err := r.db.WithContext(ctx).
		Where("notification_id = ?", strings.TrimSpace(notificationID)).
		Where("recipient_id = ?", strings.TrimSpace(recipientID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.ErrNotificationNotFound
		}
		return domainerrors.Persistence(err)
	}
	if row.IsRead {
		return nil
	}
	if err := r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("notification_id = ?", row.NotificationID).
		Updates(map[string]any{"is_read": true, "read_at": at.UTC()}).
		Error; err != nil {
		return domainerrors.Persistence(err)
	}
	return nil
}

func (r *Repository) MarkAllNotificationsRead(ctx context.Context, recipientID string, at time.Time) (int, error) {
	result := r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("recipient_id = ?", strings.TrimSpace(recipientID)).
		Where("is_read = ?", false).
		Updates(map[string]any{"is_read": true, "read_at": at.UTC()})
	if result.Error != nil {
		return 0, domainerrors.Persistence(result.Error)
	}
	return int(result.RowsAffected), nil
}

func (r *Repository) AppendAudit(ctx context.Context, entry entities.AuditEntry) error {
	metadata, err := encodeMetadata(entry.Metadata)
	if err != nil {
		return err
	}
	row := auditModel{
		AuditID:     entry.AuditID,
		ActorID:     strings.TrimSpace(entry.ActorID),
		Action:      entry.Action,
		TargetID:    strings.TrimSpace(entry.TargetID),
		Description: entry.Description,
		Metadata:    metadata,
		CreatedAt:   entry.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domainerrors.Persistence(err)
	}
	return nil
}

func (r *Repository) ListAudit(ctx context.Context, targetID string, limit int) ([]entities.AuditEntry, error) {
	tx := r.db.WithContext(ctx).Model(&auditModel{})
	if target := strings.TrimSpace(targetID); target != "" {
		tx = tx.Where("target_id = ?", target)
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	var rows []auditModel
	if err := tx.Order("created_at DESC").Order("audit_id DESC").Find(&rows).Error; err != nil {
		return nil, domainerrors.Persistence(err)
	}
	items := make([]entities.AuditEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetProfile(ctx context.Context, userID string) (entities.Profile, error) {
	var row profileModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Profile{}, domainerrors.ErrProfileNotFound
		}
		return entities.Profile{}, domainerrors.Persistence(err)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListUserIDsByRoles(ctx context.Context, roles []entities.Role) ([]string, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	values := make([]string, 0, len(roles))
	for _, role := range roles {
		values = append(values, string(role))
	}
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&profileModel{}).
		Where("role IN ?", values).
		Order("user_id ASC").
		Pluck("user_id", &ids).
		Error; err != nil {
		return nil, domainerrors.Persistence(err)
	}
	return ids, nil
}

// UpsertProfile is used by operators and tests to seed role records.
func (r *Repository) UpsertProfile(ctx context.Context, profile entities.Profile) error {
	row := profileModel{
		UserID:    strings.TrimSpace(profile.UserID),
		Email:     strings.TrimSpace(profile.Email),
		Role:      string(profile.Role),
		IsFounder: profile.IsFounder,
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "role", "is_founder"}),
		}).
		Create(&row).
		Error; err != nil {
		return domainerrors.Persistence(err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var (
	_ ports.ListingRepository      = (*Repository)(nil)
	_ ports.FavoriteRepository     = (*Repository)(nil)
	_ ports.NotificationRepository = (*Repository)(nil)
	_ ports.AuditRepository        = (*Repository)(nil)
	_ ports.ProfileDirectory       = (*Repository)(nil)
)
