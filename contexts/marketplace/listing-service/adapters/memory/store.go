package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"autoboard/contexts/marketplace/listing-service/domain/entities"
	domainerrors "autoboard/contexts/marketplace/listing-service/domain/errors"
	"autoboard/contexts/marketplace/listing-service/ports"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	listings      map[string]entities.Listing
	favorites     map[string]map[string]time.Time
	notifications map[string]entities.Notification
	audit         []entities.AuditEntry
	profiles      map[string]entities.Profile
}

func NewStore(seed []entities.Listing, profiles []entities.Profile) *Store {
	listings := make(map[string]entities.Listing, len(seed))
	for _, item := range seed {
		if item.Version == 0 {
			item.Version = 1
		}
		listings[item.ListingID] = item
	}
	profileMap := make(map[string]entities.Profile, len(profiles))
	for _, profile := range profiles {
		profileMap[profile.UserID] = profile
	}
	return &Store{
		listings:      listings,
		favorites:     make(map[string]map[string]time.Time),
		notifications: make(map[string]entities.Notification),
		profiles:      profileMap,
	}
}

func (s *Store) CreateListing(_ context.Context, listing entities.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.listings[listing.ListingID]; exists {
		return domainerrors.Persistence(fmt.Errorf("listing %s already exists", listing.ListingID))
	}
	if listing.Version == 0 {
		listing.Version = 1
	}
	s.listings[listing.ListingID] = listing
	return nil
}

func (s *Store) GetListing(_ context.Context, listingID string) (entities.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.listings[strings.TrimSpace(listingID)]
	if !exists {
		return entities.Listing{}, domainerrors.ErrListingNotFound
	}
	return item, nil
}

func (s *Store) UpdateListing(_ context.Context, listing entities.Listing, expectedVersion int64) (entities.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.listings[listing.ListingID]
	if !exists {
		return entities.Listing{}, domainerrors.ErrListingNotFound
	}
	if current.Version != expectedVersion {
		return entities.Listing{}, domainerrors.ErrVersionConflict
	}
	listing.Version = expectedVersion + 1
	s.listings[listing.ListingID] = listing
	return listing, nil
}

func (s *Store) DeleteListing(_ context.Context, listingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := strings.TrimSpace(listingID)
	if _, exists := s.listings[id]; !exists {
		return domainerrors.ErrListingNotFound
	}
	delete(s.listings, id)
	delete(s.favorites, id)
	return nil
}

func (s *Store) ListListings(_ context.Context, filter ports.ListingFilter) ([]entities.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statuses := make(map[entities.ListingStatus]struct{}, len(filter.Statuses))
	for _, status := range filter.Statuses {
		statuses[status] = struct{}{}
	}
	ids := make(map[string]struct{}, len(filter.IDs))
	for _, id := range filter.IDs {
		ids[strings.TrimSpace(id)] = struct{}{}
	}

	items := make([]entities.Listing, 0, len(s.listings))
	for _, item := range s.listings {
		if owner := strings.TrimSpace(filter.OwnerID); owner != "" && item.OwnerID != owner {
			continue
		}
		if brand := strings.TrimSpace(filter.Brand); brand != "" && !strings.EqualFold(item.Brand, brand) {
			continue
		}
		if model := strings.TrimSpace(filter.Model); model != "" && !strings.EqualFold(item.Model, model) {
			continue
		}
		if len(statuses) > 0 {
			if _, ok := statuses[item.Status]; !ok {
				continue
			}
		}
		if len(ids) > 0 {
			if _, ok := ids[item.ListingID]; !ok {
				continue
			}
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ListingID < items[j].ListingID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return items, nil
}

func (s *Store) CountListings(_ context.Context, ownerID string, status entities.ListingStatus) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, item := range s.listings {
		if item.OwnerID == strings.TrimSpace(ownerID) && item.Status == status {
			count++
		}
	}
	return count, nil
}

func (s *Store) AddFavorite(_ context.Context, userID string, listingID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := strings.TrimSpace(listingID)
	if _, exists := s.listings[id]; !exists {
		return domainerrors.ErrListingNotFound
	}
	users, ok := s.favorites[id]
	if !ok {
		users = make(map[string]time.Time)
		s.favorites[id] = users
	}
	if _, exists := users[userID]; !exists {
		users[userID] = at
	}
	return nil
}

func (s *Store) RemoveFavorite(_ context.Context, userID string, listingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if users, ok := s.favorites[strings.TrimSpace(listingID)]; ok {
		delete(users, userID)
	}
	return nil
}

func (s *Store) ListFavoriterIDs(_ context.Context, listingID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := s.favorites[strings.TrimSpace(listingID)]
	ids := make([]string, 0, len(users))
	for userID := range users {
		ids = append(ids, userID)
	}
	sort.Slice(ids, func(i, j int) bool {
		ti, tj := users[ids[i]], users[ids[j]]
		if ti.Equal(tj) {
			return ids[i] < ids[j]
		}
		return ti.Before(tj)
	})
	return ids, nil
}

func (s *Store) CreateNotification(_ context.Context, notification entities.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications[notification.NotificationID] = notification
	return nil
}

func (s *Store) ListNotifications(_ context.Context, recipientID string, unreadOnly bool, limit int) ([]entities.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Notification, 0)
	for _, item := range s.notifications {
		if item.RecipientID != strings.TrimSpace(recipientID) {
			continue
		}
		if unreadOnly && item.IsRead {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].NotificationID < items[j].NotificationID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkNotificationRead(_ context.Context, recipientID string, notificationID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.notifications[strings.TrimSpace(notificationID)]
	if !exists || item.RecipientID != strings.TrimSpace(recipientID) {
		return domainerrors.ErrNotificationNotFound
	}
	if item.IsRead {
		return nil
	}
	readAt := at.UTC()
	item.IsRead = true
	item.ReadAt = &readAt
	s.notifications[item.NotificationID] = item
	return nil
}

func (s *Store) MarkAllNotificationsRead(_ context.Context, recipientID string, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	readAt := at.UTC()
	updated := 0
	for id, item := range s.notifications {
		if item.RecipientID != strings.TrimSpace(recipientID) || item.IsRead {
			continue
		}
		item.IsRead = true
		item.ReadAt = &readAt
		s.notifications[id] = item
		updated++
	}
	return updated, nil
}

func (s *Store) AppendAudit(_ context.Context, entry entities.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.audit = append(s.audit, entry)
	return nil
}

func (s *Store) ListAudit(_ context.Context, targetID string, limit int) ([]entities.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.AuditEntry, 0, len(s.audit))
	for i := len(s.audit) - 1; i >= 0; i-- {
		entry := s.audit[i]
		if target := strings.TrimSpace(targetID); target != "" && entry.TargetID != target {
			continue
		}
		items = append(items, entry)
		if limit > 0 && len(items) == limit {
			break
		}
	}
	return items, nil
}

func (s *Store) PutProfile(profile entities.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[profile.UserID] = profile
}

func (s *Store) GetProfile(_ context.Context, userID string) (entities.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, exists := s.profiles[strings.TrimSpace(userID)]
	if !exists {
		return entities.Profile{}, domainerrors.ErrProfileNotFound
	}
	return profile, nil
}

func (s *Store) ListUserIDsByRoles(_ context.Context, roles []entities.Role) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[entities.Role]struct{}, len(roles))
	for _, role := range roles {
		wanted[role] = struct{}{}
	}
	ids := make([]string, 0)
	for _, profile := range s.profiles {
		if _, ok := wanted[profile.Role]; ok {
			ids = append(ids, profile.UserID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var (
	_ ports.ListingRepository      = (*Store)(nil)
	_ ports.FavoriteRepository     = (*Store)(nil)
	_ ports.NotificationRepository = (*Store)(nil)
	_ ports.AuditRepository        = (*Store)(nil)
	_ ports.ProfileDirectory       = (*Store)(nil)
)
