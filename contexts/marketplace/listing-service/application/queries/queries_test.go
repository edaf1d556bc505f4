package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"autoboard/contexts/marketplace/listing-service/adapters/memory"
	application "autoboard/contexts/marketplace/listing-service/application"
	"autoboard/contexts/marketplace/listing-service/domain/entities"
	domainerrors "autoboard/contexts/marketplace/listing-service/domain/errors"
	"autoboard/contexts/marketplace/listing-service/domain/services"
)

type brokenProfiles struct {
	*memory.Store
}

func (brokenProfiles) GetProfile(context.Context, string) (entities.Profile, error) {
	return entities.Profile{}, domainerrors.Persistence(errors.New("connection refused"))
}

type brokenCounts struct {
	*memory.Store
}

func (brokenCounts) CountListings(context.Context, string, entities.ListingStatus) (int, error) {
	return 0, domainerrors.Persistence(errors.New("timeout"))
}

func listingFor(id string, owner string, status entities.ListingStatus) entities.Listing {
	return entities.Listing{
		ListingID: id,
		OwnerID:   owner,
		Status:    status,
		Brand:     "Peugeot",
		Model:     "308",
		CreatedAt: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestQuotaEvaluatorCountsActiveListingsOnly(t *testing.T) {
	store := memory.NewStore([]entities.Listing{
		listingFor("a", "user-1", entities.ListingStatusActive),
		listingFor("b", "user-1", entities.ListingStatusActive),
		listingFor("c", "user-1", entities.ListingStatusRejected),
		listingFor("d", "user-1", entities.ListingStatusPendingValidation),
	}, []entities.Profile{{UserID: "user-1", Role: entities.RoleUser}})

	snapshot := QuotaEvaluator{Listings: store, Profiles: store, Limits: services.QuotaLimits{BaseLimit: 3}}.
		Evaluate(context.Background(), "user-1")
	if snapshot.CurrentCount != 2 || snapshot.RemainingSlots != 1 || !snapshot.CanCreate {
		t.Fatalf("unexpected snapshot %+v", snapshot)
	}
}

func TestQuotaEvaluatorMissingProfileDefaultsToUser(t *testing.T) {
	store := memory.NewStore(nil, nil)
	snapshot := QuotaEvaluator{Listings: store, Profiles: store}.Evaluate(context.Background(), "new-user")
	if snapshot.Role != entities.RoleUser || snapshot.MaxLimit != services.DefaultBaseQuota {
		t.Fatalf("expected user defaults, got %+v", snapshot)
	}
	if snapshot.Degraded {
		t.Fatalf("a missing profile is not a degraded evaluation")
	}
}

func TestQuotaEvaluatorFailsOpen(t *testing.T) {
	store := memory.NewStore(nil, nil)

	snapshot := QuotaEvaluator{Listings: store, Profiles: brokenProfiles{store}}.Evaluate(context.Background(), "user-1")
	if !snapshot.CanCreate || !snapshot.Degraded || !snapshot.Unlimited() {
		t.Fatalf("expected fail-open snapshot on profile error, got %+v", snapshot)
	}

	snapshot = QuotaEvaluator{Listings: brokenCounts{store}, Profiles: store}.Evaluate(context.Background(), "user-1")
	if !snapshot.CanCreate || !snapshot.Degraded {
		t.Fatalf("expected fail-open snapshot on count error, got %+v", snapshot)
	}
}

func TestQuotaEvaluatorUnlimitedRoles(t *testing.T) {
	store := memory.NewStore(nil, []entities.Profile{
		{UserID: "dealer-1", Role: entities.RoleDealer},
		{UserID: "founder-1", Role: entities.RoleUser, IsFounder: true},
	})
	evaluator := QuotaEvaluator{Listings: store, Profiles: store}
	for _, id := range []string{"dealer-1", "founder-1"} {
		if snapshot := evaluator.Evaluate(context.Background(), id); !snapshot.Unlimited() {
			t.Fatalf("expected %s to be unlimited, got %+v", id, snapshot)
		}
	}
}

func newQueries(store *memory.Store) QueryUseCase {
	return QueryUseCase{
		Listings:      store,
		Notifications: store,
		Audit:         store,
		Authorizer:    application.Authorizer{Profiles: store},
	}
}

func TestPublicQueriesHideNonActiveListings(t *testing.T) {
	store := memory.NewStore([]entities.Listing{
		listingFor("live", "user-1", entities.ListingStatusActive),
		listingFor("queued", "user-1", entities.ListingStatusPendingValidation),
	}, nil)
	uc := newQueries(store)
	ctx := context.Background()

	items, err := uc.ListPublic(ctx, ListPublicQuery{Brand: "peugeot"})
	if err != nil {
		t.Fatalf("ListPublic() error = %v", err)
	}
	if len(items) != 1 || items[0].ListingID != "live" {
		t.Fatalf("expected only the active listing, got %+v", items)
	}
	if _, err := uc.GetPublic(ctx, "queued"); !errors.Is(err, domainerrors.ErrListingNotFound) {
		t.Fatalf("expected not found for queued listing, got %v", err)
	}
}

func TestModerationQueueAndAuditAreRestricted(t *testing.T) {
	store := memory.NewStore([]entities.Listing{
		listingFor("live", "user-1", entities.ListingStatusActive),
		listingFor("queued", "user-1", entities.ListingStatusPendingValidation),
		listingFor("legacy", "user-1", entities.ListingStatusPending),
	}, []entities.Profile{
		{UserID: "mod-1", Role: entities.RoleModerator},
		{UserID: "user-1", Role: entities.RoleUser},
	})
	uc := newQueries(store)
	ctx := context.Background()

	if _, err := uc.ModerationQueue(ctx, entities.Principal{UserID: "user-1"}, 0); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	queue, err := uc.ModerationQueue(ctx, entities.Principal{UserID: "mod-1"}, 0)
	if err != nil {
		t.Fatalf("ModerationQueue() error = %v", err)
	}
	if len(queue) != 2 {
		t.Fatalf("expected 2 queued listings, got %d", len(queue))
	}
	if _, err := uc.ListAudit(ctx, entities.Principal{UserID: "mod-1"}, "", 0); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected audit to be admin only, got %v", err)
	}
}

func TestResolveLimit(t *testing.T) {
	if got := resolveLimit(0); got != defaultPageSize {
		t.Fatalf("expected default page size, got %d", got)
	}
	if got := resolveLimit(1000); got != maxPageSize {
		t.Fatalf("expected max page size, got %d", got)
	}
}
