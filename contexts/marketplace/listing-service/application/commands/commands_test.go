package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"autoboard/contexts/marketplace/listing-service/adapters/memory"
	"autoboard/contexts/marketplace/listing-service/adapters/security"
	application "autoboard/contexts/marketplace/listing-service/application"
	"autoboard/contexts/marketplace/listing-service/application/fanout"
	"autoboard/contexts/marketplace/listing-service/application/queries"
	"autoboard/contexts/marketplace/listing-service/domain/entities"
	domainerrors "autoboard/contexts/marketplace/listing-service/domain/errors"
	"autoboard/contexts/marketplace/listing-service/domain/services"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const breakGlassEmail = "ops@autoboard.test"

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type harness struct {
	store   *memory.Store
	mailbox *memory.Mailbox
	cache   *memory.PageCache
	index   *memory.CatalogIndex
	clock   *testClock

	submit       SubmitListingUseCase
	verification VerificationUseCase
	update       UpdateListingUseCase
	remove       DeleteListingUseCase
	moderation   ModerationUseCase
}

func newHarness(seed []entities.Listing, blocked ...string) *harness {
	store := memory.NewStore(seed, []entities.Profile{
		{UserID: "admin-1", Role: entities.RoleAdmin},
		{UserID: "mod-1", Role: entities.RoleModerator},
		{UserID: "user-1", Role: entities.RoleUser},
		{UserID: "user-2", Role: entities.RoleUser},
	})
	h := &harness{
		store:   store,
		mailbox: memory.NewMailbox(),
		cache:   memory.NewPageCache(),
		index:   memory.NewCatalogIndex(),
		clock:   &testClock{now: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)},
	}
	authorizer := application.Authorizer{Profiles: store, BreakGlassEmail: breakGlassEmail}
	engine := fanout.Engine{
		Listings:  store,
		Favorites: store,
		Profiles:  store,
		Dispatcher: fanout.Dispatcher{
			Notifications: store,
			Clock:         h.clock,
			IDGen:         store,
		},
	}
	invalidation := Invalidation{Cache: h.cache, Search: h.index}
	h.verification = VerificationUseCase{
		Listings:     store,
		Hasher:       security.NewBcryptHasher(bcrypt.MinCost),
		Email:        h.mailbox,
		FanOut:       engine,
		Invalidation: invalidation,
		Clock:        h.clock,
	}
	h.submit = SubmitListingUseCase{
		Listings:  store,
		Moderator: memory.NewKeywordModerator(blocked),
		Quota: queries.QuotaEvaluator{
			Listings: store,
			Profiles: store,
			Limits:   services.QuotaLimits{BaseLimit: 3},
		},
		Verification: h.verification,
		FanOut:       engine,
		Invalidation: invalidation,
		Clock:        h.clock,
		IDGen:        store,
	}
	h.update = UpdateListingUseCase{
		Listings:     store,
		Moderator:    memory.NewKeywordModerator(blocked),
		Authorizer:   authorizer,
		FanOut:       engine,
		Invalidation: invalidation,
		Clock:        h.clock,
	}
	h.remove = DeleteListingUseCase{
		Listings:     store,
		Audit:        store,
		Authorizer:   authorizer,
		FanOut:       engine,
		Invalidation: invalidation,
		Clock:        h.clock,
		IDGen:        store,
	}
	h.moderation = ModerationUseCase{
		Listings:     store,
		Audit:        store,
		Authorizer:   authorizer,
		FanOut:       engine,
		Invalidation: invalidation,
		Clock:        h.clock,
		IDGen:        store,
	}
	return h
}

func (h *harness) notifications(t *testing.T, recipient string, action string) []entities.Notification {
	t.Helper()
	items, err := h.store.ListNotifications(context.Background(), recipient, false, 0)
	require.NoError(t, err)
	var out []entities.Notification
	for _, item := range items {
		if item.Action() == action {
			out = append(out, item)
		}
	}
	return out
}

func (h *harness) listing(t *testing.T, id string) entities.Listing {
	t.Helper()
	listing, err := h.store.GetListing(context.Background(), id)
	require.NoError(t, err)
	return listing
}

func carPayload() entities.ListingPayload {
	return entities.ListingPayload{
		VehicleType:  entities.VehicleTypeCar,
		Brand:        "Renault",
		Model:        "Clio",
		Price:        20000,
		Year:         2020,
		Title:        "Clio V",
		Description:  "One owner",
		Mileage:      30000,
		FuelType:     "petrol",
		Transmission: "manual",
	}
}

func seededListing(id string, owner string, status entities.ListingStatus) entities.Listing {
	listing := entities.Listing{
		ListingID: id,
		OwnerID:   owner,
		Status:    status,
		Version:   1,
		CreatedAt: time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
	}
	listing.ApplyPayload(carPayload())
	return listing
}

func member(id string) entities.Principal {
	return entities.Principal{UserID: id, Email: id + "@autoboard.test"}
}

func TestSubmitGuestListingWaitsForVerification(t *testing.T) {
	h := newHarness(nil)
	ctx := context.Background()

	listing, err := h.submit.Execute(ctx, SubmitListingCommand{
		GuestEmail: "Seller@Example.com",
		Payload:    carPayload(),
	})
	require.NoError(t, err)
	require.Equal(t, entities.ListingStatusWaitingEmailVerification, listing.Status)
	require.Equal(t, "seller@example.com", listing.GuestEmail)
	require.Empty(t, listing.OwnerID)
	require.False(t, listing.EmailVerified)

	stored := h.listing(t, listing.ListingID)
	require.True(t, stored.Verification.Issued())
	code, ok := h.mailbox.LastCode(listing.ListingID)
	require.True(t, ok)
	require.NotEqual(t, code, stored.Verification.CodeHash)
	require.Empty(t, h.notifications(t, "admin-1", entities.NotificationActionModerationNeeded))
	require.Empty(t, h.index.IndexedIDs())
}

func TestSubmitAuthenticatedListingNotifiesStaff(t *testing.T) {
	h := newHarness(nil)
	listing, err := h.submit.Execute(context.Background(), SubmitListingCommand{
		Principal: member("user-1"),
		Payload:   carPayload(),
	})
	require.NoError(t, err)
	require.Equal(t, entities.ListingStatusPendingValidation, listing.Status)
	require.Equal(t, "user-1", listing.OwnerID)
	require.Empty(t, listing.GuestEmail)
	require.Len(t, h.notifications(t, "admin-1", entities.NotificationActionModerationNeeded), 1)
	require.Len(t, h.notifications(t, "mod-1", entities.NotificationActionModerationNeeded), 1)
	require.Empty(t, h.mailbox.Sent())
	require.Equal(t, 1, h.cache.Invalidations("/listings/"+listing.ListingID))
}

func TestSubmitBlockedByQuota(t *testing.T) {
	h := newHarness([]entities.Listing{
		seededListing("a", "user-1", entities.ListingStatusActive),
		seededListing("b", "user-1", entities.ListingStatusActive),
		seededListing("c", "user-1", entities.ListingStatusActive),
	})

	_, err := h.submit.Execute(context.Background(), SubmitListingCommand{
		Principal: member("user-1"),
		Payload:   carPayload(),
	})
	require.ErrorIs(t, err, domainerrors.ErrQuotaExceeded)
	var quotaErr *domainerrors.QuotaExceededError
	require.True(t, errors.As(err, &quotaErr))
	require.Equal(t, 3, quotaErr.Snapshot.CurrentCount)
	require.Equal(t, 3, quotaErr.Snapshot.MaxLimit)
	require.False(t, quotaErr.Snapshot.CanCreate)

	owned, err := h.store.CountListings(context.Background(), "user-1", entities.ListingStatusPendingValidation)
	require.NoError(t, err)
	require.Zero(t, owned)
}

func TestSubmitRejectsBlockedContent(t *testing.T) {
	h := newHarness(nil, "scam")
	payload := carPayload()
	payload.Description = "Definitely not a SCAM"

	_, err := h.submit.Execute(context.Background(), SubmitListingCommand{
		Principal: member("user-1"),
		Payload:   payload,
	})
	require.ErrorIs(t, err, domainerrors.ErrContentNotAllowed)
	var rejected *domainerrors.ContentRejectedError
	require.True(t, errors.As(err, &rejected))
	require.NotEmpty(t, rejected.Reasons)
}

func TestSubmitGuestReportsPayloadAndEmailTogether(t *testing.T) {
	h := newHarness(nil)
	payload := carPayload()
	payload.Price = 0

	_, err := h.submit.Execute(context.Background(), SubmitListingCommand{Payload: payload})
	var verr *domainerrors.ValidationError
	require.True(t, errors.As(err, &verr))
	fields := verr.FieldMap()
	require.Contains(t, fields, "price")
	require.Contains(t, fields, "guest_email")
}

func submitGuest(t *testing.T, h *harness) (entities.Listing, string) {
	t.Helper()
	listing, err := h.submit.Execute(context.Background(), SubmitListingCommand{
		GuestEmail: "seller@example.com",
		Payload:    carPayload(),
	})
	require.NoError(t, err)
	code, ok := h.mailbox.LastCode(listing.ListingID)
	require.True(t, ok)
	return listing, code
}

func wrongCode(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}

func TestVerifyGuestListingMovesToModeration(t *testing.T) {
	h := newHarness(nil)
	ctx := context.Background()
	listing, code := submitGuest(t, h)

	verified, err := h.verification.Validate(ctx, ValidateVerificationCommand{ListingID: listing.ListingID, Code: code})
	require.NoError(t, err)
	require.True(t, verified)

	stored := h.listing(t, listing.ListingID)
	require.Equal(t, entities.ListingStatusPendingValidation, stored.Status)
	require.True(t, stored.EmailVerified)
	require.False(t, stored.Verification.Issued())
	require.Len(t, h.notifications(t, "admin-1", entities.NotificationActionModerationNeeded), 1)

	again, err := h.verification.Validate(ctx, ValidateVerificationCommand{ListingID: listing.ListingID, Code: "999999"})
	require.NoError(t, err)
	require.True(t, again)
	require.Len(t, h.notifications(t, "admin-1", entities.NotificationActionModerationNeeded), 1)

	err = h.verification.Issue(ctx, IssueVerificationCommand{ListingID: listing.ListingID})
	require.ErrorIs(t, err, domainerrors.ErrAlreadyVerified)
}

func TestVerifyExpiredCodeKeepsStatus(t *testing.T) {
	h := newHarness(nil)
	listing, code := submitGuest(t, h)
	h.clock.Advance(DefaultVerificationTTL + time.Second)

	verified, err := h.verification.Validate(context.Background(), ValidateVerificationCommand{ListingID: listing.ListingID, Code: code})
	require.ErrorIs(t, err, domainerrors.ErrVerificationExpired)
	require.False(t, verified)
	require.Equal(t, entities.ListingStatusWaitingEmailVerification, h.listing(t, listing.ListingID).Status)
}

func TestVerifyMismatchKeepsCodeUsable(t *testing.T) {
	h := newHarness(nil)
	ctx := context.Background()
	listing, code := submitGuest(t, h)

	verified, err := h.verification.Validate(ctx, ValidateVerificationCommand{ListingID: listing.ListingID, Code: wrongCode(code)})
	require.NoError(t, err)
	require.False(t, verified)
	require.Equal(t, entities.ListingStatusWaitingEmailVerification, h.listing(t, listing.ListingID).Status)

	verified, err = h.verification.Validate(ctx, ValidateVerificationCommand{ListingID: listing.ListingID, Code: code})
	require.NoError(t, err)
	require.True(t, verified)
}

func TestVerifyLockoutAfterMaxAttempts(t *testing.T) {
	h := newHarness(nil)
	h.verification.MaxAttempts = 2
	ctx := context.Background()
	listing, code := submitGuest(t, h)

	for i := 0; i < 2; i++ {
		verified, err := h.verification.Validate(ctx, ValidateVerificationCommand{ListingID: listing.ListingID, Code: wrongCode(code)})
		require.NoError(t, err)
		require.False(t, verified)
	}
	_, err := h.verification.Validate(ctx, ValidateVerificationCommand{ListingID: listing.ListingID, Code: code})
	require.ErrorIs(t, err, domainerrors.ErrTooManyAttempts)
}

func TestReissueReplacesCode(t *testing.T) {
	h := newHarness(nil)
	ctx := context.Background()
	listing, first := submitGuest(t, h)

	require.NoError(t, h.verification.Issue(ctx, IssueVerificationCommand{ListingID: listing.ListingID}))
	require.Len(t, h.mailbox.Sent(), 2)
	second, _ := h.mailbox.LastCode(listing.ListingID)
	if first != second {
		verified, err := h.verification.Validate(ctx, ValidateVerificationCommand{ListingID: listing.ListingID, Code: first})
		require.NoError(t, err)
		require.False(t, verified)
	}
	verified, err := h.verification.Validate(ctx, ValidateVerificationCommand{ListingID: listing.ListingID, Code: second})
	require.NoError(t, err)
	require.True(t, verified)
}

func TestUpdateMinorEditKeepsListingActive(t *testing.T) {
	h := newHarness([]entities.Listing{seededListing("listing-1", "user-1", entities.ListingStatusActive)})
	description := "New tyres"

	updated, err := h.update.Execute(context.Background(), UpdateListingCommand{
		Principal: member("user-1"),
		ListingID: "listing-1",
		Patch:     entities.ListingPatch{Description: &description},
	})
	require.NoError(t, err)
	require.Equal(t, entities.ListingStatusActive, updated.Status)
	require.Equal(t, int64(2), updated.Version)
	require.Empty(t, h.notifications(t, "admin-1", entities.NotificationActionModerationNeeded))
}

func TestUpdateSensitiveEditReentersModeration(t *testing.T) {
	h := newHarness([]entities.Listing{seededListing("listing-1", "user-1", entities.ListingStatusActive)})
	ctx := context.Background()
	require.NoError(t, h.store.AddFavorite(ctx, "user-2", "listing-1", h.clock.Now()))
	price := 18000.0

	updated, err := h.update.Execute(ctx, UpdateListingCommand{
		Principal: member("user-1"),
		ListingID: "listing-1",
		Patch:     entities.ListingPatch{Price: &price},
	})
	require.NoError(t, err)
	require.Equal(t, entities.ListingStatusPendingValidation, updated.Status)

	drops := h.notifications(t, "user-2", entities.NotificationActionPriceDrop)
	require.Len(t, drops, 1)
	require.Equal(t, "10.0", drops[0].Metadata["drop_percent"])
	require.Len(t, h.notifications(t, "mod-1", entities.NotificationActionModerationNeeded), 1)
}

func TestUpdateRejectedListingAlwaysReentersReview(t *testing.T) {
	rejected := seededListing("listing-1", "user-1", entities.ListingStatusRejected)
	rejected.RejectionReason = "blurry photos"
	h := newHarness([]entities.Listing{rejected})
	location := "Lyon"

	updated, err := h.update.Execute(context.Background(), UpdateListingCommand{
		Principal: member("user-1"),
		ListingID: "listing-1",
		Patch:     entities.ListingPatch{Location: &location},
	})
	require.NoError(t, err)
	require.Equal(t, entities.ListingStatusPendingValidation, updated.Status)
	require.Empty(t, updated.RejectionReason)
}

func TestUpdateGuards(t *testing.T) {
	waiting := seededListing("waiting", "", entities.ListingStatusWaitingEmailVerification)
	waiting.GuestEmail = "seller@example.com"
	h := newHarness([]entities.Listing{
		seededListing("listing-1", "user-1", entities.ListingStatusActive),
		waiting,
	})
	ctx := context.Background()
	title := "Clio V Intens"

	_, err := h.update.Execute(ctx, UpdateListingCommand{Principal: member("user-2"), ListingID: "listing-1", Patch: entities.ListingPatch{Title: &title}})
	require.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	_, err = h.update.Execute(ctx, UpdateListingCommand{Principal: member("user-1"), ListingID: "listing-1", Patch: entities.ListingPatch{Title: &title}, ExpectedVersion: 7})
	require.ErrorIs(t, err, domainerrors.ErrVersionConflict)

	_, err = h.update.Execute(ctx, UpdateListingCommand{Principal: member("admin-1"), ListingID: "waiting", Patch: entities.ListingPatch{Title: &title}})
	require.ErrorIs(t, err, domainerrors.ErrInvalidStatusTransition)

	moderated, err := h.update.Execute(ctx, UpdateListingCommand{Principal: member("mod-1"), ListingID: "listing-1", Patch: entities.ListingPatch{Title: &title}})
	require.NoError(t, err)
	require.Equal(t, "Clio V Intens", moderated.Title)
}

func TestBulkRejectCountsMissingListings(t *testing.T) {
	h := newHarness([]entities.Listing{
		seededListing("a", "user-1", entities.ListingStatusPendingValidation),
		seededListing("c", "user-2", entities.ListingStatusPendingValidation),
	})
	ctx := context.Background()

	result, err := h.moderation.BulkReject(ctx, BulkModerationCommand{
		Principal:  member("admin-1"),
		ListingIDs: []string{"a", "b", "c"},
		Reason:     "duplicate listing",
	})
	require.NoError(t, err)
	require.Equal(t, 2, result.SuccessCount)
	require.Equal(t, 1, result.ErrorCount)

	for _, id := range []string{"a", "c"} {
		stored := h.listing(t, id)
		require.Equal(t, entities.ListingStatusRejected, stored.Status)
		require.Equal(t, "duplicate listing", stored.RejectionReason)
	}
	require.Len(t, h.notifications(t, "user-1", entities.NotificationActionRejected), 1)

	entries, err := h.store.ListAudit(ctx, "", 0)
	require.NoError(t, err)
	var summary *entities.AuditEntry
	for i := range entries {
		if entries[i].Action == entities.AuditActionBulkReject {
			summary = &entries[i]
		}
	}
	require.NotNil(t, summary)
	require.Equal(t, []string{"b"}, summary.Metadata["failed_ids"])
}

func TestBulkRejectRequiresReason(t *testing.T) {
	h := newHarness(nil)
	_, err := h.moderation.BulkReject(context.Background(), BulkModerationCommand{
		Principal:  member("admin-1"),
		ListingIDs: []string{"a"},
	})
	require.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestModerationRequiresStaff(t *testing.T) {
	h := newHarness([]entities.Listing{seededListing("a", "user-1", entities.ListingStatusPendingValidation)})
	ctx := context.Background()

	err := h.moderation.Approve(ctx, ApproveListingCommand{Principal: member("user-2"), ListingID: "a"})
	require.ErrorIs(t, err, domainerrors.ErrUnauthorized)
	_, err = h.moderation.BulkApprove(ctx, BulkModerationCommand{Principal: entities.Principal{}, ListingIDs: []string{"a"}})
	require.ErrorIs(t, err, domainerrors.ErrUnauthorized)
	require.Equal(t, entities.ListingStatusPendingValidation, h.listing(t, "a").Status)
}

func TestBreakGlassEmailCanModerate(t *testing.T) {
	h := newHarness([]entities.Listing{seededListing("a", "user-1", entities.ListingStatusPendingValidation)})
	operator := entities.Principal{UserID: "ops-without-profile", Email: "OPS@autoboard.test"}

	require.NoError(t, h.moderation.Approve(context.Background(), ApproveListingCommand{Principal: operator, ListingID: "a"}))
	require.Equal(t, entities.ListingStatusActive, h.listing(t, "a").Status)
}

func TestReapproveRefiresNotifications(t *testing.T) {
	h := newHarness([]entities.Listing{
		seededListing("a", "user-1", entities.ListingStatusPendingValidation),
		seededListing("similar", "user-2", entities.ListingStatusActive),
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.NoError(t, h.moderation.Approve(ctx, ApproveListingCommand{Principal: member("mod-1"), ListingID: "a"}))
	}
	require.Len(t, h.notifications(t, "user-1", entities.NotificationActionApproved), 2)
	require.Len(t, h.notifications(t, "user-2", entities.NotificationActionSimilarAvailable), 2)
	require.Contains(t, h.index.IndexedIDs(), "a")
}

func TestApproveRefusesUnverifiedGuestListing(t *testing.T) {
	waiting := seededListing("waiting", "", entities.ListingStatusWaitingEmailVerification)
	waiting.GuestEmail = "seller@example.com"
	h := newHarness([]entities.Listing{waiting})

	err := h.moderation.Approve(context.Background(), ApproveListingCommand{Principal: member("admin-1"), ListingID: "waiting"})
	require.ErrorIs(t, err, domainerrors.ErrInvalidStatusTransition)
}

func TestDeleteByAdminIsAuditedAndNotifiesFavoriters(t *testing.T) {
	h := newHarness([]entities.Listing{seededListing("a", "user-1", entities.ListingStatusActive)})
	ctx := context.Background()
	require.NoError(t, h.store.AddFavorite(ctx, "user-2", "a", h.clock.Now()))
	require.NoError(t, h.index.SyncListing(ctx, h.listing(t, "a")))

	require.NoError(t, h.remove.Execute(ctx, DeleteListingCommand{Principal: member("admin-1"), ListingID: "a"}))

	_, err := h.store.GetListing(ctx, "a")
	require.ErrorIs(t, err, domainerrors.ErrListingNotFound)
	require.Len(t, h.notifications(t, "user-1", entities.NotificationActionDeleted), 1)
	require.Len(t, h.notifications(t, "user-2", entities.NotificationActionDeleted), 1)
	require.NotContains(t, h.index.IndexedIDs(), "a")

	entries, err := h.store.ListAudit(ctx, "a", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, entities.AuditActionAdminDelete, entries[0].Action)
}

func TestDeleteByOwnerIsNotAudited(t *testing.T) {
	h := newHarness([]entities.Listing{seededListing("a", "user-1", entities.ListingStatusActive)})
	ctx := context.Background()

	require.ErrorIs(t, h.remove.Execute(ctx, DeleteListingCommand{Principal: member("user-2"), ListingID: "a"}), domainerrors.ErrUnauthorized)
	require.NoError(t, h.remove.Execute(ctx, DeleteListingCommand{Principal: member("user-1"), ListingID: "a"}))

	entries, err := h.store.ListAudit(ctx, "a", 0)
	require.NoError(t, err)
	require.Empty(t, entries)
}
