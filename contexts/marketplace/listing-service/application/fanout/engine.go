package fanout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	application "autoboard/contexts/marketplace/listing-service/application"
	"autoboard/contexts/marketplace/listing-service/domain/entities"
	"autoboard/contexts/marketplace/listing-service/domain/services"
	"autoboard/contexts/marketplace/listing-service/ports"
)

const (
	RuleApprove          = "approve"
	RuleReject           = "reject"
	RulePriceChange      = "price_change"
	RuleDelete           = "delete"
	RuleModerationNeeded = "moderation_needed"
)

// Engine computes the recipient set of each lifecycle event and hands the
// drafts to the Dispatcher. Recipient sets are computed per rule and never
// merged across rules.
type Engine struct {
	Listings   ports.ListingRepository
	Favorites  ports.FavoriteRepository
	Profiles   ports.ProfileDirectory
	Dispatcher Dispatcher
	BaseURL    string
	Logger     *slog.Logger
}

// OnApprove notifies the owner and the owners of other active listings with
// the same brand and model.
func (e Engine) OnApprove(ctx context.Context, listing entities.Listing) DispatchReport {
	drafts := make([]entities.Notification, 0, 4)
	if owner := strings.TrimSpace(listing.OwnerID); owner != "" {
		drafts = append(drafts, entities.Notification{
			RecipientID: owner,
			Title:       "Listing approved",
			Message:     fmt.Sprintf("Your listing %q is now live.", listing.Title),
			Severity:    entities.NotificationSeveritySuccess,
			Link:        e.link(services.ListingDetailPath(listing.ListingID)),
			Metadata:    listingMetadata(entities.NotificationActionApproved, listing),
		})
	}

	similarOwners, lookupErr := e.similarListingOwners(ctx, listing)
	for _, recipient := range similarOwners {
		metadata := listingMetadata(entities.NotificationActionSimilarAvailable, listing)
		metadata["brand"] = listing.Brand
		metadata["model"] = listing.Model
		drafts = append(drafts, entities.Notification{
			RecipientID: recipient,
			Title:       "Similar vehicle now available",
			Message:     fmt.Sprintf("A %s %s similar to yours was just published.", listing.Brand, listing.Model),
			Severity:    entities.NotificationSeverityInfo,
			Link:        e.link(services.ListingDetailPath(listing.ListingID)),
			Metadata:    metadata,
		})
	}

	report := e.Dispatcher.Dispatch(ctx, RuleApprove, drafts)
	return e.withLookupError(report, listing, lookupErr)
}

func (e Engine) OnReject(ctx context.Context, listing entities.Listing, reason string) DispatchReport {
	owner := strings.TrimSpace(listing.OwnerID)
	if owner == "" {
		return DispatchReport{Rule: RuleReject}
	}
	message := fmt.Sprintf("Your listing %q was rejected.", listing.Title)
	metadata := listingMetadata(entities.NotificationActionRejected, listing)
	if reason = strings.TrimSpace(reason); reason != "" {
		message += " Reason: " + reason
		metadata["reason"] = reason
	}
	return e.Dispatcher.Dispatch(ctx, RuleReject, []entities.Notification{{
		RecipientID: owner,
		Title:       "Listing rejected",
		Message:     message,
		Severity:    entities.NotificationSeverityError,
		Link:        e.link(services.ListingDetailPath(listing.ListingID)),
		Metadata:    metadata,
	}})
}

// OnPriceChange notifies favoriters of a drop and only the owner of an increase.
func (e Engine) OnPriceChange(ctx context.Context, listing entities.Listing, oldPrice float64, newPrice float64) DispatchReport {
	change := services.ComputePriceChange(oldPrice, newPrice)
	switch change.Direction {
	case services.PriceDropped:
		favoriters, err := e.Favorites.ListFavoriterIDs(ctx, listing.ListingID)
		if err != nil {
			return e.withLookupError(DispatchReport{Rule: RulePriceChange}, listing, err)
		}
		recipients := uniqueRecipients(favoriters)
		drafts := make([]entities.Notification, 0, len(recipients))
		for _, recipient := range recipients {
			metadata := listingMetadata(entities.NotificationActionPriceDrop, listing)
			metadata["old_price"] = change.OldPrice
			metadata["new_price"] = change.NewPrice
			metadata["drop_amount"] = change.DropAmount
			metadata["drop_percent"] = change.DropPercent
			drafts = append(drafts, entities.Notification{
				RecipientID: recipient,
				Title:       "Price drop on a saved listing",
				Message: fmt.Sprintf("%q dropped by %s (-%s%%) to %s.",
					listing.Title, formatAmount(change.DropAmount), change.DropPercent, formatAmount(change.NewPrice)),
				Severity: entities.NotificationSeveritySuccess,
				Link:     e.link(services.ListingDetailPath(listing.ListingID)),
				Metadata: metadata,
			})
		}
		return e.Dispatcher.Dispatch(ctx, RulePriceChange, drafts)
	case services.PriceIncreased:
		owner := strings.TrimSpace(listing.OwnerID)
		if owner == "" {
			return DispatchReport{Rule: RulePriceChange}
		}
		metadata := listingMetadata(entities.NotificationActionPriceIncrease, listing)
		metadata["old_price"] = change.OldPrice
		metadata["new_price"] = change.NewPrice
		return e.Dispatcher.Dispatch(ctx, RulePriceChange, []entities.Notification{{
			RecipientID: owner,
			Title:       "Price updated",
			Message:     fmt.Sprintf("The price of %q is now %s.", listing.Title, formatAmount(change.NewPrice)),
			Severity:    entities.NotificationSeverityInfo,
			Link:        e.link(services.ListingDetailPath(listing.ListingID)),
			Metadata:    metadata,
		}})
	default:
		return DispatchReport{Rule: RulePriceChange}
	}
}

// DeletePlan holds drafts computed while the listing and its favorites
// still exist.
type DeletePlan struct {
	ListingID string
	Drafts    []entities.Notification
	LookupErr error
}

// PlanDelete must run before the listing is removed since deletion also
// drops its favorites.
func (e Engine) PlanDelete(ctx context.Context, listing entities.Listing) DeletePlan {
	favoriters, err := e.Favorites.ListFavoriterIDs(ctx, listing.ListingID)
	recipients := uniqueRecipients(append([]string{listing.OwnerID}, favoriters...))
	plan := DeletePlan{ListingID: listing.ListingID, LookupErr: err}
	for _, recipient := range recipients {
		plan.Drafts = append(plan.Drafts, entities.Notification{
			RecipientID: recipient,
			Title:       "Listing removed",
			Message:     fmt.Sprintf("The listing %q is no longer available.", listing.Title),
			Severity:    entities.NotificationSeverityInfo,
			Metadata:    listingMetadata(entities.NotificationActionDeleted, listing),
		})
	}
	return plan
}

func (e Engine) Deliver(ctx context.Context, plan DeletePlan) DispatchReport {
	report := e.Dispatcher.Dispatch(ctx, RuleDelete, plan.Drafts)
	return e.withLookupError(report, entities.Listing{ListingID: plan.ListingID}, plan.LookupErr)
}

// OnDelete is PlanDelete followed by Deliver, for callers that notify
// before removing the listing.
func (e Engine) OnDelete(ctx context.Context, listing entities.Listing) DispatchReport {
	return e.Deliver(ctx, e.PlanDelete(ctx, listing))
}

// OnSubmitNewForModeration notifies every admin and moderator.
func (e Engine) OnSubmitNewForModeration(ctx context.Context, listing entities.Listing) DispatchReport {
	staff, err := e.Profiles.ListUserIDsByRoles(ctx, services.ModerationRoles)
	if err != nil {
		return e.withLookupError(DispatchReport{Rule: RuleModerationNeeded}, listing, err)
	}
	recipients := uniqueRecipients(staff)
	drafts := make([]entities.Notification, 0, len(recipients))
	for _, recipient := range recipients {
		drafts = append(drafts, entities.Notification{
			RecipientID: recipient,
			Title:       "New listing to review",
			Message:     fmt.Sprintf("%q (%s %s) is waiting for moderation.", listing.Title, listing.Brand, listing.Model),
			Severity:    entities.NotificationSeverityInfo,
			Link:        e.link(services.ModerationQueuePath),
			Metadata:    listingMetadata(entities.NotificationActionModerationNeeded, listing),
		})
	}
	return e.Dispatcher.Dispatch(ctx, RuleModerationNeeded, drafts)
}

func (e Engine) similarListingOwners(ctx context.Context, listing entities.Listing) ([]string, error) {
	if strings.TrimSpace(listing.Brand) == "" || strings.TrimSpace(listing.Model) == "" {
		return nil, nil
	}
	similar, err := e.Listings.ListListings(ctx, ports.ListingFilter{
		Brand:    listing.Brand,
		Model:    listing.Model,
		Statuses: []entities.ListingStatus{entities.ListingStatusActive},
	})
	if err != nil {
		return nil, err
	}
	owners := make([]string, 0, len(similar))
	for _, item := range similar {
		if item.ListingID == listing.ListingID {
			continue
		}
		owners = append(owners, item.OwnerID)
	}
	return uniqueRecipients(owners, listing.OwnerID), nil
}

func (e Engine) withLookupError(report DispatchReport, listing entities.Listing, err error) DispatchReport {
	if err == nil {
		return report
	}
	application.ResolveLogger(e.Logger).Warn("notification recipient lookup failed",
		"event", "listing_notification_recipients_failed",
		"module", "marketplace/listing-service",
		"layer", "application",
		"rule", report.Rule,
		"listing_id", listing.ListingID,
		"error", err.Error(),
	)
	report.Err = errors.Join(report.Err, fmt.Errorf("recipient lookup: %w", err))
	return report
}

func (e Engine) link(path string) string {
	return strings.TrimRight(strings.TrimSpace(e.BaseURL), "/") + path
}

func listingMetadata(action string, listing entities.Listing) map[string]any {
	return map[string]any{
		"action":     action,
		"listing_id": listing.ListingID,
	}
}

func formatAmount(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
