package commands

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	application "autoboard/contexts/marketplace/listing-service/application"
	"autoboard/contexts/marketplace/listing-service/application/fanout"
	"autoboard/contexts/marketplace/listing-service/domain/entities"
	domainerrors "autoboard/contexts/marketplace/listing-service/domain/errors"
	"autoboard/contexts/marketplace/listing-service/domain/services"
	"autoboard/contexts/marketplace/listing-service/ports"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type ApproveListingCommand struct {
	Principal entities.Principal
	ListingID string
}

type RejectListingCommand struct {
	Principal entities.Principal
	ListingID string
	Reason    string
}

type BulkModerationCommand struct {
	Principal  entities.Principal
	ListingIDs []string
	Reason     string
}

type BulkModerationResult struct {
	SuccessCount int `json:"success_count"`
	ErrorCount   int `json:"error_count"`
}

// ModerationUseCase applies admin decisions. Authorization happens before
// any mutation; notifications, audit and invalidation are best effort.
type ModerationUseCase struct {
	Listings     ports.ListingRepository
	Audit        ports.AuditRepository
	Authorizer   application.Authorizer
	FanOut       fanout.Engine
	Invalidation Invalidation
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Metrics      ports.Metrics
	Logger       *slog.Logger
}

func (uc ModerationUseCase) Approve(ctx context.Context, cmd ApproveListingCommand) error {
	ctx, span := tracer.Start(ctx, "listing.moderation.approve")
	defer span.End()

	if _, err := uc.Authorizer.Require(ctx, cmd.Principal, services.ModerationRoles); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	err := uc.approveOne(ctx, cmd.Principal, strings.TrimSpace(cmd.ListingID))
	uc.recordOutcome("approve", err)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (uc ModerationUseCase) Reject(ctx context.Context, cmd RejectListingCommand) error {
	ctx, span := tracer.Start(ctx, "listing.moderation.reject")
	defer span.End()

	if _, err := uc.Authorizer.Require(ctx, cmd.Principal, services.ModerationRoles); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	err := uc.rejectOne(ctx, cmd.Principal, strings.TrimSpace(cmd.ListingID), strings.TrimSpace(cmd.Reason))
	uc.recordOutcome("reject", err)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (uc ModerationUseCase) BulkApprove(ctx context.Context, cmd BulkModerationCommand) (BulkModerationResult, error) {
	return uc.bulk(ctx, cmd, entities.AuditActionBulkApprove, func(ctx context.Context, listingID string) error {
		return uc.approveOne(ctx, cmd.Principal, listingID)
	})
}

func (uc ModerationUseCase) BulkReject(ctx context.Context, cmd BulkModerationCommand) (BulkModerationResult, error) {
	reason := strings.TrimSpace(cmd.Reason)
	if reason == "" {
		return BulkModerationResult{}, domainerrors.NewValidationError(domainerrors.FieldError{Field: "reason", Message: "is required for bulk rejection"})
	}
	return uc.bulk(ctx, cmd, entities.AuditActionBulkReject, func(ctx context.Context, listingID string) error {
		return uc.rejectOne(ctx, cmd.Principal, listingID, reason)
	})
}

// bulk processes ids one at a time. Each distinct id is attempted exactly
// once and a failing id never stops the batch.
func (uc ModerationUseCase) bulk(
	ctx context.Context,
	cmd BulkModerationCommand,
	action string,
	apply func(ctx context.Context, listingID string) error,
) (BulkModerationResult, error) {
	ctx, span := tracer.Start(ctx, action)
	defer span.End()

	logger := application.ResolveLogger(uc.Logger)
	if _, err := uc.Authorizer.Require(ctx, cmd.Principal, services.ModerationRoles); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return BulkModerationResult{}, err
	}

	result := BulkModerationResult{}
	seen := make(map[string]struct{}, len(cmd.ListingIDs))
	var failedIDs []string
	for _, raw := range cmd.ListingIDs {
		listingID := strings.TrimSpace(raw)
		if listingID == "" {
			result.ErrorCount++
			continue
		}
		if _, dup := seen[listingID]; dup {
			continue
		}
		seen[listingID] = struct{}{}

		if err := apply(ctx, listingID); err != nil {
			result.ErrorCount++
			failedIDs = append(failedIDs, listingID)
			uc.recordOutcome(action, err)
			logger.Warn("bulk moderation item failed",
				"event", "listing_bulk_moderation_item_failed",
				"module", "marketplace/listing-service",
				"layer", "application",
				"action", action,
				"listing_id", listingID,
				"error", err.Error(),
			)
			continue
		}
		uc.recordOutcome(action, nil)
		result.SuccessCount++
	}
	span.SetAttributes(
		attribute.Int("listing.bulk.success_count", result.SuccessCount),
		attribute.Int("listing.bulk.error_count", result.ErrorCount),
	)

	uc.writer().append(ctx, entities.AuditEntry{
		ActorID:     cmd.Principal.UserID,
		Action:      action,
		Description: "bulk moderation",
		Metadata: map[string]any{
			"listing_ids":   keys(seen),
			"failed_ids":    failedIDs,
			"success_count": result.SuccessCount,
			"error_count":   result.ErrorCount,
			"reason":        strings.TrimSpace(cmd.Reason),
		},
	})

	logger.Info("bulk moderation completed",
		"event", "listing_bulk_moderation_completed",
		"module", "marketplace/listing-service",
		"layer", "application",
		"action", action,
		"success_count", result.SuccessCount,
		"error_count", result.ErrorCount,
	)
	return result, nil
}

// approveOne re-fires the approval notifications even when the listing is
// already active.
func (uc ModerationUseCase) approveOne(ctx context.Context, actor entities.Principal, listingID string) error {
	logger := application.ResolveLogger(uc.Logger)
	listing, err := uc.Listings.GetListing(ctx, listingID)
	if err != nil {
		return err
	}
	if !services.CanModerate(listing.Status) {
		return domainerrors.ErrInvalidStatusTransition
	}

	previous := listing.Status
	listing.Status = entities.ListingStatusActive
	listing.RejectionReason = ""
	listing.UpdatedAt = uc.Clock.Now().UTC()
	updated, err := uc.Listings.UpdateListing(ctx, listing, listing.Version)
	if err != nil {
		return err
	}

	logger.Info("listing approved",
		"event", "listing_approved",
		"module", "marketplace/listing-service",
		"layer", "application",
		"listing_id", updated.ListingID,
		"previous_status", string(previous),
		"actor_id", actor.UserID,
	)
	logDispatch(logger, updated.ListingID, uc.FanOut.OnApprove(ctx, updated))
	uc.writer().append(ctx, entities.AuditEntry{
		ActorID:     actor.UserID,
		Action:      entities.AuditActionApprove,
		TargetID:    updated.ListingID,
		Description: "listing approved",
		Metadata: map[string]any{
			"previous_status": string(previous),
		},
	})
	uc.Invalidation.Refresh(ctx, updated)
	return nil
}

func (uc ModerationUseCase) rejectOne(ctx context.Context, actor entities.Principal, listingID string, reason string) error {
	logger := application.ResolveLogger(uc.Logger)
	listing, err := uc.Listings.GetListing(ctx, listingID)
	if err != nil {
		return err
	}
	if !services.CanModerate(listing.Status) {
		return domainerrors.ErrInvalidStatusTransition
	}

	previous := listing.Status
	listing.Status = entities.ListingStatusRejected
	listing.RejectionReason = reason
	listing.UpdatedAt = uc.Clock.Now().UTC()
	updated, err := uc.Listings.UpdateListing(ctx, listing, listing.Version)
	if err != nil {
		return err
	}

	logger.Info("listing rejected",
		"event", "listing_rejected",
		"module", "marketplace/listing-service",
		"layer", "application",
		"listing_id", updated.ListingID,
		"previous_status", string(previous),
		"actor_id", actor.UserID,
	)
	logDispatch(logger, updated.ListingID, uc.FanOut.OnReject(ctx, updated, reason))
	uc.writer().append(ctx, entities.AuditEntry{
		ActorID:     actor.UserID,
		Action:      entities.AuditActionReject,
		TargetID:    updated.ListingID,
		Description: "listing rejected",
		Metadata: map[string]any{
			"previous_status": string(previous),
			"reason":          reason,
		},
	})
	uc.Invalidation.Refresh(ctx, updated)
	return nil
}

func (uc ModerationUseCase) writer() auditWriter {
	return auditWriter{Audit: uc.Audit, Clock: uc.Clock, IDGen: uc.IDGen, Logger: uc.Logger}
}

func (uc ModerationUseCase) recordOutcome(action string, err error) {
	if uc.Metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	uc.Metrics.ModerationAction(action, outcome)
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
