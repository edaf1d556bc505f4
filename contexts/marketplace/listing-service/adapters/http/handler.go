package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "autoboard/contexts/marketplace/listing-service/application"
	"autoboard/contexts/marketplace/listing-service/application/commands"
	"autoboard/contexts/marketplace/listing-service/application/queries"
	"autoboard/contexts/marketplace/listing-service/domain/entities"
	domainerrors "autoboard/contexts/marketplace/listing-service/domain/errors"
	httptransport "autoboard/contexts/marketplace/listing-service/transport/http"
)

type Handler struct {
	Submit        commands.SubmitListingUseCase
	Update        commands.UpdateListingUseCase
	Delete        commands.DeleteListingUseCase
	Verification  commands.VerificationUseCase
	Moderation    commands.ModerationUseCase
	Favorites     commands.FavoritesUseCase
	Notifications commands.NotificationInboxUseCase
	Queries       queries.QueryUseCase
	Quota         queries.QuotaEvaluator
	Logger        *slog.Logger
}

// SubmitListingHandler godoc
// @Summary Submit a vehicle listing
// @Description Authenticated sellers go straight to moderation. Guests must supply guest_email and confirm the mailed code.
// @Tags listings
// @Accept json
// @Produce json
// @Param X-Request-Id header string false "Request correlation id"
// @Param request body httptransport.SubmitListingRequest true "Listing payload"
// @Success 201 {object} httptransport.ListingResponse
// @Failure 400 {object} httptransport.ErrorEnvelope
// @Failure 403 {object} httptransport.ErrorEnvelope
// @Failure 422 {object} httptransport.ErrorEnvelope
// @Failure 500 {object} httptransport.ErrorEnvelope
// @Router /v1/listings [post]
func (h Handler) SubmitListingHandler(
	ctx context.Context,
	principal entities.Principal,
	req httptransport.SubmitListingRequest,
) (httptransport.ListingResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Info("submit listing request received",
		"event", "http_submit_listing_received",
		"module", "marketplace/listing-service",
		"layer", "transport",
		"authenticated", principal.Authenticated(),
	)

	listing, err := h.Submit.Execute(ctx, commands.SubmitListingCommand{
		Principal:  principal,
		GuestEmail: req.GuestEmail,
		Payload:    mapPayload(req.Listing),
	})
	if err != nil {
		logger.Warn("submit listing request failed",
			"event", "http_submit_listing_failed",
			"module", "marketplace/listing-service",
			"layer", "transport",
			"error", err.Error(),
		)
		return httptransport.ListingResponse{}, err
	}
	return httptransport.ListingResponse{Item: mapListing(listing)}, nil
}

// UpdateListingHandler godoc
// @Summary Edit a listing
// @Description Brand, model, price or year edits send an active listing back to moderation.
// @Tags listings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param listing_id path string true "Listing id"
// @Param request body httptransport.UpdateListingRequest true "Fields to change"
// @Success 200 {object} httptransport.ListingResponse
// @Failure 400 {object} httptransport.ErrorEnvelope
// @Failure 401 {object} httptransport.ErrorEnvelope
// @Failure 404 {object} httptransport.ErrorEnvelope
// @Failure 409 {object} httptransport.ErrorEnvelope
// @Router /v1/listings/{listing_id} [patch]
func (h Handler) UpdateListingHandler(
	ctx context.Context,
	principal entities.Principal,
	listingID string,
	req httptransport.UpdateListingRequest,
) (httptransport.ListingResponse, error) {
	listing, err := h.Update.Execute(ctx, commands.UpdateListingCommand{
		Principal:       principal,
		ListingID:       listingID,
		Patch:           mapPatch(req),
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		return httptransport.ListingResponse{}, err
	}
	return httptransport.ListingResponse{Item: mapListing(listing)}, nil
}

// DeleteListingHandler godoc
// @Summary Delete a listing
// @Tags listings
// @Security BearerAuth
// @Param listing_id path string true "Listing id"
// @Success 204
// @Failure 401 {object} httptransport.ErrorEnvelope
// @Failure 404 {object} httptransport.ErrorEnvelope
// @Router /v1/listings/{listing_id} [delete]
func (h Handler) DeleteListingHandler(ctx context.Context, principal entities.Principal, listingID string) error {
	return h.Delete.Execute(ctx, commands.DeleteListingCommand{
		Principal: principal,
		ListingID: listingID,
	})
}

// ListListingsHandler godoc
// @Summary Browse active listings
// @Tags listings
// @Produce json
// @Param brand query string false "Brand filter"
// @Param model query string false "Model filter"
// @Param limit query int false "Page size (max 200)"
// @Success 200 {object} httptransport.ListListingsResponse
// @Router /v1/listings [get]
func (h Handler) ListListingsHandler(ctx context.Context, req httptransport.ListListingsRequest) (httptransport.ListListingsResponse, error) {
	items, err := h.Queries.ListPublic(ctx, queries.ListPublicQuery{
		Brand: req.Brand,
		Model: req.Model,
		Limit: req.Limit,
	})
	if err != nil {
		return httptransport.ListListingsResponse{}, err
	}
	return httptransport.ListListingsResponse{Items: mapListings(items)}, nil
}

func (h Handler) GetListingHandler(ctx context.Context, listingID string) (httptransport.ListingResponse, error) {
	listing, err := h.Queries.GetPublic(ctx, listingID)
	if err != nil {
		return httptransport.ListingResponse{}, err
	}
	return httptransport.ListingResponse{Item: mapListing(listing)}, nil
}

// ResendVerificationHandler godoc
// @Summary Re-issue the guest verification code
// @Tags verification
// @Param listing_id path string true "Listing id"
// @Success 202 {object} httptransport.VerificationResponse
// @Failure 404 {object} httptransport.ErrorEnvelope
// @Failure 409 {object} httptransport.ErrorEnvelope
// @Router /v1/listings/{listing_id}/verification [post]
func (h Handler) ResendVerificationHandler(ctx context.Context, listingID string) (httptransport.VerificationResponse, error) {
	if err := h.Verification.Issue(ctx, commands.IssueVerificationCommand{ListingID: listingID}); err != nil {
		return httptransport.VerificationResponse{}, err
	}
	return httptransport.VerificationResponse{ListingID: strings.TrimSpace(listingID)}, nil
}

// ConfirmVerificationHandler godoc
// @Summary Confirm a guest listing with the mailed code
// @Tags verification
// @Accept json
// @Produce json
// @Param listing_id path string true "Listing id"
// @Param request body httptransport.ConfirmVerificationRequest true "Six digit code"
// @Success 200 {object} httptransport.VerificationResponse
// @Failure 404 {object} httptransport.ErrorEnvelope
// @Failure 409 {object} httptransport.ErrorEnvelope
// @Failure 410 {object} httptransport.ErrorEnvelope
// @Failure 429 {object} httptransport.ErrorEnvelope
// @Router /v1/listings/{listing_id}/verification/confirm [post]
func (h Handler) ConfirmVerificationHandler(
	ctx context.Context,
	listingID string,
	req httptransport.ConfirmVerificationRequest,
) (httptransport.VerificationResponse, error) {
	verified, err := h.Verification.Validate(ctx, commands.ValidateVerificationCommand{
		ListingID: listingID,
		Code:      req.Code,
	})
	if err != nil {
		return httptransport.VerificationResponse{}, err
	}
	return httptransport.VerificationResponse{
		ListingID: strings.TrimSpace(listingID),
		Verified:  verified,
	}, nil
}

func (h Handler) AddFavoriteHandler(ctx context.Context, principal entities.Principal, listingID string) error {
	return h.Favorites.Add(ctx, commands.FavoriteCommand{Principal: principal, ListingID: listingID})
}

func (h Handler) RemoveFavoriteHandler(ctx context.Context, principal entities.Principal, listingID string) error {
	return h.Favorites.Remove(ctx, commands.FavoriteCommand{Principal: principal, ListingID: listingID})
}

func (h Handler) ListMyListingsHandler(ctx context.Context, principal entities.Principal) (httptransport.ListListingsResponse, error) {
	items, err := h.Queries.ListOwned(ctx, principal)
	if err != nil {
		return httptransport.ListListingsResponse{}, err
	}
	return httptransport.ListListingsResponse{Items: mapListings(items)}, nil
}

// MyQuotaHandler godoc
// @Summary Show the caller's listing quota
// @Tags listings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} httptransport.QuotaResponse
// @Failure 401 {object} httptransport.ErrorEnvelope
// @Router /v1/me/quota [get]
func (h Handler) MyQuotaHandler(ctx context.Context, principal entities.Principal) (httptransport.QuotaResponse, error) {
	if !principal.Authenticated() {
		return httptransport.QuotaResponse{}, domainerrors.ErrUnauthorized
	}
	return MapQuota(h.Quota.Evaluate(ctx, principal.UserID)), nil
}

func (h Handler) ListNotificationsHandler(
	ctx context.Context,
	principal entities.Principal,
	unreadOnly bool,
	limit int,
) (httptransport.ListNotificationsResponse, error) {
	items, err := h.Queries.ListNotifications(ctx, principal, unreadOnly, limit)
	if err != nil {
		return httptransport.ListNotificationsResponse{}, err
	}
	return httptransport.ListNotificationsResponse{Items: mapNotifications(items)}, nil
}

func (h Handler) MarkNotificationReadHandler(ctx context.Context, principal entities.Principal, notificationID string) error {
	return h.Notifications.MarkRead(ctx, principal, notificationID)
}

func (h Handler) MarkAllNotificationsReadHandler(ctx context.Context, principal entities.Principal) (httptransport.MarkAllReadResponse, error) {
	marked, err := h.Notifications.MarkAllRead(ctx, principal)
	if err != nil {
		return httptransport.MarkAllReadResponse{}, err
	}
	return httptransport.MarkAllReadResponse{Marked: marked}, nil
}

// ModerationQueueHandler godoc
// @Summary List listings awaiting moderation
// @Tags moderation
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (max 200)"
// @Success 200 {object} httptransport.ListListingsResponse
// @Failure 401 {object} httptransport.ErrorEnvelope
// @Router /v1/admin/moderation/queue [get]
func (h Handler) ModerationQueueHandler(ctx context.Context, principal entities.Principal, limit int) (httptransport.ListListingsResponse, error) {
	items, err := h.Queries.ModerationQueue(ctx, principal, limit)
	if err != nil {
		return httptransport.ListListingsResponse{}, err
	}
	return httptransport.ListListingsResponse{Items: mapListings(items)}, nil
}

// ApproveListingHandler godoc
// @Summary Approve a listing
// @Tags moderation
// @Security BearerAuth
// @Param listing_id path string true "Listing id"
// @Success 200 {object} httptransport.ActionResponse
// @Failure 401 {object} httptransport.ErrorEnvelope
// @Failure 404 {object} httptransport.ErrorEnvelope
// @Failure 409 {object} httptransport.ErrorEnvelope
// @Router /v1/admin/listings/{listing_id}/approve [post]
func (h Handler) ApproveListingHandler(ctx context.Context, principal entities.Principal, listingID string) error {
	return h.Moderation.Approve(ctx, commands.ApproveListingCommand{
		Principal: principal,
		ListingID: listingID,
	})
}

// RejectListingHandler godoc
// @Summary Reject a listing
// @Tags moderation
// @Accept json
// @Security BearerAuth
// @Param listing_id path string true "Listing id"
// @Param request body httptransport.RejectListingRequest false "Rejection reason"
// @Success 200 {object} httptransport.ActionResponse
// @Failure 401 {object} httptransport.ErrorEnvelope
// @Failure 404 {object} httptransport.ErrorEnvelope
// @Router /v1/admin/listings/{listing_id}/reject [post]
func (h Handler) RejectListingHandler(
	ctx context.Context,
	principal entities.Principal,
	listingID string,
	req httptransport.RejectListingRequest,
) error {
	return h.Moderation.Reject(ctx, commands.RejectListingCommand{
		Principal: principal,
		ListingID: listingID,
		Reason:    req.Reason,
	})
}

// BulkModerationHandler godoc
// @Summary Approve or reject many listings
// @Description Items are processed one by one. A failing id is counted and never aborts the batch.
// @Tags moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body httptransport.BulkModerationRequest true "Listing ids"
// @Success 200 {object} httptransport.BulkModerationResponse
// @Failure 400 {object} httptransport.ErrorEnvelope
// @Failure 401 {object} httptransport.ErrorEnvelope
// @Router /v1/admin/listings/bulk-approve [post]
// @Router /v1/admin/listings/bulk-reject [post]
func (h Handler) BulkModerationHandler(
	ctx context.Context,
	principal entities.Principal,
	approve bool,
	req httptransport.BulkModerationRequest,
) (httptransport.BulkModerationResponse, error) {
	cmd := commands.BulkModerationCommand{
		Principal:  principal,
		ListingIDs: req.ListingIDs,
		Reason:     req.Reason,
	}
	var (
		result commands.BulkModerationResult
		err    error
	)
	if approve {
		result, err = h.Moderation.BulkApprove(ctx, cmd)
	} else {
		result, err = h.Moderation.BulkReject(ctx, cmd)
	}
	if err != nil {
		return httptransport.BulkModerationResponse{}, err
	}
	return httptransport.BulkModerationResponse{
		SuccessCount: result.SuccessCount,
		ErrorCount:   result.ErrorCount,
	}, nil
}

func (h Handler) ListAuditHandler(
	ctx context.Context,
	principal entities.Principal,
	targetID string,
	limit int,
) (httptransport.ListAuditResponse, error) {
	items, err := h.Queries.ListAudit(ctx, principal, targetID, limit)
	if err != nil {
		return httptransport.ListAuditResponse{}, err
	}
	out := make([]httptransport.AuditEntryDTO, 0, len(items))
	for _, item := range items {
		out = append(out, httptransport.AuditEntryDTO{
			AuditID:     item.AuditID,
			ActorID:     item.ActorID,
			Action:      item.Action,
			TargetID:    item.TargetID,
			Description: item.Description,
			Metadata:    item.Metadata,
			CreatedAt:   formatTime(item.CreatedAt),
		})
	}
	return httptransport.ListAuditResponse{Items: out}, nil
}

func mapPayload(dto httptransport.ListingPayloadDTO) entities.ListingPayload {
	return entities.ListingPayload{
		VehicleType:  entities.VehicleType(strings.ToLower(strings.TrimSpace(dto.VehicleType))),
		Brand:        dto.Brand,
		Model:        dto.Model,
		Price:        dto.Price,
		Year:         dto.Year,
		Title:        dto.Title,
		Description:  dto.Description,
		Mileage:      dto.Mileage,
		FuelType:     dto.FuelType,
		Transmission: dto.Transmission,
		EngineSizeCC: dto.EngineSizeCC,
		Location:     dto.Location,
	}
}

func mapPatch(req httptransport.UpdateListingRequest) entities.ListingPatch {
	patch := entities.ListingPatch{
		Brand:        req.Brand,
		Model:        req.Model,
		Price:        req.Price,
		Year:         req.Year,
		Title:        req.Title,
		Description:  req.Description,
		Mileage:      req.Mileage,
		FuelType:     req.FuelType,
		Transmission: req.Transmission,
		EngineSizeCC: req.EngineSizeCC,
		Location:     req.Location,
	}
	if req.VehicleType != nil {
		vehicleType := entities.VehicleType(strings.ToLower(strings.TrimSpace(*req.VehicleType)))
		patch.VehicleType = &vehicleType
	}
	return patch
}

func mapListing(item entities.Listing) httptransport.ListingDTO {
	return httptransport.ListingDTO{
		ListingID:       item.ListingID,
		OwnerID:         item.OwnerID,
		Status:          string(item.Status),
		VehicleType:     string(item.VehicleType),
		Brand:           item.Brand,
		Model:           item.Model,
		Price:           item.Price,
		Year:            item.Year,
		Title:           item.Title,
		Description:     item.Description,
		Mileage:         item.Mileage,
		FuelType:        item.FuelType,
		Transmission:    item.Transmission,
		EngineSizeCC:    item.EngineSizeCC,
		Location:        item.Location,
		EmailVerified:   item.EmailVerified,
		RejectionReason: item.RejectionReason,
		Version:         item.Version,
		CreatedAt:       formatTime(item.CreatedAt),
		UpdatedAt:       formatTime(item.UpdatedAt),
	}
}

func mapListings(items []entities.Listing) []httptransport.ListingDTO {
	out := make([]httptransport.ListingDTO, 0, len(items))
	for _, item := range items {
		out = append(out, mapListing(item))
	}
	return out
}

func mapNotifications(items []entities.Notification) []httptransport.NotificationDTO {
	out := make([]httptransport.NotificationDTO, 0, len(items))
	for _, item := range items {
		dto := httptransport.NotificationDTO{
			NotificationID: item.NotificationID,
			Title:          item.Title,
			Message:        item.Message,
			Severity:       string(item.Severity),
			Link:           item.Link,
			IsRead:         item.IsRead,
			Metadata:       item.Metadata,
			CreatedAt:      formatTime(item.CreatedAt),
		}
		if item.ReadAt != nil {
			dto.ReadAt = formatTime(*item.ReadAt)
		}
		out = append(out, dto)
	}
	return out
}

// MapQuota is shared with the error envelope so a quota refusal carries the
// same snapshot shape as GET /v1/me/quota.
func MapQuota(snapshot entities.QuotaSnapshot) httptransport.QuotaResponse {
	return httptransport.QuotaResponse{
		Role:           string(snapshot.Role),
		CurrentCount:   snapshot.CurrentCount,
		MaxLimit:       snapshot.MaxLimit,
		RemainingSlots: snapshot.RemainingSlots,
		CanCreate:      snapshot.CanCreate,
		IsFounder:      snapshot.IsFounder,
		Degraded:       snapshot.Degraded,
	}
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
