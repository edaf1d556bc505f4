package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	httpadapter "autoboard/contexts/marketplace/listing-service/adapters/http"
	domainerrors "autoboard/contexts/marketplace/listing-service/domain/errors"
	listinghttp "autoboard/contexts/marketplace/listing-service/transport/http"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string, message string, details *listinghttp.ErrorDetails) {
	writeJSON(w, status, listinghttp.ErrorEnvelope{
		Status: "error",
		Error: listinghttp.ErrorResponse{
			Code:    code,
			Message: message,
			Details: details,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// writeDomainError maps use-case errors onto the public envelope. Store
// failures are logged and reported without their cause.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var (
		verr    *domainerrors.ValidationError
		quota   *domainerrors.QuotaExceededError
		content *domainerrors.ContentRejectedError
	)
	switch {
	case errors.As(err, &verr):
		fields := make([]listinghttp.FieldErrorDTO, 0, len(verr.Fields))
		for _, field := range verr.Fields {
			fields = append(fields, listinghttp.FieldErrorDTO{Field: field.Field, Message: field.Message})
		}
		writeError(w, http.StatusBadRequest, "validation_failed", domainerrors.ErrValidation.Error(), &listinghttp.ErrorDetails{Fields: fields})
	case errors.Is(err, domainerrors.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error(), nil)
	case errors.As(err, &quota):
		snapshot := httpadapter.MapQuota(quota.Snapshot)
		writeError(w, http.StatusForbidden, "quota_exceeded", domainerrors.ErrQuotaExceeded.Error(), &listinghttp.ErrorDetails{Quota: &snapshot})
	case errors.Is(err, domainerrors.ErrQuotaExceeded):
		writeError(w, http.StatusForbidden, "quota_exceeded", err.Error(), nil)
	case errors.As(err, &content):
		writeError(w, http.StatusUnprocessableEntity, "content_not_allowed", domainerrors.ErrContentNotAllowed.Error(), &listinghttp.ErrorDetails{Reasons: content.Reasons})
	case errors.Is(err, domainerrors.ErrContentNotAllowed):
		writeError(w, http.StatusUnprocessableEntity, "content_not_allowed", err.Error(), nil)
	case errors.Is(err, domainerrors.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "forbidden", err.Error(), nil)
	case errors.Is(err, domainerrors.ErrListingNotFound):
		writeError(w, http.StatusNotFound, "listing_not_found", err.Error(), nil)
	case errors.Is(err, domainerrors.ErrNotificationNotFound):
		writeError(w, http.StatusNotFound, "notification_not_found", err.Error(), nil)
	case errors.Is(err, domainerrors.ErrVerificationExpired):
		writeError(w, http.StatusGone, "verification_expired", err.Error(), nil)
	case errors.Is(err, domainerrors.ErrNoCodeIssued):
		writeError(w, http.StatusConflict, "no_code_issued", err.Error(), nil)
	case errors.Is(err, domainerrors.ErrAlreadyVerified):
		writeError(w, http.StatusConflict, "already_verified", err.Error(), nil)
	case errors.Is(err, domainerrors.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error(), nil)
	case errors.Is(err, domainerrors.ErrVersionConflict):
		writeError(w, http.StatusConflict, "version_conflict", err.Error(), nil)
	case errors.Is(err, domainerrors.ErrTooManyAttempts):
		writeError(w, http.StatusTooManyRequests, "too_many_attempts", err.Error(), nil)
	case errors.Is(err, domainerrors.ErrPersistence):
		s.logger.Error("listing store failure",
			"event", "http_store_failure",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err.Error(),
		)
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", domainerrors.ErrPersistence.Error(), nil)
	default:
		s.logger.Error("unhandled request error",
			"event", "http_unhandled_error",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err.Error(),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error", nil)
	}
}
