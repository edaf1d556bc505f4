package services

import (
	"strings"

	"autoboard/contexts/marketplace/listing-service/domain/entities"
)

// SensitiveFields are the attributes whose change forces re-moderation.
var SensitiveFields = []string{"brand", "model", "price", "year"}

// ChangedSensitiveFields lists the sensitive fields that differ between the
// stored payload and the edited one.
func ChangedSensitiveFields(before entities.ListingPayload, after entities.ListingPayload) []string {
	var changed []string
	if !strings.EqualFold(strings.TrimSpace(before.Brand), strings.TrimSpace(after.Brand)) {
		changed = append(changed, "brand")
	}
	if !strings.EqualFold(strings.TrimSpace(before.Model), strings.TrimSpace(after.Model)) {
		changed = append(changed, "model")
	}
	if before.Price != after.Price {
		changed = append(changed, "price")
	}
	if before.Year != after.Year {
		changed = append(changed, "year")
	}
	return changed
}

// StatusAfterEdit applies the edit policy:
//   - rejected always goes back to pending_validation
//   - active stays active unless a sensitive field changed
//   - every other status goes to pending_validation
func StatusAfterEdit(current entities.ListingStatus, sensitiveChanged bool) entities.ListingStatus {
	switch current {
	case entities.ListingStatusRejected:
		return entities.ListingStatusPendingValidation
	case entities.ListingStatusActive:
		if sensitiveChanged {
			return entities.ListingStatusPendingValidation
		}
		return entities.ListingStatusActive
	default:
		return entities.ListingStatusPendingValidation
	}
}

// CanModerate reports whether an admin decision may be applied. Listings still
// waiting for the guest's email confirmation are not reviewable yet.
func CanModerate(current entities.ListingStatus) bool {
	return current.Valid() && current != entities.ListingStatusWaitingEmailVerification
}

// InitialStatus picks the status of a freshly created listing.
func InitialStatus(authenticated bool) entities.ListingStatus {
	if authenticated {
		return entities.ListingStatusPendingValidation
	}
	return entities.ListingStatusWaitingEmailVerification
}
