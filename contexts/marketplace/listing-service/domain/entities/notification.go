package entities

import "time"

type NotificationSeverity string

const (
	NotificationSeverityInfo    NotificationSeverity = "info"
	NotificationSeveritySuccess NotificationSeverity = "success"
	NotificationSeverityError   NotificationSeverity = "error"
)

// Action tags stored in notification metadata.
const (
	NotificationActionApproved         = "listing_approved"
	NotificationActionSimilarAvailable = "similar_listing_available"
	NotificationActionRejected         = "listing_rejected"
	NotificationActionPriceDrop        = "price_drop"
	NotificationActionPriceIncrease    = "price_increase"
	NotificationActionDeleted          = "listing_deleted"
	NotificationActionModerationNeeded = "moderation_required"
)

type Notification struct {
	NotificationID string
	RecipientID    string
	Title          string
	Message        string
	Severity       NotificationSeverity
	Link           string
	IsRead         bool
	ReadAt         *time.Time
	Metadata       map[string]any
	CreatedAt      time.Time
}

func (n Notification) Action() string {
	if n.Metadata == nil {
		return ""
	}
	action, _ := n.Metadata["action"].(string)
	return action
}
