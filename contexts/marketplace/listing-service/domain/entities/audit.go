package entities

import "time"

const (
	AuditActionApprove     = "listing.approve"
	AuditActionReject      = "listing.reject"
	AuditActionBulkApprove = "listing.bulk_approve"
	AuditActionBulkReject  = "listing.bulk_reject"
	AuditActionAdminDelete = "listing.admin_delete"
)

// AuditEntry is append-only.
type AuditEntry struct {
	AuditID     string
	ActorID     string
	Action      string
	TargetID    string
	Description string
	Metadata    map[string]any
	CreatedAt   time.Time
}
