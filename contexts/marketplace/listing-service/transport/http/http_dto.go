package httptransport

type ListingPayloadDTO struct {
	VehicleType  string  `json:"vehicle_type"`
	Brand        string  `json:"brand"`
	Model        string  `json:"model"`
	Price        float64 `json:"price"`
	Year         int     `json:"year"`
	Title        string  `json:"title"`
	Description  string  `json:"description,omitempty"`
	Mileage      int     `json:"mileage,omitempty"`
	FuelType     string  `json:"fuel_type,omitempty"`
	Transmission string  `json:"transmission,omitempty"`
	EngineSizeCC int     `json:"engine_size_cc,omitempty"`
	Location     string  `json:"location,omitempty"`
}

type SubmitListingRequest struct {
	GuestEmail string            `json:"guest_email,omitempty"`
	Listing    ListingPayloadDTO `json:"listing"`
}

// UpdateListingRequest only touches fields that are present in the body.
type UpdateListingRequest struct {
	ExpectedVersion int64    `json:"expected_version,omitempty"`
	VehicleType     *string  `json:"vehicle_type,omitempty"`
	Brand           *string  `json:"brand,omitempty"`
	Model           *string  `json:"model,omitempty"`
	Price           *float64 `json:"price,omitempty"`
	Year            *int     `json:"year,omitempty"`
	Title           *string  `json:"title,omitempty"`
	Description     *string  `json:"description,omitempty"`
	Mileage         *int     `json:"mileage,omitempty"`
	FuelType        *string  `json:"fuel_type,omitempty"`
	Transmission    *string  `json:"transmission,omitempty"`
	EngineSizeCC    *int     `json:"engine_size_cc,omitempty"`
	Location        *string  `json:"location,omitempty"`
}

type ListingDTO struct {
	ListingID       string  `json:"listing_id"`
	OwnerID         string  `json:"owner_id,omitempty"`
	Status          string  `json:"status"`
	VehicleType     string  `json:"vehicle_type"`
	Brand           string  `json:"brand"`
	Model           string  `json:"model"`
	Price           float64 `json:"price"`
	Year            int     `json:"year"`
	Title           string  `json:"title"`
	Description     string  `json:"description,omitempty"`
	Mileage         int     `json:"mileage,omitempty"`
	FuelType        string  `json:"fuel_type,omitempty"`
	Transmission    string  `json:"transmission,omitempty"`
	EngineSizeCC    int     `json:"engine_size_cc,omitempty"`
	Location        string  `json:"location,omitempty"`
	EmailVerified   bool    `json:"email_verified"`
	RejectionReason string  `json:"rejection_reason,omitempty"`
	Version         int64   `json:"version"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

type ListingResponse struct {
	Item ListingDTO `json:"item"`
}

type ListListingsRequest struct {
	Brand string `json:"brand,omitempty"`
	Model string `json:"model,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

type ListListingsResponse struct {
	Items []ListingDTO `json:"items"`
}

type ConfirmVerificationRequest struct {
	Code string `json:"code"`
}

type VerificationResponse struct {
	ListingID string `json:"listing_id"`
	Verified  bool   `json:"verified"`
}

type QuotaResponse struct {
	Role           string `json:"role"`
	CurrentCount   int    `json:"current_count"`
	MaxLimit       int    `json:"max_limit"`
	RemainingSlots int    `json:"remaining_slots"`
	CanCreate      bool   `json:"can_create"`
	IsFounder      bool   `json:"is_founder"`
	Degraded       bool   `json:"degraded,omitempty"`
}

type NotificationDTO struct {
	NotificationID string         `json:"notification_id"`
	Title          string         `json:"title"`
	Message        string         `json:"message"`
	Severity       string         `json:"severity"`
	Link           string         `json:"link,omitempty"`
	IsRead         bool           `json:"is_read"`
	ReadAt         string         `json:"read_at,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      string         `json:"created_at"`
}

type ListNotificationsResponse struct {
	Items []NotificationDTO `json:"items"`
}

type MarkAllReadResponse struct {
	Marked int `json:"marked"`
}

type RejectListingRequest struct {
	Reason string `json:"reason"`
}

type BulkModerationRequest struct {
	ListingIDs []string `json:"listing_ids"`
	Reason     string   `json:"reason,omitempty"`
}

// ActionResponse acknowledges a single moderation decision.
type ActionResponse struct {
	Success bool `json:"success"`
}

type BulkModerationResponse struct {
	SuccessCount int `json:"success_count"`
	ErrorCount   int `json:"error_count"`
}

type AuditEntryDTO struct {
	AuditID     string         `json:"audit_id"`
	ActorID     string         `json:"actor_id"`
	Action      string         `json:"action"`
	TargetID    string         `json:"target_id,omitempty"`
	Description string         `json:"description,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   string         `json:"created_at"`
}

type ListAuditResponse struct {
	Items []AuditEntryDTO `json:"items"`
}

type FieldErrorDTO struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorDetails struct {
	Fields  []FieldErrorDTO `json:"fields,omitempty"`
	Reasons []string        `json:"reasons,omitempty"`
	Quota   *QuotaResponse  `json:"quota,omitempty"`
}

type ErrorResponse struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details *ErrorDetails `json:"details,omitempty"`
}

// ErrorEnvelope is the body of every non-2xx response.
type ErrorEnvelope struct {
	Status    string        `json:"status"`
	Error     ErrorResponse `json:"error"`
	Timestamp string        `json:"timestamp"`
}
