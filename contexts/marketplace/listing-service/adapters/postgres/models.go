package postgresadapter

import (
	"encoding/json"
	"time"

	"autoboard/contexts/marketplace/listing-service/domain/entities"
)

type listingModel struct {
	ListingID            string     `gorm:"column:listing_id;primaryKey"`
	OwnerID              *string    `gorm:"column:owner_id;index"`
	GuestEmail           *string    `gorm:"column:guest_email"`
	Status               string     `gorm:"column:status;index"`
	VehicleType          string     `gorm:"column:vehicle_type"`
	Brand                string     `gorm:"column:brand"`
	Model                string     `gorm:"column:model"`
	Price                float64    `gorm:"column:price"`
	Year                 int        `gorm:"column:year"`
	Title                string     `gorm:"column:title"`
	Description          string     `gorm:"column:description"`
	Mileage              int        `gorm:"column:mileage"`
	FuelType             string     `gorm:"column:fuel_type"`
	Transmission         string     `gorm:"column:transmission"`
	EngineSizeCC         int        `gorm:"column:engine_size_cc"`
	Location             string     `gorm:"column:location"`
	VerificationCodeHash string     `gorm:"column:verification_code_hash"`
	VerificationExpires  *time.Time `gorm:"column:verification_expires_at"`
	VerificationFailures int        `gorm:"column:verification_failed_attempts"`
	EmailVerified        bool       `gorm:"column:email_verified"`
	RejectionReason      string     `gorm:"column:rejection_reason"`
	Version              int64      `gorm:"column:version;not null;default:1"`
	CreatedAt            time.Time  `gorm:"column:created_at"`
	UpdatedAt            time.Time  `gorm:"column:updated_at"`
}

func (listingModel) TableName() string {
	return "listings"
}

func listingModelFromEntity(item entities.Listing) listingModel {
	return listingModel{
		ListingID:            item.ListingID,
		OwnerID:              optionalString(item.OwnerID),
		GuestEmail:           optionalString(item.GuestEmail),
		Status:               string(item.Status),
		VehicleType:          string(item.VehicleType),
		Brand:                item.Brand,
		Model:                item.Model,
		Price:                item.Price,
		Year:                 item.Year,
		Title:                item.Title,
		Description:          item.Description,
		Mileage:              item.Mileage,
		FuelType:             item.FuelType,
		Transmission:         item.Transmission,
		EngineSizeCC:         item.EngineSizeCC,
		Location:             item.Location,
		VerificationCodeHash: item.Verification.CodeHash,
		VerificationExpires:  normalizeOptionalTime(item.Verification.ExpiresAt),
		VerificationFailures: item.Verification.FailedAttempts,
		EmailVerified:        item.EmailVerified,
		RejectionReason:      item.RejectionReason,
		Version:              item.Version,
		CreatedAt:            item.CreatedAt.UTC(),
		UpdatedAt:            item.UpdatedAt.UTC(),
	}
}

// listingUpdates lists every mutable column so zero values are written too.
func listingUpdates(item entities.Listing, nextVersion int64) map[string]any {
	return map[string]any{
		"status":                       string(item.Status),
		"vehicle_type":                 string(item.VehicleType),
		"brand":                        item.Brand,
		"model":                        item.Model,
		"price":                        item.Price,
		"year":                         item.Year,
		"title":                        item.Title,
		"description":                  item.Description,
		"mileage":                      item.Mileage,
		"fuel_type":                    item.FuelType,
		"transmission":                 item.Transmission,
		"engine_size_cc":               item.EngineSizeCC,
		"location":                     item.Location,
		"verification_code_hash":       item.Verification.CodeHash,
		"verification_expires_at":      normalizeOptionalTime(item.Verification.ExpiresAt),
		"verification_failed_attempts": item.Verification.FailedAttempts,
		"email_verified":               item.EmailVerified,
		"rejection_reason":             item.RejectionReason,
		"version":                      nextVersion,
		"updated_at":                   item.UpdatedAt.UTC(),
	}
}

func (m listingModel) toEntity() entities.Listing {
	return entities.Listing{
		ListingID:    m.ListingID,
		OwnerID:      derefString(m.OwnerID),
		GuestEmail:   derefString(m.GuestEmail),
		Status:       entities.ListingStatus(m.Status),
		VehicleType:  entities.VehicleType(m.VehicleType),
		Brand:        m.Brand,
		Model:        m.Model,
		Price:        m.Price,
		Year:         m.Year,
		Title:        m.Title,
		Description:  m.Description,
		Mileage:      m.Mileage,
		FuelType:     m.FuelType,
		Transmission: m.Transmission,
		EngineSizeCC: m.EngineSizeCC,
		Location:     m.Location,
		Verification: entities.VerificationAttempt{
			CodeHash:       m.VerificationCodeHash,
			ExpiresAt:      normalizeOptionalTime(m.VerificationExpires),
			FailedAttempts: m.VerificationFailures,
		},
		EmailVerified:   m.EmailVerified,
		RejectionReason: m.RejectionReason,
		Version:         m.Version,
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
}

type favoriteModel struct {
	UserID    string    `gorm:"column:user_id;primaryKey"`
	ListingID string    `gorm:"column:listing_id;primaryKey;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (favoriteModel) TableName() string {
	return "listing_favorites"
}

type notificationModel struct {
	NotificationID string     `gorm:"column:notification_id;primaryKey"`
	RecipientID    string     `gorm:"column:recipient_id;index"`
	Title          string     `gorm:"column:title"`
	Message        string     `gorm:"column:message"`
	Severity       string     `gorm:"column:severity"`
	Link           string     `gorm:"column:link"`
	IsRead         bool       `gorm:"column:is_read"`
	ReadAt         *time.Time `gorm:"column:read_at"`
	Metadata       []byte     `gorm:"column:metadata"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
}

func (notificationModel) TableName() string {
	return "notifications"
}

func (m notificationModel) toEntity() entities.Notification {
	return entities.Notification{
		NotificationID: m.NotificationID,
		RecipientID:    m.RecipientID,
		Title:          m.Title,
		Message:        m.Message,
		Severity:       entities.NotificationSeverity(m.Severity),
		Link:           m.Link,
		IsRead:         m.IsRead,
		ReadAt:         normalizeOptionalTime(m.ReadAt),
		Metadata:       decodeMetadata(m.Metadata),
		CreatedAt:      m.CreatedAt.UTC(),
	}
}

type auditModel struct {
	AuditID     string    `gorm:"column:audit_id;primaryKey"`
	ActorID     string    `gorm:"column:actor_id"`
	Action      string    `gorm:"column:action"`
	TargetID    string    `gorm:"column:target_id;index"`
	Description string    `gorm:"column:description"`
	Metadata    []byte    `gorm:"column:metadata"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (auditModel) TableName() string {
	return "listing_audit_log"
}

func (m auditModel) toEntity() entities.AuditEntry {
	return entities.AuditEntry{
		AuditID:     m.AuditID,
		ActorID:     m.ActorID,
		Action:      m.Action,
		TargetID:    m.TargetID,
		Description: m.Description,
		Metadata:    decodeMetadata(m.Metadata),
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

type profileModel struct {
	UserID    string `gorm:"column:user_id;primaryKey"`
	Email     string `gorm:"column:email"`
	Role      string `gorm:"column:role;index"`
	IsFounder bool   `gorm:"column:is_founder"`
}

func (profileModel) TableName() string {
	return "profiles"
}

func (m profileModel) toEntity() entities.Profile {
	return entities.Profile{
		UserID:    m.UserID,
		Email:     m.Email,
		Role:      entities.Role(m.Role),
		IsFounder: m.IsFounder,
	}
}

func encodeMetadata(metadata map[string]any) ([]byte, error) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return json.Marshal(metadata)
}

func decodeMetadata(raw []byte) map[string]any {
	out := map[string]any{}
	if len(raw) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{}
	}
	return out
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	utc := value.UTC()
	return &utc
}
