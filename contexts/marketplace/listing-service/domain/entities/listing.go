package entities

import (
	"strings"
	"time"
)

type ListingStatus string

const (
	ListingStatusPending                  ListingStatus = "pending"
	ListingStatusPendingValidation        ListingStatus = "pending_validation"
	ListingStatusWaitingEmailVerification ListingStatus = "waiting_email_verification"
	ListingStatusActive                   ListingStatus = "active"
	ListingStatusRejected                 ListingStatus = "rejected"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case ListingStatusPending,
		ListingStatusPendingValidation,
		ListingStatusWaitingEmailVerification,
		ListingStatusActive,
		ListingStatusRejected:
		return true
	default:
		return false
	}
}

// AwaitsModeration reports whether the listing belongs in the moderation queue.
func (s ListingStatus) AwaitsModeration() bool {
	return s == ListingStatusPending || s == ListingStatusPendingValidation
}

type VehicleType string

const (
	VehicleTypeCar        VehicleType = "car"
	VehicleTypeMotorcycle VehicleType = "motorcycle"
	VehicleTypeUtility    VehicleType = "utility"
)

func (v VehicleType) Valid() bool {
	switch v {
	case VehicleTypeCar, VehicleTypeMotorcycle, VehicleTypeUtility:
		return true
	default:
		return false
	}
}

// VerificationAttempt holds the one-way hash of the code mailed to a guest
// seller. The plaintext code is never stored.
type VerificationAttempt struct {
	CodeHash       string
	ExpiresAt      *time.Time
	FailedAttempts int
}

func (v VerificationAttempt) Issued() bool {
	return strings.TrimSpace(v.CodeHash) != ""
}

func (v VerificationAttempt) ExpiredAt(now time.Time) bool {
	return v.ExpiresAt == nil || now.After(*v.ExpiresAt)
}

type Listing struct {
	ListingID   string
	OwnerID     string
	GuestEmail  string
	Status      ListingStatus
	VehicleType VehicleType

	Brand string
	Model string
	Price float64
	Year  int

	Title        string
	Description  string
	Mileage      int
	FuelType     string
	Transmission string
	EngineSizeCC int
	Location     string

	Verification    VerificationAttempt
	EmailVerified   bool
	RejectionReason string

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (l Listing) IsGuest() bool {
	return strings.TrimSpace(l.OwnerID) == ""
}

// HasSingleIdentity enforces that exactly one of owner and guest email is set.
func (l Listing) HasSingleIdentity() bool {
	hasOwner := strings.TrimSpace(l.OwnerID) != ""
	hasGuest := strings.TrimSpace(l.GuestEmail) != ""
	return hasOwner != hasGuest
}

func (l Listing) IsPublic() bool {
	return l.Status == ListingStatusActive
}

// ListingPayload is the seller-supplied content of a listing.
type ListingPayload struct {
	VehicleType  VehicleType
	Brand        string
	Model        string
	Price        float64
	Year         int
	Title        string
	Description  string
	Mileage      int
	FuelType     string
	Transmission string
	EngineSizeCC int
	Location     string
}

// ListingPatch carries a partial edit; nil fields are left untouched.
type ListingPatch struct {
	VehicleType  *VehicleType
	Brand        *string
	Model        *string
	Price        *float64
	Year         *int
	Title        *string
	Description  *string
	Mileage      *int
	FuelType     *string
	Transmission *string
	EngineSizeCC *int
	Location     *string
}

func (l Listing) Payload() ListingPayload {
	return ListingPayload{
		VehicleType:  l.VehicleType,
		Brand:        l.Brand,
		Model:        l.Model,
		Price:        l.Price,
		Year:         l.Year,
		Title:        l.Title,
		Description:  l.Description,
		Mileage:      l.Mileage,
		FuelType:     l.FuelType,
		Transmission: l.Transmission,
		EngineSizeCC: l.EngineSizeCC,
		Location:     l.Location,
	}
}

func (l *Listing) ApplyPayload(p ListingPayload) {
	l.VehicleType = p.VehicleType
	l.Brand = p.Brand
	l.Model = p.Model
	l.Price = p.Price
	l.Year = p.Year
	l.Title = p.Title
	l.Description = p.Description
	l.Mileage = p.Mileage
	l.FuelType = p.FuelType
	l.Transmission = p.Transmission
	l.EngineSizeCC = p.EngineSizeCC
	l.Location = p.Location
}

// Merge overlays the patch on top of the payload.
func (p ListingPatch) Merge(base ListingPayload) ListingPayload {
	out := base
	if p.VehicleType != nil {
		out.VehicleType = *p.VehicleType
	}
	if p.Brand != nil {
		out.Brand = *p.Brand
	}
	if p.Model != nil {
		out.Model = *p.Model
	}
	if p.Price != nil {
		out.Price = *p.Price
	}
	if p.Year != nil {
		out.Year = *p.Year
	}
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Mileage != nil {
		out.Mileage = *p.Mileage
	}
	if p.FuelType != nil {
		out.FuelType = *p.FuelType
	}
	if p.Transmission != nil {
		out.Transmission = *p.Transmission
	}
	if p.EngineSizeCC != nil {
		out.EngineSizeCC = *p.EngineSizeCC
	}
	if p.Location != nil {
		out.Location = *p.Location
	}
	return out
}
