package services

import (
	"html"
	"math"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"autoboard/contexts/marketplace/listing-service/domain/entities"
	domainerrors "autoboard/contexts/marketplace/listing-service/domain/errors"
)

const (
	MinListingYear       = 1950
	MaxTitleLength       = 120
	MaxDescriptionLength = 4000
	MaxShortTextLength   = 80
)

// ValidateListingPayload checks the payload against the listing rules and
// returns a sanitized copy. Every failing field is reported, not just the first.
func ValidateListingPayload(payload entities.ListingPayload, now time.Time) (entities.ListingPayload, error) {
	out := sanitizePayload(payload)
	verr := domainerrors.NewValidationError()

	if !out.VehicleType.Valid() {
		verr.Add("vehicle_type", "must be one of car, motorcycle, utility")
	}
	if out.Brand == "" {
		verr.Add("brand", "is required")
	}
	if out.Model == "" {
		verr.Add("model", "is required")
	}
	if out.Title == "" {
		verr.Add("title", "is required")
	}
	if math.IsNaN(out.Price) || math.IsInf(out.Price, 0) || out.Price <= 0 {
		verr.Add("price", "must be greater than 0")
	}
	maxYear := now.Year() + 1
	if out.Year < MinListingYear || out.Year > maxYear {
		verr.Add("year", "must be between 1950 and next year")
	}
	if out.Mileage < 0 {
		verr.Add("mileage", "must not be negative")
	}

	switch out.VehicleType {
	case entities.VehicleTypeCar:
		if out.FuelType == "" {
			verr.Add("fuel_type", "is required for cars")
		}
		if out.Transmission == "" {
			verr.Add("transmission", "is required for cars")
		}
	case entities.VehicleTypeMotorcycle:
		if out.EngineSizeCC <= 0 {
			verr.Add("engine_size_cc", "is required for motorcycles")
		}
	case entities.VehicleTypeUtility:
		if out.FuelType == "" {
			verr.Add("fuel_type", "is required for utility vehicles")
		}
	}

	if verr.HasErrors() {
		return entities.ListingPayload{}, verr
	}
	return out, nil
}

// ValidateGuestEmail accepts a bare address only ("Name <addr>" is refused).
func ValidateGuestEmail(email string) (string, error) {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return "", domainerrors.NewValidationError(domainerrors.FieldError{Field: "guest_email", Message: "is required"})
	}
	parsed, err := mail.ParseAddress(trimmed)
	if err != nil || parsed.Address != trimmed {
		return "", domainerrors.NewValidationError(domainerrors.FieldError{Field: "guest_email", Message: "must be a valid email address"})
	}
	return strings.ToLower(parsed.Address), nil
}

func sanitizePayload(p entities.ListingPayload) entities.ListingPayload {
	p.VehicleType = entities.VehicleType(strings.ToLower(strings.TrimSpace(string(p.VehicleType))))
	p.Brand = SanitizeText(p.Brand, MaxShortTextLength)
	p.Model = SanitizeText(p.Model, MaxShortTextLength)
	p.Title = SanitizeText(p.Title, MaxTitleLength)
	p.Description = SanitizeText(p.Description, MaxDescriptionLength)
	p.FuelType = strings.ToLower(SanitizeText(p.FuelType, MaxShortTextLength))
	p.Transmission = strings.ToLower(SanitizeText(p.Transmission, MaxShortTextLength))
	p.Location = SanitizeText(p.Location, MaxShortTextLength)
	return p
}

// SanitizeText trims, caps the length in runes and escapes markup. The cap is
// applied before escaping so entities are never cut in half.
func SanitizeText(value string, maxRunes int) string {
	trimmed := strings.TrimSpace(value)
	if maxRunes > 0 && utf8.RuneCountInString(trimmed) > maxRunes {
		trimmed = strings.TrimSpace(string([]rune(trimmed)[:maxRunes]))
	}
	return html.EscapeString(trimmed)
}

// UnescapePayload reverses the markup escaping of a stored payload so it can
// be merged with an edit and validated again without double escaping.
func UnescapePayload(p entities.ListingPayload) entities.ListingPayload {
	p.Brand = html.UnescapeString(p.Brand)
	p.Model = html.UnescapeString(p.Model)
	p.Title = html.UnescapeString(p.Title)
	p.Description = html.UnescapeString(p.Description)
	p.FuelType = html.UnescapeString(p.FuelType)
	p.Transmission = html.UnescapeString(p.Transmission)
	p.Location = html.UnescapeString(p.Location)
	return p
}
