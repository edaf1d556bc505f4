package entities

import "strings"

type Role string

const (
	RoleUser      Role = "user"
	RoleDealer    Role = "dealer"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Profile is the role record of a registered user.
type Profile struct {
	UserID    string
	Email     string
	Role      Role
	IsFounder bool
}

// Principal is the explicit caller identity threaded into every use case.
// The zero value is an anonymous guest.
type Principal struct {
	UserID string
	Email  string
}

func (p Principal) Authenticated() bool {
	return strings.TrimSpace(p.UserID) != ""
}

// UnlimitedQuota is the sentinel max limit for roles without a cap.
const UnlimitedQuota = -1

// QuotaSnapshot is derived on demand and never persisted.
type QuotaSnapshot struct {
	Role           Role
	CurrentCount   int
	MaxLimit       int
	RemainingSlots int
	CanCreate      bool
	IsFounder      bool
	Degraded       bool
}

func (q QuotaSnapshot) Unlimited() bool {
	return q.MaxLimit == UnlimitedQuota
}
