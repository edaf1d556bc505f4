package services

import (
	"strings"

	"autoboard/contexts/marketplace/listing-service/domain/entities"
)

var (
	ModerationRoles = []entities.Role{entities.RoleAdmin, entities.RoleModerator}
	AdminOnly       = []entities.Role{entities.RoleAdmin}
)

func RoleAllowed(role entities.Role, allowed []entities.Role) bool {
	for _, candidate := range allowed {
		if role == candidate {
			return true
		}
	}
	return false
}

// IsBreakGlass matches the fixed operator identity honoured even when the
// role store cannot be read.
func IsBreakGlass(principal entities.Principal, breakGlassEmail string) bool {
	configured := strings.TrimSpace(breakGlassEmail)
	if configured == "" || !principal.Authenticated() {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(principal.Email), configured)
}
