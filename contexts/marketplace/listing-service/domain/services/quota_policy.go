package services

import "autoboard/contexts/marketplace/listing-service/domain/entities"

const DefaultBaseQuota = 3

// QuotaLimits is the role-derived limit table.
type QuotaLimits struct {
	BaseLimit int
}

func (q QuotaLimits) LimitFor(role entities.Role, isFounder bool) int {
	if isFounder {
		return entities.UnlimitedQuota
	}
	switch role {
	case entities.RoleDealer, entities.RoleModerator, entities.RoleAdmin:
		return entities.UnlimitedQuota
	default:
		if q.BaseLimit <= 0 {
			return DefaultBaseQuota
		}
		return q.BaseLimit
	}
}

func EvaluateQuota(role entities.Role, isFounder bool, currentCount int, maxLimit int) entities.QuotaSnapshot {
	snapshot := entities.QuotaSnapshot{
		Role:         role,
		CurrentCount: currentCount,
		MaxLimit:     maxLimit,
		IsFounder:    isFounder,
	}
	if maxLimit == entities.UnlimitedQuota {
		snapshot.RemainingSlots = entities.UnlimitedQuota
		snapshot.CanCreate = true
		return snapshot
	}
	remaining := maxLimit - currentCount
	if remaining < 0 {
		remaining = 0
	}
	snapshot.RemainingSlots = remaining
	snapshot.CanCreate = currentCount < maxLimit
	return snapshot
}

// FailOpenQuota is returned when the quota cannot be computed.
func FailOpenQuota(role entities.Role) entities.QuotaSnapshot {
	return entities.QuotaSnapshot{
		Role:           role,
		MaxLimit:       entities.UnlimitedQuota,
		RemainingSlots: entities.UnlimitedQuota,
		CanCreate:      true,
		Degraded:       true,
	}
}
