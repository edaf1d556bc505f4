package commands

import (
	"context"
	"strings"

	"autoboard/contexts/marketplace/listing-service/domain/entities"
	domainerrors "autoboard/contexts/marketplace/listing-service/domain/errors"
	"autoboard/contexts/marketplace/listing-service/ports"
)

// NotificationInboxUseCase flips read flags. Only the recipient may do so.
type NotificationInboxUseCase struct {
	Notifications ports.NotificationRepository
	Clock         ports.Clock
}

func (uc NotificationInboxUseCase) MarkRead(ctx context.Context, principal entities.Principal, notificationID string) error {
	if !principal.Authenticated() {
		return domainerrors.ErrUnauthorized
	}
	return uc.Notifications.MarkNotificationRead(ctx, principal.UserID, strings.TrimSpace(notificationID), uc.Clock.Now().UTC())
}

func (uc NotificationInboxUseCase) MarkAllRead(ctx context.Context, principal entities.Principal) (int, error) {
	if !principal.Authenticated() {
		return 0, domainerrors.ErrUnauthorized
	}
	return uc.Notifications.MarkAllNotificationsRead(ctx, principal.UserID, uc.Clock.Now().UTC())
}
