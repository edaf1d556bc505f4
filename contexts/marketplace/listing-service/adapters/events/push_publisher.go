package events

import (
	"context"
	"strings"
	"time"

	"autoboard/contexts/marketplace/listing-service/domain/entities"
	"autoboard/contexts/marketplace/listing-service/ports"
	sharedevents "autoboard/internal/shared/events"
)

const (
	DefaultPushTopic      = "listing.notifications"
	notificationEventType = "listing.notification.created"
)

type Publisher interface {
	Publish(ctx context.Context, topic string, event sharedevents.Envelope) error
}

type NotificationPayload struct {
	NotificationID string         `json:"notification_id"`
	RecipientID    string         `json:"recipient_id"`
	Title          string         `json:"title"`
	Message        string         `json:"message"`
	Severity       string         `json:"severity"`
	Link           string         `json:"link,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      string         `json:"created_at"`
}

// PushPublisher forwards persisted notifications to the push channel.
// Delivery is best effort and unordered.
type PushPublisher struct {
	Publisher     Publisher
	Topic         string
	SourceService string
}

func (p PushPublisher) PublishNotification(ctx context.Context, notification entities.Notification) error {
	topic := strings.TrimSpace(p.Topic)
	if topic == "" {
		topic = DefaultPushTopic
	}
	return p.Publisher.Publish(ctx, topic, sharedevents.Envelope{
		EventID:        notification.NotificationID,
		EventType:      notificationEventType,
		SourceService:  p.SourceService,
		OccurredAtUTC:  notification.CreatedAt.UTC(),
		EntityType:     "notification",
		EntityID:       notification.RecipientID,
		PayloadVersion: 1,
		Payload: NotificationPayload{
			NotificationID: notification.NotificationID,
			RecipientID:    notification.RecipientID,
			Title:          notification.Title,
			Message:        notification.Message,
			Severity:       string(notification.Severity),
			Link:           notification.Link,
			Metadata:       notification.Metadata,
			CreatedAt:      notification.CreatedAt.UTC().Format(time.RFC3339),
		},
	})
}

var _ ports.PushPublisher = PushPublisher{}
