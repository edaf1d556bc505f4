package events

import (
	"context"
	"testing"
	"time"

	"autoboard/contexts/marketplace/listing-service/domain/entities"
	sharedevents "autoboard/internal/shared/events"

	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	topic string
	event sharedevents.Envelope
}

func (c *capturePublisher) Publish(_ context.Context, topic string, event sharedevents.Envelope) error {
	c.topic = topic
	c.event = event
	return nil
}

func TestPushPublisherKeysByRecipient(t *testing.T) {
	capture := &capturePublisher{}
	publisher := PushPublisher{Publisher: capture, SourceService: "autoboard"}

	err := publisher.PublishNotification(context.Background(), entities.Notification{
		NotificationID: "n-1",
		RecipientID:    "user-9",
		Title:          "Price drop on a saved listing",
		Severity:       entities.NotificationSeveritySuccess,
		CreatedAt:      time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Equal(t, DefaultPushTopic, capture.topic)
	require.Equal(t, "user-9", capture.event.EntityID)
	require.Equal(t, "n-1", capture.event.EventID)

	payload, ok := capture.event.Payload.(NotificationPayload)
	require.True(t, ok)
	require.Equal(t, "success", payload.Severity)
	require.Equal(t, "2026-02-01T08:00:00Z", payload.CreatedAt)
}
