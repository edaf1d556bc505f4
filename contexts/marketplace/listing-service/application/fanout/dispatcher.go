package fanout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	application "autoboard/contexts/marketplace/listing-service/application"
	"autoboard/contexts/marketplace/listing-service/domain/entities"
	"autoboard/contexts/marketplace/listing-service/ports"
)

const defaultConcurrency = 8

// DispatchReport summarises one best-effort delivery round. Err joins the
// per-recipient failures; it is meant for logging and never for the caller
// of the triggering action.
type DispatchReport struct {
	Rule      string
	Attempted int
	Delivered int
	Failed    int
	Err       error
}

// Dispatcher persists one notification per draft. Every write is isolated:
// a failing recipient is recorded and the remaining recipients still run.
type Dispatcher struct {
	Notifications ports.NotificationRepository
	Push          ports.PushPublisher
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	Metrics       ports.Metrics
	Concurrency   int
	Logger        *slog.Logger
}

func (d Dispatcher) Dispatch(ctx context.Context, rule string, drafts []entities.Notification) DispatchReport {
	logger := application.ResolveLogger(d.Logger)
	report := DispatchReport{Rule: rule, Attempted: len(drafts)}
	if len(drafts) == 0 {
		return report
	}

	var (
		mu       sync.Mutex
		failures []error
		group    errgroup.Group
	)
	group.SetLimit(d.resolveConcurrency())

	for _, draft := range drafts {
		group.Go(func() error {
			if err := d.deliver(ctx, draft); err != nil {
				mu.Lock()
				failures = append(failures, fmt.Errorf("recipient %s: %w", draft.RecipientID, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = group.Wait()

	report.Failed = len(failures)
	report.Delivered = report.Attempted - report.Failed
	report.Err = errors.Join(failures...)

	if d.Metrics != nil {
		d.Metrics.NotificationsDispatched(rule, report.Delivered, report.Failed)
	}
	if report.Err != nil {
		logger.Warn("notification fan-out partially failed",
			"event", "listing_notification_fanout_partial_failure",
			"module", "marketplace/listing-service",
			"layer", "application",
			"rule", rule,
			"attempted", report.Attempted,
			"failed", report.Failed,
			"error", report.Err.Error(),
		)
	}
	return report
}

func (d Dispatcher) deliver(ctx context.Context, draft entities.Notification) error {
	notificationID, err := d.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	draft.NotificationID = notificationID
	draft.CreatedAt = d.Clock.Now().UTC()
	if err := d.Notifications.CreateNotification(ctx, draft); err != nil {
		return err
	}

	if d.Push != nil {
		if err := d.Push.PublishNotification(ctx, draft); err != nil {
			application.ResolveLogger(d.Logger).Warn("notification push failed",
				"event", "listing_notification_push_failed",
				"module", "marketplace/listing-service",
				"layer", "application",
				"notification_id", draft.NotificationID,
				"error", err.Error(),
			)
		}
	}
	return nil
}

func (d Dispatcher) resolveConcurrency() int {
	if d.Concurrency <= 0 {
		return defaultConcurrency
	}
	return d.Concurrency
}

// uniqueRecipients drops blanks and duplicates while keeping first-seen order.
func uniqueRecipients(ids []string, exclude ...string) []string {
	skip := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			skip[trimmed] = struct{}{}
		}
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		trimmed := strings.TrimSpace(id)
		if trimmed == "" {
			continue
		}
		if _, excluded := skip[trimmed]; excluded {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
