package commands

import (
	"context"
	"log/slog"

	application "autoboard/contexts/marketplace/listing-service/application"
	"autoboard/contexts/marketplace/listing-service/domain/entities"
	"autoboard/contexts/marketplace/listing-service/ports"
)

type auditWriter struct {
	Audit  ports.AuditRepository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// append stamps and stores the entry. The audit trail never fails the
// action it records.
func (w auditWriter) append(ctx context.Context, entry entities.AuditEntry) {
	if w.Audit == nil {
		return
	}
	logger := application.ResolveLogger(w.Logger)
	auditID, err := w.IDGen.NewID(ctx)
	if err == nil {
		entry.AuditID = auditID
		entry.CreatedAt = w.Clock.Now().UTC()
		err = w.Audit.AppendAudit(ctx, entry)
	}
	if err != nil {
		logger.Error("audit append failed",
			"event", "listing_audit_append_failed",
			"module", "marketplace/listing-service",
			"layer", "application",
			"action", entry.Action,
			"target_id", entry.TargetID,
			"error", err.Error(),
		)
	}
}
