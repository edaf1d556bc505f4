package email

import (
	"context"
	"log/slog"
	"strings"
)

// LogSender stands in for the outbound mail transport. It records that a
// code was sent without ever logging the code itself.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) SendVerificationCode(_ context.Context, email string, code string, listingID string) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("verification code dispatched",
		"event", "listing_verification_email_dispatched",
		"module", "marketplace/listing-service",
		"layer", "adapter",
		"listing_id", listingID,
		"recipient", maskEmail(email),
		"code_length", len(code),
	)
	return nil
}

func maskEmail(email string) string {
	local, domain, found := strings.Cut(strings.TrimSpace(email), "@")
	if !found || local == "" {
		return "***"
	}
	return local[:1] + "***@" + domain
}
