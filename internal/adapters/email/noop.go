package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// NoopSender logs sends without delivering. Used in development when no provider is configured.
type NoopSender struct{}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs the email but does not deliver it.
// POST: Returns a synthetic message ID with Simulated set
func (s *NoopSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	if err := ctx.Err(); err != nil {
		return SendResult{}, err
	}
	if err := req.Validate(); err != nil {
		return SendResult{}, err
	}
	slog.Info("noop_email_send",
		"to", req.To,
		"bcc_count", len(req.Bcc),
		"subject", req.Subject,
		"attachments", len(req.Attachments),
	)
	return SendResult{
		MessageID: fmt.Sprintf("noop-%d", time.Now().UnixNano()),
		SentAt:    time.Now(),
		Simulated: true,
	}, nil
}
