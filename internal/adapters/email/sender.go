package email

import (
	"context"
	"errors"
	"time"
)

// Attachment is a file carried with the message. A non-empty ContentID makes it
// inline, referenced from the HTML as cid:<ContentID>.
type Attachment struct {
	Filename    string
	ContentType string
	ContentID   string
	Data        []byte
}

// SendRequest contains the data needed to send one email via an external provider.
type SendRequest struct {
	To          []string // Visible recipients
	Bcc         []string // Blind copies; never written into headers
	From        string   // Sender address, e.g. "Noticeboard <noreply@example.com>"; empty uses the sender default
	Subject     string
	HTML        string
	ReplyTo     string
	Attachments []Attachment
}

// Validate checks the request has somewhere to go and something to say.
func (r SendRequest) Validate() error {
	if len(r.To) == 0 && len(r.Bcc) == 0 {
		return errors.New("email: at least one recipient is required")
	}
	if r.Subject == "" {
		return errors.New("email: subject is required")
	}
	return nil
}

// SendResult contains the response from the email provider.
type SendResult struct {
	MessageID string    // Provider's message ID for tracking
	SentAt    time.Time // When the send was accepted
	Simulated bool      // Accepted without delivery; no provider is configured
}

// Sender delivers one message per call. Implementations must honour ctx cancellation.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
