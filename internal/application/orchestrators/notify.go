package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	emailAdapter "noticeboard/internal/adapters/email"
	"noticeboard/internal/adapters/http/perf"
	"noticeboard/internal/domain/dispatch"
	"noticeboard/internal/domain/notification"
	"noticeboard/internal/domain/recipient"
)

// DefaultDispatchTimeout bounds one provider call when NotifyDeps.Timeout is unset.
const DefaultDispatchTimeout = 30 * time.Second

// RecipientLister reads the current recipient directory.
type RecipientLister interface {
	List(ctx context.Context) ([]recipient.Recipient, error)
}

// DispatchRecorder persists notification attempts.
type DispatchRecorder interface {
	Save(ctx context.Context, e dispatch.Entry) error
}

// NotifyDeps holds dependencies for the notify phase shared by every announcement mutation.
type NotifyDeps struct {
	Recipients      RecipientLister
	Sender          emailAdapter.Sender
	DispatchLog     DispatchRecorder // optional
	Collector       *perf.Collector  // optional
	From            string
	InternalAddress string // Fixed primary recipient; directory addresses are blind-copied
	ReplyTo         string
	Timeout         time.Duration
	GenerateID      func() string
	Now             func() time.Time
}

// NotifyOutcome reports what the notify phase did. It never turns into a caller error.
type NotifyOutcome struct {
	Status         string // one of the dispatch.Status* constants
	RecipientCount int
	MessageID      string
	Err            error
}

// Sent reports whether the provider accepted the message.
func (o NotifyOutcome) Sent() bool {
	return o.Status == dispatch.StatusSent
}

// ErrNoSender is reported when notify runs without a configured sender.
var ErrNoSender = errors.New("no email sender configured")

// notifyRecipients runs the best-effort half of a mutation: re-read the directory,
// compose, send once with every address blind-copied, and record the attempt.
// PRE: The mutation for announcementID has been committed
// POST: Exactly one dispatch log entry is written (when a recorder is configured);
// failures are logged and returned in the outcome, never as an error
func notifyRecipients(ctx context.Context, announcementID string, req notification.Request, deps NotifyDeps) NotifyOutcome {
	start := deps.Now()
	entry := dispatch.Entry{
		ID:             deps.GenerateID(),
		AnnouncementID: announcementID,
		Operation:      req.Operation,
		AttemptedAt:    start,
	}

	// The commit already happened, so a client disconnect must not abort the send.
	// The timeout still bounds a hanging provider.
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = DefaultDispatchTimeout
	}
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	outcome := attemptDispatch(sendCtx, req, deps, &entry)

	entry.DurationMs = deps.Now().Sub(start).Milliseconds()
	finishDispatch(ctx, entry, outcome, deps)
	return outcome
}

// attemptDispatch fills entry and returns the outcome. Split out so every exit path
// shares the recording in finishDispatch.
func attemptDispatch(ctx context.Context, req notification.Request, deps NotifyDeps, entry *dispatch.Entry) NotifyOutcome {
	recipients, err := deps.Recipients.List(ctx)
	if err != nil {
		err = fmt.Errorf("list recipients: %w", err)
		entry.MarkFailed(err)
		return NotifyOutcome{Status: dispatch.StatusFailed, Err: err}
	}
	bcc := recipient.Addresses(recipients)
	if len(bcc) == 0 {
		entry.MarkSkipped()
		return NotifyOutcome{Status: dispatch.StatusSkipped}
	}
	entry.RecipientCount = len(bcc)

	msg, err := notification.Compose(req)
	if err != nil {
		err = fmt.Errorf("compose notification: %w", err)
		entry.MarkFailed(err)
		return NotifyOutcome{Status: dispatch.StatusFailed, RecipientCount: len(bcc), Err: err}
	}
	entry.Subject = msg.Subject

	if deps.Sender == nil {
		entry.MarkFailed(ErrNoSender)
		return NotifyOutcome{Status: dispatch.StatusFailed, RecipientCount: len(bcc), Err: ErrNoSender}
	}

	sendReq := emailAdapter.SendRequest{
		To:      []string{deps.InternalAddress},
		Bcc:     bcc,
		From:    deps.From,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		ReplyTo: deps.ReplyTo,
	}
	for _, a := range msg.Attachments {
		sendReq.Attachments = append(sendReq.Attachments, emailAdapter.Attachment{
			Filename:    a.Filename,
			ContentType: a.ContentType,
			ContentID:   a.ContentID,
			Data:        a.Data,
		})
	}

	res, err := deps.Sender.Send(ctx, sendReq)
	if err != nil {
		entry.MarkFailed(err)
		return NotifyOutcome{Status: dispatch.StatusFailed, RecipientCount: len(bcc), Err: err}
	}
	if res.Simulated {
		entry.MarkSimulated(res.MessageID)
		return NotifyOutcome{Status: dispatch.StatusSimulated, RecipientCount: len(bcc), MessageID: res.MessageID}
	}
	entry.MarkSent(res.MessageID)
	return NotifyOutcome{Status: dispatch.StatusSent, RecipientCount: len(bcc), MessageID: res.MessageID}
}

func finishDispatch(ctx context.Context, entry dispatch.Entry, outcome NotifyOutcome, deps NotifyDeps) {
	attrs := []any{
		"event", "notification_" + entry.Status,
		"announcement_id", entry.AnnouncementID,
		"operation", entry.Operation,
		"recipient_count", entry.RecipientCount,
		"duration_ms", entry.DurationMs,
	}
	if outcome.Err != nil {
		slog.Error("dispatch_event", append(attrs, "error", outcome.Err)...)
	} else {
		slog.Info("dispatch_event", append(attrs, "message_id", entry.MessageID)...)
	}

	if deps.Collector != nil {
		deps.Collector.Record(perf.Entry{
			Kind:       perf.KindDispatch,
			Path:       entry.Operation,
			DurationMs: float64(entry.DurationMs),
			Failed:     entry.IsFailure(),
			Timestamp:  entry.AttemptedAt,
		})
	}

	if deps.DispatchLog == nil {
		return
	}
	if err := entry.Validate(); err != nil {
		slog.Warn("dispatch_log_invalid", "announcement_id", entry.AnnouncementID, "error", err)
		return
	}
	if err := deps.DispatchLog.Save(context.WithoutCancel(ctx), entry); err != nil {
		slog.Warn("dispatch_log_save_failed", "announcement_id", entry.AnnouncementID, "error", err)
	}
}

// notifyMessage phrases the informational message returned with a committed mutation.
func notifyMessage(verb string, o NotifyOutcome) string {
	switch o.Status {
	case dispatch.StatusSent:
		return fmt.Sprintf("%s and notification sent to %d recipient(s)", verb, o.RecipientCount)
	case dispatch.StatusSkipped:
		return verb + " (no recipients to notify)"
	case dispatch.StatusSimulated:
		return fmt.Sprintf("%s (email delivery disabled; %d recipient(s) not notified)", verb, o.RecipientCount)
	default:
		return verb + " (notification failed)"
	}
}
