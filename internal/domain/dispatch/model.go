package dispatch

import (
	"errors"
	"time"

	"noticeboard/internal/domain/announcement"
)

// Status constants for a single notification attempt.
const (
	StatusSent      = "sent"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"   // no registered recipients at dispatch time
	StatusSimulated = "simulated" // accepted by a sender that delivers nothing (no provider configured)
)

// Domain errors.
var (
	ErrEmptyAnnouncementID = errors.New("announcement ID is required")
	ErrInvalidStatus       = errors.New("dispatch status must be one of: sent, failed, skipped, simulated")
)

// Entry records the outcome of one notification attempt.
// Attempts are never retried; the entry is written once and is immutable afterwards.
type Entry struct {
	ID             string
	AnnouncementID string
	Operation      string // created, updated, deleted
	Subject        string
	RecipientCount int
	Status         string
	MessageID      string // Provider message ID when sent
	ErrorMessage   string // Provider error when failed
	AttemptedAt    time.Time
	DurationMs     int64
}

// Validate checks that the Entry has valid data.
// PRE: Entry struct is populated
// POST: Returns nil if valid, error otherwise
func (e *Entry) Validate() error {
	if e.AnnouncementID == "" {
		return ErrEmptyAnnouncementID
	}
	if !announcement.IsValidOperation(e.Operation) {
		return announcement.ErrInvalidOperation
	}
	switch e.Status {
	case StatusSent, StatusFailed, StatusSkipped, StatusSimulated:
	default:
		return ErrInvalidStatus
	}
	if e.AttemptedAt.IsZero() {
		return errors.New("attempted_at must be set")
	}
	return nil
}

// MarkSent records a provider-accepted send.
// POST: Status is sent, MessageID set, ErrorMessage cleared
func (e *Entry) MarkSent(messageID string) {
	e.Status = StatusSent
	e.MessageID = messageID
	e.ErrorMessage = ""
}

// MarkSimulated records a send that a non-delivering sender accepted.
// POST: Status is simulated, MessageID set, ErrorMessage cleared
func (e *Entry) MarkSimulated(messageID string) {
	e.Status = StatusSimulated
	e.MessageID = messageID
	e.ErrorMessage = ""
}

// MarkFailed records a send that the provider rejected or that timed out.
// POST: Status is failed, ErrorMessage set
func (e *Entry) MarkFailed(err error) {
	e.Status = StatusFailed
	if err != nil {
		e.ErrorMessage = err.Error()
	}
}

// MarkSkipped records that nothing was sent because the directory was empty.
// POST: Status is skipped, RecipientCount is zero
func (e *Entry) MarkSkipped() {
	e.Status = StatusSkipped
	e.RecipientCount = 0
}

// IsFailure reports whether the attempt failed.
// INVARIANT: Status field is not mutated
func (e *Entry) IsFailure() bool {
	return e.Status == StatusFailed
}
