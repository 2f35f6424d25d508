package dispatch

import (
	"errors"
	"testing"
	"time"

	"noticeboard/internal/domain/announcement"
)

func validEntry() Entry {
	return Entry{
		ID:             "d1",
		AnnouncementID: "a1",
		Operation:      announcement.OperationCreated,
		Subject:        "NEW ANNOUNCEMENT: Hello",
		RecipientCount: 2,
		Status:         StatusSent,
		AttemptedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// TestEntry_Validate_Valid tests a complete entry.
func TestEntry_Validate_Valid(t *testing.T) {
	e := validEntry()
	if err := e.Validate(); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
}

// TestEntry_Validate_Errors tests each rejected field.
func TestEntry_Validate_Errors(t *testing.T) {
	e := validEntry()
	e.AnnouncementID = ""
	if err := e.Validate(); err != ErrEmptyAnnouncementID {
		t.Errorf("expected ErrEmptyAnnouncementID, got %v", err)
	}

	e = validEntry()
	e.Operation = "published"
	if err := e.Validate(); err != announcement.ErrInvalidOperation {
		t.Errorf("expected ErrInvalidOperation, got %v", err)
	}

	e = validEntry()
	e.Status = "queued"
	if err := e.Validate(); err != ErrInvalidStatus {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}

	e = validEntry()
	e.AttemptedAt = time.Time{}
	if err := e.Validate(); err == nil {
		t.Error("expected error for zero AttemptedAt")
	}
}

// TestEntry_MarkTransitions tests each recorded outcome.
func TestEntry_MarkTransitions(t *testing.T) {
	e := validEntry()
	e.MarkFailed(errors.New("smtp timeout"))
	if !e.IsFailure() || e.ErrorMessage != "smtp timeout" {
		t.Errorf("expected failed with message, got %+v", e)
	}

	e.MarkSent("msg-1")
	if e.IsFailure() || e.MessageID != "msg-1" || e.ErrorMessage != "" {
		t.Errorf("expected sent, got %+v", e)
	}

	e.MarkFailed(errors.New("smtp timeout"))
	e.MarkSimulated("noop-1")
	if e.Status != StatusSimulated || e.IsFailure() || e.MessageID != "noop-1" || e.ErrorMessage != "" {
		t.Errorf("expected simulated, got %+v", e)
	}
	if err := e.Validate(); err != nil {
		t.Errorf("expected simulated entry to be valid, got %v", err)
	}

	e.MarkSkipped()
	if e.Status != StatusSkipped || e.RecipientCount != 0 {
		t.Errorf("expected skipped with zero recipients, got %+v", e)
	}
}
