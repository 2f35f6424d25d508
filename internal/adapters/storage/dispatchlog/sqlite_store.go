package dispatchlog

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"noticeboard/internal/adapters/storage"
	domain "noticeboard/internal/domain/dispatch"
)

const dateLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements the dispatch log Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new dispatch log store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const entryColumns = `id, announcement_id, operation, subject, recipient_count, status,
		message_id, error_message, attempted_at, duration_ms`

// Save inserts a dispatch attempt.
// PRE: e has been validated
// POST: Entry is persisted
func (s *SQLiteStore) Save(ctx context.Context, e domain.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO dispatch_log (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.AnnouncementID, e.Operation, e.Subject, e.RecipientCount, e.Status,
		e.MessageID, e.ErrorMessage, e.AttemptedAt.UTC().Format(dateLayout), e.DurationMs)
	return err
}

// ListRecent returns up to limit attempts, newest first.
func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM dispatch_log ORDER BY attempted_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ListByAnnouncement returns all attempts for one announcement, newest first.
func (s *SQLiteStore) ListByAnnouncement(ctx context.Context, announcementID string) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM dispatch_log WHERE announcement_id = ? ORDER BY attempted_at DESC, id DESC`,
		announcementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]domain.Entry, error) {
	var entries []domain.Entry
	for rows.Next() {
		var e domain.Entry
		var attemptedAt string
		err := rows.Scan(&e.ID, &e.AnnouncementID, &e.Operation, &e.Subject, &e.RecipientCount,
			&e.Status, &e.MessageID, &e.ErrorMessage, &attemptedAt, &e.DurationMs)
		if err != nil {
			return nil, err
		}
		t, err := time.Parse(dateLayout, attemptedAt)
		if err != nil {
			slog.Warn("dispatchlog: failed to parse time", "entry_id", e.ID, "raw", attemptedAt, "error", err)
		}
		e.AttemptedAt = t
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
