package recipient

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"noticeboard/internal/adapters/storage"
	domain "noticeboard/internal/domain/recipient"
)

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Add inserts a recipient.
// PRE: r has been validated and its email normalized
// POST: Row exists, or domain.ErrDuplicate if the email is already registered
func (s *SQLiteStore) Add(ctx context.Context, r domain.Recipient) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recipient (id, email, created_at) VALUES (?, ?, ?)`,
		r.ID, r.Email, r.CreatedAt.UTC().Format(timeLayout))
	if isUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	return err
}

// Remove deletes a recipient by ID.
// PRE: id is non-empty
// POST: Row is removed, or domain.ErrNotFound when absent
func (s *SQLiteStore) Remove(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recipient WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns every registered recipient.
// POST: Newest registration first, ties broken by email
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Recipient, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, created_at FROM recipient ORDER BY created_at DESC, email ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Recipient
	for rows.Next() {
		var r domain.Recipient
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Email, &createdAt); err != nil {
			return nil, err
		}
		t, err := time.Parse(timeLayout, createdAt)
		if err != nil {
			slog.Warn("recipient: failed to parse time", "recipient_id", r.ID, "raw", createdAt, "error", err)
		}
		r.CreatedAt = t
		out = append(out, r)
	}
	return out, rows.Err()
}

// Exists reports whether email is registered.
// PRE: email has been normalized
func (s *SQLiteStore) Exists(ctx context.Context, email string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recipient WHERE email = ?`, email).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// isUniqueViolation matches SQLite's constraint message; modernc surfaces it as text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
