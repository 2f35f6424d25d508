package announcement

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"noticeboard/internal/adapters/storage"
	domain "noticeboard/internal/domain/announcement"
)

// Fixed-width UTC layout so created_at sorts lexically in SQL.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const announcementColumns = `id, title, content, image_url, created_at, updated_at`

// Insert adds a new announcement.
// PRE: a has been validated and carries a fresh ID
// POST: Row exists; a duplicate ID is an error
func (s *SQLiteStore) Insert(ctx context.Context, a domain.Announcement) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO announcement (`+announcementColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Title, a.Body, nullableString(a.ImageRef),
		formatTime(a.CreatedAt), nullableTime(a.UpdatedAt))
	return err
}

// GetByID retrieves an announcement by ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Announcement, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+announcementColumns+` FROM announcement WHERE id = ?`, id)
	a, err := scanAnnouncement(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Announcement{}, domain.ErrNotFound
	}
	return a, err
}

// Update overwrites title, body, image reference and updated_at.
// PRE: a has been validated
// POST: Row is updated, or domain.ErrNotFound when no row has a.ID
func (s *SQLiteStore) Update(ctx context.Context, a domain.Announcement) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE announcement SET title = ?, content = ?, image_url = ?, updated_at = ? WHERE id = ?`,
		a.Title, a.Body, nullableString(a.ImageRef), nullableTime(a.UpdatedAt), a.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Delete removes an announcement by ID.
// PRE: id is non-empty
// POST: Row is removed, or domain.ErrNotFound when absent
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM announcement WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// List returns all announcements.
// POST: Ordered by created_at DESC, ties broken by id DESC (ids are time-ordered)
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Announcement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+announcementColumns+` FROM announcement ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CountByImageRef counts announcements whose image_url equals ref.
func (s *SQLiteStore) CountByImageRef(ctx context.Context, ref string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM announcement WHERE image_url = ?`, ref).Scan(&n)
	return n, err
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanAnnouncement works for both *sql.Row and *sql.Rows via their Scan methods.
func scanAnnouncement(scan func(dest ...any) error) (domain.Announcement, error) {
	var (
		a         domain.Announcement
		imageRef  sql.NullString
		createdAt string
		updatedAt sql.NullString
	)
	if err := scan(&a.ID, &a.Title, &a.Body, &imageRef, &createdAt, &updatedAt); err != nil {
		return domain.Announcement{}, err
	}
	a.ImageRef = imageRef.String
	a.CreatedAt = parseTime(createdAt, "created_at", a.ID)
	if updatedAt.Valid {
		a.UpdatedAt = parseTime(updatedAt.String, "updated_at", a.ID)
	}
	return a, nil
}

func parseTime(raw, field, id string) time.Time {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		slog.Warn("announcement: failed to parse time", "field", field, "announcement_id", id, "raw", raw, "error", err)
	}
	return t
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}
