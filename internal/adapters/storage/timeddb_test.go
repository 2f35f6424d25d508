package storage

import (
	"context"
	"testing"
	"time"

	"noticeboard/internal/adapters/http/perf"
)

func newTimedTestDB(t *testing.T) (*TimedDB, *perf.Collector) {
	t.Helper()
	db := openTestDB(t)
	if err := MigrateDB(db); err != nil {
		t.Fatalf("MigrateDB: %v", err)
	}
	collector := perf.NewCollector(100)
	return NewTimedDB(db, collector, time.Hour), collector
}

// TestTimedDB_RecordsEachStatement verifies every call lands in the collector.
func TestTimedDB_RecordsEachStatement(t *testing.T) {
	tdb, collector := newTimedTestDB(t)
	ctx := context.Background()
	before := collector.TotalRecorded()

	if _, err := tdb.ExecContext(ctx, `INSERT INTO recipient (id, email, created_at) VALUES (?, ?, ?)`, "r1", "a@example.com", "2026-01-01T00:00:00Z"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	var email string
	if err := tdb.QueryRowContext(ctx, `SELECT email FROM recipient WHERE id = ?`, "r1").Scan(&email); err != nil {
		t.Fatalf("QueryRowContext: %v", err)
	}
	rows, err := tdb.QueryContext(ctx, `SELECT id FROM recipient`)
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	rows.Close()

	if got := collector.TotalRecorded() - before; got != 3 {
		t.Errorf("recorded %d statements, want 3", got)
	}
	if email != "a@example.com" {
		t.Errorf("email = %q", email)
	}
}

// TestTimedDB_GroupsByStatementLabel verifies snapshot rows are keyed by verb and table.
func TestTimedDB_GroupsByStatementLabel(t *testing.T) {
	tdb, collector := newTimedTestDB(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		var n int
		tdb.QueryRowContext(ctx, `SELECT COUNT(*) FROM announcement`).Scan(&n)
	}

	snap := collector.Snapshot(time.Now().Add(-time.Minute), 10)
	var found bool
	for _, s := range snap.SlowestQueries {
		if s.Path == "SELECT announcement" {
			found = true
			if s.Count != 3 {
				t.Errorf("Count = %d, want 3", s.Count)
			}
		}
	}
	if !found {
		t.Errorf("no SELECT announcement row in %+v", snap.SlowestQueries)
	}
}

// TestTimedDB_NilCollector verifies the wrapper works without a collector.
func TestTimedDB_NilCollector(t *testing.T) {
	db := openTestDB(t)
	tdb := NewTimedDB(db, nil, 0)
	if tdb.threshold != DefaultSlowQuery {
		t.Errorf("threshold = %v, want %v", tdb.threshold, DefaultSlowQuery)
	}
	if _, err := tdb.ExecContext(context.Background(), `CREATE TABLE t (id TEXT)`); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
}

// TestTimedDB_BeginTx verifies transactions pass through.
func TestTimedDB_BeginTx(t *testing.T) {
	tdb, _ := newTimedTestDB(t)
	tx, err := tdb.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Errorf("Rollback: %v", err)
	}
}

// TestStatementLabel covers the label shapes used in perf snapshots.
func TestStatementLabel(t *testing.T) {
	cases := map[string]string{
		"SELECT id, title FROM announcement ORDER BY created_at DESC": "SELECT announcement",
		"INSERT INTO dispatch_log (id) VALUES (?)":                    "INSERT dispatch_log",
		"UPDATE announcement SET title = ? WHERE id = ?":              "UPDATE announcement",
		"DELETE FROM recipient WHERE id = ?":                          "DELETE recipient",
		"PRAGMA foreign_keys=ON":                                      "PRAGMA",
		"   ":                                                         "EMPTY",
	}
	for query, want := range cases {
		if got := statementLabel(query); got != want {
			t.Errorf("statementLabel(%q) = %q, want %q", query, got, want)
		}
	}
}
