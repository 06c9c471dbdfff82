// Package storage persists the activity journal in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"showcase/internal/activity"

	_ "modernc.org/sqlite"
)

// SQLiteJournal is an activity.Journal backed by a SQLite file.
type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; modernc serialises anyway and this avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) Record(ctx context.Context, e activity.Event) (activity.Event, error) {
	res, err := j.db.ExecContext(ctx,
		`INSERT INTO activity (session_id, demo, kind, detail, occurred_at) VALUES (?, ?, ?, ?, ?)`,
		e.SessionID, e.Demo, e.Kind, e.Detail, e.At.UnixMilli())
	if err != nil {
		return e, fmt.Errorf("insert activity: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return e, fmt.Errorf("activity id: %w", err)
	}
	e.ID = id
	return e, nil
}

func (j *SQLiteJournal) Recent(ctx context.Context, limit int) ([]activity.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, session_id, demo, kind, detail, occurred_at FROM activity ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close()

	var out []activity.Event
	for rows.Next() {
		var (
			e  activity.Event
			ms int64
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Demo, &e.Kind, &e.Detail, &ms); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		e.At = time.UnixMilli(ms).UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity: %w", err)
	}
	return out, nil
}

// CountByDemo returns how many events each demo produced.
func (j *SQLiteJournal) CountByDemo(ctx context.Context) (map[string]int64, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT demo, COUNT(*) FROM activity GROUP BY demo`)
	if err != nil {
		return nil, fmt.Errorf("count activity: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			demo string
			n    int64
		)
		if err := rows.Scan(&demo, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[demo] = n
	}
	return counts, rows.Err()
}

// Prune deletes events older than before and returns how many were removed.
func (j *SQLiteJournal) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := j.db.ExecContext(ctx, `DELETE FROM activity WHERE occurred_at < ?`, before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune activity: %w", err)
	}
	return res.RowsAffected()
}

func (j *SQLiteJournal) Ping(ctx context.Context) error {
	return j.db.PingContext(ctx)
}

func (j *SQLiteJournal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

var _ activity.Journal = (*SQLiteJournal)(nil)
