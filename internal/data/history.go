package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
	"github.com/devricklin/privacy-guard/internal/biz/repo"
)

// historyRepo implements the History repository on SQLite
type historyRepo struct {
	db *sql.DB
}

// NewHistoryRepo creates a new History repository
func NewHistoryRepo(db *sql.DB) repo.HistoryRepo {
	return &historyRepo{db: db}
}

// Append stores one entry
func (r *historyRepo) Append(ctx context.Context, entry domain.HistoryEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO history (action, category, url, ts)
		VALUES (?, ?, ?, ?)
	`, string(entry.Action), string(entry.Category), entry.URL, entry.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

// List returns entries in insertion order
func (r *historyRepo) List(ctx context.Context) ([]domain.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, action, category, url, ts
		FROM history
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		var action, category string
		var ts int64
		if err := rows.Scan(&e.ID, &action, &category, &e.URL, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		e.Action = domain.HistoryAction(action)
		e.Category = domain.Category(category)
		e.Timestamp = time.UnixMilli(ts).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return entries, nil
}

// CountSince counts entries at or after t
func (r *historyRepo) CountSince(ctx context.Context, t time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history WHERE ts >= ?`, t.UnixMilli()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return n, nil
}

// Clear deletes every entry
func (r *historyRepo) Clear(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM history`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return result.RowsAffected()
}
