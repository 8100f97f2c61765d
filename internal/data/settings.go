package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
	"github.com/devricklin/privacy-guard/internal/biz/repo"
)

// settingsRepo stores the settings as one JSON document row
type settingsRepo struct {
	db    *sql.DB
	clock clockwork.Clock
}

// NewSettingsRepo creates a new Settings repository
func NewSettingsRepo(db *sql.DB, clock clockwork.Clock) repo.SettingsRepo {
	return &settingsRepo{db: db, clock: clock}
}

// Load returns the stored settings merged over the defaults
func (r *settingsRepo) Load(ctx context.Context) (domain.Settings, error) {
	return r.load(ctx, r.db)
}

// Save merges the patch into the stored document
func (r *settingsRepo) Save(ctx context.Context, patch domain.SettingsPatch) (domain.Settings, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := r.load(ctx, tx)
	if err != nil {
		return domain.Settings{}, err
	}
	merged := current.Merge(patch)

	doc, err := json.Marshal(merged)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("failed to encode settings: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO settings (id, doc, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at
	`, string(doc), r.clock.Now().UnixMilli())
	if err != nil {
		return domain.Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Settings{}, fmt.Errorf("failed to commit settings: %w", err)
	}
	return merged, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *settingsRepo) load(ctx context.Context, q queryer) (domain.Settings, error) {
	var doc string
	err := q.QueryRowContext(ctx, `SELECT doc FROM settings WHERE id = 1`).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("failed to query settings: %w", err)
	}

	// Decode as a patch so stored keys overlay the defaults
	var stored domain.SettingsPatch
	if err := json.Unmarshal([]byte(doc), &stored); err != nil {
		return domain.Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return domain.DefaultSettings().Merge(stored), nil
}
