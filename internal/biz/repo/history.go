package repo

import (
	"context"
	"time"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
)

// HistoryRepo is the decision history repository interface
// Append-only from the engine's point of view
type HistoryRepo interface {
	// Append stores one entry at the end of the log
	Append(ctx context.Context, entry domain.HistoryEntry) error

	// List returns all entries in insertion order
	List(ctx context.Context) ([]domain.HistoryEntry, error)

	// CountSince counts entries with a timestamp at or after t
	CountSince(ctx context.Context, t time.Time) (int, error)

	// Clear deletes every entry (administrative)
	Clear(ctx context.Context) (int64, error)
}
