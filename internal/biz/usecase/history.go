package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
	"github.com/devricklin/privacy-guard/internal/biz/repo"
	"github.com/devricklin/privacy-guard/internal/logging"
)

// HistoryRecorder writes and reads the decision history
type HistoryRecorder struct {
	historyRepo repo.HistoryRepo
	clock       clockwork.Clock
	log         logging.Logger
}

// NewHistoryRecorder creates a new history recorder
func NewHistoryRecorder(historyRepo repo.HistoryRepo, clock clockwork.Clock, log logging.Logger) *HistoryRecorder {
	return &HistoryRecorder{
		historyRepo: historyRepo,
		clock:       clock,
		log:         log.With("component", "History"),
	}
}

// Record appends one decision. Failures are logged and returned for callers that care.
func (r *HistoryRecorder) Record(ctx context.Context, action domain.HistoryAction, category domain.Category, url string) error {
	entry := domain.HistoryEntry{
		Action:    action,
		Timestamp: r.clock.Now().UTC().Truncate(time.Millisecond),
		Category:  category,
		URL:       url,
	}
	if err := r.historyRepo.Append(ctx, entry); err != nil {
		r.log.Error(ctx, "failed to record decision", "action", action, "category", category, "error", err)
		return fmt.Errorf("append history: %w", err)
	}
	r.log.Debug(ctx, "decision recorded", "action", action, "category", category)
	return nil
}

// List returns every entry, newest first
func (r *HistoryRecorder) List(ctx context.Context) ([]domain.HistoryEntry, error) {
	entries, err := r.historyRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	domain.SortNewestFirst(entries)
	return entries, nil
}

// CountToday counts entries since local midnight
func (r *HistoryRecorder) CountToday(ctx context.Context) (int, error) {
	n, err := r.historyRepo.CountSince(ctx, domain.StartOfDay(r.clock.Now()))
	if err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return n, nil
}

// Clear deletes the whole history
func (r *HistoryRecorder) Clear(ctx context.Context) (int64, error) {
	n, err := r.historyRepo.Clear(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	r.log.Info(ctx, "history cleared", "deleted", n)
	return n, nil
}
