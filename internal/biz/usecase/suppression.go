package usecase

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
)

// SuppressionRegistry holds the temporary omits of a page, one per category
type SuppressionRegistry struct {
	clock clockwork.Clock
	ttl   time.Duration

	mu      sync.Mutex
	entries map[domain.Category]domain.SuppressionEntry
}

// NewSuppressionRegistry creates a new suppression registry
func NewSuppressionRegistry(clock clockwork.Clock, ttl time.Duration) *SuppressionRegistry {
	return &SuppressionRegistry{
		clock:   clock,
		ttl:     ttl,
		entries: make(map[domain.Category]domain.SuppressionEntry),
	}
}

// Suppress inserts or overwrites the omit for category
func (r *SuppressionRegistry) Suppress(category domain.Category, target domain.TargetID, sessionID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[category] = domain.SuppressionEntry{
		Category:  category,
		ExpiresAt: r.clock.Now().Add(r.ttl),
		SessionID: sessionID,
		Target:    target,
	}
}

// IsSuppressed reports whether a live omit matches the session and target.
// Expired entries are dropped by the check.
func (r *SuppressionRegistry) IsSuppressed(category domain.Category, target domain.TargetID, sessionID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[category]
	if !ok {
		return false
	}
	if entry.Expired(r.clock.Now()) {
		delete(r.entries, category)
		return false
	}
	return entry.Applies(sessionID, target)
}

// EvictOtherSessions drops every entry not bound to sessionID
func (r *SuppressionRegistry) EvictOtherSessions(sessionID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for c, e := range r.entries {
		if e.SessionID != sessionID {
			delete(r.entries, c)
		}
	}
}

// ResetOnCategoryChange drops every entry for a category other than category
func (r *SuppressionRegistry) ResetOnCategoryChange(category domain.Category) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for c := range r.entries {
		if c != category {
			delete(r.entries, c)
		}
	}
}

// Len returns the number of stored entries, expired or not
func (r *SuppressionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
