package domain

import "time"

// TargetID identifies an input element (or form container) on a page.
// The empty value means "no target".
type TargetID string

// Session represents the binding between the active input and its suppression state
type Session struct {
	ID     int64
	Target TargetID
}

// SuppressionEntry represents a temporary "omit" for one category
type SuppressionEntry struct {
	Category  Category
	ExpiresAt time.Time
	SessionID int64
	Target    TargetID
}

// Expired checks if the entry is past its expiry
func (e SuppressionEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Applies checks if the entry belongs to the session and target
func (e SuppressionEntry) Applies(sessionID int64, target TargetID) bool {
	if e.SessionID != sessionID {
		return false
	}
	return e.Target == "" || e.Target == target
}

type ignoredKey struct {
	session  int64
	category Category
}

// IgnoredOnceSet records which (session, category) pairs already produced an "ignore" entry
type IgnoredOnceSet struct {
	seen map[ignoredKey]struct{}
}

// NewIgnoredOnceSet creates an empty set
func NewIgnoredOnceSet() *IgnoredOnceSet {
	return &IgnoredOnceSet{seen: make(map[ignoredKey]struct{})}
}

// Add inserts the pair and reports whether it was new
func (s *IgnoredOnceSet) Add(sessionID int64, c Category) bool {
	k := ignoredKey{session: sessionID, category: c}
	if _, ok := s.seen[k]; ok {
		return false
	}
	s.seen[k] = struct{}{}
	return true
}

// Clear removes every pair
func (s *IgnoredOnceSet) Clear() {
	s.seen = make(map[ignoredKey]struct{})
}

// Len returns the number of pairs
func (s *IgnoredOnceSet) Len() int {
	return len(s.seen)
}
