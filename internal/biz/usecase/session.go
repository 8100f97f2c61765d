package usecase

import (
	"sync"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
)

// SessionManager tracks the input session of a page
type SessionManager struct {
	suppression *SuppressionRegistry

	mu      sync.Mutex
	current domain.Session
	ignored *domain.IgnoredOnceSet
}

// NewSessionManager creates a session manager with no tracked target
func NewSessionManager(suppression *SuppressionRegistry) *SessionManager {
	return &SessionManager{
		suppression: suppression,
		ignored:     domain.NewIgnoredOnceSet(),
	}
}

// NewSession starts a session bound to target and returns its id.
// Omits from other sessions and the ignore dedup state are dropped.
func (m *SessionManager) NewSession(target domain.TargetID) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.newSessionLocked(target)
}

// Observe starts a new session only when target differs from the tracked one
func (m *SessionManager) Observe(target domain.TargetID) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.ID != 0 && m.current.Target == target {
		return m.current.ID, false
	}
	return m.newSessionLocked(target), true
}

func (m *SessionManager) newSessionLocked(target domain.TargetID) int64 {
	m.current = domain.Session{ID: m.current.ID + 1, Target: target}
	m.ignored.Clear()
	m.suppression.EvictOtherSessions(m.current.ID)
	return m.current.ID
}

// Current returns the tracked session
func (m *SessionManager) Current() domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// MarkIgnored reports whether an ignore entry is still owed for the pair, and marks it
func (m *SessionManager) MarkIgnored(sessionID int64, category domain.Category) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ignored.Add(sessionID, category)
}
