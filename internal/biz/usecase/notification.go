package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
	"github.com/devricklin/privacy-guard/internal/biz/repo"
	"github.com/devricklin/privacy-guard/internal/logging"
)

const maskedNotice = "✅ Datos enmascarados en el campo."

// liveNotification is the single notification slot of a page
type liveNotification struct {
	pending  domain.PendingNotification
	advisory domain.Advisory
	state    domain.NotificationState
	hovered  bool
	examples []string
	notice   string

	soft  clockwork.Timer
	hard  clockwork.Timer
	grace clockwork.Timer
}

// NotificationController owns the notification lifecycle of one page
type NotificationController struct {
	clock       clockwork.Clock
	timings     domain.Timings
	presenter   repo.Presenter
	history     *HistoryRecorder
	sessions    *SessionManager
	suppression *SuppressionRegistry
	pageURL     string
	log         logging.Logger

	mu   sync.Mutex
	live *liveNotification
	// closingID is the notification whose omit sequence is recording
	closingID string
}

// NewNotificationController creates a new notification controller
func NewNotificationController(
	clock clockwork.Clock,
	timings domain.Timings,
	presenter repo.Presenter,
	history *HistoryRecorder,
	sessions *SessionManager,
	suppression *SuppressionRegistry,
	pageURL string,
	log logging.Logger,
) *NotificationController {
	return &NotificationController{
		clock:       clock,
		timings:     timings,
		presenter:   presenter,
		history:     history,
		sessions:    sessions,
		suppression: suppression,
		pageURL:     pageURL,
		log:         log.With("component", "Notification"),
	}
}

// Show replaces any live notification with a new one and returns its id
func (c *NotificationController) Show(ctx context.Context, advisory domain.Advisory, target domain.TargetID, sessionID int64) string {
	c.mu.Lock()
	ignored := c.detachLocked(ctx)

	n := &liveNotification{
		pending: domain.PendingNotification{
			ID:        uuid.NewString(),
			Category:  advisory.Category,
			SessionID: sessionID,
			Target:    target,
		},
		advisory: advisory,
		state:    domain.NotificationShown,
	}
	id := n.pending.ID
	n.soft = c.clock.AfterFunc(c.timings.SoftClose, func() { c.closeByTimer(id, true) })
	n.hard = c.clock.AfterFunc(c.timings.HardClose, func() { c.closeByTimer(id, false) })
	c.live = n

	if err := c.presenter.ShowNotification(ctx, c.viewLocked(n)); err != nil {
		c.log.Warn(ctx, "failed to show notification", "id", id, "error", err)
	}
	c.mu.Unlock()

	c.recordIgnore(ctx, ignored)
	c.log.Info(ctx, "notification shown", "id", id, "category", advisory.Category, "session", sessionID)
	return id
}

// Close closes the live notification.
// With respectHover a hovered notification stays open.
func (c *NotificationController) Close(ctx context.Context, respectHover bool) bool {
	return c.closeMatching(ctx, "", respectHover)
}

// PointerEnter pauses the soft close
func (c *NotificationController) PointerEnter(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.liveLocked(id)
	if n == nil {
		return
	}
	n.hovered = true
	stopTimer(n.soft)
	n.soft = nil
}

// PointerLeave restarts the soft close
func (c *NotificationController) PointerLeave(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.liveLocked(id)
	if n == nil {
		return
	}
	n.hovered = false
	stopTimer(n.soft)
	n.soft = c.clock.AfterFunc(c.timings.SoftClose, func() { c.closeByTimer(id, true) })
}

// Accept records the accept decision once and offers the secondary actions
func (c *NotificationController) Accept(ctx context.Context, id string) error {
	c.mu.Lock()
	n := c.liveLocked(id)
	if n == nil {
		c.mu.Unlock()
		return domain.ErrNoNotification
	}
	if c.closingID == id {
		c.mu.Unlock()
		return nil
	}

	record := !n.pending.ActionTaken
	n.pending.ActionTaken = true
	pending := n.pending
	n.state = domain.NotificationAccepted
	stopTimer(n.soft)
	n.soft = nil
	c.resetGraceLocked(n, c.timings.AcceptGrace)

	if err := c.presenter.UpdateNotification(ctx, c.viewLocked(n)); err != nil {
		c.log.Warn(ctx, "failed to update notification", "id", id, "error", err)
	}
	c.mu.Unlock()

	if record {
		_ = c.history.Record(ctx, domain.ActionAccept, pending.Category, c.pageURL)
	}
	return nil
}

// ShowExamples attaches the masked examples of the category and returns them
func (c *NotificationController) ShowExamples(ctx context.Context, id string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.liveLocked(id)
	if n == nil {
		return nil, domain.ErrNoNotification
	}
	n.examples = domain.MaskedExamples(n.pending.Category)
	if n.state == domain.NotificationAccepted {
		c.resetGraceLocked(n, c.timings.AcceptGrace)
	}

	if err := c.presenter.UpdateNotification(ctx, c.viewLocked(n)); err != nil {
		c.log.Warn(ctx, "failed to update notification", "id", id, "error", err)
	}
	return append([]string{}, n.examples...), nil
}

// Mask rewrites the source field with its masked value and closes shortly after
func (c *NotificationController) Mask(ctx context.Context, id string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.liveLocked(id)
	if n == nil {
		return "", domain.ErrNoNotification
	}
	if !c.canMask(n) {
		return "", domain.ErrNotMaskable
	}

	masked := MaskValue(n.advisory.Source, n.pending.Category)
	if err := c.presenter.SetFieldValue(ctx, n.pending.Target, masked); err != nil {
		c.log.Warn(ctx, "failed to set field value", "id", id, "error", err)
	}
	n.notice = maskedNotice
	c.resetGraceLocked(n, c.timings.MaskClose)

	if err := c.presenter.UpdateNotification(ctx, c.viewLocked(n)); err != nil {
		c.log.Warn(ctx, "failed to update notification", "id", id, "error", err)
	}
	return masked, nil
}

// Omit records the omit decision once, suppresses the category for the
// notification's target and closes it regardless of hover
func (c *NotificationController) Omit(ctx context.Context, id string) error {
	c.mu.Lock()
	n := c.liveLocked(id)
	if n == nil {
		c.mu.Unlock()
		return domain.ErrNoNotification
	}
	if c.closingID == id {
		c.mu.Unlock()
		return nil
	}
	c.closingID = id
	stopTimer(n.soft)
	n.soft = nil

	c.suppression.Suppress(n.pending.Category, n.pending.Target, n.pending.SessionID)
	record := !n.pending.ActionTaken
	n.pending.ActionTaken = true
	pending := n.pending
	c.mu.Unlock()

	if record {
		_ = c.history.Record(ctx, domain.ActionOmit, pending.Category, c.pageURL)
	}

	c.mu.Lock()
	if c.closingID == id {
		c.closingID = ""
	}
	var ignored *domain.PendingNotification
	if c.live != nil && c.live.pending.ID == id {
		ignored = c.detachLocked(ctx)
	}
	c.mu.Unlock()

	c.recordIgnore(ctx, ignored)
	c.log.Info(ctx, "notification omitted", "id", id, "category", pending.Category)
	return nil
}

// Live returns the pending notification and its state
func (c *NotificationController) Live() (domain.PendingNotification, domain.NotificationState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.live == nil {
		return domain.PendingNotification{}, domain.NotificationAbsent, false
	}
	return c.live.pending, c.live.state, true
}

// Teardown removes the live notification and stops every timer
func (c *NotificationController) Teardown(ctx context.Context) {
	c.Close(ctx, false)
}

func (c *NotificationController) closeByTimer(id string, respectHover bool) {
	c.closeMatching(context.Background(), id, respectHover)
}

// closeMatching closes the live notification if it matches id (any when empty)
func (c *NotificationController) closeMatching(ctx context.Context, id string, respectHover bool) bool {
	c.mu.Lock()
	n := c.live
	if n == nil || (id != "" && n.pending.ID != id) || c.closingID == n.pending.ID || (respectHover && n.hovered) {
		c.mu.Unlock()
		return false
	}
	ignored := c.detachLocked(ctx)
	c.mu.Unlock()

	c.recordIgnore(ctx, ignored)
	return true
}

// detachLocked removes the live notification and returns it when an ignore entry is owed
func (c *NotificationController) detachLocked(ctx context.Context) *domain.PendingNotification {
	n := c.live
	if n == nil {
		return nil
	}
	c.live = nil
	stopTimer(n.soft)
	stopTimer(n.hard)
	stopTimer(n.grace)

	if err := c.presenter.CloseNotification(ctx, n.pending.ID); err != nil {
		c.log.Warn(ctx, "failed to close notification", "id", n.pending.ID, "error", err)
	}

	if n.pending.ActionTaken || !c.sessions.MarkIgnored(n.pending.SessionID, n.pending.Category) {
		return nil
	}
	pending := n.pending
	return &pending
}

func (c *NotificationController) recordIgnore(ctx context.Context, p *domain.PendingNotification) {
	if p == nil {
		return
	}
	_ = c.history.Record(ctx, domain.ActionIgnore, p.Category, c.pageURL)
}

func (c *NotificationController) liveLocked(id string) *liveNotification {
	if c.live == nil || c.live.pending.ID != id {
		return nil
	}
	return c.live
}

func (c *NotificationController) resetGraceLocked(n *liveNotification, d time.Duration) {
	stopTimer(n.grace)
	id := n.pending.ID
	n.grace = c.clock.AfterFunc(d, func() { c.closeByTimer(id, false) })
}

func (c *NotificationController) canMask(n *liveNotification) bool {
	return n.state == domain.NotificationAccepted &&
		n.pending.Category.Maskable() &&
		len(n.advisory.Matches) > 0
}

func (c *NotificationController) viewLocked(n *liveNotification) domain.NotificationView {
	return domain.NotificationView{
		ID:             n.pending.ID,
		State:          n.state,
		Category:       n.pending.Category,
		Title:          n.advisory.Title,
		Vulnerability:  n.advisory.Vulnerability,
		Recommendation: n.advisory.Recommendation,
		CanMask:        c.canMask(n),
		Examples:       append([]string(nil), n.examples...),
		Notice:         n.notice,
	}
}

func stopTimer(t clockwork.Timer) {
	if t != nil {
		t.Stop()
	}
}
