package domain

import "errors"

var (
	// ErrNoNotification is returned when an action refers to a notification that is not live
	ErrNoNotification = errors.New("no live notification")
	// ErrNotMaskable is returned when masking is requested for a notification that cannot mask
	ErrNotMaskable = errors.New("notification cannot mask its value")
)

// NotificationState is the state of the notification slot
type NotificationState string

const (
	NotificationAbsent   NotificationState = "absent"
	NotificationShown    NotificationState = "shown"
	NotificationAccepted NotificationState = "accepted"
)

// PendingNotification tracks the single decision owed by a shown notification
type PendingNotification struct {
	ID          string
	Category    Category
	SessionID   int64
	Target      TargetID
	ActionTaken bool
}

// NotificationView is what the presenter renders
type NotificationView struct {
	ID             string            `json:"id"`
	State          NotificationState `json:"state"`
	Category       Category          `json:"category"`
	Title          string            `json:"title"`
	Vulnerability  string            `json:"vulnerability"`
	Recommendation string            `json:"recommendation"`
	CanMask        bool              `json:"can_mask"`
	Examples       []string          `json:"examples,omitempty"`
	Notice         string            `json:"notice,omitempty"`
}
