package repo

import (
	"context"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
)

// Presenter renders engine output on the page
// Implementations must not block on the page; errors are logged by callers
type Presenter interface {
	// ShowNotification renders a new notification, replacing any other
	ShowNotification(ctx context.Context, view domain.NotificationView) error

	// UpdateNotification re-renders a live notification
	UpdateNotification(ctx context.Context, view domain.NotificationView) error

	// CloseNotification removes a notification
	CloseNotification(ctx context.Context, id string) error

	// SetFieldValue replaces the value of an input field
	SetFieldValue(ctx context.Context, target domain.TargetID, value string) error

	// ShowBanner renders the logout reminder
	ShowBanner(ctx context.Context, banner domain.Banner) error

	// CloseBanner removes the logout reminder
	CloseBanner(ctx context.Context) error
}

// Opener opens the host's data-clearing surface
type Opener interface {
	OpenClearData(ctx context.Context) error
}
