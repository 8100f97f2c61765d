package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
	"github.com/devricklin/privacy-guard/internal/biz/repo"
	"github.com/devricklin/privacy-guard/internal/logging"
)

// LogoutReminder shows the clear-data banner after a logout click
type LogoutReminder struct {
	site      domain.Site
	known     bool
	host      string
	clientID  string
	markers   repo.MarkerRepo
	presenter repo.Presenter
	opener    repo.Opener
	clock     clockwork.Clock
	ttl       time.Duration
	log       logging.Logger

	mu          sync.Mutex
	bannerShown bool
}

// NewLogoutReminder creates a reminder for one page.
// clientID identifies the browser the page belongs to.
func NewLogoutReminder(
	sites []domain.Site,
	host string,
	clientID string,
	markers repo.MarkerRepo,
	presenter repo.Presenter,
	opener repo.Opener,
	clock clockwork.Clock,
	ttl time.Duration,
	log logging.Logger,
) *LogoutReminder {
	site, known := domain.SiteForHost(sites, host)
	return &LogoutReminder{
		site:      site,
		known:     known,
		host:      host,
		clientID:  clientID,
		markers:   markers,
		presenter: presenter,
		opener:    opener,
		clock:     clock,
		ttl:       ttl,
		log:       log.With("component", "Logout"),
	}
}

// OnClick shows the banner when the click looks like a logout, and leaves
// a marker so the next page can show it again
func (r *LogoutReminder) OnClick(ctx context.Context, click domain.LogoutClick) bool {
	if !r.known || !r.site.IsLogout(click.Href, click.Text) {
		return false
	}

	r.showBanner(ctx)

	marker := domain.LogoutMarker{Host: r.host, CreatedAt: r.clock.Now()}
	if err := r.markers.Put(ctx, r.clientID, marker, r.ttl); err != nil {
		r.log.Warn(ctx, "failed to store logout marker", "error", err)
	}
	r.log.Info(ctx, "logout detected", "site", r.site.Key)
	return true
}

// OnPageLoad re-shows the banner once if a fresh marker is pending
func (r *LogoutReminder) OnPageLoad(ctx context.Context) bool {
	if !r.known {
		return false
	}

	marker, err := r.markers.Get(ctx, r.clientID)
	if errors.Is(err, domain.ErrMarkerNotFound) {
		return false
	}
	if err != nil {
		r.log.Warn(ctx, "failed to read logout marker", "error", err)
		return false
	}

	shown := false
	if marker.Fresh(r.clock.Now(), r.ttl) {
		r.showBanner(ctx)
		shown = true
	}
	if err := r.markers.Delete(ctx, r.clientID); err != nil {
		r.log.Warn(ctx, "failed to delete logout marker", "error", err)
	}
	return shown
}

// ClearData opens the host's data-clearing surface
func (r *LogoutReminder) ClearData(ctx context.Context) domain.ClearDataAck {
	if r.opener == nil {
		return domain.ClearDataAck{OK: false, Error: "clear-data opener not configured"}
	}
	if err := r.opener.OpenClearData(ctx); err != nil {
		r.log.Warn(ctx, "failed to open clear-data surface", "error", err)
		return domain.ClearDataAck{OK: false, Error: fmt.Sprintf("open clear data: %v", err)}
	}
	return domain.ClearDataAck{OK: true}
}

// Dismiss removes the banner
func (r *LogoutReminder) Dismiss(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.bannerShown {
		return
	}
	r.bannerShown = false
	if err := r.presenter.CloseBanner(ctx); err != nil {
		r.log.Warn(ctx, "failed to close banner", "error", err)
	}
}

// BannerShown returns whether the banner is on the page
func (r *LogoutReminder) BannerShown() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bannerShown
}

func (r *LogoutReminder) showBanner(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// A second banner replaces the first
	if r.bannerShown {
		if err := r.presenter.CloseBanner(ctx); err != nil {
			r.log.Warn(ctx, "failed to close banner", "error", err)
		}
	}
	if err := r.presenter.ShowBanner(ctx, domain.NewLogoutBanner(r.host)); err != nil {
		r.log.Warn(ctx, "failed to show banner", "error", err)
		return
	}
	r.bannerShown = true
}
