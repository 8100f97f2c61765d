package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonboulle/clockwork"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
	"github.com/devricklin/privacy-guard/internal/biz/repo"
	"github.com/devricklin/privacy-guard/internal/biz/usecase"
	"github.com/devricklin/privacy-guard/internal/logging"
)

// PageFactory builds one engine per connected page
type PageFactory struct {
	settingsUC *usecase.SettingsUsecase
	classifier *usecase.ClassifierUsecase
	history    *usecase.HistoryRecorder
	markers    repo.MarkerRepo
	opener     repo.Opener
	sites      []domain.Site
	timings    domain.Timings
	clock      clockwork.Clock
	log        logging.Logger

	mu    sync.Mutex
	pages map[*Page]struct{}
}

// NewPageFactory creates a new page factory
func NewPageFactory(
	settingsUC *usecase.SettingsUsecase,
	classifier *usecase.ClassifierUsecase,
	history *usecase.HistoryRecorder,
	markers repo.MarkerRepo,
	opener repo.Opener,
	sites []domain.Site,
	timings domain.Timings,
	clock clockwork.Clock,
	log logging.Logger,
) *PageFactory {
	return &PageFactory{
		settingsUC: settingsUC,
		classifier: classifier,
		history:    history,
		markers:    markers,
		opener:     opener,
		sites:      sites,
		timings:    timings,
		clock:      clock,
		log:        log,
		pages:      make(map[*Page]struct{}),
	}
}

// Page is the detection engine of one browser page
type Page struct {
	factory  *PageFactory
	clientID string
	pageURL  string
	host     string

	cache     *usecase.SettingsCache
	detach    func()
	detection *usecase.DetectionUsecase
	notifier  *usecase.NotificationController
	logout    *usecase.LogoutReminder

	inputDebounce *Debouncer
	scanDebounce  *Debouncer

	log      logging.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// Open creates the engine for pageURL rendering through presenter
func (f *PageFactory) Open(ctx context.Context, clientID, pageURL string, presenter repo.Presenter) (*Page, error) {
	u, err := url.Parse(pageURL)
	if err != nil || u.Hostname() == "" {
		return nil, fmt.Errorf("invalid page url %q", pageURL)
	}
	host := strings.ToLower(u.Hostname())

	cache, detach := f.settingsUC.NewCache(ctx)
	suppression := usecase.NewSuppressionRegistry(f.clock, f.timings.OmitTTL)
	sessions := usecase.NewSessionManager(suppression)
	notifier := usecase.NewNotificationController(f.clock, f.timings, presenter, f.history, sessions, suppression, pageURL, f.log)

	p := &Page{
		factory:  f,
		clientID: clientID,
		pageURL:  pageURL,
		host:     host,
		cache:    cache,
		detach:   detach,
		notifier: notifier,
		detection: usecase.NewDetectionUsecase(
			usecase.NewPageGate(cache, f.sites, host),
			cache,
			f.classifier,
			sessions,
			suppression,
			notifier,
			usecase.NewFormScanner(f.clock, f.timings.FormCooldown),
			f.clock,
			f.timings,
			f.log,
		),
		logout:        usecase.NewLogoutReminder(f.sites, host, clientID, f.markers, presenter, f.opener, f.clock, f.timings.LogoutPending, f.log),
		inputDebounce: NewDebouncer(f.clock, f.timings.InputDebounce),
		scanDebounce:  NewDebouncer(f.clock, f.timings.ScanDebounce),
		log:           f.log.With("component", "Page", "host", host),
		ctx:           context.Background(),
	}

	unsubscribe := cache.Subscribe(func(s domain.Settings) {
		p.detection.ApplySettings(p.ctx, s)
	})
	p.detach = func() {
		unsubscribe()
		detach()
	}

	f.mu.Lock()
	f.pages[p] = struct{}{}
	f.mu.Unlock()
	return p, nil
}

// Live returns the number of open pages
func (f *PageFactory) Live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pages)
}

// Start runs page-load work. Events are accepted once Start returns.
func (p *Page) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.logout.OnPageLoad(p.ctx)
	}()

	p.log.Info(p.ctx, "page attached", "client", p.clientID)
}

// Stop tears the page down. Pending debounced work is dropped.
func (p *Page) Stop() {
	p.stopOnce.Do(p.stop)
}

func (p *Page) stop() {
	p.inputDebounce.Stop()
	p.scanDebounce.Stop()
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.notifier.Teardown(context.Background())
	p.detach()

	p.factory.mu.Lock()
	delete(p.factory.pages, p)
	p.factory.mu.Unlock()

	p.log.Info(context.Background(), "page detached", "client", p.clientID)
}

// Host returns the page hostname
func (p *Page) Host() string {
	return p.host
}

// Input debounces a keystroke burst
func (p *Page) Input(ev usecase.InputEvent) {
	p.inputDebounce.Trigger(func() {
		p.detection.EvaluateInput(p.ctx, ev)
	})
}

// Copy evaluates a copy action
func (p *Page) Copy(ev usecase.CopyEvent) {
	p.detection.EvaluateCopy(p.ctx, ev)
}

// Snapshot debounces a DOM snapshot and scans its forms
func (p *Page) Snapshot(html string) {
	p.scanDebounce.Trigger(func() {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			p.log.Warn(p.ctx, "unreadable snapshot", "error", err)
			return
		}
		p.detection.ScanForms(p.ctx, doc)
	})
}

// PointerEnter pauses the soft close of notification id
func (p *Page) PointerEnter(id string) {
	p.notifier.PointerEnter(id)
}

// PointerLeave resumes the soft close of notification id
func (p *Page) PointerLeave(id string) {
	p.notifier.PointerLeave(id)
}

// Accept records an accept
func (p *Page) Accept(id string) error {
	return p.notifier.Accept(p.ctx, id)
}

// Omit records an omit and suppresses the category
func (p *Page) Omit(id string) error {
	return p.notifier.Omit(p.ctx, id)
}

// Examples shows the masked examples of the accepted notification
func (p *Page) Examples(id string) ([]string, error) {
	return p.notifier.ShowExamples(p.ctx, id)
}

// Mask replaces the detected values in the field
func (p *Page) Mask(id string) (string, error) {
	return p.notifier.Mask(p.ctx, id)
}

// Click checks a click for a logout
func (p *Page) Click(click domain.LogoutClick) bool {
	if click.Host == "" {
		click.Host = p.host
	}
	return p.logout.OnClick(p.ctx, click)
}

// ClearData opens the data-clearing surface
func (p *Page) ClearData() domain.ClearDataAck {
	return p.logout.ClearData(p.ctx)
}

// DismissBanner closes the logout banner
func (p *Page) DismissBanner() {
	p.logout.Dismiss(p.ctx)
}
