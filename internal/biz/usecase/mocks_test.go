package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
	"github.com/devricklin/privacy-guard/internal/logging"
)

// Mock implementations

type mockHistoryRepo struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
	err     error

	// Append waits on gate when set, signalling entered first
	gate    chan struct{}
	entered chan struct{}
}

func (m *mockHistoryRepo) Append(ctx context.Context, entry domain.HistoryEntry) error {
	if m.gate != nil {
		select {
		case m.entered <- struct{}{}:
		default:
		}
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockHistoryRepo) List(ctx context.Context) ([]domain.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]domain.HistoryEntry{}, m.entries...), nil
}

func (m *mockHistoryRepo) CountSince(ctx context.Context, t time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.CountSince(m.entries, t), nil
}

func (m *mockHistoryRepo) Clear(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.entries))
	m.entries = nil
	return n, nil
}

func (m *mockHistoryRepo) actions() []domain.HistoryAction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.HistoryAction, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Action
	}
	return out
}

type mockSettingsRepo struct {
	mu       sync.Mutex
	settings domain.Settings
	err      error
}

func newMockSettingsRepo() *mockSettingsRepo {
	return &mockSettingsRepo{settings: domain.DefaultSettings()}
}

func (m *mockSettingsRepo) Load(ctx context.Context) (domain.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.Settings{}, m.err
	}
	return m.settings.Clone(), nil
}

func (m *mockSettingsRepo) Save(ctx context.Context, patch domain.SettingsPatch) (domain.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.Settings{}, m.err
	}
	m.settings = m.settings.Merge(patch)
	return m.settings.Clone(), nil
}

type mockMarkerRepo struct {
	mu      sync.Mutex
	markers map[string]domain.LogoutMarker
	err     error
}

func newMockMarkerRepo() *mockMarkerRepo {
	return &mockMarkerRepo{markers: make(map[string]domain.LogoutMarker)}
}

func (m *mockMarkerRepo) Put(ctx context.Context, clientID string, marker domain.LogoutMarker, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.markers[clientID] = marker
	return nil
}

func (m *mockMarkerRepo) Get(ctx context.Context, clientID string) (*domain.LogoutMarker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	marker, ok := m.markers[clientID]
	if !ok {
		return nil, domain.ErrMarkerNotFound
	}
	return &marker, nil
}

func (m *mockMarkerRepo) Delete(ctx context.Context, clientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.markers, clientID)
	return nil
}

type mockClassifierRepo struct {
	mu      sync.Mutex
	verdict *domain.Verdict
	err     error
	calls   int
	// during runs inside Analyze, before it returns
	during func()
}

func (m *mockClassifierRepo) Analyze(ctx context.Context, text string) (*domain.Verdict, error) {
	m.mu.Lock()
	m.calls++
	verdict, err, during := m.verdict, m.err, m.during
	m.mu.Unlock()

	if during != nil {
		during()
	}
	if err != nil {
		return nil, err
	}
	if verdict == nil {
		return nil, nil
	}
	v := *verdict
	return &v, nil
}

func (m *mockClassifierRepo) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type recordingPresenter struct {
	mu           sync.Mutex
	shown        []domain.NotificationView
	updates      []domain.NotificationView
	closed       []string
	fields       map[domain.TargetID]string
	banners      []domain.Banner
	bannerClosed int
}

func newRecordingPresenter() *recordingPresenter {
	return &recordingPresenter{fields: make(map[domain.TargetID]string)}
}

func (p *recordingPresenter) ShowNotification(ctx context.Context, view domain.NotificationView) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shown = append(p.shown, view)
	return nil
}

func (p *recordingPresenter) UpdateNotification(ctx context.Context, view domain.NotificationView) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, view)
	return nil
}

func (p *recordingPresenter) CloseNotification(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = append(p.closed, id)
	return nil
}

func (p *recordingPresenter) SetFieldValue(ctx context.Context, target domain.TargetID, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fields[target] = value
	return nil
}

func (p *recordingPresenter) ShowBanner(ctx context.Context, banner domain.Banner) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.banners = append(p.banners, banner)
	return nil
}

func (p *recordingPresenter) CloseBanner(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bannerClosed++
	return nil
}

func (p *recordingPresenter) shownCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.shown)
}

func (p *recordingPresenter) closedIDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string{}, p.closed...)
}

func (p *recordingPresenter) lastShown() domain.NotificationView {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.shown) == 0 {
		return domain.NotificationView{}
	}
	return p.shown[len(p.shown)-1]
}

func (p *recordingPresenter) lastUpdate() domain.NotificationView {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.updates) == 0 {
		return domain.NotificationView{}
	}
	return p.updates[len(p.updates)-1]
}

type mockOpener struct {
	calls int
	err   error
}

func (m *mockOpener) OpenClearData(ctx context.Context) error {
	m.calls++
	return m.err
}

// testEngine wires one page engine over mocks and a fake clock
type testEngine struct {
	clock       *clockwork.FakeClock
	timings     domain.Timings
	presenter   *recordingPresenter
	historyRepo *mockHistoryRepo
	classifier  *mockClassifierRepo
	cache       *SettingsCache
	sessions    *SessionManager
	suppression *SuppressionRegistry
	notifier    *NotificationController
	detection   *DetectionUsecase
}

func newTestEngine(t *testing.T, host string) *testEngine {
	t.Helper()

	e := &testEngine{
		clock:       clockwork.NewFakeClock(),
		timings:     domain.DefaultTimings(),
		presenter:   newRecordingPresenter(),
		historyRepo: &mockHistoryRepo{},
		classifier:  &mockClassifierRepo{},
		cache:       NewSettingsCache(),
	}
	log := logging.NewNop()

	e.suppression = NewSuppressionRegistry(e.clock, e.timings.OmitTTL)
	e.sessions = NewSessionManager(e.suppression)
	history := NewHistoryRecorder(e.historyRepo, e.clock, log)
	e.notifier = NewNotificationController(e.clock, e.timings, e.presenter, history, e.sessions, e.suppression, "https://"+host+"/", log)
	e.detection = NewDetectionUsecase(
		NewPageGate(e.cache, domain.DefaultSites(), host),
		e.cache,
		NewClassifierUsecase(e.classifier),
		e.sessions,
		e.suppression,
		e.notifier,
		NewFormScanner(e.clock, e.timings.FormCooldown),
		e.clock,
		e.timings,
		log,
	)
	t.Cleanup(func() { e.notifier.Teardown(context.Background()) })
	return e
}

func (e *testEngine) exposes(category string) {
	e.classifier.mu.Lock()
	e.classifier.verdict = &domain.Verdict{Exposes: true, Category: category}
	e.classifier.mu.Unlock()
}

func (e *testEngine) live() (domain.PendingNotification, bool) {
	p, _, ok := e.notifier.Live()
	return p, ok
}
