package usecase

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonboulle/clockwork"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
	"github.com/devricklin/privacy-guard/internal/logging"
)

// InputEvent is a debounced keystroke burst on a field
type InputEvent struct {
	Target domain.TargetID
	Tag    string
	Value  string
}

// CopyEvent is a copy action on the page
type CopyEvent struct {
	ActiveTarget     domain.TargetID
	ActiveIsPassword bool
	Clipboard        string
	Selection        string
}

// DetectionUsecase turns page events into notifications
type DetectionUsecase struct {
	gate        *PageGate
	cache       *SettingsCache
	classifier  *ClassifierUsecase
	sessions    *SessionManager
	suppression *SuppressionRegistry
	notifier    *NotificationController
	scanner     *FormScanner
	clock       clockwork.Clock
	timings     domain.Timings
	log         logging.Logger

	mu           sync.Mutex
	lastCategory domain.Category
	lastCopyAt   time.Time
}

// NewDetectionUsecase creates a new detection usecase
func NewDetectionUsecase(
	gate *PageGate,
	cache *SettingsCache,
	classifier *ClassifierUsecase,
	sessions *SessionManager,
	suppression *SuppressionRegistry,
	notifier *NotificationController,
	scanner *FormScanner,
	clock clockwork.Clock,
	timings domain.Timings,
	log logging.Logger,
) *DetectionUsecase {
	return &DetectionUsecase{
		gate:        gate,
		cache:       cache,
		classifier:  classifier,
		sessions:    sessions,
		suppression: suppression,
		notifier:    notifier,
		scanner:     scanner,
		clock:       clock,
		timings:     timings,
		log:         log.With("component", "Detection"),
	}
}

// EvaluateInput classifies the value of a text field
func (uc *DetectionUsecase) EvaluateInput(ctx context.Context, ev InputEvent) {
	tag := strings.ToLower(ev.Tag)
	if tag != "input" && tag != "textarea" {
		return
	}
	if !uc.gate.Enabled() {
		return
	}

	uc.sessions.Observe(ev.Target)

	text := strings.TrimSpace(ev.Value)
	if utf8.RuneCountInString(text) < uc.timings.MinInputLength {
		// The field no longer exposes anything
		uc.notifier.Close(ctx, false)
		return
	}

	uc.evaluate(ctx, text, ev.Target, false)
}

// EvaluateCopy classifies copied text
func (uc *DetectionUsecase) EvaluateCopy(ctx context.Context, ev CopyEvent) {
	if !uc.gate.Enabled() {
		return
	}
	if ev.ActiveIsPassword {
		return
	}

	uc.mu.Lock()
	now := uc.clock.Now()
	if !uc.lastCopyAt.IsZero() && now.Sub(uc.lastCopyAt) < uc.timings.CopyCooldown {
		uc.mu.Unlock()
		return
	}
	uc.lastCopyAt = now
	uc.mu.Unlock()

	text := ev.Clipboard
	if text == "" {
		text = strings.TrimSpace(ev.Selection)
	}
	if utf8.RuneCountInString(text) < uc.timings.MinCopyLength {
		return
	}

	uc.evaluate(ctx, text, ev.ActiveTarget, true)
}

// ScanForms shows the aggregate notification for containers requesting several sensitive categories
func (uc *DetectionUsecase) ScanForms(ctx context.Context, doc *goquery.Document) int {
	if !uc.gate.Enabled() {
		return 0
	}

	shown := 0
	for _, f := range uc.scanner.Scan(doc) {
		target := domain.TargetID(f.Key)
		if uc.suppression.IsSuppressed(domain.CategoryMultiple, target, uc.sessions.Current().ID) {
			continue
		}

		uc.setLastCategory(domain.CategoryMultiple)
		uc.notifier.Show(ctx, domain.NewAggregateAdvisory(f.Categories), target, uc.sessions.Current().ID)
		uc.scanner.MarkShown(f.Key)
		shown++
		uc.log.Info(ctx, "form requests several sensitive categories", "container", f.Key, "sensitive", f.Sensitive)
	}
	return shown
}

// ApplySettings closes the live notification when s disables its page or category.
// Aggregate notifications only follow the page switches.
func (uc *DetectionUsecase) ApplySettings(ctx context.Context, s domain.Settings) {
	p, _, ok := uc.notifier.Live()
	if !ok {
		return
	}
	if uc.gate.EnabledFor(s) && (p.Category == domain.CategoryMultiple || s.CategoryEnabled(p.Category)) {
		return
	}
	if uc.notifier.Close(ctx, false) {
		uc.log.Info(ctx, "notification closed by settings change", "id", p.ID, "category", p.Category)
	}
}

func (uc *DetectionUsecase) evaluate(ctx context.Context, text string, target domain.TargetID, copied bool) {
	result, err := uc.classifier.Classify(ctx, text, uc.cache.Snapshot())
	if err != nil {
		uc.log.Warn(ctx, "classification failed", "error", err, "copied", copied)
		return
	}

	// Settings and omits may have changed while the classifier was busy
	settings := uc.cache.Snapshot()
	session := uc.sessions.Current()
	switch {
	case !uc.gate.EnabledFor(settings),
		!result.Detected(),
		!settings.CategoryEnabled(result.Category),
		uc.suppression.IsSuppressed(result.Category, target, session.ID):
		uc.notifier.Close(ctx, false)
		return
	}

	if prev := uc.setLastCategory(result.Category); !prev.IsNone() && prev != result.Category {
		uc.suppression.ResetOnCategoryChange(result.Category)
	}

	advisory := domain.NewAdvisory(result.Category, copied)
	advisory.Matches = ExtractMatches(text, result.Category)
	advisory.Source = text
	uc.notifier.Show(ctx, advisory, target, session.ID)
}

// setLastCategory stores the latest detected category and returns the previous one
func (uc *DetectionUsecase) setLastCategory(c domain.Category) domain.Category {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	prev := uc.lastCategory
	uc.lastCategory = c
	return prev
}
