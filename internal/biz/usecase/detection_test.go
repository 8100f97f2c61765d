package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
)

func (e *testEngine) input(target domain.TargetID, value string) {
	e.detection.EvaluateInput(context.Background(), InputEvent{Target: target, Tag: "INPUT", Value: value})
}

func TestDetection_Input_EmailThroughFallback(t *testing.T) {
	e := newTestEngine(t, "store.steampowered.com")
	e.exposes("")

	e.input("input-a", "mi correo es ana@example.com")

	p, ok := e.live()
	require.True(t, ok)
	assert.Equal(t, domain.CategoryEmail, p.Category)
	view := e.presenter.lastShown()
	assert.Equal(t, "⚠ CORREO detectado", view.Title)
	assert.Equal(t, "Correo electrónico expuesto.", view.Vulnerability)
}

func TestDetection_Input_DisabledCategory(t *testing.T) {
	e := newTestEngine(t, "www.roblox.com")
	e.cache.Apply(domain.SettingsPatch{Categories: map[domain.Category]bool{domain.CategoryCard: false}})
	e.exposes("tarjeta")

	e.input("input-a", "4111 1111 1111 1234")

	assert.Equal(t, 1, e.classifier.callCount())
	assert.Equal(t, 0, e.presenter.shownCount())
	assert.Empty(t, e.historyRepo.actions())
}

func TestDetection_Input_OmitSuppressesThenExpires(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, "discord.com")
	e.exposes("dni")

	e.input("input-a", "mi dni es 12345678")
	p, ok := e.live()
	require.True(t, ok)
	require.NoError(t, e.notifier.Omit(ctx, p.ID))

	e.clock.Advance(5 * time.Second)
	e.input("input-a", "mi dni es 87654321")
	_, ok = e.live()
	assert.False(t, ok, "omitted category should stay quiet")
	assert.Equal(t, 1, e.presenter.shownCount())

	e.clock.Advance(26 * time.Second)
	e.input("input-a", "mi dni es 87654321")
	p, ok = e.live()
	require.True(t, ok, "notification should come back once the omit expires")
	assert.Equal(t, domain.CategoryNationalID, p.Category)
	assert.Equal(t, []domain.HistoryAction{domain.ActionOmit}, e.historyRepo.actions())
}

func TestDetection_Input_NewTargetStartsNewSession(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, "discord.com")
	e.exposes("tarjeta")

	e.input("input-a", "4111 1111 1111 1234")
	p, ok := e.live()
	require.True(t, ok)
	require.NoError(t, e.notifier.Omit(ctx, p.ID))

	e.input("input-b", "4111 1111 1111 1234")

	p, ok = e.live()
	require.True(t, ok, "omit from the previous session should not apply")
	assert.Equal(t, domain.TargetID("input-b"), p.Target)
	assert.NotEqual(t, int64(1), p.SessionID)
}

func TestDetection_Input_ShortTextClosesUnderHover(t *testing.T) {
	e := newTestEngine(t, "discord.com")
	e.exposes("correo")

	e.input("input-a", "mi correo es ana@example.com")
	p, ok := e.live()
	require.True(t, ok)
	e.notifier.PointerEnter(p.ID)

	e.input("input-a", "  hola  ")

	_, ok = e.live()
	assert.False(t, ok)
	assert.Equal(t, 1, e.classifier.callCount(), "short text must not be classified")
}

func TestDetection_Input_IgnoresOtherTagsAndPages(t *testing.T) {
	e := newTestEngine(t, "discord.com")
	e.exposes("correo")

	e.detection.EvaluateInput(context.Background(), InputEvent{Target: "sel", Tag: "select", Value: "ana@example.com es mi correo"})
	assert.Equal(t, 0, e.classifier.callCount())

	other := newTestEngine(t, "example.org")
	other.exposes("correo")
	other.input("input-a", "mi correo es ana@example.com")
	assert.Equal(t, 0, other.classifier.callCount())
}

func TestDetection_Input_ClassifierFailureIsSilent(t *testing.T) {
	e := newTestEngine(t, "discord.com")
	e.classifier.err = errors.New("connection refused")

	e.input("input-a", "mi correo es ana@example.com")

	assert.Equal(t, 0, e.presenter.shownCount())
	assert.Empty(t, e.historyRepo.actions())
}

func TestDetection_Input_GatesRecheckedAfterClassify(t *testing.T) {
	e := newTestEngine(t, "discord.com")
	e.exposes("correo")
	e.classifier.during = func() {
		off := false
		e.cache.Apply(domain.SettingsPatch{Active: &off})
	}

	e.input("input-a", "mi correo es ana@example.com")

	assert.Equal(t, 1, e.classifier.callCount())
	assert.Equal(t, 0, e.presenter.shownCount())
}

func TestDetection_Input_CategoryChangeResetsOmits(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, "discord.com")

	e.exposes("tarjeta")
	e.input("input-a", "4111 1111 1111 1234")
	p, _ := e.live()
	require.NoError(t, e.notifier.Omit(ctx, p.ID))

	e.exposes("correo")
	e.input("input-a", "mi correo es ana@example.com")
	_, ok := e.live()
	require.True(t, ok)

	e.exposes("tarjeta")
	e.input("input-a", "4111 1111 1111 1234")
	p, ok = e.live()
	require.True(t, ok, "switching category should drop the card omit")
	assert.Equal(t, domain.CategoryCard, p.Category)
}

func TestDetection_Copy(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, "discord.com")
	e.exposes("correo")

	e.detection.EvaluateCopy(ctx, CopyEvent{ActiveTarget: "chat", Clipboard: "ana@example.com"})

	p, ok := e.live()
	require.True(t, ok)
	assert.Equal(t, domain.TargetID("chat"), p.Target)
	assert.Equal(t, "⚠ CORREO detectado (copiado)", e.presenter.lastShown().Title)
	assert.Equal(t, int64(0), e.sessions.Current().ID, "copy does not start a session")
}

func TestDetection_Copy_CooldownAndFilters(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, "discord.com")
	e.exposes("correo")

	e.detection.EvaluateCopy(ctx, CopyEvent{ActiveTarget: "pwd", ActiveIsPassword: true, Clipboard: "secret@example.com"})
	assert.Equal(t, 0, e.classifier.callCount(), "password fields are skipped")

	e.detection.EvaluateCopy(ctx, CopyEvent{Selection: "  abc  "})
	assert.Equal(t, 0, e.classifier.callCount(), "short copies are skipped")

	// The short copy still stamped the cooldown
	e.detection.EvaluateCopy(ctx, CopyEvent{Clipboard: "ana@example.com"})
	assert.Equal(t, 0, e.classifier.callCount())

	e.clock.Advance(e.timings.CopyCooldown)
	e.detection.EvaluateCopy(ctx, CopyEvent{Selection: "  ana@example.com  "})
	assert.Equal(t, 1, e.classifier.callCount())
}

func TestDetection_ApplySettings(t *testing.T) {
	off := false

	tests := []struct {
		name     string
		patch    domain.SettingsPatch
		wantOpen bool
	}{
		{"category disabled", domain.SettingsPatch{Categories: map[domain.Category]bool{domain.CategoryEmail: false}}, false},
		{"other category disabled", domain.SettingsPatch{Categories: map[domain.Category]bool{domain.CategoryCard: false}}, true},
		{"engine off", domain.SettingsPatch{Active: &off}, false},
		{"site disabled", domain.SettingsPatch{Sites: map[domain.SiteKey]bool{domain.SiteDiscord: false}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, "discord.com")
			unsubscribe := e.cache.Subscribe(func(s domain.Settings) {
				e.detection.ApplySettings(context.Background(), s)
			})
			defer unsubscribe()
			e.exposes("correo")

			e.input("input-a", "mi correo es ana@example.com")
			_, ok := e.live()
			require.True(t, ok)

			e.cache.Apply(tt.patch)

			_, ok = e.live()
			assert.Equal(t, tt.wantOpen, ok)
		})
	}
}

func TestDetection_ApplySettings_AggregateFollowsPageOnly(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, "discord.com")
	unsubscribe := e.cache.Subscribe(func(s domain.Settings) {
		e.detection.ApplySettings(ctx, s)
	})
	defer unsubscribe()

	require.Equal(t, 1, e.detection.ScanForms(ctx, mustParse(t, signupForm)))

	e.cache.Apply(domain.SettingsPatch{Categories: map[domain.Category]bool{domain.CategoryEmail: false}})
	p, ok := e.live()
	require.True(t, ok, "aggregate stays open when one of its categories is disabled")
	assert.Equal(t, domain.CategoryMultiple, p.Category)

	off := false
	e.cache.Apply(domain.SettingsPatch{Active: &off})
	_, ok = e.live()
	assert.False(t, ok)
}

func TestDetection_ApplySettings_NothingLive(t *testing.T) {
	e := newTestEngine(t, "discord.com")

	e.detection.ApplySettings(context.Background(), domain.Settings{})

	_, ok := e.live()
	assert.False(t, ok)
	assert.Empty(t, e.historyRepo.actions())
}
