package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
	"github.com/devricklin/privacy-guard/internal/biz/repo"
	"github.com/devricklin/privacy-guard/internal/logging"
)

// SettingsCache is the in-memory settings mirror of one page
type SettingsCache struct {
	mu        sync.RWMutex
	snapshot  domain.Settings
	listeners map[int]func(domain.Settings)
	nextID    int
}

// NewSettingsCache creates a cache holding the defaults
func NewSettingsCache() *SettingsCache {
	return &SettingsCache{
		snapshot:  domain.DefaultSettings(),
		listeners: make(map[int]func(domain.Settings)),
	}
}

// Load replaces the cached settings with the stored ones.
// On failure the cache keeps what it has.
func (c *SettingsCache) Load(ctx context.Context, settingsRepo repo.SettingsRepo) error {
	s, err := settingsRepo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	c.replace(s)
	return nil
}

// Apply merges a partial update and notifies listeners
func (c *SettingsCache) Apply(patch domain.SettingsPatch) domain.Settings {
	c.mu.Lock()
	c.snapshot = c.snapshot.Merge(patch)
	out := c.snapshot.Clone()
	listeners := c.listenersLocked()
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(out.Clone())
	}
	return out
}

// Snapshot returns a copy of the cached settings
func (c *SettingsCache) Snapshot() domain.Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot.Clone()
}

// Subscribe registers a change listener, the returned func removes it
func (c *SettingsCache) Subscribe(fn func(domain.Settings)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = fn

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *SettingsCache) replace(s domain.Settings) {
	c.mu.Lock()
	c.snapshot = s.Clone()
	listeners := c.listenersLocked()
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(s.Clone())
	}
}

func (c *SettingsCache) listenersLocked() []func(domain.Settings) {
	out := make([]func(domain.Settings), 0, len(c.listeners))
	for _, fn := range c.listeners {
		out = append(out, fn)
	}
	return out
}

// SettingsUsecase is the single settings writer.
// Saved patches are fanned out to every attached cache.
type SettingsUsecase struct {
	settingsRepo repo.SettingsRepo
	log          logging.Logger

	mu     sync.Mutex
	caches map[*SettingsCache]struct{}
}

// NewSettingsUsecase creates a new settings usecase
func NewSettingsUsecase(settingsRepo repo.SettingsRepo, log logging.Logger) *SettingsUsecase {
	return &SettingsUsecase{
		settingsRepo: settingsRepo,
		log:          log.With("component", "Settings"),
		caches:       make(map[*SettingsCache]struct{}),
	}
}

// Get returns the stored settings
func (uc *SettingsUsecase) Get(ctx context.Context) (domain.Settings, error) {
	return uc.settingsRepo.Load(ctx)
}

// Update persists a patch and pushes it to every attached cache
func (uc *SettingsUsecase) Update(ctx context.Context, patch domain.SettingsPatch) (domain.Settings, error) {
	saved, err := uc.settingsRepo.Save(ctx, patch)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	uc.mu.Lock()
	caches := make([]*SettingsCache, 0, len(uc.caches))
	for c := range uc.caches {
		caches = append(caches, c)
	}
	uc.mu.Unlock()

	for _, c := range caches {
		c.Apply(patch)
	}
	uc.log.Info(ctx, "settings updated", "pages", len(caches), "active", saved.Active)
	return saved, nil
}

// NewCache creates a cache loaded from the store and attached to the fan-out.
// The returned func detaches it.
func (uc *SettingsUsecase) NewCache(ctx context.Context) (*SettingsCache, func()) {
	cache := NewSettingsCache()
	if err := cache.Load(ctx, uc.settingsRepo); err != nil {
		uc.log.Warn(ctx, "using default settings", "error", err)
	}

	uc.mu.Lock()
	uc.caches[cache] = struct{}{}
	uc.mu.Unlock()

	return cache, func() {
		uc.mu.Lock()
		delete(uc.caches, cache)
		uc.mu.Unlock()
	}
}

// Attached returns the number of live caches
func (uc *SettingsUsecase) Attached() int {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return len(uc.caches)
}
