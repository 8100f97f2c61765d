package usecase

import "github.com/devricklin/privacy-guard/internal/biz/domain"

// PageGate decides whether detection runs on the current page
type PageGate struct {
	cache *SettingsCache
	site  domain.Site
	known bool
}

// NewPageGate binds a page hostname to its site
func NewPageGate(cache *SettingsCache, sites []domain.Site, host string) *PageGate {
	site, known := domain.SiteForHost(sites, host)
	return &PageGate{cache: cache, site: site, known: known}
}

// Site returns the site key of the page and whether the host is supported
func (g *PageGate) Site() (domain.SiteKey, bool) {
	return g.site.Key, g.known
}

// Enabled checks the gate against the current settings
func (g *PageGate) Enabled() bool {
	return g.EnabledFor(g.cache.Snapshot())
}

// EnabledFor checks the gate against the given settings
func (g *PageGate) EnabledFor(s domain.Settings) bool {
	return s.Active && g.known && s.SiteEnabled(g.site.Key)
}
