package domain

import "strings"

// Site describes a supported site integration and its logout hints
type Site struct {
	Key       SiteKey  `yaml:"key"`
	Hosts     []string `yaml:"hosts"`      // Hostname suffixes
	HrefHints []string `yaml:"href_hints"` // Substrings of a logout link
	TextHints []string `yaml:"text_hints"` // Substrings of a logout control's text
}

// DefaultSites returns the built-in site table
func DefaultSites() []Site {
	common := []string{"cerrar sesión", "cerrar sesion", "logout", "log out", "sign out"}
	return []Site{
		{
			Key:       SiteSteam,
			Hosts:     []string{"steampowered.com", "steamcommunity.com"},
			HrefHints: []string{"/logout"},
			TextHints: append(append([]string{}, common...), "logoff"),
		},
		{
			Key:       SiteRoblox,
			Hosts:     []string{"roblox.com"},
			HrefHints: []string{"/logout", "/auth/logout"},
			TextHints: append([]string{}, common...),
		},
		{
			Key:       SiteEpic,
			Hosts:     []string{"epicgames.com"},
			HrefHints: []string{"/logout", "/log-out", "/signout"},
			TextHints: append([]string{}, common...),
		},
		{
			Key:       SiteDiscord,
			Hosts:     []string{"discord.com"},
			HrefHints: []string{"/logout"},
			TextHints: append([]string{}, common...),
		},
	}
}

// MatchesHost reports whether hostname belongs to the site
func (s Site) MatchesHost(hostname string) bool {
	hostname = strings.ToLower(hostname)
	for _, h := range s.Hosts {
		if strings.HasSuffix(hostname, h) {
			return true
		}
	}
	return false
}

// IsLogout reports whether a click on an element with the given link and text looks like a logout
func (s Site) IsLogout(href, text string) bool {
	if href != "" {
		low := strings.ToLower(href)
		for _, hint := range s.HrefHints {
			if strings.Contains(low, hint) {
				return true
			}
		}
	}
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return false
	}
	for _, hint := range s.TextHints {
		if strings.Contains(text, hint) {
			return true
		}
	}
	return false
}

// SiteForHost finds the site a hostname belongs to
func SiteForHost(sites []Site, hostname string) (Site, bool) {
	for _, s := range sites {
		if s.MatchesHost(hostname) {
			return s, true
		}
	}
	return Site{}, false
}
