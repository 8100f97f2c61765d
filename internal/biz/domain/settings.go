package domain

// SiteKey identifies a supported site integration
type SiteKey string

const (
	SiteSteam   SiteKey = "steam"
	SiteRoblox  SiteKey = "roblox"
	SiteEpic    SiteKey = "epic"
	SiteDiscord SiteKey = "discord"
)

// Settings represents the user toggles (value object)
type Settings struct {
	Active     bool              `json:"activo"`
	Sites      map[SiteKey]bool  `json:"paginas"`
	Categories map[Category]bool `json:"tipos"`
	Omitted    []Category        `json:"omitidos"`
}

// SettingsPatch is a partial settings update.
// Nil fields are left untouched by Merge.
type SettingsPatch struct {
	Active     *bool             `json:"activo,omitempty"`
	Sites      map[SiteKey]bool  `json:"paginas,omitempty"`
	Categories map[Category]bool `json:"tipos,omitempty"`
	Omitted    *[]Category       `json:"omitidos,omitempty"`
}

// DefaultSettings returns the settings used before anything is stored
func DefaultSettings() Settings {
	return Settings{
		Active: true,
		Sites: map[SiteKey]bool{
			SiteSteam:   true,
			SiteRoblox:  true,
			SiteEpic:    true,
			SiteDiscord: true,
		},
		Categories: map[Category]bool{
			CategoryEmail:      true,
			CategoryName:       true,
			CategoryCard:       true,
			CategoryNationalID: true,
		},
		Omitted: []Category{},
	}
}

// Clone returns a deep copy
func (s Settings) Clone() Settings {
	out := Settings{
		Active:     s.Active,
		Sites:      make(map[SiteKey]bool, len(s.Sites)),
		Categories: make(map[Category]bool, len(s.Categories)),
		Omitted:    append([]Category{}, s.Omitted...),
	}
	for k, v := range s.Sites {
		out.Sites[k] = v
	}
	for k, v := range s.Categories {
		out.Categories[k] = v
	}
	return out
}

// Merge returns a copy with the patch applied.
// Map keys in the patch overwrite matching keys, all others are kept.
func (s Settings) Merge(p SettingsPatch) Settings {
	out := s.Clone()
	if p.Active != nil {
		out.Active = *p.Active
	}
	for k, v := range p.Sites {
		out.Sites[k] = v
	}
	for k, v := range p.Categories {
		out.Categories[k] = v
	}
	if p.Omitted != nil {
		out.Omitted = append([]Category{}, (*p.Omitted)...)
	}
	return out
}

// SiteEnabled reports whether detection is enabled for a site
func (s Settings) SiteEnabled(k SiteKey) bool {
	return s.Sites[k]
}

// CategoryEnabled reports whether notifications are enabled for a category
func (s Settings) CategoryEnabled(c Category) bool {
	return s.Categories[c]
}

// PatchFrom builds a patch that overwrites every field with the given settings
func PatchFrom(s Settings) SettingsPatch {
	c := s.Clone()
	return SettingsPatch{
		Active:     &c.Active,
		Sites:      c.Sites,
		Categories: c.Categories,
		Omitted:    &c.Omitted,
	}
}
