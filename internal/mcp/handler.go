package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
)

// Handler implements the guard tools on top of the admin API client
type Handler struct {
	client *Client
}

// NewHandler creates a new tool handler
func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

// ============ Classification ============

// ClassifyInput is the input of guard_classify_text
type ClassifyInput struct {
	Text string `json:"text" jsonschema:"the text to check for personal data"`
}

// ClassifyOutput is the verdict of guard_classify_text
type ClassifyOutput struct {
	Exposes  bool     `json:"exposes"`
	Category string   `json:"category"`
	Matches  []string `json:"matches"`
}

// Classify classifies a text
func (h *Handler) Classify(ctx context.Context, in ClassifyInput) (ClassifyOutput, error) {
	if strings.TrimSpace(in.Text) == "" {
		return ClassifyOutput{}, errors.New("text is required")
	}

	c, err := h.client.Classify(ctx, in.Text)
	if err != nil {
		return ClassifyOutput{}, err
	}

	out := ClassifyOutput{Exposes: c.Exposes, Category: c.Category, Matches: c.Matches}
	if out.Matches == nil {
		out.Matches = []string{}
	}
	return out, nil
}

// ============ History ============

// ListHistoryInput is the input of guard_list_history
type ListHistoryInput struct {
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of entries to return (default 20)"`
	Action string `json:"action,omitempty" jsonschema:"only return this action: aceptar, omitir or ignorar"`
}

// HistoryItem is one decision in the guard_list_history output
type HistoryItem struct {
	Action    string `json:"action"`
	Category  string `json:"category"`
	URL       string `json:"url"`
	Timestamp string `json:"timestamp"`
}

// ListHistoryOutput is the output of guard_list_history
type ListHistoryOutput struct {
	Entries []HistoryItem `json:"entries"`
	Total   int           `json:"total"`
}

// ListHistory lists recorded decisions, newest first
func (h *Handler) ListHistory(ctx context.Context, in ListHistoryInput) (ListHistoryOutput, error) {
	action := domain.HistoryAction(strings.ToLower(strings.TrimSpace(in.Action)))
	switch action {
	case "", domain.ActionAccept, domain.ActionOmit, domain.ActionIgnore:
	default:
		return ListHistoryOutput{}, fmt.Errorf("unknown action %q", in.Action)
	}

	limit := in.Limit
	if limit <= 0 {
		limit = 20
	}

	entries, err := h.client.ListHistory(ctx)
	if err != nil {
		return ListHistoryOutput{}, err
	}

	out := ListHistoryOutput{Entries: []HistoryItem{}}
	for _, e := range entries {
		if action != "" && e.Action != action {
			continue
		}
		out.Total++
		if len(out.Entries) < limit {
			out.Entries = append(out.Entries, HistoryItem{
				Action:    string(e.Action),
				Category:  e.Category.String(),
				URL:       e.URL,
				Timestamp: e.Timestamp.Format(time.RFC3339),
			})
		}
	}
	return out, nil
}

// HistoryTodayOutput is the output of guard_history_today
type HistoryTodayOutput struct {
	Count int `json:"count"`
}

// HistoryToday counts today's decisions
func (h *Handler) HistoryToday(ctx context.Context) (HistoryTodayOutput, error) {
	n, err := h.client.HistoryToday(ctx)
	if err != nil {
		return HistoryTodayOutput{}, err
	}
	return HistoryTodayOutput{Count: n}, nil
}

// ============ Settings ============

// SettingsOutput is the settings document returned by the settings tools
type SettingsOutput struct {
	Active     bool            `json:"active"`
	Sites      map[string]bool `json:"sites"`
	Categories map[string]bool `json:"categories"`
	Omitted    []string        `json:"omitted"`
}

// SetSettingsInput is the input of guard_set_settings. Absent fields are kept.
type SetSettingsInput struct {
	Active     *bool           `json:"active,omitempty" jsonschema:"turn detection on or off"`
	Sites      map[string]bool `json:"sites,omitempty" jsonschema:"per-site toggles keyed by steam, roblox, epic or discord"`
	Categories map[string]bool `json:"categories,omitempty" jsonschema:"per-category toggles keyed by correo, dni, tarjeta, nombre or telefono"`
	Omitted    []string        `json:"omitted,omitempty" jsonschema:"categories the user chose to omit"`
}

// GetSettings returns the stored settings
func (h *Handler) GetSettings(ctx context.Context) (SettingsOutput, error) {
	s, err := h.client.GetSettings(ctx)
	if err != nil {
		return SettingsOutput{}, err
	}
	return toSettingsOutput(*s), nil
}

// SetSettings applies a partial settings update
func (h *Handler) SetSettings(ctx context.Context, in SetSettingsInput) (SettingsOutput, error) {
	patch, err := in.toPatch()
	if err != nil {
		return SettingsOutput{}, err
	}

	s, err := h.client.SetSettings(ctx, patch)
	if err != nil {
		return SettingsOutput{}, err
	}
	return toSettingsOutput(*s), nil
}

func (in SetSettingsInput) toPatch() (domain.SettingsPatch, error) {
	patch := domain.SettingsPatch{Active: in.Active}

	if len(in.Sites) > 0 {
		patch.Sites = make(map[domain.SiteKey]bool, len(in.Sites))
		for k, v := range in.Sites {
			patch.Sites[domain.SiteKey(strings.ToLower(strings.TrimSpace(k)))] = v
		}
	}

	if len(in.Categories) > 0 {
		patch.Categories = make(map[domain.Category]bool, len(in.Categories))
		for k, v := range in.Categories {
			c, err := parseCategory(k)
			if err != nil {
				return domain.SettingsPatch{}, err
			}
			patch.Categories[c] = v
		}
	}

	if in.Omitted != nil {
		omitted := make([]domain.Category, 0, len(in.Omitted))
		for _, k := range in.Omitted {
			c, err := parseCategory(k)
			if err != nil {
				return domain.SettingsPatch{}, err
			}
			omitted = append(omitted, c)
		}
		patch.Omitted = &omitted
	}

	if patch.Active == nil && patch.Sites == nil && patch.Categories == nil && patch.Omitted == nil {
		return domain.SettingsPatch{}, errors.New("nothing to update")
	}
	return patch, nil
}

func parseCategory(s string) (domain.Category, error) {
	c := domain.ParseCategory(s)
	if c.IsNone() {
		return c, fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

func toSettingsOutput(s domain.Settings) SettingsOutput {
	out := SettingsOutput{
		Active:     s.Active,
		Sites:      make(map[string]bool, len(s.Sites)),
		Categories: make(map[string]bool, len(s.Categories)),
		Omitted:    make([]string, 0, len(s.Omitted)),
	}
	for k, v := range s.Sites {
		out.Sites[string(k)] = v
	}
	for k, v := range s.Categories {
		out.Categories[string(k)] = v
	}
	for _, c := range s.Omitted {
		out.Omitted = append(out.Omitted, string(c))
	}
	return out
}
