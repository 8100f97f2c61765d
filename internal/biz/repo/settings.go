package repo

import (
	"context"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
)

// SettingsRepo is the settings persistence interface
type SettingsRepo interface {
	// Load returns the stored settings merged over the defaults
	Load(ctx context.Context) (domain.Settings, error)

	// Save merges a patch into the stored settings and returns the result
	Save(ctx context.Context, patch domain.SettingsPatch) (domain.Settings, error)
}
