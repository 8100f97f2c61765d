package biz

import (
	"github.com/jonboulle/clockwork"

	"github.com/devricklin/privacy-guard/internal/biz/repo"
	"github.com/devricklin/privacy-guard/internal/biz/usecase"
	"github.com/devricklin/privacy-guard/internal/logging"
)

// Usecases contains the process-wide usecases.
// Per-page engines are built by service.PageFactory.
type Usecases struct {
	Settings   *usecase.SettingsUsecase
	Classifier *usecase.ClassifierUsecase
	History    *usecase.HistoryRecorder
}

// NewUsecases builds the process-wide usecases. A nil classifier uses local patterns only.
func NewUsecases(
	settingsRepo repo.SettingsRepo,
	classifierRepo repo.ClassifierRepo,
	historyRepo repo.HistoryRepo,
	clock clockwork.Clock,
	log logging.Logger,
) *Usecases {
	return &Usecases{
		Settings:   usecase.NewSettingsUsecase(settingsRepo, log),
		Classifier: usecase.NewClassifierUsecase(classifierRepo),
		History:    usecase.NewHistoryRecorder(historyRepo, clock, log),
	}
}
