package usecase

import (
	"context"
	"fmt"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
	"github.com/devricklin/privacy-guard/internal/biz/repo"
)

// ClassifierUsecase fuses the remote classifier with the local pattern table
type ClassifierUsecase struct {
	classifierRepo repo.ClassifierRepo
}

// NewClassifierUsecase creates a new classifier usecase
func NewClassifierUsecase(classifierRepo repo.ClassifierRepo) *ClassifierUsecase {
	return &ClassifierUsecase{classifierRepo: classifierRepo}
}

// Classify returns the fused classification of text under settings
func (uc *ClassifierUsecase) Classify(ctx context.Context, text string, settings domain.Settings) (domain.Classification, error) {
	// No remote classifier configured, the local table decides alone
	if uc.classifierRepo == nil {
		c := FallbackCategory(text)
		return domain.Classification{Exposes: !c.IsNone(), Category: c}, nil
	}

	verdict, err := uc.classifierRepo.Analyze(ctx, text)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("analyze text: %w", err)
	}
	if verdict == nil || !verdict.Exposes {
		return domain.Classification{}, nil
	}

	category := domain.ParseCategory(verdict.Category)
	if category.IsNone() || !settings.CategoryEnabled(category) {
		category = FallbackCategory(text)
	}
	return domain.Classification{Exposes: true, Category: category}, nil
}

// IsRemote returns whether a remote classifier is configured
func (uc *ClassifierUsecase) IsRemote() bool {
	return uc.classifierRepo != nil
}
