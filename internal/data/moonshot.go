package data

import (
	"context"

	"github.com/devricklin/privacy-guard/internal/biz/repo"
	"github.com/devricklin/privacy-guard/moonshot"
)

// moonshotScorer scores analyzer labels with an LLM
type moonshotScorer struct {
	client *moonshot.Client
	prompt string
}

// NewMoonshotScorer creates an LLM label scorer, nil when client is nil
func NewMoonshotScorer(client *moonshot.Client, prompt string) repo.LabelScorer {
	if client == nil {
		return nil
	}
	return &moonshotScorer{client: client, prompt: prompt}
}

// Logits returns the model's per-label scores
func (s *moonshotScorer) Logits(ctx context.Context, text string) (map[string]float64, error) {
	return s.client.ScoreLabels(ctx, s.prompt, text)
}
