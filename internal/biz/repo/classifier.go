package repo

import (
	"context"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
)

// ClassifierRepo is the remote text classifier interface
type ClassifierRepo interface {
	// Analyze asks the classifier whether text exposes personal data.
	// A malformed answer is returned as a non-exposing verdict, not an error.
	Analyze(ctx context.Context, text string) (*domain.Verdict, error)
}

// LabelScorer produces raw per-label scores for a text
// Used by the analyzer service behind POST /analizar
type LabelScorer interface {
	// Logits returns one unnormalized score per label (dni, tarjeta, nombre, correo, ninguno)
	Logits(ctx context.Context, text string) (map[string]float64, error)
}
