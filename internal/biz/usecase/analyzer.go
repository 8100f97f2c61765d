package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
	"github.com/devricklin/privacy-guard/internal/biz/repo"
)

// ErrEmptyText is returned when there is nothing to analyze
var ErrEmptyText = errors.New("empty text")

// LabelNone is the label of texts that expose nothing
const LabelNone = "ninguno"

// AnalyzerLabels lists the scored labels, ties resolve to the earliest
var AnalyzerLabels = []string{"dni", "tarjeta", "nombre", "correo"}

// AnalyzerUsecase turns label scores into a verdict
type AnalyzerUsecase struct {
	scorer repo.LabelScorer
}

// NewAnalyzerUsecase creates a new analyzer usecase
func NewAnalyzerUsecase(scorer repo.LabelScorer) *AnalyzerUsecase {
	return &AnalyzerUsecase{scorer: scorer}
}

// Analyze scores text and returns the verdict
func (uc *AnalyzerUsecase) Analyze(ctx context.Context, text string) (domain.Verdict, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Verdict{}, ErrEmptyText
	}

	logits, err := uc.scorer.Logits(ctx, text)
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("score labels: %w", err)
	}
	probs, err := Softmax(logits, append(append([]string{}, AnalyzerLabels...), LabelNone))
	if err != nil {
		return domain.Verdict{}, err
	}

	best, bestProb := "", -1.0
	for _, label := range AnalyzerLabels {
		if probs[label] > bestProb {
			best, bestProb = label, probs[label]
		}
	}
	if bestProb <= probs[LabelNone] {
		return domain.Verdict{Exposes: false}, nil
	}
	return domain.Verdict{Exposes: true, Category: best}, nil
}

// Softmax normalizes the logits of labels. Missing labels get probability zero.
func Softmax(logits map[string]float64, labels []string) (map[string]float64, error) {
	maxLogit := math.Inf(-1)
	for _, l := range labels {
		if v, ok := logits[l]; ok && v > maxLogit {
			maxLogit = v
		}
	}
	if math.IsInf(maxLogit, -1) {
		return nil, fmt.Errorf("no scores for labels %v", labels)
	}

	sum := 0.0
	out := make(map[string]float64, len(labels))
	for _, l := range labels {
		v, ok := logits[l]
		if !ok {
			out[l] = 0
			continue
		}
		e := math.Exp(v - maxLogit)
		out[l] = e
		sum += e
	}
	for l := range out {
		out[l] /= sum
	}
	return out, nil
}

// PatternScorer scores labels with the local pattern table
type PatternScorer struct{}

// NewPatternScorer creates a new pattern scorer
func NewPatternScorer() *PatternScorer {
	return &PatternScorer{}
}

// Logits gives the matched label a strong score and every other label zero
func (s *PatternScorer) Logits(_ context.Context, text string) (map[string]float64, error) {
	out := map[string]float64{LabelNone: 0}
	for _, l := range AnalyzerLabels {
		out[l] = 0
	}

	c := FallbackCategory(text)
	if c.IsNone() {
		out[LabelNone] = 4
	} else {
		out[string(c)] = 4
	}
	return out, nil
}
