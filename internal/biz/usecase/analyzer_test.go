package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
)

type mockScorer struct {
	logits map[string]float64
	err    error
}

func (m *mockScorer) Logits(ctx context.Context, text string) (map[string]float64, error) {
	return m.logits, m.err
}

func TestAnalyzerUsecase_Analyze(t *testing.T) {
	tests := []struct {
		name   string
		logits map[string]float64
		want   domain.Verdict
	}{
		{
			name:   "best label wins",
			logits: map[string]float64{"dni": 0.1, "tarjeta": 3.2, "nombre": 0.4, "correo": 1.0, "ninguno": 0.5},
			want:   domain.Verdict{Exposes: true, Category: "tarjeta"},
		},
		{
			name:   "none dominates",
			logits: map[string]float64{"dni": 0.1, "tarjeta": 0.2, "nombre": 0.4, "correo": 1.0, "ninguno": 2.5},
			want:   domain.Verdict{Exposes: false},
		},
		{
			name:   "tie with none does not expose",
			logits: map[string]float64{"dni": 1, "tarjeta": 0, "nombre": 0, "correo": 0, "ninguno": 1},
			want:   domain.Verdict{Exposes: false},
		},
		{
			name:   "tie between labels picks the earliest",
			logits: map[string]float64{"dni": 2, "tarjeta": 0, "nombre": 0, "correo": 2, "ninguno": 0},
			want:   domain.Verdict{Exposes: true, Category: "dni"},
		},
		{
			name:   "missing none label",
			logits: map[string]float64{"correo": 0.3},
			want:   domain.Verdict{Exposes: true, Category: "correo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewAnalyzerUsecase(&mockScorer{logits: tt.logits})
			got, err := uc.Analyze(context.Background(), "texto de prueba")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnalyzerUsecase_Analyze_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewAnalyzerUsecase(&mockScorer{}).Analyze(ctx, "   ")
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = NewAnalyzerUsecase(&mockScorer{err: errors.New("rate limited")}).Analyze(ctx, "hola mundo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "score labels")

	_, err = NewAnalyzerUsecase(&mockScorer{logits: map[string]float64{}}).Analyze(ctx, "hola mundo")
	assert.Error(t, err)
}

func TestSoftmax(t *testing.T) {
	probs, err := Softmax(map[string]float64{"a": 1, "b": 1, "c": 1000}, []string{"a", "b", "c", "d"})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, probs["c"], 1e-9)
	assert.InDelta(t, 0.0, probs["a"], 1e-9)
	assert.Equal(t, 0.0, probs["d"])
}

func TestPatternScorer(t *testing.T) {
	uc := NewAnalyzerUsecase(NewPatternScorer())

	got, err := uc.Analyze(context.Background(), "mi dni es 12345678")
	require.NoError(t, err)
	assert.Equal(t, domain.Verdict{Exposes: true, Category: "dni"}, got)

	got, err = uc.Analyze(context.Background(), "hola")
	require.NoError(t, err)
	assert.False(t, got.Exposes)
}
