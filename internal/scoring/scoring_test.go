package scoring

import (
	"errors"
	"testing"

	"github.com/abhisek/leadscore/internal/failure"
	"github.com/abhisek/leadscore/internal/frame"
	"github.com/abhisek/leadscore/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubModel returns canned probability rows and records its input.
type stubModel struct {
	proba [][]float64
	names []string
	Calls [][][]float64
}

func (s *stubModel) Predict(X [][]float64) ([]float64, error) {
	return make([]float64, len(X)), nil
}

func (s *stubModel) PredictProba(X [][]float64) ([][]float64, error) {
	s.Calls = append(s.Calls, X)
	return s.proba, nil
}

func (s *stubModel) FeatureNames() []string { return s.names }

// labelsOnly has no probability capability.
type labelsOnly struct{}

func (labelsOnly) Predict(X [][]float64) ([]float64, error) { return make([]float64, len(X)), nil }

func encoded(t *testing.T) *frame.Frame {
	t.Helper()
	f, err := frame.New(
		frame.NumberColumn("a", []float64{1, 2, 3}),
		frame.NumberColumn("b", []float64{0, 1, 0}),
	)
	require.NoError(t, err)
	return f
}

func TestScore(t *testing.T) {
	m := &stubModel{proba: [][]float64{{0.05, 0.95}, {0.4, 0.6}, {0.8, 0.2}}}

	got, err := Score(encoded(t), m)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.95, 0.6, 0.2}, got)

	require.Len(t, m.Calls, 1)
	assert.Equal(t, [][]float64{{1, 0}, {2, 1}, {3, 0}}, m.Calls[0])
}

func TestScoreErrors(t *testing.T) {
	tests := []struct {
		name string
		m    model.Predictor
		want error
	}{
		{"no probabilities", labelsOnly{}, failure.ErrCapability},
		{"three classes", &stubModel{proba: [][]float64{{0.1, 0.2, 0.7}, {0.1, 0.2, 0.7}, {0.1, 0.2, 0.7}}}, failure.ErrCapability},
		{"row count", &stubModel{proba: [][]float64{{0.5, 0.5}}}, failure.ErrCardinality},
		{"feature names", &stubModel{proba: [][]float64{{0, 1}, {0, 1}, {0, 1}}, names: []string{"b", "a"}}, failure.ErrSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Score(encoded(t), tt.m)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestScoreRejectsTextFeatures(t *testing.T) {
	f, err := frame.New(frame.TextColumn("Make", []string{"Audi"}))
	require.NoError(t, err)

	_, err = Score(f, &stubModel{proba: [][]float64{{0, 1}}})
	assert.True(t, errors.Is(err, failure.ErrSchema))
}

func TestFrame(t *testing.T) {
	f, err := Frame([]float64{0.25, 0.75})
	require.NoError(t, err)
	assert.Equal(t, []string{ProbabilityColumn}, f.Names())
	assert.Equal(t, 2, f.Len())
}
