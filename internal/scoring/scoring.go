// Package scoring runs the loaded model over the encoded feature table and
// extracts the positive-class probability for each lead.
package scoring

import (
	"slices"

	"github.com/abhisek/leadscore/internal/failure"
	"github.com/abhisek/leadscore/internal/frame"
	"github.com/abhisek/leadscore/internal/model"
)

// ProbabilityColumn is the name of the score column in the output.
const ProbabilityColumn = "VehicleSold_Probability"

// positiveClass is the probability column holding P(vehicle sold).
const positiveClass = 1

// Score returns the positive-class probability for each row of features,
// in row order. The model must support probability output.
func Score(features *frame.Frame, m model.Predictor) ([]float64, error) {
	pp, ok := m.(model.ProbabilityPredictor)
	if !ok {
		return nil, failure.Capability("score", "model %T does not support probability predictions", m)
	}

	if named, ok := m.(model.FeatureNamer); ok {
		if want := named.FeatureNames(); len(want) > 0 && !slices.Equal(want, features.Names()) {
			return nil, failure.Schema("score", "feature columns %v do not match the model's training columns %v", features.Names(), want)
		}
	}

	X, err := features.Matrix()
	if err != nil {
		return nil, err
	}
	proba, err := pp.PredictProba(X)
	if err != nil {
		return nil, err
	}

	if len(proba) != len(X) {
		return nil, failure.Cardinality("score", "model returned %d predictions for %d rows", len(proba), len(X))
	}
	out := make([]float64, len(proba))
	for i, row := range proba {
		if len(row) != 2 {
			return nil, failure.Capability("score", "expected 2 probability columns for a binary classifier, got %d (row %d)", len(row), i)
		}
		out[i] = row[positiveClass]
	}
	return out, nil
}

// Frame wraps probabilities as the single-column predictions table.
func Frame(probabilities []float64) (*frame.Frame, error) {
	return frame.New(frame.NumberColumn(ProbabilityColumn, probabilities))
}
