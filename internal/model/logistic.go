package model

import (
	"math"

	"github.com/abhisek/leadscore/internal/artifact"
	"github.com/abhisek/leadscore/internal/failure"
)

// KindLogisticRegression is a binary logistic regression.
const KindLogisticRegression = "logistic_regression"

var logisticParamsSchema = &artifact.Schema{
	Name: "logistic-regression-params",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"intercept": map[string]any{"type": "number"},
			"coefficients": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "number"},
				"minItems": 1,
			},
		},
		"required":             []any{"intercept", "coefficients"},
		"additionalProperties": false,
	},
}

// LogisticRegression scores a row as sigmoid(intercept + coefficients·x).
type LogisticRegression struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`

	names []string
}

func decodeLogisticRegression(env Envelope) (any, error) {
	var m LogisticRegression
	if err := decodeParams(env, logisticParamsSchema, &m); err != nil {
		return nil, err
	}
	if n := len(env.FeatureNames); n > 0 && n != len(m.Coefficients) {
		return nil, failure.Value("load model", "%d feature names for %d coefficients", n, len(m.Coefficients))
	}
	m.names = env.FeatureNames
	return &m, nil
}

// FeatureNames returns the training columns, if recorded.
func (m *LogisticRegression) FeatureNames() []string { return m.names }

// PredictProba returns [1-p, p] for each row.
func (m *LogisticRegression) PredictProba(X [][]float64) ([][]float64, error) {
	if err := checkWidth("predict", X, len(m.Coefficients)); err != nil {
		return nil, err
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		z := m.Intercept
		for j, v := range row {
			z += m.Coefficients[j] * v
		}
		p := sigmoid(z)
		out[i] = []float64{1 - p, p}
	}
	return out, nil
}

// Predict returns the class label for each row at a 0.5 threshold.
func (m *LogisticRegression) Predict(X [][]float64) ([]float64, error) {
	proba, err := m.PredictProba(X)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(proba))
	for i, p := range proba {
		if p[1] >= 0.5 {
			out[i] = 1
		}
	}
	return out, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
