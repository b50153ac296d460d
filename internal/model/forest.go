package model

import (
	"github.com/abhisek/leadscore/internal/artifact"
	"github.com/abhisek/leadscore/internal/failure"
)

// KindRandomForest is an ensemble of decision trees exported as flat node
// arrays.
const KindRandomForest = "random_forest"

// leafFeature marks a leaf node.
const leafFeature = -1

var forestParamsSchema = &artifact.Schema{
	Name: "random-forest-params",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"n_features": map[string]any{"type": "integer", "minimum": 1},
			"n_classes":  map[string]any{"type": "integer", "minimum": 1},
			"trees": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":     "object",
					"required": []any{"nodes"},
					"properties": map[string]any{
						"nodes": map[string]any{
							"type":     "array",
							"minItems": 1,
							"items": map[string]any{
								"type":     "object",
								"required": []any{"feature"},
								"properties": map[string]any{
									"feature":   map[string]any{"type": "integer", "minimum": leafFeature},
									"threshold": map[string]any{"type": "number"},
									"left":      map[string]any{"type": "integer"},
									"right":     map[string]any{"type": "integer"},
									"value": map[string]any{
										"type":  "array",
										"items": map[string]any{"type": "number", "minimum": 0},
									},
								},
							},
						},
					},
				},
			},
		},
		"required":             []any{"n_features", "n_classes", "trees"},
		"additionalProperties": false,
	},
}

type treeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value"`
}

type tree struct {
	Nodes []treeNode `json:"nodes"`
}

// RandomForest averages the normalised leaf class distributions of its
// trees. Rows go left when x[feature] <= threshold.
type RandomForest struct {
	NFeatures int    `json:"n_features"`
	NClasses  int    `json:"n_classes"`
	Trees     []tree `json:"trees"`

	names []string
}

func decodeRandomForest(env Envelope) (any, error) {
	var m RandomForest
	if err := decodeParams(env, forestParamsSchema, &m); err != nil {
		return nil, err
	}
	if n := len(env.FeatureNames); n > 0 && n != m.NFeatures {
		return nil, failure.Value("load model", "%d feature names for n_features %d", n, m.NFeatures)
	}
	for t := range m.Trees {
		if err := m.checkTree(t); err != nil {
			return nil, err
		}
	}
	m.names = env.FeatureNames
	return &m, nil
}

// checkTree requires children to come after their parent, which rules out
// cycles, and leaves to carry one non-empty distribution per class.
func (m *RandomForest) checkTree(t int) error {
	nodes := m.Trees[t].Nodes
	for i, n := range nodes {
		if n.Feature == leafFeature {
			if len(n.Value) != m.NClasses {
				return failure.Value("load model", "tree %d node %d: leaf has %d class values, want %d", t, i, len(n.Value), m.NClasses)
			}
			if sum(n.Value) <= 0 {
				return failure.Value("load model", "tree %d node %d: leaf distribution is empty", t, i)
			}
			continue
		}
		if n.Feature >= m.NFeatures {
			return failure.Value("load model", "tree %d node %d: feature %d out of range", t, i, n.Feature)
		}
		for _, child := range []int{n.Left, n.Right} {
			if child <= i || child >= len(nodes) {
				return failure.Value("load model", "tree %d node %d: invalid child index %d", t, i, child)
			}
		}
	}
	return nil
}

// FeatureNames returns the training columns, if recorded.
func (m *RandomForest) FeatureNames() []string { return m.names }

// PredictProba returns the mean class distribution for each row.
func (m *RandomForest) PredictProba(X [][]float64) ([][]float64, error) {
	if err := checkWidth("predict", X, m.NFeatures); err != nil {
		return nil, err
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		acc := make([]float64, m.NClasses)
		for t := range m.Trees {
			leaf := m.Trees[t].leaf(row)
			total := sum(leaf)
			for k, v := range leaf {
				acc[k] += v / total
			}
		}
		for k := range acc {
			acc[k] /= float64(len(m.Trees))
		}
		out[i] = acc
	}
	return out, nil
}

// Predict returns the index of the most probable class for each row.
func (m *RandomForest) Predict(X [][]float64) ([]float64, error) {
	proba, err := m.PredictProba(X)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(proba))
	for i, p := range proba {
		best := 0
		for k := range p {
			if p[k] > p[best] {
				best = k
			}
		}
		out[i] = float64(best)
	}
	return out, nil
}

func (t *tree) leaf(x []float64) []float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature == leafFeature {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

func sum(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x
	}
	return s
}
