// Package model loads the trained classifier from its JSON artifact and
// exposes it through a small capability contract.
package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/abhisek/leadscore/internal/artifact"
	"github.com/abhisek/leadscore/internal/failure"
)

// Predictor is the generic capability every loaded model must have.
type Predictor interface {
	Predict(X [][]float64) ([]float64, error)
}

// ProbabilityPredictor is a Predictor that can also report class
// probabilities, one row per input row and one column per class.
type ProbabilityPredictor interface {
	Predictor
	PredictProba(X [][]float64) ([][]float64, error)
}

// FeatureNamer is implemented by models that record the feature columns
// they were trained on.
type FeatureNamer interface {
	FeatureNames() []string
}

// Envelope is the common wrapper of every model artifact.
type Envelope struct {
	FormatVersion string          `json:"format_version"`
	Kind          string          `json:"kind"`
	FeatureNames  []string        `json:"feature_names,omitempty"`
	Params        json.RawMessage `json:"params"`
}

// Decoder turns an envelope into a model object. The returned value is
// checked for the Predictor capability by Load.
type Decoder func(env Envelope) (any, error)

// Artifact is a loaded model together with its envelope metadata.
type Artifact struct {
	Path          string
	FormatVersion string
	Kind          string
	FeatureNames  []string
	Model         Predictor
}

// Probabilistic reports whether the model can produce probabilities.
func (a *Artifact) Probabilistic() bool {
	_, ok := a.Model.(ProbabilityPredictor)
	return ok
}

// EnvelopeSchema defines the JSON schema of model.json.
var EnvelopeSchema = &artifact.Schema{
	Name: "model",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"format_version": artifact.VersionProperty,
			"kind":           map[string]any{"type": "string", "minLength": 1},
			"feature_names": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string", "minLength": 1},
				"uniqueItems": true,
			},
			"params": map[string]any{"type": "object"},
		},
		"required":             []any{"format_version", "kind", "params"},
		"additionalProperties": false,
	},
}

var (
	decodersMu sync.RWMutex
	decoders   = make(map[string]Decoder)
)

// Register makes a model kind available to Load. It panics if the kind is
// registered twice or decoder is nil.
func Register(kind string, decoder Decoder) {
	decodersMu.Lock()
	defer decodersMu.Unlock()
	if decoder == nil {
		panic("model: Register decoder is nil")
	}
	if _, dup := decoders[kind]; dup {
		panic("model: Register called twice for kind " + kind)
	}
	decoders[kind] = decoder
}

// Kinds returns the registered model kinds, sorted.
func Kinds() []string {
	decodersMu.RLock()
	defer decodersMu.RUnlock()
	kinds := make([]string, 0, len(decoders))
	for k := range decoders {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func lookup(kind string) (Decoder, bool) {
	decodersMu.RLock()
	defer decodersMu.RUnlock()
	d, ok := decoders[kind]
	return d, ok
}

// Load reads the model artifact at path and returns the decoded model.
// Only the generic Predict capability is required here.
func Load(path string) (Predictor, error) {
	a, err := LoadArtifact(path)
	if err != nil {
		return nil, err
	}
	return a.Model, nil
}

// LoadArtifact is Load with the envelope metadata kept. The artifact is
// read fresh on every call.
func LoadArtifact(path string) (*Artifact, error) {
	var env Envelope
	if err := artifact.Decode(path, EnvelopeSchema, &env); err != nil {
		return nil, err
	}

	decode, ok := lookup(env.Kind)
	if !ok {
		return nil, failure.Value("load model", "unknown model kind %q (registered: %v)", env.Kind, Kinds())
	}
	obj, err := decode(env)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p, ok := obj.(Predictor)
	if !ok {
		return nil, failure.Capability("load model", "model of kind %q (%T) does not support prediction", env.Kind, obj)
	}

	return &Artifact{
		Path:          path,
		FormatVersion: env.FormatVersion,
		Kind:          env.Kind,
		FeatureNames:  env.FeatureNames,
		Model:         p,
	}, nil
}

// decodeParams validates env.Params against schema and unmarshals it.
func decodeParams(env Envelope, schema *artifact.Schema, v any) error {
	if err := artifact.ValidateFragment(schema, env.Params); err != nil {
		return err
	}
	if err := json.Unmarshal(env.Params, v); err != nil {
		return failure.Wrap(failure.KindValue, "decode "+schema.Name, err)
	}
	return nil
}

func checkWidth(op string, X [][]float64, want int) error {
	for i, row := range X {
		if len(row) != want {
			return failure.Schema(op, "row %d has %d features, model expects %d", i, len(row), want)
		}
	}
	return nil
}

func init() {
	Register(KindLogisticRegression, decodeLogisticRegression)
	Register(KindRandomForest, decodeRandomForest)
}
