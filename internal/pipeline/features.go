package pipeline

import (
	"log/slog"
	"slices"

	"github.com/abhisek/leadscore/internal/encoding"
	"github.com/abhisek/leadscore/internal/features"
	"github.com/abhisek/leadscore/internal/frame"
	"github.com/abhisek/leadscore/internal/model"
	"github.com/abhisek/leadscore/internal/priority"
	"github.com/abhisek/leadscore/internal/report"
	"github.com/abhisek/leadscore/internal/scoring"
)

// Features runs the normalize and encode stages only and returns the
// encoded feature table the model would receive.
func Features(inputPath, preprocessorDir string, policy features.DerivationPolicy, log *slog.Logger) (*frame.Frame, error) {
	raw, err := frame.ReadCSV(inputPath)
	if err != nil {
		return nil, &StageError{Stage: StageNormalize, Err: err}
	}
	return encodeFeatures(raw, preprocessorDir, policy, orDefault(log))
}

func encodeFeatures(raw *frame.Frame, preprocessorDir string, policy features.DerivationPolicy, log *slog.Logger) (*frame.Frame, error) {
	normalized, nrep, err := features.Normalize(raw, policy)
	if err != nil {
		return nil, &StageError{Stage: StageNormalize, Err: err}
	}
	for _, s := range nrep.Skipped {
		log.Warn("Skipped derived feature", "feature", s.Feature, "missing", s.Missing)
	}

	pre, err := encoding.LoadPreprocessor(preprocessorDir)
	if err != nil {
		return nil, &StageError{Stage: StageEncode, Err: err}
	}
	encoded, erep, err := pre.Transform(normalized)
	if err != nil {
		return nil, &StageError{Stage: StageEncode, Err: err}
	}
	if len(erep.ZeroFilled) > 0 {
		log.Warn("Zero-filled expected columns", "columns", erep.ZeroFilled)
	}
	log.Info("Encoded features", "shape", [2]int{encoded.Len(), encoded.Width()})
	return encoded, nil
}

// IDColumn names the identifier column of the intermediate predictions file.
const IDColumn = "ID"

// Predict scores inputPath without prioritizing or merging. The result has
// an ID column, copied from the input's ID column or holding the row
// index when there is none, followed by VehicleSold_Probability.
func Predict(inputPath, modelPath, preprocessorDir string, policy features.DerivationPolicy, log *slog.Logger) (*frame.Frame, error) {
	log = orDefault(log)
	raw, err := frame.ReadCSV(inputPath)
	if err != nil {
		return nil, &StageError{Stage: StageNormalize, Err: err}
	}
	encoded, err := encodeFeatures(raw, preprocessorDir, policy, log)
	if err != nil {
		return nil, err
	}

	m, err := model.Load(modelPath)
	if err != nil {
		return nil, &StageError{Stage: StageLoadModel, Err: err}
	}
	probs, err := scoring.Score(encoded, m)
	if err != nil {
		return nil, &StageError{Stage: StageScore, Err: err}
	}

	ids, ok := raw.Column(IDColumn)
	if !ok {
		index := make([]float64, raw.Len())
		for i := range index {
			index[i] = float64(i)
		}
		ids = frame.NumberColumn(IDColumn, index)
	}
	out, err := frame.New(ids, frame.NumberColumn(scoring.ProbabilityColumn, probs))
	if err != nil {
		return nil, &StageError{Stage: StageScore, Err: err}
	}
	log.Info("Predicted probabilities", "records", out.Len())
	return out, nil
}

// Prioritize reads a predictions file holding VehicleSold_Probability and
// adds Priority_Level. An existing Priority_Level column is replaced.
func Prioritize(predictionsPath string) (*frame.Frame, priority.Distribution, error) {
	preds, err := frame.ReadCSV(predictionsPath)
	if err != nil {
		return nil, priority.Distribution{}, &StageError{Stage: StagePrioritize, Err: err}
	}
	out, dist, err := priority.AddPriorityLevels(preds)
	if err != nil {
		return nil, priority.Distribution{}, &StageError{Stage: StagePrioritize, Err: err}
	}
	return out, dist, nil
}

func orDefault(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.Default()
	}
	return log
}

// Inspect loads and validates the preprocessor and model artifacts without
// scoring anything.
func Inspect(modelPath, preprocessorDir string) (*report.ArtifactSummary, error) {
	pre, err := encoding.LoadPreprocessor(preprocessorDir)
	if err != nil {
		return nil, &StageError{Stage: StageEncode, Err: err}
	}
	a, err := model.LoadArtifact(modelPath)
	if err != nil {
		return nil, &StageError{Stage: StageLoadModel, Err: err}
	}

	summary := &report.ArtifactSummary{
		ModelPath:       modelPath,
		ModelKind:       a.Kind,
		ModelFormat:     a.FormatVersion,
		Probabilistic:   a.Probabilistic(),
		EncoderKind:     string(pre.Encoder.Kind),
		Categorical:     pre.Encoder.Columns,
		ExpectedColumns: pre.ExpectedColumns,
	}
	if len(a.FeatureNames) > 0 {
		match := slices.Equal(a.FeatureNames, pre.ExpectedColumns)
		summary.FeatureNamesMatch = &match
	}
	return summary, nil
}
