// Package pipeline runs the scoring stages in order, from the raw leads
// file to the merged predictions file.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/abhisek/leadscore/internal/config"
	"github.com/abhisek/leadscore/internal/encoding"
	"github.com/abhisek/leadscore/internal/features"
	"github.com/abhisek/leadscore/internal/frame"
	"github.com/abhisek/leadscore/internal/merge"
	"github.com/abhisek/leadscore/internal/metrics"
	"github.com/abhisek/leadscore/internal/model"
	"github.com/abhisek/leadscore/internal/priority"
	"github.com/abhisek/leadscore/internal/scoring"
	"github.com/abhisek/leadscore/internal/store"
	"github.com/google/uuid"
)

// Options carries the collaborators of a run. Every field is optional.
type Options struct {
	Logger *slog.Logger
	// Runs records the run in the ledger; nil disables the ledger.
	Runs store.RunRepo
	// Now and NewID are replaced in tests.
	Now   func() time.Time
	NewID func() string
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	return o
}

// Result describes a successful run.
type Result struct {
	RunID     string
	Summary   *merge.Summary
	ModelKind string
	Features  *features.Report
	Encoding  *encoding.Report
	Elapsed   time.Duration
}

// run holds the state passed between stages.
type run struct {
	id      string
	cfg     config.Config
	opts    Options
	log     *slog.Logger
	metrics *metrics.Recorder
	started time.Time

	policy      features.DerivationPolicy
	normalized  *frame.Frame
	encoded     *frame.Frame
	model       *model.Artifact
	predictions *frame.Frame
	dist        priority.Distribution
	result      Result
}

// Run executes every stage against cfg. A failing stage stops the run and
// is returned as a *StageError; nothing is written in that case. The
// context is checked between stages.
func Run(ctx context.Context, cfg config.Config, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	r := &run{
		id:      opts.NewID(),
		cfg:     cfg,
		opts:    opts,
		started: opts.Now(),
	}
	r.log = opts.Logger.With("run", r.id)
	if cfg.MetricsFile != "" {
		r.metrics = metrics.NewRecorder()
	}
	r.result.RunID = r.id

	r.log.Info("Starting prediction pipeline",
		"input", cfg.InputPath, "model", cfg.ModelPath,
		"preprocessors", cfg.PreprocessorDir, "output", cfg.OutputPath)

	if err := cfg.Validate(); err != nil {
		return nil, r.fail(ctx, &StageError{Stage: StageConfig, Err: err})
	}
	r.policy, _ = cfg.Policy()

	steps := []struct {
		stage Stage
		fn    func() error
	}{
		{StageNormalize, r.normalize},
		{StageEncode, r.encode},
		{StageLoadModel, r.loadModel},
		{StageScore, r.score},
		{StagePrioritize, r.prioritize},
		{StageMerge, r.merge},
	}
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return nil, r.fail(ctx, &StageError{Stage: s.stage, Err: err})
		}
		began := opts.Now()
		r.log.Debug("Stage started", "stage", s.stage)
		if err := s.fn(); err != nil {
			return nil, r.fail(ctx, &StageError{Stage: s.stage, Err: err})
		}
		took := opts.Now().Sub(began)
		if r.metrics != nil {
			r.metrics.ObserveStage(string(s.stage), took)
		}
		r.log.Debug("Stage finished", "stage", s.stage, "took", took)
	}

	return r.succeed(ctx), nil
}

func (r *run) normalize() error {
	raw, err := frame.ReadCSV(r.cfg.InputPath)
	if err != nil {
		return err
	}
	r.log.Info("Loaded input data", "records", raw.Len(), "columns", raw.Width())

	normalized, report, err := features.Normalize(raw, r.policy)
	if err != nil {
		return err
	}
	for _, s := range report.Skipped {
		r.log.Warn("Skipped derived feature", "feature", s.Feature, "missing", s.Missing)
	}
	r.log.Info("Normalized features", "dropped", report.Dropped, "derived", report.Derived)
	r.normalized = normalized
	r.result.Features = report
	return nil
}

func (r *run) encode() error {
	pre, err := encoding.LoadPreprocessor(r.cfg.PreprocessorDir)
	if err != nil {
		return err
	}
	encoded, report, err := pre.Transform(r.normalized)
	if err != nil {
		return err
	}
	if len(report.Absent) > 0 {
		r.log.Warn("Categorical columns absent from input", "columns", report.Absent)
	}
	if len(report.ZeroFilled) > 0 {
		r.log.Warn("Zero-filled expected columns", "columns", report.ZeroFilled)
	}
	if len(report.Dropped) > 0 {
		r.log.Debug("Dropped columns unknown to the model", "columns", report.Dropped)
	}
	r.log.Info("Encoded features", "shape", [2]int{encoded.Len(), encoded.Width()})
	r.encoded = encoded
	r.result.Encoding = report
	return nil
}

func (r *run) loadModel() error {
	a, err := model.LoadArtifact(r.cfg.ModelPath)
	if err != nil {
		return err
	}
	r.log.Info("Model loaded", "kind", a.Kind, "format_version", a.FormatVersion)
	r.model = a
	r.result.ModelKind = a.Kind
	return nil
}

func (r *run) score() error {
	probs, err := scoring.Score(r.encoded, r.model.Model)
	if err != nil {
		return err
	}
	predictions, err := scoring.Frame(probs)
	if err != nil {
		return err
	}
	r.log.Info("Generated predictions", "records", len(probs))
	r.predictions = predictions
	return nil
}

func (r *run) prioritize() error {
	out, dist, err := priority.AddPriorityLevels(r.predictions)
	if err != nil {
		return err
	}
	for _, l := range priority.AllLevels() {
		r.log.Info("Priority distribution", "level", l, "leads", dist.Count(l), "percent", roundPercent(dist.Percent(l)))
	}
	r.predictions = out
	r.dist = dist
	return nil
}

func (r *run) merge() error {
	summary, err := merge.Merge(r.cfg.InputPath, r.predictions, r.cfg.OutputPath)
	if err != nil {
		return err
	}
	r.log.Info("Predictions saved", "output", summary.OutputPath, "records", summary.Total)
	r.result.Summary = summary
	return nil
}

func (r *run) succeed(ctx context.Context) *Result {
	finished := r.opts.Now()
	r.result.Elapsed = finished.Sub(r.started)
	r.log.Info("Pipeline completed successfully", "took", r.result.Elapsed)

	if r.metrics != nil {
		r.metrics.Succeeded(finished, r.dist)
	}
	r.finish(ctx, &store.Run{
		Status:     store.StatusSucceeded,
		FinishedAt: finished,
		ModelKind:  r.result.ModelKind,
		Records:    r.dist.Total,
		High:       r.dist.Count(priority.High),
		Medium:     r.dist.Count(priority.Medium),
		Low:        r.dist.Count(priority.Low),
	})
	return &r.result
}

func (r *run) fail(ctx context.Context, err *StageError) error {
	err.RunID = r.id
	finished := r.opts.Now()
	status := store.StatusFailed
	if err.Kind() == "cancelled" {
		status = store.StatusCancelled
	}
	r.log.Error("Pipeline failed", "stage", err.Stage, "kind", err.Kind(), "error", err.Err)

	if r.metrics != nil {
		r.metrics.Failed(finished, string(err.Stage), err.Kind())
	}
	r.finish(ctx, &store.Run{
		Status:      status,
		FinishedAt:  finished,
		ModelKind:   r.result.ModelKind,
		FailedStage: string(err.Stage),
		ErrorKind:   err.Kind(),
		Message:     err.Err.Error(),
	})
	return err
}

// finish completes run with the common fields, then writes the ledger entry
// and the metrics file. Neither failure affects the outcome of the run.
func (r *run) finish(ctx context.Context, entry *store.Run) {
	entry.ID = r.id
	entry.StartedAt = r.started
	entry.InputPath = r.cfg.InputPath
	entry.ModelPath = r.cfg.ModelPath
	entry.PreprocessorDir = r.cfg.PreprocessorDir
	entry.OutputPath = r.cfg.OutputPath

	if r.opts.Runs != nil {
		// The ledger entry is written even when ctx was cancelled.
		if err := r.opts.Runs.Save(context.WithoutCancel(ctx), entry); err != nil {
			r.log.Warn("Could not record run in ledger", "error", err)
		}
	}
	if r.metrics != nil {
		if err := r.metrics.WriteTextfile(r.cfg.MetricsFile); err != nil {
			r.log.Warn("Could not write metrics file", "path", r.cfg.MetricsFile, "error", err)
		}
	}
}

func roundPercent(p float64) float64 {
	return float64(int(p*10+0.5)) / 10
}

// IsStageError reports whether err came from a pipeline stage, and which.
func IsStageError(err error) (*StageError, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
