package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/abhisek/leadscore/internal/failure"
)

// Run statuses.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Run is one recorded scoring run.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string

	InputPath       string
	ModelPath       string
	PreprocessorDir string
	OutputPath      string
	ModelKind       string

	Records int
	High    int
	Medium  int
	Low     int

	// Set when Status is not StatusSucceeded.
	FailedStage string
	ErrorKind   string
	Message     string
}

// Duration returns how long the run took.
func (r *Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunRepo manages the run ledger.
type RunRepo interface {
	// Save stores a finished run.
	Save(ctx context.Context, run *Run) error

	// List returns the most recent runs first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]*Run, error)

	// Get returns the run whose ID is or starts with id.
	Get(ctx context.Context, id string) (*Run, error)
}

const runsTable = "runs"

var runColumns = []string{
	"id", "started_at", "finished_at", "status",
	"input_path", "model_path", "preprocessor_dir", "output_path", "model_kind",
	"records", "high", "medium", "low",
	"failed_stage", "error_kind", "message",
}

type runRepo struct {
	drv *entsql.Driver
}

func (r *runRepo) Save(ctx context.Context, run *Run) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(runsTable).
		Columns(runColumns...).
		Values(
			run.ID, run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli(), run.Status,
			run.InputPath, run.ModelPath, run.PreprocessorDir, run.OutputPath, run.ModelKind,
			run.Records, run.High, run.Medium, run.Low,
			run.FailedStage, run.ErrorKind, run.Message,
		).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

func (r *runRepo) List(ctx context.Context, limit int) ([]*Run, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(runColumns...).
		From(entsql.Table(runsTable)).
		OrderBy(entsql.Desc("started_at"), entsql.Desc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}
	runs, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

func (r *runRepo) Get(ctx context.Context, id string) (*Run, error) {
	if id == "" {
		return nil, failure.Value("get run", "run id is empty")
	}
	sel := entsql.Dialect(dialect.SQLite).
		Select(runColumns...).
		From(entsql.Table(runsTable)).
		Where(entsql.HasPrefix("id", id)).
		Limit(2)
	runs, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	switch len(runs) {
	case 0:
		return nil, failure.NotFound("get run", "no run with id %q", id)
	case 1:
		return runs[0], nil
	default:
		return nil, failure.Value("get run", "run id prefix %q is ambiguous", id)
	}
}

func (r *runRepo) query(ctx context.Context, sel *entsql.Selector) ([]*Run, error) {
	query, args := sel.Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var (
			run               Run
			started, finished int64
		)
		if err := rows.Scan(
			&run.ID, &started, &finished, &run.Status,
			&run.InputPath, &run.ModelPath, &run.PreprocessorDir, &run.OutputPath, &run.ModelKind,
			&run.Records, &run.High, &run.Medium, &run.Low,
			&run.FailedStage, &run.ErrorKind, &run.Message,
		); err != nil {
			return nil, err
		}
		run.StartedAt = time.UnixMilli(started)
		run.FinishedAt = time.UnixMilli(finished)
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}
