package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/leadscore/internal/failure"
)

// Stage names a pipeline step.
type Stage string

const (
	StageConfig     Stage = "config"
	StageNormalize  Stage = "normalize"
	StageEncode     Stage = "encode"
	StageLoadModel  Stage = "load_model"
	StageScore      Stage = "score"
	StagePrioritize Stage = "prioritize"
	StageMerge      Stage = "merge"
)

// Stages returns the scoring stages in execution order.
func Stages() []Stage {
	return []Stage{StageNormalize, StageEncode, StageLoadModel, StageScore, StagePrioritize, StageMerge}
}

// StageError reports the stage a run failed in. The underlying error keeps
// its failure kind.
type StageError struct {
	Stage Stage
	RunID string // empty outside Run
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Kind returns the failure kind of the underlying error, or "cancelled"
// when the run was interrupted.
func (e *StageError) Kind() string {
	if errors.Is(e.Err, context.Canceled) || errors.Is(e.Err, context.DeadlineExceeded) {
		return "cancelled"
	}
	return string(failure.KindOf(e.Err))
}
