// Package priority turns sale probabilities into follow-up tiers.
package priority

import (
	"math"

	"github.com/abhisek/leadscore/internal/failure"
	"github.com/abhisek/leadscore/internal/frame"
	"github.com/abhisek/leadscore/internal/scoring"
)

// LevelColumn is the name of the tier column in the output.
const LevelColumn = "Priority_Level"

// Tier thresholds; each bound is inclusive.
const (
	HighThreshold   = 0.8
	MediumThreshold = 0.5
)

// Level is a follow-up priority tier.
type Level string

const (
	High   Level = "High"
	Medium Level = "Medium"
	Low    Level = "Low"
)

// AllLevels returns all levels from highest to lowest.
func AllLevels() []Level {
	return []Level{High, Medium, Low}
}

// Classify returns the tier for probability p.
func Classify(p float64) Level {
	switch {
	case p >= HighThreshold:
		return High
	case p >= MediumThreshold:
		return Medium
	default:
		return Low
	}
}

// AddPriorityLevels appends a Priority_Level column derived from the
// VehicleSold_Probability column of predictions. Probabilities must be in
// [0, 1].
func AddPriorityLevels(predictions *frame.Frame) (*frame.Frame, Distribution, error) {
	col, ok := predictions.Column(scoring.ProbabilityColumn)
	if !ok {
		return nil, Distribution{}, failure.Value("prioritize", "predictions have no %s column", scoring.ProbabilityColumn)
	}

	dist := NewDistribution()
	levels := make([]string, col.Len())
	for i := range levels {
		p := col.Float(i)
		if math.IsNaN(p) || p < 0 || p > 1 {
			return nil, Distribution{}, failure.Value("prioritize", "row %d: probability %v is outside [0, 1]", i, p)
		}
		l := Classify(p)
		levels[i] = string(l)
		dist.Add(l)
	}

	out, err := predictions.With(frame.TextColumn(LevelColumn, levels))
	if err != nil {
		return nil, Distribution{}, err
	}
	return out, dist, nil
}
