package priority

import (
	"fmt"
	"strings"
)

// Distribution counts leads per tier.
type Distribution struct {
	Total  int
	Counts map[Level]int
}

// NewDistribution returns an empty distribution.
func NewDistribution() Distribution {
	return Distribution{Counts: make(map[Level]int, len(AllLevels()))}
}

// Add counts one lead in level l.
func (d *Distribution) Add(l Level) {
	if d.Counts == nil {
		d.Counts = make(map[Level]int)
	}
	d.Counts[l]++
	d.Total++
}

// Count returns the number of leads in level.
func (d Distribution) Count(l Level) int { return d.Counts[l] }

// Percent returns the share of leads in level, 0-100. An empty
// distribution reports 0.
func (d Distribution) Percent(l Level) float64 {
	if d.Total == 0 {
		return 0
	}
	return float64(d.Counts[l]) * 100 / float64(d.Total)
}

// String renders "High: 1 (33.3%), Medium: ..." in tier order.
func (d Distribution) String() string {
	parts := make([]string, 0, len(AllLevels()))
	for _, l := range AllLevels() {
		parts = append(parts, fmt.Sprintf("%s: %d (%.1f%%)", l, d.Count(l), d.Percent(l)))
	}
	return strings.Join(parts, ", ")
}
