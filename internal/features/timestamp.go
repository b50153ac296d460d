package features

import (
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/leadscore/internal/failure"
	"github.com/abhisek/leadscore/internal/frame"
	"github.com/araddon/dateparse"
)

// ParseTimestamp parses a single cell. ISO dates, slash dates (month
// first) and offsets written as +hh:mm are accepted. Wall-clock values
// without an offset are read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := dateparse.ParseIn(strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
	}
	return t, nil
}

// ParseTimestamps parses every cell of col. Missing cells yield the zero time.
func ParseTimestamps(col *frame.Column) ([]time.Time, error) {
	out := make([]time.Time, col.Len())
	for i := range out {
		if col.IsMissing(i) {
			continue
		}
		t, err := ParseTimestamp(col.String(i))
		if err != nil {
			return nil, failure.Value("parse timestamp", "column %s row %d: %v", col.Name(), i, err)
		}
		out[i] = t
	}
	return out, nil
}
