// Package features rebuilds the model's feature table from raw lead records:
// identifier columns are dropped and the calendar, time-of-day and finance
// features used at training time are derived.
package features

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/abhisek/leadscore/internal/failure"
	"github.com/abhisek/leadscore/internal/frame"
)

// Source columns read by the normalizer.
const (
	ColLeadID          = "LeadID"
	ColCustomerID      = "CustomerID"
	ColLeadCreated     = "DTLeadCreated"
	ColLeadAllocated   = "DTLeadAllocated"
	ColFullName        = "OBSFullName"
	ColEmail           = "OBSEmail"
	ColDomain          = "Domain"
	ColHourOfEnquiry   = "HourOfEnquiry"
	ColFinanceApplied  = "FinanceApplied"
	ColFinanceApproved = "FinanceApproved"
)

// Derived feature columns.
const (
	FeatureWeekendEnquiry  = "IsWeekendEnquiry"
	FeatureTimeOfDay       = "TimeOfDayCategory"
	FeatureFinanceApproved = "IsFinanceAppliedAndApproved"
)

// IdentifierColumns are removed before scoring. The two timestamps are
// only used to derive features.
var IdentifierColumns = []string{
	ColLeadID, ColCustomerID, ColLeadCreated, ColLeadAllocated,
	ColFullName, ColEmail, ColDomain,
}

// DerivationPolicy decides what happens when a derived feature's source
// columns are absent.
type DerivationPolicy string

const (
	// PolicyLenient skips the feature and records it in the report.
	PolicyLenient DerivationPolicy = "lenient"
	// PolicyStrict fails with a schema error.
	PolicyStrict DerivationPolicy = "strict"
)

// ParsePolicy converts a config string into a DerivationPolicy.
// The empty string selects PolicyLenient.
func ParsePolicy(s string) (DerivationPolicy, error) {
	switch DerivationPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyLenient:
		return PolicyLenient, nil
	case PolicyStrict:
		return PolicyStrict, nil
	default:
		return "", fmt.Errorf("unknown derivation policy %q (want lenient or strict)", s)
	}
}

// Report lists which derived features were produced and which were skipped.
type Report struct {
	Dropped []string
	Derived []string
	Skipped []SkippedFeature
}

// SkippedFeature names a feature that could not be derived and the source
// columns that were missing.
type SkippedFeature struct {
	Feature string
	Missing []string
}

type derivation struct {
	feature string
	sources []string
	derive  func(raw *frame.Frame) (*frame.Column, error)
}

var derivations = []derivation{
	{FeatureWeekendEnquiry, []string{ColLeadCreated}, deriveWeekendEnquiry},
	{FeatureTimeOfDay, []string{ColHourOfEnquiry}, deriveTimeOfDay},
	{FeatureFinanceApproved, []string{ColFinanceApplied, ColFinanceApproved}, deriveFinanceApproved},
}

// Normalize drops identifier columns from raw and appends the derived
// features. raw is not modified.
func Normalize(raw *frame.Frame, policy DerivationPolicy) (*frame.Frame, *Report, error) {
	report := &Report{}
	for _, c := range IdentifierColumns {
		if raw.Has(c) {
			report.Dropped = append(report.Dropped, c)
		}
	}

	// Timestamps are parsed even when unused so that malformed input fails
	// the run instead of silently scoring.
	for _, c := range []string{ColLeadCreated, ColLeadAllocated} {
		if col, ok := raw.Column(c); ok {
			if _, err := ParseTimestamps(col); err != nil {
				return nil, nil, err
			}
		}
	}

	out := raw.Without(IdentifierColumns...)
	var derived []*frame.Column
	for _, d := range derivations {
		missing := missingColumns(raw, d.sources)
		if len(missing) > 0 {
			if policy == PolicyStrict {
				return nil, nil, failure.Schema("normalize", "cannot derive %s: missing column(s) %s",
					d.feature, strings.Join(missing, ", "))
			}
			report.Skipped = append(report.Skipped, SkippedFeature{Feature: d.feature, Missing: missing})
			continue
		}
		col, err := d.derive(raw)
		if err != nil {
			return nil, nil, err
		}
		derived = append(derived, col)
		report.Derived = append(report.Derived, d.feature)
	}

	out, err := out.With(derived...)
	if err != nil {
		return nil, nil, err
	}
	return out, report, nil
}

func missingColumns(f *frame.Frame, names []string) []string {
	var missing []string
	for _, n := range names {
		if !f.Has(n) {
			missing = append(missing, n)
		}
	}
	return missing
}

func deriveWeekendEnquiry(raw *frame.Frame) (*frame.Column, error) {
	col, _ := raw.Column(ColLeadCreated)
	ts, err := ParseTimestamps(col)
	if err != nil {
		return nil, err
	}
	vals := make([]float64, len(ts))
	for i, t := range ts {
		if IsWeekend(t) {
			vals[i] = 1
		}
	}
	return frame.NumberColumn(FeatureWeekendEnquiry, vals), nil
}

func deriveTimeOfDay(raw *frame.Frame) (*frame.Column, error) {
	col, _ := raw.Column(ColHourOfEnquiry)
	if col.Kind() != frame.Number {
		return nil, failure.Schema("normalize", "column %s must be numeric, found %s", ColHourOfEnquiry, col.Kind())
	}
	vals := make([]string, col.Len())
	for i := range vals {
		vals[i] = string(TimeOfDay(col.Float(i)))
	}
	return frame.TextColumn(FeatureTimeOfDay, vals), nil
}

func deriveFinanceApproved(raw *frame.Frame) (*frame.Column, error) {
	applied, _ := raw.Column(ColFinanceApplied)
	approved, _ := raw.Column(ColFinanceApproved)
	vals := make([]float64, applied.Len())
	for i := range vals {
		if applied.Float(i) == 1 && approved.Float(i) == 1 {
			vals[i] = 1
		}
	}
	return frame.NumberColumn(FeatureFinanceApproved, vals), nil
}

// IsWeekend reports whether t falls on a Saturday or Sunday.
// The zero time (a missing timestamp) is not a weekend.
func IsWeekend(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// TimeOfDayCategory buckets an hour of day.
type TimeOfDayCategory string

const (
	Morning   TimeOfDayCategory = "Morning"
	Afternoon TimeOfDayCategory = "Afternoon"
	Evening   TimeOfDayCategory = "Evening"
	Night     TimeOfDayCategory = "Night"
)

// TimeOfDay maps an hour to its category: [5,12) Morning, [12,17)
// Afternoon, [17,21) Evening, anything else (including NaN) Night.
func TimeOfDay(hour float64) TimeOfDayCategory {
	switch {
	case math.IsNaN(hour):
		return Night
	case hour >= 5 && hour < 12:
		return Morning
	case hour >= 12 && hour < 17:
		return Afternoon
	case hour >= 17 && hour < 21:
		return Evening
	default:
		return Night
	}
}
