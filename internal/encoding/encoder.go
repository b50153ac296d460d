// Package encoding applies the categorical encoder fitted at training time
// and aligns the encoded features to the frozen column list the model
// expects.
package encoding

import (
	"fmt"
	"slices"

	"github.com/abhisek/leadscore/internal/failure"
	"github.com/abhisek/leadscore/internal/frame"
)

// Kind selects the encoding transform.
type Kind string

const (
	// KindOrdinal replaces each category with its index.
	KindOrdinal Kind = "ordinal"
	// KindOneHot replaces a column with one 0/1 column per category,
	// named "<column>_<category>".
	KindOneHot Kind = "one_hot"
)

// UnknownPolicy controls categories not seen at fit time.
type UnknownPolicy string

const (
	UnknownError           UnknownPolicy = "error"
	UnknownUseEncodedValue UnknownPolicy = "use_encoded_value" // ordinal only
	UnknownIgnore          UnknownPolicy = "ignore"            // one-hot only
)

// missingCategory is the string a missing cell coerces to; encoders fitted
// on string-coerced training data see the same spelling.
const missingCategory = "nan"

// Encoder is a fitted categorical encoder.
type Encoder struct {
	FormatVersion string              `json:"format_version"`
	Kind          Kind                `json:"kind"`
	Columns       []string            `json:"columns"`
	Categories    map[string][]string `json:"categories"`
	HandleUnknown UnknownPolicy       `json:"handle_unknown,omitempty"`
	UnknownValue  float64             `json:"unknown_value,omitempty"`

	index map[string]map[string]int
}

func (e *Encoder) init() error {
	if e.HandleUnknown == "" {
		e.HandleUnknown = UnknownError
	}
	switch {
	case e.Kind == KindOrdinal && e.HandleUnknown == UnknownIgnore,
		e.Kind == KindOneHot && e.HandleUnknown == UnknownUseEncodedValue:
		return failure.Value("load encoder", "handle_unknown %q is not valid for %s encoding", e.HandleUnknown, e.Kind)
	}

	e.index = make(map[string]map[string]int, len(e.Columns))
	for _, col := range e.Columns {
		cats, ok := e.Categories[col]
		if !ok {
			return failure.Value("load encoder", "no categories for column %q", col)
		}
		idx := make(map[string]int, len(cats))
		for i, c := range cats {
			idx[c] = i
		}
		e.index[col] = idx
	}
	return nil
}

// OutputColumns returns the names the encoder produces for column.
func (e *Encoder) OutputColumns(column string) []string {
	if e.Kind == KindOrdinal {
		return []string{column}
	}
	cats := e.Categories[column]
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = oneHotName(column, c)
	}
	return out
}

func oneHotName(column, category string) string {
	return fmt.Sprintf("%s_%s", column, category)
}

// Encode replaces the encoder's columns in features with their encoded
// form. Text columns the encoder was not fitted on are rejected; declared
// columns absent from features are returned in absent and left out.
func (e *Encoder) Encode(features *frame.Frame) (out *frame.Frame, absent []string, err error) {
	if drift := e.unfitted(features.TextColumns()); len(drift) > 0 {
		return nil, nil, failure.Schema("encode", "categorical column(s) %v were not seen when the encoder was fitted", drift)
	}

	out = features
	for _, name := range e.Columns {
		col, ok := features.Column(name)
		if !ok {
			absent = append(absent, name)
			continue
		}
		encoded, err := e.encodeColumn(col)
		if err != nil {
			return nil, nil, err
		}
		if e.Kind == KindOneHot {
			out = out.Without(name)
		}
		out, err = out.With(encoded...)
		if err != nil {
			return nil, nil, err
		}
	}
	return out, absent, nil
}

func (e *Encoder) unfitted(textColumns []string) []string {
	var drift []string
	for _, c := range textColumns {
		if !slices.Contains(e.Columns, c) {
			drift = append(drift, c)
		}
	}
	return drift
}

func (e *Encoder) encodeColumn(col *frame.Column) ([]*frame.Column, error) {
	name := col.Name()
	idx := e.index[name]
	n := col.Len()

	switch e.Kind {
	case KindOrdinal:
		vals := make([]float64, n)
		for i := 0; i < n; i++ {
			v := categoryOf(col, i)
			code, ok := idx[v]
			if !ok {
				if e.HandleUnknown != UnknownUseEncodedValue {
					return nil, unknownCategory(name, v, i)
				}
				vals[i] = e.UnknownValue
				continue
			}
			vals[i] = float64(code)
		}
		return []*frame.Column{frame.NumberColumn(name, vals)}, nil

	case KindOneHot:
		cats := e.Categories[name]
		indicators := make([][]float64, len(cats))
		for k := range indicators {
			indicators[k] = make([]float64, n)
		}
		for i := 0; i < n; i++ {
			v := categoryOf(col, i)
			code, ok := idx[v]
			if !ok {
				if e.HandleUnknown != UnknownIgnore {
					return nil, unknownCategory(name, v, i)
				}
				continue
			}
			indicators[code][i] = 1
		}
		out := make([]*frame.Column, len(cats))
		for k, c := range cats {
			out[k] = frame.NumberColumn(oneHotName(name, c), indicators[k])
		}
		return out, nil

	default:
		return nil, failure.Value("encode", "unsupported encoder kind %q", e.Kind)
	}
}

func categoryOf(col *frame.Column, i int) string {
	if col.IsMissing(i) {
		return missingCategory
	}
	return col.String(i)
}

func unknownCategory(column, value string, row int) error {
	return failure.Value("encode", "unknown category %q in column %s (row %d)", value, column, row)
}
