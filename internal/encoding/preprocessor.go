package encoding

import (
	"path/filepath"

	"github.com/abhisek/leadscore/internal/artifact"
	"github.com/abhisek/leadscore/internal/failure"
	"github.com/abhisek/leadscore/internal/frame"
)

// Artifact file names inside the preprocessor directory.
const (
	EncoderFile         = "encoder.json"
	ExpectedColumnsFile = "expected_columns.json"
)

type expectedColumns struct {
	FormatVersion string   `json:"format_version"`
	Columns       []string `json:"columns"`
}

// Preprocessor pairs the fitted encoder with the frozen list of
// post-encoding columns, in the order the model was trained on.
type Preprocessor struct {
	Encoder         *Encoder
	ExpectedColumns []string
}

// Report describes what Transform did to the feature table.
type Report struct {
	Encoded    []string // categorical columns transformed
	Absent     []string // declared categorical columns not in the input
	ZeroFilled []string // expected columns created with zeros
	Dropped    []string // columns removed because the model does not use them
}

// LoadPreprocessor reads and validates encoder.json and
// expected_columns.json from dir.
func LoadPreprocessor(dir string) (*Preprocessor, error) {
	var enc Encoder
	if err := artifact.Decode(filepath.Join(dir, EncoderFile), EncoderSchema, &enc); err != nil {
		return nil, err
	}
	if err := enc.init(); err != nil {
		return nil, err
	}

	var cols expectedColumns
	if err := artifact.Decode(filepath.Join(dir, ExpectedColumnsFile), ExpectedColumnsSchema, &cols); err != nil {
		return nil, err
	}

	return &Preprocessor{Encoder: &enc, ExpectedColumns: cols.Columns}, nil
}

// Transform encodes the categorical columns of features and reindexes the
// result to ExpectedColumns: exact names, exact order, zero for anything
// absent, extra columns dropped. The output is entirely numeric.
func (p *Preprocessor) Transform(features *frame.Frame) (*frame.Frame, *Report, error) {
	encoded, absent, err := p.Encoder.Encode(features)
	if err != nil {
		return nil, nil, err
	}

	report := &Report{Absent: absent}
	for _, c := range p.Encoder.Columns {
		if features.Has(c) {
			report.Encoded = append(report.Encoded, c)
		}
	}
	expected := make(map[string]bool, len(p.ExpectedColumns))
	for _, c := range p.ExpectedColumns {
		expected[c] = true
		if !encoded.Has(c) {
			report.ZeroFilled = append(report.ZeroFilled, c)
		}
	}
	for _, c := range encoded.Names() {
		if !expected[c] {
			report.Dropped = append(report.Dropped, c)
		}
	}

	out, err := encoded.Reindex(p.ExpectedColumns, 0)
	if err != nil {
		return nil, nil, err
	}
	if text := out.TextColumns(); len(text) > 0 {
		return nil, nil, failure.Schema("encode", "column(s) %v are still text after encoding", text)
	}
	return out, report, nil
}
