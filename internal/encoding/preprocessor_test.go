package encoding

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abhisek/leadscore/internal/failure"
	"github.com/abhisek/leadscore/internal/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ordinalEncoder = `{
  "format_version": "v1.0.0",
  "kind": "ordinal",
  "columns": ["Make", "TimeOfDayCategory"],
  "categories": {
    "Make": ["Audi", "BMW", "nan"],
    "TimeOfDayCategory": ["Afternoon", "Evening", "Morning", "Night"]
  },
  "handle_unknown": "use_encoded_value",
  "unknown_value": -1
}`

const oneHotEncoder = `{
  "format_version": "v1.0.0",
  "kind": "one_hot",
  "columns": ["Make"],
  "categories": {"Make": ["Audi", "BMW"]},
  "handle_unknown": "ignore"
}`

const expectedJSON = `{
  "format_version": "v1.0.0",
  "columns": ["Price", "Make", "TimeOfDayCategory", "IsWeekendEnquiry"]
}`

func writePreprocessor(t *testing.T, encoder, columns string) string {
	t.Helper()
	dir := t.TempDir()
	if encoder != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, EncoderFile), []byte(encoder), 0o600))
	}
	if columns != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, ExpectedColumnsFile), []byte(columns), 0o600))
	}
	return dir
}

func features(t *testing.T, csv string) *frame.Frame {
	t.Helper()
	f, err := frame.Read(strings.NewReader(csv))
	require.NoError(t, err)
	return f
}

func column(t *testing.T, f *frame.Frame, name string) []float64 {
	t.Helper()
	c, ok := f.Column(name)
	require.True(t, ok, "missing column %s", name)
	out := make([]float64, c.Len())
	for i := range out {
		out[i] = c.Float(i)
	}
	return out
}

func TestLoadPreprocessor(t *testing.T) {
	p, err := LoadPreprocessor(writePreprocessor(t, ordinalEncoder, expectedJSON))
	require.NoError(t, err)

	assert.Equal(t, KindOrdinal, p.Encoder.Kind)
	assert.Equal(t, []string{"Price", "Make", "TimeOfDayCategory", "IsWeekendEnquiry"}, p.ExpectedColumns)
}

func TestLoadPreprocessorMissingArtifacts(t *testing.T) {
	_, err := LoadPreprocessor(writePreprocessor(t, "", expectedJSON))
	assert.True(t, errors.Is(err, failure.ErrNotFound))

	_, err = LoadPreprocessor(writePreprocessor(t, ordinalEncoder, ""))
	assert.True(t, errors.Is(err, failure.ErrNotFound))
}

func TestLoadPreprocessorInvalid(t *testing.T) {
	tests := []struct {
		name    string
		encoder string
	}{
		{"unknown kind", `{"format_version":"v1","kind":"target","columns":[],"categories":{}}`},
		{"categories missing for column", `{"format_version":"v1","kind":"ordinal","columns":["Make"],"categories":{}}`},
		{"ignore with ordinal", `{"format_version":"v1","kind":"ordinal","columns":["Make"],"categories":{"Make":["A"]},"handle_unknown":"ignore"}`},
		{"future format", `{"format_version":"v2.0.0","kind":"ordinal","columns":[],"categories":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPreprocessor(writePreprocessor(t, tt.encoder, expectedJSON))
			require.Error(t, err)
			assert.True(t, errors.Is(err, failure.ErrValue), "got %v", err)
		})
	}
}

func TestTransformOrdinal(t *testing.T) {
	p, err := LoadPreprocessor(writePreprocessor(t, ordinalEncoder, expectedJSON))
	require.NoError(t, err)

	in := features(t, "Make,Price,TimeOfDayCategory,Colour\nBMW,100,Night,1\nAudi,200,Morning,2\nFiat,300,Evening,3\n,400,Afternoon,4\n")
	out, report, err := p.Transform(in)
	require.NoError(t, err)

	assert.Equal(t, p.ExpectedColumns, out.Names())
	assert.Equal(t, []float64{1, 0, -1, 2}, column(t, out, "Make"))
	assert.Equal(t, []float64{3, 2, 1, 0}, column(t, out, "TimeOfDayCategory"))
	assert.Equal(t, []float64{0, 0, 0, 0}, column(t, out, "IsWeekendEnquiry"))
	assert.Equal(t, []float64{100, 200, 300, 400}, column(t, out, "Price"))

	assert.Equal(t, []string{"Make", "TimeOfDayCategory"}, report.Encoded)
	assert.Equal(t, []string{"IsWeekendEnquiry"}, report.ZeroFilled)
	assert.Equal(t, []string{"Colour"}, report.Dropped)
	assert.Empty(t, report.Absent)
}

func TestTransformShapeIndependentOfInput(t *testing.T) {
	p, err := LoadPreprocessor(writePreprocessor(t, ordinalEncoder, expectedJSON))
	require.NoError(t, err)

	for _, csv := range []string{
		"Make\nAudi\n",
		"Unused,Price\n1,2\n",
		"IsWeekendEnquiry,Price,Make,TimeOfDayCategory,Extra\n1,2,BMW,Night,9\n",
	} {
		out, report, err := p.Transform(features(t, csv))
		require.NoError(t, err, csv)
		assert.Equal(t, p.ExpectedColumns, out.Names(), csv)
		assert.Equal(t, 1, out.Len())
		_, err = out.Matrix()
		assert.NoError(t, err)
		assert.NotNil(t, report)
	}
}

func TestTransformAbsentCategoricalIsZeroFilled(t *testing.T) {
	p, err := LoadPreprocessor(writePreprocessor(t, ordinalEncoder, expectedJSON))
	require.NoError(t, err)

	out, report, err := p.Transform(features(t, "Make,Price\nAudi,10\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"TimeOfDayCategory"}, report.Absent)
	assert.Equal(t, []float64{0}, column(t, out, "TimeOfDayCategory"))
}

func TestTransformRejectsDrift(t *testing.T) {
	p, err := LoadPreprocessor(writePreprocessor(t, ordinalEncoder, expectedJSON))
	require.NoError(t, err)

	_, _, err = p.Transform(features(t, "Make,Region\nAudi,North\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrSchema))
	assert.Contains(t, err.Error(), "Region")
}

func TestTransformUnknownCategoryError(t *testing.T) {
	enc := strings.Replace(ordinalEncoder, `"handle_unknown": "use_encoded_value"`, `"handle_unknown": "error"`, 1)
	p, err := LoadPreprocessor(writePreprocessor(t, enc, expectedJSON))
	require.NoError(t, err)

	_, _, err = p.Transform(features(t, "Make\nFiat\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrValue))
	assert.Contains(t, err.Error(), `"Fiat"`)
}

func TestTransformOneHot(t *testing.T) {
	columns := `{"format_version":"v1.0.0","columns":["Make_Audi","Make_BMW","Price"]}`
	p, err := LoadPreprocessor(writePreprocessor(t, oneHotEncoder, columns))
	require.NoError(t, err)

	out, _, err := p.Transform(features(t, "Price,Make\n1,BMW\n2,Audi\n3,Fiat\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"Make_Audi", "Make_BMW", "Price"}, out.Names())
	assert.Equal(t, []float64{0, 1, 0}, column(t, out, "Make_Audi"))
	assert.Equal(t, []float64{1, 0, 0}, column(t, out, "Make_BMW"))
	assert.Equal(t, []string{"Make_Audi", "Make_BMW"}, p.Encoder.OutputColumns("Make"))
}
