package frame

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abhisek/leadscore/internal/failure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const leadsCSV = `LeadID,Make,Price,FinanceApplied,Flag,Notes
L1,Audi,25000.50,1,True,
L2,BMW,NA,0,False,call back
L3,Audi,18000,1,True,
`

func readString(t *testing.T, s string) *Frame {
	t.Helper()
	f, err := Read(strings.NewReader(s))
	require.NoError(t, err)
	return f
}

func TestReadInfersKinds(t *testing.T) {
	f := readString(t, leadsCSV)

	assert.Equal(t, 3, f.Len())
	assert.Equal(t, []string{"LeadID", "Make", "Price", "FinanceApplied", "Flag", "Notes"}, f.Names())
	assert.Equal(t, []string{"LeadID", "Make", "Notes"}, f.TextColumns())

	price, ok := f.Column("Price")
	require.True(t, ok)
	assert.Equal(t, Number, price.Kind())
	assert.Equal(t, 25000.5, price.Float(0))
	assert.True(t, math.IsNaN(price.Float(1)))
	assert.True(t, price.IsMissing(1))

	flag, _ := f.Column("Flag")
	assert.Equal(t, Number, flag.Kind())
	assert.Equal(t, 0.0, flag.Float(1))
}

func TestReadPreservesRawCells(t *testing.T) {
	f := readString(t, leadsCSV)

	var buf bytes.Buffer
	require.NoError(t, f.WriteCSV(&buf))
	assert.Equal(t, leadsCSV, buf.String())
}

func TestReadStripsBOM(t *testing.T) {
	f := readString(t, "\ufeffLeadID,Score\nL1,3\n")
	assert.True(t, f.Has("LeadID"))
}

func TestReadEmptyInput(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrValue))
}

func TestReadRaggedRows(t *testing.T) {
	_, err := Read(strings.NewReader("a,b\n1,2\n3\n"))
	require.Error(t, err)
}

func TestReadDuplicateHeader(t *testing.T) {
	_, err := Read(strings.NewReader("a,a\n1,2\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrSchema))
}

func TestReadCSVMissingFile(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrNotFound))
}

func TestReadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.csv")
	require.NoError(t, os.WriteFile(path, []byte(leadsCSV), 0o600))

	f, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 3, f.Len())
}

func TestReindexShape(t *testing.T) {
	f := readString(t, leadsCSV)
	expected := []string{"Price", "Missing", "FinanceApplied"}

	out, err := f.Reindex(expected, 0)
	require.NoError(t, err)
	assert.Equal(t, expected, out.Names())
	assert.Equal(t, 3, out.Len())

	missing, _ := out.Column("Missing")
	for i := 0; i < out.Len(); i++ {
		assert.Equal(t, 0.0, missing.Float(i))
	}

	again, err := out.Reindex(expected, 0)
	require.NoError(t, err)
	assert.Equal(t, out.Names(), again.Names())
}

func TestReindexEmptyList(t *testing.T) {
	f := readString(t, leadsCSV)
	out, err := f.Reindex(nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Width())
	assert.Equal(t, 3, out.Len())
}

func TestWithReplacesInPlace(t *testing.T) {
	f := readString(t, leadsCSV)
	out, err := f.With(NumberColumn("Make", []float64{0, 1, 0}), NumberColumn("Extra", []float64{1, 1, 1}))
	require.NoError(t, err)

	assert.Equal(t, []string{"LeadID", "Make", "Price", "FinanceApplied", "Flag", "Notes", "Extra"}, out.Names())
	mk, _ := out.Column("Make")
	assert.Equal(t, Number, mk.Kind())

	orig, _ := f.Column("Make")
	assert.Equal(t, Text, orig.Kind(), "source frame must be unchanged")
}

func TestWithLengthMismatch(t *testing.T) {
	f := readString(t, leadsCSV)
	_, err := f.With(NumberColumn("Short", []float64{1}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrCardinality))
}

func TestWithout(t *testing.T) {
	f := readString(t, leadsCSV)
	out := f.Without("LeadID", "NotThere")
	assert.Equal(t, []string{"Make", "Price", "FinanceApplied", "Flag", "Notes"}, out.Names())
	assert.True(t, f.Has("LeadID"))
}

func TestWithKeepsRowsOfEmptyFrame(t *testing.T) {
	f, err := New(NumberColumn("a", []float64{1, 2, 3}))
	require.NoError(t, err)
	empty := f.Without("a")
	require.Equal(t, 0, empty.Width())

	out, err := empty.With()
	require.NoError(t, err)
	assert.Equal(t, 3, out.Len())

	out, err = empty.With(NumberColumn("b", []float64{7, 8, 9}))
	require.NoError(t, err)
	assert.Equal(t, 3, out.Len())

	_, err = empty.With(NumberColumn("c", []float64{1}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrCardinality))

	reindexed, err := empty.Reindex([]string{"x", "y"}, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, reindexed.Len())
}

func TestConcat(t *testing.T) {
	left := readString(t, "a\n1\n2\n")
	right, err := New(NumberColumn("p", []float64{0.1, 0.9}), TextColumn("t", []string{"Low", "High"}))
	require.NoError(t, err)

	out, err := left.Concat(right)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "p", "t"}, out.Names())

	var buf bytes.Buffer
	require.NoError(t, out.WriteCSV(&buf))
	assert.Equal(t, "a,p,t\n1,0.1,Low\n2,0.9,High\n", buf.String())
}

func TestConcatRowMismatch(t *testing.T) {
	left := readString(t, "a\n1\n2\n")
	right, err := New(NumberColumn("p", []float64{0.1}))
	require.NoError(t, err)

	_, err = left.Concat(right)
	assert.True(t, errors.Is(err, failure.ErrCardinality))
}

func TestMatrixRejectsText(t *testing.T) {
	f := readString(t, leadsCSV)
	_, err := f.Matrix()
	assert.True(t, errors.Is(err, failure.ErrSchema))

	X, err := f.Without(f.TextColumns()...).Matrix()
	require.NoError(t, err)
	require.Len(t, X, 3)
	assert.Equal(t, []float64{18000, 1, 1}, X[2])
}
