// Package frame holds the immutable column-oriented table that flows between
// pipeline stages. Every operation returns a new Frame; columns are shared
// between frames and must never be modified after construction.
package frame

import (
	"fmt"
	"math"
	"strconv"

	"github.com/abhisek/leadscore/internal/failure"
)

// Kind is the runtime storage type of a column.
type Kind int

const (
	Number Kind = iota
	Text
)

func (k Kind) String() string {
	if k == Text {
		return "text"
	}
	return "number"
}

// Column is a named, typed vector of cells.
type Column struct {
	name    string
	kind    Kind
	nums    []float64
	text    []string // Text values, or the raw cells of a Number column read from CSV
	missing []bool
}

// NumberColumn builds a numeric column. NaN marks a missing value.
func NumberColumn(name string, values []float64) *Column {
	missing := make([]bool, len(values))
	for i, v := range values {
		missing[i] = math.IsNaN(v)
	}
	return &Column{name: name, kind: Number, nums: values, missing: missing}
}

// TextColumn builds a text column with no missing values.
func TextColumn(name string, values []string) *Column {
	return &Column{name: name, kind: Text, text: values, missing: make([]bool, len(values))}
}

func (c *Column) Name() string { return c.name }
func (c *Column) Kind() Kind   { return c.kind }

func (c *Column) Len() int {
	if c.kind == Number {
		return len(c.nums)
	}
	return len(c.text)
}

// Float returns the numeric value at row i. Text columns return NaN.
func (c *Column) Float(i int) float64 {
	if c.kind != Number {
		return math.NaN()
	}
	return c.nums[i]
}

// String returns the cell at row i as text. Cells read from a file keep
// their original spelling; computed numbers use the shortest representation.
func (c *Column) String(i int) string {
	if c.text != nil {
		return c.text[i]
	}
	v := c.nums[i]
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// IsMissing reports whether the cell at row i was empty or a NA marker.
func (c *Column) IsMissing(i int) bool { return c.missing[i] }

// Frame is an ordered set of equal-length columns.
type Frame struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// New assembles a frame, checking that names are unique and lengths match.
func New(cols ...*Column) (*Frame, error) {
	f := &Frame{index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if _, dup := f.index[c.name]; dup {
			return nil, failure.Schema("frame", "duplicate column %q", c.name)
		}
		if i == 0 {
			f.rows = c.Len()
		} else if c.Len() != f.rows {
			return nil, failure.Cardinality("frame", "column %q has %d rows, want %d", c.name, c.Len(), f.rows)
		}
		f.index[c.name] = i
		f.cols = append(f.cols, c)
	}
	return f, nil
}

// Len returns the number of rows.
func (f *Frame) Len() int { return f.rows }

// Width returns the number of columns.
func (f *Frame) Width() int { return len(f.cols) }

// Names returns the column names in order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.name
	}
	return names
}

// Has reports whether a column named name exists.
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column looks a column up by name.
func (f *Frame) Column(name string) (*Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

// Columns returns the columns in order.
func (f *Frame) Columns() []*Column {
	return append([]*Column(nil), f.cols...)
}

// TextColumns returns the names of columns whose runtime type is Text.
func (f *Frame) TextColumns() []string {
	var names []string
	for _, c := range f.cols {
		if c.kind == Text {
			names = append(names, c.name)
		}
	}
	return names
}

// With returns a frame where each given column replaces the existing
// column of the same name in place, or is appended when new. A frame with
// no columns keeps its row count.
func (f *Frame) With(cols ...*Column) (*Frame, error) {
	out := append([]*Column(nil), f.cols...)
	pos := make(map[string]int, len(f.index))
	for k, v := range f.index {
		pos[k] = v
	}
	for _, c := range cols {
		if i, ok := pos[c.name]; ok {
			out[i] = c
			continue
		}
		pos[c.name] = len(out)
		out = append(out, c)
	}
	if len(out) == 0 {
		return &Frame{index: make(map[string]int), rows: f.rows}, nil
	}
	nf, err := New(out...)
	if err != nil {
		return nil, err
	}
	if len(f.cols) == 0 && f.rows > 0 && nf.rows != f.rows {
		return nil, failure.Cardinality("frame", "column %q has %d rows, want %d", out[0].name, nf.rows, f.rows)
	}
	return nf, nil
}

// Without returns a frame lacking the named columns. Unknown names are ignored.
func (f *Frame) Without(names ...string) *Frame {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := &Frame{index: make(map[string]int), rows: f.rows}
	for _, c := range f.cols {
		if drop[c.name] {
			continue
		}
		out.index[c.name] = len(out.cols)
		out.cols = append(out.cols, c)
	}
	return out
}

// Reindex returns a frame with exactly the given columns in the given
// order. Columns absent from f are created as numeric columns holding fill;
// columns of f not listed are dropped.
func (f *Frame) Reindex(names []string, fill float64) (*Frame, error) {
	cols := make([]*Column, 0, len(names))
	for _, n := range names {
		if c, ok := f.Column(n); ok {
			cols = append(cols, c)
			continue
		}
		vals := make([]float64, f.rows)
		for i := range vals {
			vals[i] = fill
		}
		cols = append(cols, NumberColumn(n, vals))
	}
	out, err := New(cols...)
	if err != nil {
		return nil, err
	}
	// A frame reindexed to zero columns still has f's rows.
	out.rows = f.rows
	return out, nil
}

// Concat joins other's columns after f's, aligning rows by position.
func (f *Frame) Concat(other *Frame) (*Frame, error) {
	if f.rows != other.rows {
		return nil, failure.Cardinality("concat", "left has %d rows, right has %d", f.rows, other.rows)
	}
	cols := append(f.Columns(), other.cols...)
	out, err := New(cols...)
	if err != nil {
		return nil, err
	}
	out.rows = f.rows
	return out, nil
}

// Matrix returns the frame as row-major float64 features. Every column
// must be numeric.
func (f *Frame) Matrix() ([][]float64, error) {
	for _, c := range f.cols {
		if c.kind != Number {
			return nil, failure.Schema("matrix", "column %q is %s, want number", c.name, c.kind)
		}
	}
	X := make([][]float64, f.rows)
	for i := range X {
		row := make([]float64, len(f.cols))
		for j, c := range f.cols {
			row[j] = c.nums[i]
		}
		X[i] = row
	}
	return X, nil
}

// String describes the frame's shape.
func (f *Frame) String() string {
	return fmt.Sprintf("frame(%d rows x %d columns)", f.rows, len(f.cols))
}
