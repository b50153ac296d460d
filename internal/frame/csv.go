package frame

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/abhisek/leadscore/internal/failure"
)

// Cells treated as missing when reading a file.
var missingMarkers = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"n/a":  true,
	"NaN":  true,
	"nan":  true,
	"NULL": true,
	"null": true,
	"None": true,
	"<NA>": true,
}

var boolValues = map[string]float64{
	"True": 1, "TRUE": 1, "true": 1,
	"False": 0, "FALSE": 0, "false": 0,
}

// ReadCSV reads a CSV file with a header row into a Frame.
func ReadCSV(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, failure.NotFound("read csv", "input file not found at: %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	f, err := Read(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return f, nil
}

// Read parses CSV with a header row. A column is numeric when every
// non-missing cell parses as a number (or every cell is a boolean literal);
// otherwise it is text. Raw cells are preserved for both kinds.
func Read(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err == io.EOF {
		return nil, failure.Value("read csv", "input has no header row")
	}
	if err != nil {
		return nil, failure.Wrap(failure.KindValue, "read csv", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	header = append([]string(nil), header...)

	cells := make([][]string, len(header))
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, failure.Wrap(failure.KindValue, "read csv", err)
		}
		for j, v := range rec {
			cells[j] = append(cells[j], v)
		}
	}

	cols := make([]*Column, len(header))
	for j, name := range header {
		cols[j] = inferColumn(name, cells[j])
	}
	f, err := New(cols...)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func inferColumn(name string, raw []string) *Column {
	if raw == nil {
		raw = []string{}
	}
	missing := make([]bool, len(raw))
	for i, v := range raw {
		missing[i] = missingMarkers[strings.TrimSpace(v)]
	}

	if nums, ok := parseNumbers(raw, missing); ok {
		return &Column{name: name, kind: Number, nums: nums, text: raw, missing: missing}
	}
	if nums, ok := parseBools(raw, missing); ok {
		return &Column{name: name, kind: Number, nums: nums, text: raw, missing: missing}
	}
	return &Column{name: name, kind: Text, text: raw, missing: missing}
}

func parseNumbers(raw []string, missing []bool) ([]float64, bool) {
	nums := make([]float64, len(raw))
	for i, v := range raw {
		if missing[i] {
			nums[i] = math.NaN()
			continue
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, false
		}
		nums[i] = n
	}
	return nums, true
}

func parseBools(raw []string, missing []bool) ([]float64, bool) {
	nums := make([]float64, len(raw))
	seen := false
	for i, v := range raw {
		if missing[i] {
			// A boolean column with gaps is text.
			return nil, false
		}
		b, ok := boolValues[strings.TrimSpace(v)]
		if !ok {
			return nil, false
		}
		nums[i] = b
		seen = true
	}
	return nums, seen
}

// WriteCSV writes the header and every row of f.
func (f *Frame) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.Names()); err != nil {
		return err
	}
	rec := make([]string, len(f.cols))
	for i := 0; i < f.rows; i++ {
		for j, c := range f.cols {
			rec[j] = c.String(i)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
