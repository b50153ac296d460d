// Package merge joins predictions back onto the original lead records and
// writes the final output file.
package merge

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abhisek/leadscore/internal/failure"
	"github.com/abhisek/leadscore/internal/frame"
	"github.com/abhisek/leadscore/internal/priority"
)

// Summary describes a written output file.
type Summary struct {
	Total        int
	Columns      []string
	Distribution priority.Distribution
	OutputPath   string
}

// Merge re-reads the original records at originalPath, appends the
// prediction columns by row position and writes the result to outputPath.
// Original cells are written back exactly as read. Nothing is written if
// the row counts differ.
func Merge(originalPath string, predictions *frame.Frame, outputPath string) (*Summary, error) {
	original, err := frame.ReadCSV(originalPath)
	if err != nil {
		return nil, err
	}

	if original.Len() != predictions.Len() {
		return nil, failure.Cardinality("merge", "mismatch: %d original records but %d predictions", original.Len(), predictions.Len())
	}
	for _, name := range predictions.Names() {
		if original.Has(name) {
			return nil, failure.Schema("merge", "original data already has a %s column", name)
		}
	}

	merged, err := original.Concat(predictions)
	if err != nil {
		return nil, err
	}
	if err := WriteCSV(outputPath, merged); err != nil {
		return nil, err
	}

	dist := priority.NewDistribution()
	if col, ok := predictions.Column(priority.LevelColumn); ok {
		for i := 0; i < col.Len(); i++ {
			dist.Add(priority.Level(col.String(i)))
		}
	}

	return &Summary{
		Total:        merged.Len(),
		Columns:      merged.Names(),
		Distribution: dist,
		OutputPath:   outputPath,
	}, nil
}

// WriteCSV writes f to a temp file next to path and renames it into
// place, creating parent directories as needed. A failed write leaves any
// existing file at path untouched.
func WriteCSV(path string, f *frame.Frame) error {
	if err := writeAtomic(path, f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeAtomic(path string, f *frame.Frame) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if err := f.WriteCSV(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
