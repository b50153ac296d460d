package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/abhisek/leadscore/internal/failure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = &Schema{
	Name: "test-artifact",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"format_version": VersionProperty,
			"columns": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"minItems": 1,
			},
		},
		"required": []any{"format_version", "columns"},
	},
}

type testDoc struct {
	FormatVersion string   `json:"format_version"`
	Columns       []string `json:"columns"`
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "artifact.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDecodeValid(t *testing.T) {
	path := writeFile(t, `{"format_version":"v1.2.0","columns":["a","b"]}`)

	var doc testDoc
	require.NoError(t, Decode(path, testSchema, &doc))
	assert.Equal(t, []string{"a", "b"}, doc.Columns)
}

func TestDecodeMissingFile(t *testing.T) {
	var doc testDoc
	err := Decode(filepath.Join(t.TempDir(), "missing.json"), testSchema, &doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrNotFound))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"format_version":"v1","columns":["x"]}`, false},
		{"minor version", `{"format_version":"v1.9.3","columns":["x"]}`, false},
		{"missing columns", `{"format_version":"v1.0.0"}`, true},
		{"empty columns", `{"format_version":"v1.0.0","columns":[]}`, true},
		{"wrong item type", `{"format_version":"v1.0.0","columns":[1]}`, true},
		{"unsupported major", `{"format_version":"v2.0.0","columns":["x"]}`, true},
		{"bad version", `{"format_version":"one","columns":["x"]}`, true},
		{"malformed json", `{not json}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(testSchema, []byte(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, failure.ErrValue), "got %v", err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCheckVersion(t *testing.T) {
	assert.NoError(t, CheckVersion("op", "v1.0.0"))
	assert.Error(t, CheckVersion("op", ""))
	assert.Error(t, CheckVersion("op", "v0.9.0"))
}

func TestValidateFragment(t *testing.T) {
	fragment := &Schema{
		Name: "test-fragment",
		Definition: map[string]any{
			"type":     "object",
			"required": []any{"weight"},
			"properties": map[string]any{
				"weight": map[string]any{"type": "number"},
			},
		},
	}

	assert.NoError(t, ValidateFragment(fragment, []byte(`{"weight":0.5}`)))

	err := ValidateFragment(fragment, []byte(`{"weight":"heavy"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrValue))
}
