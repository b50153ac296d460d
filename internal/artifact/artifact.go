// Package artifact loads the JSON documents produced at training time
// (encoder, expected columns, model) and validates them before decoding.
package artifact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/abhisek/leadscore/internal/failure"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
)

// SupportedMajor is the artifact format major version this build reads.
const SupportedMajor = "v1"

// Schema names and defines the JSON schema of one artifact type.
type Schema struct {
	Name       string
	Definition map[string]any
}

// VersionProperty is the schema fragment every artifact uses for its
// format_version field.
var VersionProperty = map[string]any{
	"type":    "string",
	"pattern": "^v[0-9]+(\\.[0-9]+){0,2}$",
}

// schemaCache caches compiled JSON schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// Decode reads the artifact at path, validates it against schema, checks
// its format_version and unmarshals it into v.
func Decode(path string, schema *Schema, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return failure.NotFound("load "+schema.Name, "artifact not found at: %s", path)
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := Validate(schema, raw); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return failure.Wrap(failure.KindValue, "decode "+schema.Name, err)
	}
	return nil
}

// Validate checks raw JSON against schema and the supported format version.
func Validate(schema *Schema, raw []byte) error {
	op := "validate " + schema.Name

	parsed, err := conform(op, schema, raw)
	if err != nil {
		return err
	}

	doc, _ := parsed.(map[string]any)
	version, _ := doc["format_version"].(string)
	return CheckVersion(op, version)
}

// ValidateFragment checks raw JSON against schema only. It is used for
// nested documents, such as model parameters, that carry no version.
func ValidateFragment(schema *Schema, raw []byte) error {
	_, err := conform("validate "+schema.Name, schema, raw)
	return err
}

func conform(op string, schema *Schema, raw []byte) (any, error) {
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, failure.Value(op, "invalid JSON: %v", err)
	}

	compiled, err := getCompiledSchema(schema)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", schema.Name, err)
	}
	if err := compiled.Validate(parsed); err != nil {
		return nil, failure.Value(op, "schema validation failed: %v", err)
	}
	return parsed, nil
}

// CheckVersion accepts any valid semantic version with the supported major.
func CheckVersion(op, version string) error {
	if !semver.IsValid(version) {
		return failure.Value(op, "format_version %q is not a semantic version", version)
	}
	if semver.Major(version) != SupportedMajor {
		return failure.Value(op, "format_version %s is not supported (want %s.x)", version, SupportedMajor)
	}
	return nil
}

// getCompiledSchema returns a cached compiled schema or compiles and caches it.
func getCompiledSchema(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The jsonschema library expects a parsed JSON value (any), not Go maps
	// with typed slices, so round-trip through encoding/json.
	defBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	defParsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(defBytes))
	if err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(schemaURL, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}

	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(schema.Name, compiled)
	return compiled, nil
}
