package encoding

import "github.com/abhisek/leadscore/internal/artifact"

// EncoderSchema defines the JSON schema of encoder.json.
var EncoderSchema = &artifact.Schema{
	Name: "categorical-encoder",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"format_version": artifact.VersionProperty,
			"kind": map[string]any{
				"type": "string",
				"enum": []any{string(KindOrdinal), string(KindOneHot)},
			},
			"columns": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string", "minLength": 1},
				"uniqueItems": true,
				"description": "Categorical columns the encoder was fitted on, fixed at training time",
			},
			"categories": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"minItems":    1,
					"uniqueItems": true,
				},
			},
			"handle_unknown": map[string]any{
				"type": "string",
				"enum": []any{string(UnknownError), string(UnknownUseEncodedValue), string(UnknownIgnore)},
			},
			"unknown_value": map[string]any{"type": "number"},
		},
		"required":             []any{"format_version", "kind", "columns", "categories"},
		"additionalProperties": false,
	},
}

// ExpectedColumnsSchema defines the JSON schema of expected_columns.json.
var ExpectedColumnsSchema = &artifact.Schema{
	Name: "expected-columns",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"format_version": artifact.VersionProperty,
			"columns": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string", "minLength": 1},
				"minItems":    1,
				"uniqueItems": true,
			},
		},
		"required":             []any{"format_version", "columns"},
		"additionalProperties": false,
	},
}
