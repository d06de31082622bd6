package engine

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a named JSON Schema document.
type Schema struct {
	Name       string
	Definition map[string]any
}

var statusEnum = []any{"not_started", "in_progress", "completed"}

// EnvelopeSchema validates the outer export document.
var EnvelopeSchema = &Schema{
	Name: "export-envelope",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"version":    map[string]any{"type": "string", "minLength": 1},
			"kind":       map[string]any{"type": "string", "enum": []any{string(KindProgress), string(KindBookmarks), string(KindEvents)}},
			"exportedAt": map[string]any{"type": "string"},
			"data":       map[string]any{},
		},
		"required": []any{"version", "kind", "data"},
	},
}

// ProgressSchema validates the data of a progress export.
var ProgressSchema = &Schema{
	Name: "progress-data",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"modules": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"moduleId":             map[string]any{"type": "string"},
						"pathId":               map[string]any{"type": "string", "minLength": 1},
						"status":               map[string]any{"type": "string", "enum": statusEnum},
						"completionPercentage": map[string]any{"type": "number", "minimum": 0, "maximum": 100},
						"timeSpentMinutes":     map[string]any{"type": "integer", "minimum": 0},
						"attempts":             map[string]any{"type": "integer", "minimum": 0},
						"score":                map[string]any{"type": "number"},
					},
					"required": []any{"pathId", "status", "completionPercentage"},
				},
			},
			"paths": map[string]any{"type": "object"},
		},
		"required": []any{"modules"},
	},
}

// BookmarksSchema validates the data of a bookmarks export.
var BookmarksSchema = &Schema{
	Name: "bookmarks-data",
	Definition: map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"moduleId":  map[string]any{"type": "string", "minLength": 1},
				"pathId":    map[string]any{"type": "string"},
				"note":      map[string]any{"type": "string"},
				"createdAt": map[string]any{"type": "string"},
			},
			"required": []any{"moduleId", "pathId", "createdAt"},
		},
	},
}

// EventsSchema validates the data of an events export.
var EventsSchema = &Schema{
	Name: "events-data",
	Definition: map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":        map[string]any{"type": "string"},
				"type":      map[string]any{"type": "string", "enum": []any{"module_started", "module_completed", "path_started", "path_completed"}},
				"moduleId":  map[string]any{"type": "string"},
				"pathId":    map[string]any{"type": "string", "minLength": 1},
				"timestamp": map[string]any{"type": "string"},
				"score":     map[string]any{"type": "number"},
				"timeSpent": map[string]any{"type": "integer", "minimum": 0},
			},
			"required": []any{"type", "pathId", "timestamp"},
		},
	},
}

// schemaCache caches compiled JSON schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// validate checks raw JSON against schema.
func validate(schema *Schema, raw json.RawMessage) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	compiled, err := compiledSchema(schema)
	if err != nil {
		return fmt.Errorf("compile schema %q: %w", schema.Name, err)
	}

	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// compiledSchema returns a cached compiled schema or compiles and caches it.
func compiledSchema(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants plain decoded JSON, not Go maps with typed slices.
	defBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
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
