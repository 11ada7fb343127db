package api

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema describes the expected shape of a response body.
type Schema struct {
	Name       string
	Definition map[string]any
}

func answerFields() map[string]any {
	props := map[string]any{
		"id":         map[string]any{"type": "integer", "minimum": 1},
		"created_at": map[string]any{"type": "string"},
	}
	required := []any{"id"}
	for i := 1; i <= 16; i++ {
		name := fmt.Sprintf("answer_%02d", i)
		props[name] = map[string]any{"type": "integer", "minimum": -2, "maximum": 2}
		required = append(required, name)
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func buckets(key string) map[string]any {
	return map[string]any{
		"type": []any{"array", "null"},
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				key:     map[string]any{"type": "number"},
				"count": map[string]any{"type": "integer", "minimum": 0},
			},
			"required": []any{key, "count"},
		},
	}
}

var userSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":       map[string]any{"type": "integer"},
		"username": map[string]any{"type": "string", "minLength": 1},
		"email":    map[string]any{"type": []any{"string", "null"}},
	},
	"required": []any{"id", "username"},
}

// LoginSchema validates POST /api/login.
var LoginSchema = &Schema{
	Name: "login",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"token": map[string]any{"type": "string", "minLength": 1},
			"user":  userSchema,
		},
		"required": []any{"token", "user"},
	},
}

// SubmitSchema validates POST /api/answers.
var SubmitSchema = &Schema{
	Name: "submit",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"answer_id": map[string]any{"type": "integer", "minimum": 1},
		},
		"required": []any{"answer_id"},
	},
}

// DistributionSchema validates GET /api/statistics/distribution/{id}.
var DistributionSchema = &Schema{
	Name: "distribution",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"distribution": buckets("radius"),
			"label": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"main_label":      map[string]any{"type": "string"},
					"sub_label":       map[string]any{"type": "string"},
					"full_label":      map[string]any{"type": "string"},
					"category_scores": map[string]any{"type": "object"},
					"sub_scores":      map[string]any{"type": "object"},
				},
				"required": []any{"main_label", "sub_label", "full_label", "category_scores", "sub_scores"},
			},
			// null when the server has no philosophers on record.
			"closest_philosopher": map[string]any{
				"type": []any{"object", "null"},
				"properties": map[string]any{
					"philosopher": map[string]any{"type": []any{"object", "null"}},
					"distance":    map[string]any{"type": "number"},
				},
			},
		},
		"required": []any{"distribution", "label"},
	},
}

// CategoryDistributionSchema validates
// GET /api/statistics/category-distribution/{id}.
var CategoryDistributionSchema = &Schema{
	Name: "category-distribution",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"logic":      buckets("score"),
			"ethics":     buckets("score"),
			"aesthetics": buckets("score"),
			"postmodern": buckets("score"),
		},
		"required": []any{"logic", "ethics", "aesthetics", "postmodern"},
	},
}

// AnswerRecordSchema validates GET /api/answers/me.
var AnswerRecordSchema = &Schema{
	Name:       "answer-record",
	Definition: answerFields(),
}

// schemaCache caches compiled JSON schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// validateBody checks raw JSON against schema. A nil schema always passes.
func validateBody(op string, schema *Schema, raw []byte) error {
	if schema == nil {
		return nil
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &InvalidResponseError{Op: op, Content: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	compiled, err := compiledSchema(schema)
	if err != nil {
		return &InvalidResponseError{Op: op, Content: raw, Err: fmt.Errorf("compile schema %q: %w", schema.Name, err)}
	}

	if err := compiled.Validate(parsed); err != nil {
		return &InvalidResponseError{Op: op, Content: raw, Err: fmt.Errorf("schema validation failed: %w", err)}
	}
	return nil
}

// compiledSchema returns a cached compiled schema or compiles and caches it.
func compiledSchema(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants a generic JSON value, not Go maps with typed slices.
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
