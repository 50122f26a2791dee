// Package validation checks incoming request bodies against JSON schemas.
// This guards the HTTP boundary only; model output is never rejected here,
// it is sanitized field by field downstream.
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var epicSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"name":        map[string]interface{}{"type": "string"},
		"description": map[string]interface{}{"type": "string"},
	},
}

var storySchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"key":     map[string]interface{}{"type": "string"},
		"summary": map[string]interface{}{"type": "string"},
		"intent":  map[string]interface{}{"type": []string{"string", "null"}},
	},
}

var ticketSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"intent":      map[string]interface{}{"type": "string"},
		"subject":     map[string]interface{}{"type": "string"},
		"description": map[string]interface{}{"type": "string"},
	},
}

// Collection fields accept null: clients omit or null them freely and the
// pipeline treats both as empty.
var intentsSchema = map[string]interface{}{
	"type":  []string{"array", "null"},
	"items": map[string]interface{}{"type": "string"},
}

func listOf(item map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":  []string{"array", "null"},
		"items": item,
	}
}

// AnalyzeRequestSchema describes the analyze operation request body.
var AnalyzeRequestSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"epic":    epicSchema,
		"stories": listOf(storySchema),
		"tickets": listOf(ticketSchema),
		"intents": intentsSchema,
	},
}

// SuggestRequestSchema describes the suggest-stories operation request body.
var SuggestRequestSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"epic":            epicSchema,
		"intents":         intentsSchema,
		"existingStories": listOf(storySchema),
		"tickets":         listOf(ticketSchema),
	},
}

// Validate checks data against schemaMap and returns field-level errors.
func Validate(schemaMap map[string]interface{}, data interface{}) (*ValidationResult, error) {
	schemaLoader := gojsonschema.NewGoLoader(schemaMap)
	documentLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return out, nil
}
