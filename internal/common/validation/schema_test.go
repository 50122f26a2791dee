package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_AnalyzeRequest(t *testing.T) {
	tests := []struct {
		name  string
		data  map[string]interface{}
		valid bool
	}{
		{
			name: "full body",
			data: map[string]interface{}{
				"epic":    map[string]interface{}{"name": "Billing", "description": "Fix invoices"},
				"stories": []interface{}{map[string]interface{}{"key": "B-1", "summary": "s", "intent": "billing"}},
				"tickets": []interface{}{map[string]interface{}{"intent": "billing", "subject": "x", "description": "y"}},
				"intents": []interface{}{"billing"},
			},
			valid: true,
		},
		{
			name:  "empty object",
			data:  map[string]interface{}{},
			valid: true,
		},
		{
			name: "null collections",
			data: map[string]interface{}{
				"stories": nil,
				"tickets": nil,
				"intents": nil,
			},
			valid: true,
		},
		{
			name: "null story intent",
			data: map[string]interface{}{
				"stories": []interface{}{map[string]interface{}{"key": "B-1", "summary": "s", "intent": nil}},
			},
			valid: true,
		},
		{
			name: "intents not an array",
			data: map[string]interface{}{
				"intents": "billing",
			},
			valid: false,
		},
		{
			name: "ticket subject not a string",
			data: map[string]interface{}{
				"tickets": []interface{}{map[string]interface{}{"subject": 42}},
			},
			valid: false,
		},
		{
			name: "unknown extra fields pass",
			data: map[string]interface{}{
				"intents": []interface{}{"billing"},
				"extra":   true,
			},
			valid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Validate(AnalyzeRequestSchema, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid)
			if !tt.valid {
				assert.NotEmpty(t, result.Errors)
			}
		})
	}
}

func TestValidate_SuggestRequest(t *testing.T) {
	result, err := Validate(SuggestRequestSchema, map[string]interface{}{
		"epic":            map[string]interface{}{"name": "Checkout"},
		"intents":         []interface{}{"billing"},
		"existingStories": nil,
		"tickets":         []interface{}{},
	})
	require.NoError(t, err)
	assert.True(t, result.Valid)

	result, err = Validate(SuggestRequestSchema, map[string]interface{}{
		"existingStories": "nope",
	})
	require.NoError(t, err)
	assert.False(t, result.Valid)
}
