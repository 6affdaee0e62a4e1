package tool

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateInput(t *testing.T) {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"url": map[string]interface{}{
				"type":      "string",
				"minLength": 1,
			},
			"limit": map[string]interface{}{
				"type": "integer",
			},
			"domains": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "string",
				},
			},
		},
		"required": []string{"url"},
	}

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid input", input: `{"url": "https://example.com", "limit": 3, "domains": ["example.com"]}`},
		{name: "missing required field", input: `{"limit": 3}`, wantErr: true},
		{name: "blank required string", input: `{"url": "   "}`, wantErr: true},
		{name: "wrong primitive type", input: `{"url": 42}`, wantErr: true},
		{name: "invalid array item type", input: `{"url": "https://example.com", "domains": [123]}`, wantErr: true},
		{name: "extra fields allowed", input: `{"url": "https://example.com", "extra": "field"}`},
		{name: "not an object", input: `["https://example.com"]`, wantErr: true},
		{name: "null arguments", input: `null`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInput(schema, json.RawMessage(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateInput_RequiredAsInterfaceSlice(t *testing.T) {
	var schema map[string]interface{}
	err := json.Unmarshal([]byte(`{"type":"object","properties":{"q":{"type":"string"}},"required":["q"]}`), &schema)
	assert.NoError(t, err)

	assert.Error(t, ValidateInput(schema, json.RawMessage(`{}`)))
	assert.NoError(t, ValidateInput(schema, json.RawMessage(`{"q":"agents"}`)))
}

func TestValidateInput_MinLengthCountsRunes(t *testing.T) {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"q": map[string]interface{}{"type": "string", "minLength": 3},
		},
	}

	assert.NoError(t, ValidateInput(schema, json.RawMessage(`{"q": "日本語"}`)))
	err := ValidateInput(schema, json.RawMessage(`{"q": " ab "}`))
	assert.EqualError(t, err, "field 'q' must be at least 3 characters")
}
