package tool

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidateInput checks tool arguments against the tool's parameter schema.
// Only the subset of JSON Schema the built-in tools declare is understood:
// required fields, primitive types, array items and nested objects.
// Unknown fields are allowed.
func ValidateInput(schema map[string]interface{}, input json.RawMessage) error {
	var inputMap map[string]interface{}
	if err := json.Unmarshal(input, &inputMap); err != nil {
		return fmt.Errorf("arguments must be a JSON object: %w", err)
	}
	if inputMap == nil {
		inputMap = map[string]interface{}{}
	}

	return validateObject(schema, inputMap)
}

func requiredFields(schema map[string]interface{}) []string {
	switch required := schema["required"].(type) {
	case []string:
		return required
	case []interface{}:
		fields := make([]string, 0, len(required))
		for _, field := range required {
			if name, ok := field.(string); ok {
				fields = append(fields, name)
			}
		}
		return fields
	}
	return nil
}

func validateObject(schema map[string]interface{}, input map[string]interface{}) error {
	for _, field := range requiredFields(schema) {
		if _, exists := input[field]; !exists {
			return fmt.Errorf("missing required field: %s", field)
		}
	}

	properties, ok := schema["properties"].(map[string]interface{})
	if !ok {
		return nil
	}

	for key, value := range input {
		propSchema, ok := properties[key].(map[string]interface{})
		if !ok {
			continue
		}
		if err := validateType(key, propSchema, value); err != nil {
			return err
		}
	}

	return nil
}

func validateType(fieldName string, schema map[string]interface{}, value interface{}) error {
	expectedType, ok := schema["type"].(string)
	if !ok {
		return nil
	}

	switch expectedType {
	case "string":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("field '%s' expected string, got %T", fieldName, value)
		}
		if minLen := intValue(schema["minLength"]); minLen > 0 && utf8.RuneCountInString(strings.TrimSpace(s)) < minLen {
			if minLen == 1 {
				return fmt.Errorf("field '%s' must not be empty", fieldName)
			}
			return fmt.Errorf("field '%s' must be at least %d characters", fieldName, minLen)
		}
	case "number", "integer":
		if _, ok := value.(float64); !ok {
			return fmt.Errorf("field '%s' expected number, got %T", fieldName, value)
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("field '%s' expected boolean, got %T", fieldName, value)
		}
	case "array":
		arr, ok := value.([]interface{})
		if !ok {
			return fmt.Errorf("field '%s' expected array, got %T", fieldName, value)
		}
		if itemsSchema, ok := schema["items"].(map[string]interface{}); ok {
			for i, item := range arr {
				if err := validateType(fmt.Sprintf("%s[%d]", fieldName, i), itemsSchema, item); err != nil {
					return err
				}
			}
		}
	case "object":
		obj, ok := value.(map[string]interface{})
		if !ok {
			return fmt.Errorf("field '%s' expected object, got %T", fieldName, value)
		}
		return validateObject(schema, obj)
	}

	return nil
}

func intValue(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}
