package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// Validator: validation and sanitization of inbound message payloads
type Validator struct {
	validate  *validator.Validate
	sanitizer *bluemonday.Policy
}

func NewValidator() *Validator {
	// removes all HTML/scripts
	policy := bluemonday.StrictPolicy()

	return &Validator{
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		sanitizer: policy,
	}
}

// DecodeEnvelope parses the outer frame of an inbound message.
func DecodeEnvelope(msg []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("missing message type")
	}
	return &env, nil
}

// DecodePayload unmarshals an envelope payload into target and validates
// its struct tags.
func (v *Validator) DecodePayload(env *Envelope, target interface{}) error {
	if len(env.Payload) == 0 {
		return fmt.Errorf("missing payload for %s", env.Type)
	}
	if err := json.Unmarshal(env.Payload, target); err != nil {
		return fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
	}
	if err := v.validate.Struct(target); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// ValidateDrawing validates drawing data against the tool's schema and
// returns a sanitized copy safe to relay.
func (v *Validator) ValidateDrawing(tool string, data map[string]interface{}) (map[string]interface{}, error) {
	// tool is in whitelist
	if !AllowedTools[tool] {
		return nil, fmt.Errorf("invalid tool: %s", tool)
	}

	// clear carries no geometry
	if tool == ToolClear {
		return nil, nil
	}

	schema := schemaForTool(tool)
	if schema == nil {
		return nil, fmt.Errorf("no schema found for tool: %s", tool)
	}

	// Convert map[string]interface{} to the typed schema struct
	if err := mapToStruct(data, schema); err != nil {
		return nil, fmt.Errorf("failed to parse drawing data: %w", err)
	}

	if err := v.validate.Struct(schema); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return nil, formatValidationErrors(validationErrors)
		}
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// Sanitize all string fields in the original data map
	return v.sanitizeMap(data), nil
}

// SanitizeString strips HTML/scripts from a single client-supplied string.
func (v *Validator) SanitizeString(s string) string {
	return v.sanitizer.Sanitize(s)
}

// mapToStruct: converts a map[string]interface{} to a typed struct using JSON marshaling
func mapToStruct(data map[string]interface{}, target interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	if err := json.Unmarshal(jsonData, target); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	return nil
}

// sanitizeMap recursively sanitizes all string values in a map
func (v *Validator) sanitizeMap(data map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})

	for key, value := range data {
		result[key] = v.sanitizeValue(value)
	}

	return result
}

// sanitizeValue sanitizes a value based on its type
func (v *Validator) sanitizeValue(value interface{}) interface{} {
	if value == nil {
		return nil
	}

	switch val := value.(type) {
	case string:
		return v.sanitizer.Sanitize(val)
	case map[string]interface{}:
		return v.sanitizeMap(val)
	case []interface{}:
		result := make([]interface{}, len(val))
		for i, item := range val {
			result[i] = v.sanitizeValue(item)
		}
		return result
	default:
		// numbers, bools, etc.
		return value
	}
}

// formatValidationErrors converts validator errors to a user-friendly error message
func formatValidationErrors(errors validator.ValidationErrors) error {
	var messages []string
	for _, err := range errors {
		messages = append(messages, formatSingleError(err))
	}
	return fmt.Errorf("validation failed: %s", messages[0])
}

func formatSingleError(err validator.FieldError) string {
	field := err.Field()
	tag := err.Tag()

	switch tag {
	case "required":
		return fmt.Sprintf("'%s' is required", field)
	case "min", "max":
		return fmt.Sprintf("'%s' value out of allowed range", field)
	case "startswith":
		return fmt.Sprintf("'%s' has an invalid prefix", field)
	default:
		return fmt.Sprintf("'%s' is invalid", field)
	}
}
