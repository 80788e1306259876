package tool

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/mitchellh/mapstructure"
)

// ValidationError reports arguments that do not satisfy a tool's schema.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid arguments: %s", e.Reason)
	}
	return fmt.Sprintf("invalid argument %q: %s", e.Field, e.Reason)
}

// InvalidInput marks the error as caused by model input.
func (e *ValidationError) InvalidInput() bool { return true }

// Validate checks required keys and top-level types of args against s.
// Unknown keys are ignored.
func (s *Schema) Validate(args map[string]any) error {
	if s == nil {
		return nil
	}
	for _, name := range s.Required {
		v, ok := args[name]
		if !ok || v == nil {
			return &ValidationError{Field: name, Reason: "is required"}
		}
	}
	for name, v := range args {
		prop, ok := s.Properties[name]
		if !ok || v == nil {
			continue
		}
		if !matchesType(prop.Type, v) {
			return &ValidationError{Field: name, Reason: fmt.Sprintf("expected %s, got %T", prop.Type, v)}
		}
		if len(prop.Enum) > 0 {
			str, _ := v.(string)
			if !slices.Contains(prop.Enum, str) {
				return &ValidationError{Field: name, Reason: fmt.Sprintf("must be one of %v", prop.Enum)}
			}
		}
	}
	return nil
}

func matchesType(t Type, v any) bool {
	switch t {
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeBoolean:
		_, ok := v.(bool)
		return ok
	case TypeNumber:
		switch v.(type) {
		case float64, float32, int, int64, json.Number:
			return true
		}
		return false
	case TypeInteger:
		switch n := v.(type) {
		case int, int64, int32:
			return true
		case float64:
			return n == float64(int64(n))
		case json.Number:
			_, err := n.Int64()
			return err == nil
		}
		return false
	case TypeArray:
		_, ok := v.([]any)
		return ok
	case TypeObject:
		_, ok := v.(map[string]any)
		return ok
	default:
		return true
	}
}

// DecodeArgs decodes model-supplied arguments into a typed request struct.
// Struct fields are matched by their json tag.
func DecodeArgs(args map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(args); err != nil {
		return &ValidationError{Reason: err.Error()}
	}
	return nil
}
