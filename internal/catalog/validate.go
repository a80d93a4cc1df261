package catalog

import (
	"fmt"

	"github.com/vehement/assetdb/internal/asset"
)

// Validate checks a document against the schema and records findings on res.
// Missing required fields and constraint violations are errors; deprecated
// fields and fields the schema does not know are warnings.
func (s *Schema) Validate(doc asset.Document, res *asset.ValidationResult) {
	for _, field := range s.Required {
		if _, ok := doc[field]; !ok {
			res.AddError("missing required field %q", field)
		}
	}

	for field, value := range doc {
		if isMetadataField(field) {
			continue
		}
		prop, ok := s.Properties[field]
		if !ok {
			res.AddWarning("unknown field %q", field)
			continue
		}
		if prop.Deprecated {
			res.AddWarning("field %q is deprecated", field)
		}
		s.validateValue(field, value, prop, res)
	}
}

func (s *Schema) validateValue(field string, value any, prop *Property, res *asset.ValidationResult) {
	if prop.Type != "" && !matchesType(value, prop.Type) {
		res.AddError("field %q: expected %s, got %T", field, prop.Type, value)
		return
	}

	if len(prop.Enum) > 0 {
		str, ok := value.(string)
		if !ok || !contains(prop.Enum, str) {
			res.AddError("field %q: value %v not in %v", field, value, prop.Enum)
		}
	}

	if prop.Minimum != nil || prop.Maximum != nil {
		f, ok := toFloat(value)
		if !ok {
			return
		}
		if prop.Minimum != nil && f < *prop.Minimum {
			res.AddError("field %q: %s below minimum %s", field, formatNum(f), formatNum(*prop.Minimum))
		}
		if prop.Maximum != nil && f > *prop.Maximum {
			res.AddError("field %q: %s above maximum %s", field, formatNum(f), formatNum(*prop.Maximum))
		}
	}
}

// isMetadataField reports whether a top-level key belongs to asset metadata
// rather than the type's payload. Metadata keys are never schema violations.
func isMetadataField(key string) bool {
	switch key {
	case "type", "version", "name", "id", "description", "tags",
		"dependencies", "author", "created", "modified", "properties":
		return true
	}
	return false
}

func matchesType(value any, want string) bool {
	switch want {
	case "string":
		_, ok := value.(string)
		return ok
	case "number":
		_, ok := toFloat(value)
		return ok
	case "integer":
		f, ok := toFloat(value)
		return ok && f == float64(int64(f))
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "object":
		switch value.(type) {
		case map[string]any, asset.Document:
			return true
		}
		return false
	default:
		return true
	}
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func formatNum(f float64) string {
	return fmt.Sprintf("%g", f)
}
