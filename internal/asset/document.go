package asset

// Document is the structured, hierarchical form of an asset's data as parsed
// from JSON: nested maps, slices, strings, float64 numbers, and bools.
type Document map[string]any

// GetString returns the string at key, or def when absent or mistyped.
func (d Document) GetString(key, def string) string {
	if v, ok := d[key].(string); ok {
		return v
	}
	return def
}

// GetFloat returns the number at key, or def when absent or mistyped.
// JSON numbers decode as float64.
func (d Document) GetFloat(key string, def float64) float64 {
	switch v := d[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return def
	}
}

// GetInt returns the number at key truncated to int, or def.
func (d Document) GetInt(key string, def int) int {
	switch v := d[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

// GetBool returns the bool at key, or def when absent or mistyped.
func (d Document) GetBool(key string, def bool) bool {
	if v, ok := d[key].(bool); ok {
		return v
	}
	return def
}

// GetStringSlice returns the string elements of the array at key.
// Non-string elements are skipped; a missing key yields nil.
func (d Document) GetStringSlice(key string) []string {
	raw, ok := d[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// GetStringMap returns the string-valued entries of the object at key.
func (d Document) GetStringMap(key string) map[string]string {
	raw, ok := d[key].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// GetMap returns the nested object at key, or nil.
func (d Document) GetMap(key string) Document {
	if v, ok := d[key].(map[string]any); ok {
		return Document(v)
	}
	return nil
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return Document(cloneValue(map[string]any(d)).(map[string]any))
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case Document:
		return cloneValue(map[string]any(val))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return val
	}
}
