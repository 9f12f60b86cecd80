package schema

import (
	"fmt"
	"math"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Normalize converts a decoded frontmatter record into plain JSON values.
// YAML maps with non-string keys are flattened to string keys and dates are
// rendered as RFC 3339 strings.
func Normalize(record map[string]any) (map[string]any, error) {
	normalized, err := NormalizeValue(record)
	if err != nil {
		return nil, err
	}
	out, _ := normalized.(map[string]any)
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// NormalizeValue converts a single frontmatter value into its JSON form.
// Invalid UTF-8 in strings is replaced rather than rejected; Markdown files
// are not guaranteed to be well-formed text.
func NormalizeValue(value any) (any, error) {
	data, err := json.Marshal(prepareValue(value), jsontext.AllowInvalidUTF8(true))
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return out, nil
}

func prepareValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = prepareValue(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = prepareValue(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = prepareValue(item)
		}
		return out
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case *time.Time:
		if v == nil {
			return nil
		}
		return v.Format(time.RFC3339Nano)
	case float64:
		// Non-finite numbers have no JSON form.
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return v
	default:
		return v
	}
}
