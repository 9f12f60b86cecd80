package canonicaljson

import (
	"context"
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Canonicalizer produces RFC 8785 canonical JSON so equal entries always
// hash the same.
type Canonicalizer struct{}

func (Canonicalizer) Canonicalize(ctx context.Context, input []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	value := jsontext.Value(append([]byte(nil), input...))
	if err := value.Canonicalize(); err != nil {
		return nil, fmt.Errorf("canonicalize json: %w", err)
	}

	return []byte(value), nil
}

// EncodeFields marshals validated entry fields and canonicalizes the result.
// Dates are written in RFC 3339 form and invalid UTF-8 is replaced.
func (c Canonicalizer) EncodeFields(ctx context.Context, fields map[string]any) ([]byte, error) {
	data, err := json.Marshal(fields, jsontext.AllowInvalidUTF8(true))
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	return c.Canonicalize(ctx, data)
}
