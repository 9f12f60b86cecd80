package frontmatter

import (
	"bytes"
	"context"
	"fmt"

	"github.com/adrg/frontmatter"
)

// Parser splits a content document into its frontmatter fields and body.
// YAML, TOML and JSON front matter blocks are recognized.
type Parser struct{}

func (Parser) Parse(ctx context.Context, data []byte) (map[string]any, []byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var fields map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(data), &fields)
	if err != nil {
		return nil, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, body, nil
}
