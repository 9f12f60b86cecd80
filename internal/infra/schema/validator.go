package schema

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	collectionapp "github.com/osvaldoandrade/contentschema/internal/app/collection"
	"github.com/osvaldoandrade/contentschema/internal/domain"
)

// JSONSchemaCompiler compiles collection schemas written in JSON Schema
// draft 2020-12.
type JSONSchemaCompiler struct{}

func (JSONSchemaCompiler) Compile(ctx context.Context, name string, schema []byte) (collectionapp.StructureChecker, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resource := name + ".schema.json"
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(resource, bytes.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	compiled, err := compiler.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return &Checker{schema: compiled}, nil
}

type Checker struct {
	schema *jsonschema.Schema
}

// Check validates the declared properties of record. Undeclared keys are
// stripped before anything else looks at them, and a declared value with no
// JSON form is reported as a type issue on its own path.
func (c *Checker) Check(record map[string]any) ([]domain.FieldIssue, error) {
	doc := make(map[string]any, len(record))
	collector := issueCollector{schema: c.schema, doc: doc, seen: make(map[string]struct{})}
	for key, value := range record {
		if !c.declares(key) {
			continue
		}
		normalized, err := NormalizeValue(value)
		if err != nil {
			collector.add(domain.FieldIssue{
				Path:    key,
				Reason:  domain.ReasonInvalidType,
				Message: "value has no JSON representation",
			})
			continue
		}
		doc[key] = normalized
	}

	err := c.schema.Validate(doc)
	if err == nil {
		return collector.issues, nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, fmt.Errorf("validate record: %w", err)
	}

	collector.walk(verr)
	return collector.issues, nil
}

// declares reports whether key is a property of the schema. A schema without
// properties keeps every key.
func (c *Checker) declares(key string) bool {
	if len(c.schema.Properties) == 0 {
		return true
	}
	_, ok := c.schema.Properties[key]
	return ok
}

type issueCollector struct {
	schema *jsonschema.Schema
	doc    map[string]any
	seen   map[string]struct{}
	issues []domain.FieldIssue
}

func (c *issueCollector) walk(verr *jsonschema.ValidationError) {
	if len(verr.Causes) > 0 {
		for _, cause := range verr.Causes {
			c.walk(cause)
		}
		return
	}

	switch keyword(verr.KeywordLocation) {
	case "required":
		// The instance location of a required failure is the parent object,
		// so the missing names are recomputed from the compiled schema.
		for _, name := range c.schema.Required {
			if _, ok := c.doc[name]; ok {
				continue
			}
			c.add(domain.FieldIssue{
				Path:    name,
				Reason:  domain.ReasonMissing,
				Message: "required field is missing",
			})
		}
	default:
		c.add(domain.FieldIssue{
			Path:    instancePath(verr.InstanceLocation),
			Reason:  domain.ReasonInvalidType,
			Message: verr.Message,
		})
	}
}

func (c *issueCollector) add(issue domain.FieldIssue) {
	if _, ok := c.seen[issue.Path]; ok {
		return
	}
	c.seen[issue.Path] = struct{}{}
	c.issues = append(c.issues, issue)
}

func keyword(location string) string {
	if idx := strings.LastIndex(location, "/"); idx >= 0 {
		return location[idx+1:]
	}
	return location
}

func instancePath(pointer string) string {
	pointer = strings.TrimPrefix(pointer, "/")
	pointer = strings.ReplaceAll(pointer, "/", ".")
	pointer = strings.ReplaceAll(pointer, "~1", "/")
	return strings.ReplaceAll(pointer, "~0", "~")
}
