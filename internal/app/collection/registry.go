package collection

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/osvaldoandrade/contentschema/internal/domain"
)

//go:embed schemas/*.schema.json
var schemaFiles embed.FS

type definition struct {
	name   string
	file   string
	fields []FieldSpec
	build  func(values map[string]any) domain.Entry
}

var definitions = []definition{
	{
		name: domain.CollectionBlog,
		file: "schemas/blog.schema.json",
		fields: []FieldSpec{
			{Name: "title", Kind: KindString, Required: true},
			{Name: "description", Kind: KindString, Required: true},
			{Name: "pubDate", Kind: KindDate, Required: true},
			{Name: "updatedDate", Kind: KindDate},
			{Name: "heroImage", Kind: KindString},
		},
		build: func(values map[string]any) domain.Entry {
			return domain.BlogEntry{
				Title:       stringValue(values, "title"),
				Description: stringValue(values, "description"),
				PubDate:     dateValue(values, "pubDate"),
				UpdatedDate: optionalDate(values, "updatedDate"),
				HeroImage:   optionalString(values, "heroImage"),
			}
		},
	},
	{
		name: domain.CollectionPortfolio,
		file: "schemas/portfolio.schema.json",
		fields: []FieldSpec{
			{Name: "title", Kind: KindString, Required: true},
			{Name: "description", Kind: KindString, Required: true},
			{Name: "banner", Kind: KindString, Required: true},
			{Name: "showcase", Kind: KindString},
			{Name: "repo", Kind: KindString, Required: true},
		},
		build: func(values map[string]any) domain.Entry {
			return domain.PortfolioEntry{
				Title:       stringValue(values, "title"),
				Description: stringValue(values, "description"),
				Banner:      stringValue(values, "banner"),
				Showcase:    optionalString(values, "showcase"),
				Repo:        stringValue(values, "repo"),
			}
		},
	},
}

// Registry maps collection names to their schemas. It is built once and never
// modified afterwards.
type Registry struct {
	schemas map[string]*Schema
}

func NewRegistry(ctx context.Context, compiler SchemaCompiler) (*Registry, error) {
	if compiler == nil {
		return nil, ErrCompilerRequired
	}

	schemas := make(map[string]*Schema, len(definitions))
	for _, def := range definitions {
		doc, err := schemaFiles.ReadFile(def.file)
		if err != nil {
			return nil, fmt.Errorf("read %s schema: %w", def.name, err)
		}
		checker, err := compiler.Compile(ctx, def.name, doc)
		if err != nil {
			return nil, fmt.Errorf("compile %s schema: %w", def.name, err)
		}
		schemas[def.name] = &Schema{
			name:    def.name,
			fields:  def.fields,
			doc:     doc,
			checker: checker,
			build:   def.build,
		}
	}
	return &Registry{schemas: schemas}, nil
}

func (r *Registry) GetSchema(name string) (*Schema, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrCollectionRequired
	}
	schema, ok := r.schemas[name]
	if !ok {
		return nil, unknownCollection(name)
	}
	return schema, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Collections returns a copy of the name to schema mapping.
func (r *Registry) Collections() map[string]*Schema {
	out := make(map[string]*Schema, len(r.schemas))
	for name, schema := range r.schemas {
		out[name] = schema
	}
	return out
}
