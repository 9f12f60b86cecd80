package collection

import (
	"fmt"
	"time"

	"github.com/osvaldoandrade/contentschema/internal/domain"
)

type FieldKind string

const (
	KindString FieldKind = "string"
	KindDate   FieldKind = "date"
)

type FieldSpec struct {
	Name     string    `json:"name"`
	Kind     FieldKind `json:"kind"`
	Required bool      `json:"required"`
}

// Schema validates the frontmatter of one collection. It holds no mutable
// state and may be shared between goroutines.
type Schema struct {
	name    string
	fields  []FieldSpec
	doc     []byte
	checker StructureChecker
	build   func(values map[string]any) domain.Entry
}

func (s *Schema) Name() string {
	return s.name
}

func (s *Schema) Fields() []FieldSpec {
	return append([]FieldSpec(nil), s.fields...)
}

// JSON returns the JSON Schema document the structural check was compiled from.
func (s *Schema) JSON() []byte {
	return append([]byte(nil), s.doc...)
}

// Validate checks raw against the schema and returns the typed entry. Every
// failing field is reported in a single *ValidationError.
func (s *Schema) Validate(raw map[string]any) (domain.Entry, error) {
	if raw == nil {
		raw = map[string]any{}
	}

	reported, err := s.checker.Check(raw)
	if err != nil {
		return nil, fmt.Errorf("check %s entry: %w", s.name, err)
	}

	byPath := make(map[string]domain.FieldIssue, len(reported))
	var unplaced []domain.FieldIssue
	for _, issue := range reported {
		if _, seen := byPath[issue.Path]; seen {
			continue
		}
		if !s.hasField(issue.Path) {
			unplaced = append(unplaced, issue)
			continue
		}
		byPath[issue.Path] = issue
	}

	values := make(map[string]any, len(s.fields))
	for _, field := range s.fields {
		if _, failed := byPath[field.Name]; failed {
			continue
		}
		value, present := raw[field.Name]
		if !present {
			continue
		}
		switch field.Kind {
		case KindString:
			str, ok := value.(string)
			if !ok {
				byPath[field.Name] = domain.FieldIssue{
					Path:    field.Name,
					Reason:  domain.ReasonInvalidType,
					Message: fmt.Sprintf("expected string, but got %T", value),
				}
				continue
			}
			values[field.Name] = str
		case KindDate:
			date, err := CoerceDate(value)
			if err != nil {
				byPath[field.Name] = domain.FieldIssue{
					Path:    field.Name,
					Reason:  domain.ReasonInvalidDate,
					Message: err.Error(),
				}
				continue
			}
			values[field.Name] = date
		}
	}

	issues := make([]domain.FieldIssue, 0, len(byPath)+len(unplaced))
	for _, field := range s.fields {
		if issue, ok := byPath[field.Name]; ok {
			issues = append(issues, issue)
		}
	}
	issues = append(issues, unplaced...)
	if len(issues) > 0 {
		return nil, &ValidationError{Collection: s.name, Issues: issues}
	}

	return s.build(values), nil
}

func (s *Schema) hasField(name string) bool {
	for _, field := range s.fields {
		if field.Name == name {
			return true
		}
	}
	return false
}

// ValidateBlog validates raw with schema and returns a blog entry.
func ValidateBlog(schema *Schema, raw map[string]any) (domain.BlogEntry, error) {
	entry, err := schema.Validate(raw)
	if err != nil {
		return domain.BlogEntry{}, err
	}
	blog, ok := entry.(domain.BlogEntry)
	if !ok {
		return domain.BlogEntry{}, fmt.Errorf("schema %q does not produce blog entries", schema.Name())
	}
	return blog, nil
}

// ValidatePortfolio validates raw with schema and returns a portfolio entry.
func ValidatePortfolio(schema *Schema, raw map[string]any) (domain.PortfolioEntry, error) {
	entry, err := schema.Validate(raw)
	if err != nil {
		return domain.PortfolioEntry{}, err
	}
	portfolio, ok := entry.(domain.PortfolioEntry)
	if !ok {
		return domain.PortfolioEntry{}, fmt.Errorf("schema %q does not produce portfolio entries", schema.Name())
	}
	return portfolio, nil
}

func stringValue(values map[string]any, name string) string {
	value, _ := values[name].(string)
	return value
}

func optionalString(values map[string]any, name string) *string {
	value, ok := values[name].(string)
	if !ok {
		return nil
	}
	return &value
}

func dateValue(values map[string]any, name string) time.Time {
	value, _ := values[name].(time.Time)
	return value
}

func optionalDate(values map[string]any, name string) *time.Time {
	value, ok := values[name].(time.Time)
	if !ok {
		return nil
	}
	return &value
}
