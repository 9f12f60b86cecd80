package contentschema

import (
	"context"
	"sync"

	collectionapp "github.com/osvaldoandrade/contentschema/internal/app/collection"
	"github.com/osvaldoandrade/contentschema/internal/domain"
	"github.com/osvaldoandrade/contentschema/internal/infra/schema"
)

const (
	CollectionBlog      = domain.CollectionBlog
	CollectionPortfolio = domain.CollectionPortfolio
)

type (
	Registry        = collectionapp.Registry
	Schema          = collectionapp.Schema
	FieldSpec       = collectionapp.FieldSpec
	ValidationError = collectionapp.ValidationError
	Entry           = domain.Entry
	BlogEntry       = domain.BlogEntry
	PortfolioEntry  = domain.PortfolioEntry
	FieldIssue      = domain.FieldIssue
	IssueReason     = domain.IssueReason
)

const (
	ReasonMissing     = domain.ReasonMissing
	ReasonInvalidType = domain.ReasonInvalidType
	ReasonInvalidDate = domain.ReasonInvalidDate
)

var (
	ErrUnknownCollection  = collectionapp.ErrUnknownCollection
	ErrCollectionRequired = collectionapp.ErrCollectionRequired
	ErrValidation         = collectionapp.ErrValidation
)

var defaultRegistry = sync.OnceValues(func() (*Registry, error) {
	return collectionapp.NewRegistry(context.Background(), schema.JSONSchemaCompiler{})
})

// Default returns the process wide registry. It is compiled on first use and
// shared by every caller afterwards.
func Default() (*Registry, error) {
	return defaultRegistry()
}

// GetSchema returns the schema registered for name.
func GetSchema(name string) (*Schema, error) {
	registry, err := Default()
	if err != nil {
		return nil, err
	}
	return registry.GetSchema(name)
}

// Collections returns the exported collection mapping.
func Collections() (map[string]*Schema, error) {
	registry, err := Default()
	if err != nil {
		return nil, err
	}
	return registry.Collections(), nil
}

// Validate checks raw frontmatter against the named collection.
func Validate(collection string, raw map[string]any) (Entry, error) {
	s, err := GetSchema(collection)
	if err != nil {
		return nil, err
	}
	return s.Validate(raw)
}

func ValidateBlog(raw map[string]any) (BlogEntry, error) {
	s, err := GetSchema(CollectionBlog)
	if err != nil {
		return BlogEntry{}, err
	}
	return collectionapp.ValidateBlog(s, raw)
}

func ValidatePortfolio(raw map[string]any) (PortfolioEntry, error) {
	s, err := GetSchema(CollectionPortfolio)
	if err != nil {
		return PortfolioEntry{}, err
	}
	return collectionapp.ValidatePortfolio(s, raw)
}
