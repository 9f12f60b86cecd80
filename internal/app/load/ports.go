package load

import (
	"context"

	collectionapp "github.com/osvaldoandrade/contentschema/internal/app/collection"
)

type EntrySource interface {
	ListCollections(ctx context.Context, root string) ([]string, error)
	ListEntries(ctx context.Context, root, collection string) ([]EntryRef, error)
	ReadEntry(ctx context.Context, path string) ([]byte, error)
}

type FrontmatterParser interface {
	Parse(ctx context.Context, data []byte) (map[string]any, []byte, error)
}

type SchemaLookup interface {
	GetSchema(name string) (*collectionapp.Schema, error)
}
