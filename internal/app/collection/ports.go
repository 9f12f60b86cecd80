package collection

import (
	"context"

	"github.com/osvaldoandrade/contentschema/internal/domain"
)

type SchemaCompiler interface {
	Compile(ctx context.Context, name string, schema []byte) (StructureChecker, error)
}

// StructureChecker reports missing required fields and values of the wrong
// JSON type. It never coerces.
type StructureChecker interface {
	Check(record map[string]any) ([]domain.FieldIssue, error)
}
