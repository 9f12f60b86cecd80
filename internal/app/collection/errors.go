package collection

import (
	"errors"
	"fmt"
	"strings"

	"github.com/osvaldoandrade/contentschema/internal/domain"
)

var ErrCollectionRequired = errors.New("collection name is required")
var ErrUnknownCollection = errors.New("unknown collection")
var ErrValidation = errors.New("entry failed validation")
var ErrCompilerRequired = errors.New("schema compiler is required")

// ValidationError lists every field of a single entry that violated its
// collection schema.
type ValidationError struct {
	Collection string
	Issues     []domain.FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return fmt.Sprintf("invalid %s entry: %s", e.Collection, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Issue returns the first issue reported for path.
func (e *ValidationError) Issue(path string) (domain.FieldIssue, bool) {
	for _, issue := range e.Issues {
		if issue.Path == path {
			return issue, true
		}
	}
	return domain.FieldIssue{}, false
}

func unknownCollection(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownCollection, name)
}
