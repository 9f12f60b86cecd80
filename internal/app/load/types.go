package load

import (
	"errors"
	"fmt"

	"github.com/osvaldoandrade/contentschema/internal/domain"
)

type EntryRef struct {
	Collection string
	ID         string
	Path       string
}

type Options struct {
	// Collections restricts loading to the named collections. Empty means
	// every collection directory found under the content root.
	Collections []string
	// Strict turns directories without a schema into failures instead of
	// warnings.
	Strict      bool
	Concurrency int
}

type LoadedEntry struct {
	Collection string
	ID         string
	Path       string
	Entry      domain.Entry
	Body       []byte
}

type EntryFailure struct {
	Collection string
	ID         string
	Path       string
	Err        error
}

func (f EntryFailure) Error() string {
	if f.ID == "" {
		return fmt.Sprintf("%s: %v", f.Collection, f.Err)
	}
	return fmt.Sprintf("%s/%s: %v", f.Collection, f.ID, f.Err)
}

func (f EntryFailure) Unwrap() error {
	return f.Err
}

type Result struct {
	ContentDir string
	Entries    []LoadedEntry
	Failures   []EntryFailure
}

// Err joins every failure, or returns nil when all entries validated.
func (r Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures))
	for _, failure := range r.Failures {
		errs = append(errs, failure)
	}
	return errors.Join(errs...)
}

func (r Result) CountByCollection() map[string]int {
	counts := make(map[string]int)
	for _, entry := range r.Entries {
		counts[entry.Collection]++
	}
	return counts
}
