package load

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	collectionapp "github.com/osvaldoandrade/contentschema/internal/app/collection"
	"github.com/osvaldoandrade/contentschema/internal/app/paths"
)

type Service struct {
	source  EntrySource
	parser  FrontmatterParser
	schemas SchemaLookup
	logger  *slog.Logger
}

func NewService(source EntrySource, parser FrontmatterParser, schemas SchemaLookup, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		source:  source,
		parser:  parser,
		schemas: schemas,
		logger:  logger,
	}
}

// Load validates every entry below contentDir. Entry level problems end up in
// Result.Failures; the returned error is reserved for problems that prevent
// loading at all.
func (s *Service) Load(ctx context.Context, contentDir string, opts Options) (Result, error) {
	if opts.Concurrency < 0 {
		return Result{}, ErrInvalidConcurrency
	}
	root, err := paths.NormalizeContentDir(contentDir)
	if err != nil {
		return Result{}, err
	}

	selected, err := s.selectCollections(opts.Collections)
	if err != nil {
		return Result{}, err
	}

	names, err := s.source.ListCollections(ctx, root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{}, fmt.Errorf("%w: %s", ErrContentDirNotFound, root)
		}
		return Result{}, err
	}

	result := Result{ContentDir: root}
	var refs []EntryRef
	for _, name := range names {
		if selected != nil {
			if _, ok := selected[name]; !ok {
				continue
			}
		}
		if _, err := s.schemas.GetSchema(name); err != nil {
			if !errors.Is(err, collectionapp.ErrUnknownCollection) {
				return Result{}, err
			}
			if opts.Strict {
				result.Failures = append(result.Failures, EntryFailure{Collection: name, Err: err})
				continue
			}
			s.logger.Warn("skipping directory without collection schema", "collection", name)
			continue
		}

		entries, err := s.source.ListEntries(ctx, root, name)
		if err != nil {
			return Result{}, err
		}
		refs = append(refs, entries...)
	}

	concurrency := opts.Concurrency
	if concurrency == 0 {
		concurrency = runtime.NumCPU()
	}

	outcomes := make([]outcome, len(refs))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)
	for i, ref := range refs {
		group.Go(func() error {
			outcomes[i] = s.loadEntry(groupCtx, ref)
			return nil
		})
	}
	_ = group.Wait()
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	for _, out := range outcomes {
		if out.failure != nil {
			result.Failures = append(result.Failures, *out.failure)
			continue
		}
		result.Entries = append(result.Entries, out.entry)
	}

	sort.Slice(result.Entries, func(i, j int) bool {
		return lessRef(result.Entries[i].Collection, result.Entries[i].ID, result.Entries[j].Collection, result.Entries[j].ID)
	})
	sort.SliceStable(result.Failures, func(i, j int) bool {
		return lessRef(result.Failures[i].Collection, result.Failures[i].ID, result.Failures[j].Collection, result.Failures[j].ID)
	})

	s.logger.Info("content loaded",
		"content_dir", root,
		"entries", len(result.Entries),
		"failures", len(result.Failures),
	)
	return result, nil
}

type outcome struct {
	entry   LoadedEntry
	failure *EntryFailure
}

func (s *Service) loadEntry(ctx context.Context, ref EntryRef) outcome {
	fail := func(err error) outcome {
		s.logger.Debug("entry rejected", "collection", ref.Collection, "id", ref.ID, "error", err)
		return outcome{failure: &EntryFailure{
			Collection: ref.Collection,
			ID:         ref.ID,
			Path:       ref.Path,
			Err:        err,
		}}
	}

	schema, err := s.schemas.GetSchema(ref.Collection)
	if err != nil {
		return fail(err)
	}
	data, err := s.source.ReadEntry(ctx, ref.Path)
	if err != nil {
		return fail(err)
	}
	fields, body, err := s.parser.Parse(ctx, data)
	if err != nil {
		return fail(err)
	}
	entry, err := schema.Validate(fields)
	if err != nil {
		return fail(err)
	}

	s.logger.Debug("entry validated", "collection", ref.Collection, "id", ref.ID)
	return outcome{entry: LoadedEntry{
		Collection: ref.Collection,
		ID:         ref.ID,
		Path:       ref.Path,
		Entry:      entry,
		Body:       body,
	}}
}

func (s *Service) selectCollections(names []string) (map[string]struct{}, error) {
	var selected map[string]struct{}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, err := s.schemas.GetSchema(name); err != nil {
			return nil, err
		}
		if selected == nil {
			selected = make(map[string]struct{})
		}
		selected[name] = struct{}{}
	}
	return selected, nil
}

func lessRef(collectionA, idA, collectionB, idB string) bool {
	if collectionA != collectionB {
		return collectionA < collectionB
	}
	return idA < idB
}
