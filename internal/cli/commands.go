package cli

import (
	"context"
	"fmt"

	indexapp "github.com/osvaldoandrade/contentschema/internal/app/index"
	loadapp "github.com/osvaldoandrade/contentschema/internal/app/load"
	"github.com/osvaldoandrade/contentschema/internal/app/paths"
	"github.com/osvaldoandrade/contentschema/internal/infra/canonicaljson"
	"github.com/osvaldoandrade/contentschema/internal/infra/filesystem"
	"github.com/osvaldoandrade/contentschema/internal/infra/frontmatter"
	"github.com/osvaldoandrade/contentschema/internal/infra/hash"
	"github.com/osvaldoandrade/contentschema/internal/infra/ident"
	"github.com/osvaldoandrade/contentschema/internal/infra/sqliteindex"
	"github.com/osvaldoandrade/contentschema/internal/infra/watch"
	"github.com/osvaldoandrade/contentschema/internal/platform"
	"github.com/spf13/cobra"
)

func newCollectionsCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "List registered collections and their fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := newRegistry(cmd.Context())
			if err != nil {
				return err
			}
			return writeCollections(cmd, registry, opts.JSONOutput)
		},
	}
}

func newSchemaCmd(_ *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <name>",
		Short: "Print the JSON Schema of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := newRegistry(cmd.Context())
			if err != nil {
				return err
			}
			schema, err := registry.GetSchema(args[0])
			if err != nil {
				return err
			}
			return writeSchema(cmd.OutOrStdout(), schema.JSON())
		},
	}
}

func newValidateCmd(opts *RootOptions) *cobra.Command {
	var collections []string
	var watchMode bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate every content entry against its collection schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, err := newLoadService(cmd.Context(), opts)
			if err != nil {
				return err
			}
			loadOpts := loadOptions(opts, collections)
			if watchMode {
				return runValidateWatch(cmd, opts, service, loadOpts)
			}

			result, err := service.Load(cmd.Context(), opts.Config.ContentDir, loadOpts)
			if err != nil {
				return err
			}
			if err := writeValidateResult(cmd, result, opts.JSONOutput); err != nil {
				return err
			}
			return validationFailure(result, "validation failed")
		},
	}
	cmd.Flags().Bool("strict", false, "Fail on collection directories without a schema")
	cmd.Flags().Int("concurrency", 0, "Entries validated in parallel (0 uses every CPU)")
	cmd.Flags().StringSliceVar(&collections, "collection", nil, "Only validate the named collections")
	cmd.Flags().BoolVar(&watchMode, "watch", false, "Re-run validation whenever content changes")
	return cmd
}

func runValidateWatch(cmd *cobra.Command, opts *RootOptions, service *loadapp.Service, loadOpts loadapp.Options) error {
	root, err := paths.NormalizeContentDir(opts.Config.ContentDir)
	if err != nil {
		return err
	}
	run := func(ctx context.Context) error {
		result, err := service.Load(ctx, root, loadOpts)
		if err != nil {
			return err
		}
		return writeValidateResult(cmd, result, opts.JSONOutput)
	}
	if err := run(cmd.Context()); err != nil {
		return err
	}

	watcher, err := watch.New(root, watch.DefaultDebounce, opts.Logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = watcher.Close()
	}()

	opts.Logger.Info("watching content", "content_dir", root)
	return watcher.Run(cmd.Context(), func(ctx context.Context) {
		if err := run(ctx); err != nil && ctx.Err() == nil {
			opts.Logger.Error("validation run failed", "error", err)
		}
	})
}

func newIndexCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Sidecar SQLite index of validated entries",
		RunE:  runHelp,
	}
	cmd.PersistentFlags().String("db", platform.DefaultIndexPath, "Path to SQLite index database")
	cmd.PersistentFlags().Bool("fast", false, "Relax SQLite durability for faster indexing")
	cmd.AddCommand(newIndexSyncCmd(opts), newIndexListCmd(opts), newIndexStatusCmd(opts))
	return cmd
}

func newIndexSyncCmd(opts *RootOptions) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Validate content and sync it into the index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loader, err := newLoadService(cmd.Context(), opts)
			if err != nil {
				return err
			}
			loaded, err := loader.Load(cmd.Context(), opts.Config.ContentDir, loadOptions(opts, nil))
			if err != nil {
				return err
			}
			if len(loaded.Failures) > 0 {
				if err := writeValidateResult(cmd, loaded, opts.JSONOutput); err != nil {
					return err
				}
				return validationFailure(loaded, "index sync refused")
			}

			service, closeStore, err := newIndexService(opts)
			if err != nil {
				return err
			}
			defer closeStore()

			var result indexapp.SyncResult
			spin := spinnerEnabled(cmd.ErrOrStderr(), opts.JSONOutput)
			label := newRenderer(cmd.ErrOrStderr(), opts.JSONOutput).accent("Syncing index")
			err = withSpinner(cmd.Context(), cmd.ErrOrStderr(), spin, label, func() error {
				var err error
				result, err = service.Sync(cmd.Context(), sourceEntries(loaded), indexapp.SyncOptions{Reset: reset})
				return err
			})
			if err != nil {
				return err
			}
			return writeIndexSyncResult(cmd, result, opts.JSONOutput)
		},
	}
	cmd.Flags().Bool("strict", false, "Fail on collection directories without a schema")
	cmd.Flags().Int("concurrency", 0, "Entries validated in parallel (0 uses every CPU)")
	cmd.Flags().BoolVar(&reset, "reset", false, "Drop the index before syncing")
	return cmd
}

func newIndexListCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "ls <collection>",
		Aliases: []string{"list"},
		Short:   "List indexed entries of a collection",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := newRegistry(cmd.Context())
			if err != nil {
				return err
			}
			schema, err := registry.GetSchema(args[0])
			if err != nil {
				return err
			}

			service, closeStore, err := newIndexService(opts)
			if err != nil {
				return err
			}
			defer closeStore()

			records, err := service.List(cmd.Context(), schema.Name())
			if err != nil {
				return err
			}
			return writeIndexList(cmd, schema.Name(), records, opts.JSONOutput)
		},
	}
}

func newIndexStatusCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the last index run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, closeStore, err := newIndexService(opts)
			if err != nil {
				return err
			}
			defer closeStore()

			state, err := service.State(cmd.Context())
			if err != nil {
				return err
			}
			return writeIndexState(cmd, state, opts.JSONOutput)
		},
	}
}

func newLoadService(ctx context.Context, opts *RootOptions) (*loadapp.Service, error) {
	registry, err := newRegistry(ctx)
	if err != nil {
		return nil, err
	}
	return loadapp.NewService(filesystem.EntrySource{}, frontmatter.Parser{}, registry, opts.Logger), nil
}

func newIndexService(opts *RootOptions) (*indexapp.SyncService, func(), error) {
	dbPath, err := paths.NormalizeIndexPath(opts.Config.IndexPath)
	if err != nil {
		return nil, nil, err
	}
	store, err := sqliteindex.OpenWithOptions(dbPath, sqliteindex.OpenOptions{Fast: opts.Config.FastIndex})
	if err != nil {
		return nil, nil, err
	}
	clock := platform.RealClock{}
	service := indexapp.NewSyncService(
		store,
		canonicaljson.Canonicalizer{},
		hash.SHA256{},
		ident.NewULIDGenerator(clock),
		clock,
		opts.Logger,
	)
	closeStore := func() {
		if err := store.Close(); err != nil {
			opts.Logger.Warn("close index", "error", err)
		}
	}
	return service, closeStore, nil
}

func loadOptions(opts *RootOptions, collections []string) loadapp.Options {
	return loadapp.Options{
		Collections: collections,
		Strict:      opts.Config.Strict,
		Concurrency: opts.Config.Concurrency,
	}
}

func sourceEntries(result loadapp.Result) []indexapp.SourceEntry {
	entries := make([]indexapp.SourceEntry, 0, len(result.Entries))
	for _, entry := range result.Entries {
		entries = append(entries, indexapp.SourceEntry{
			Collection: entry.Collection,
			ID:         entry.ID,
			Path:       entry.Path,
			Entry:      entry.Entry,
		})
	}
	return entries
}

// validationFailure reports a failed run as a validation exit without
// repeating the per-entry report already written to stdout.
func validationFailure(result loadapp.Result, action string) error {
	if len(result.Failures) == 0 {
		return nil
	}
	return ExitError{
		Code:    ExitInvalid,
		Kind:    KindValidation,
		Message: fmt.Sprintf("%s: %d of %d entries failed", action, len(result.Failures), len(result.Failures)+len(result.Entries)),
		Err:     result.Err(),
	}
}

func runHelp(cmd *cobra.Command, _ []string) error {
	return cmd.Help()
}
