package contentschema

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	indexapp "github.com/osvaldoandrade/contentschema/internal/app/index"
	loadapp "github.com/osvaldoandrade/contentschema/internal/app/load"
	"github.com/osvaldoandrade/contentschema/internal/app/paths"
	"github.com/osvaldoandrade/contentschema/internal/infra/canonicaljson"
	"github.com/osvaldoandrade/contentschema/internal/infra/filesystem"
	"github.com/osvaldoandrade/contentschema/internal/infra/frontmatter"
	"github.com/osvaldoandrade/contentschema/internal/infra/hash"
	"github.com/osvaldoandrade/contentschema/internal/infra/ident"
	"github.com/osvaldoandrade/contentschema/internal/infra/sqliteindex"
	"github.com/osvaldoandrade/contentschema/internal/platform"
)

type (
	LoadResult   = loadapp.Result
	LoadedEntry  = loadapp.LoadedEntry
	EntryFailure = loadapp.EntryFailure
	SyncResult   = indexapp.SyncResult
	IndexedEntry = indexapp.EntryRecord
	IndexState   = indexapp.State
)

// Config defines how a Client loads content and where it keeps the index.
type Config struct {
	ContentDir  string
	Collections []string
	Strict      bool
	Concurrency int
	Index       IndexConfig
	Logger      *slog.Logger
}

// IndexConfig configures the SQLite sidecar.
type IndexConfig struct {
	DBPath string
	Fast   bool
}

// DefaultConfig keeps the index next to the content directory.
func DefaultConfig(contentDir string) Config {
	return Config{
		ContentDir: contentDir,
		Index: IndexConfig{
			DBPath: filepath.Join(contentDir, "..", ".contentschema", "index.db"),
		},
	}
}

// Client loads and validates a content tree and optionally mirrors it into
// the SQLite index.
type Client struct {
	cfg    Config
	loader *loadapp.Service

	mu    sync.Mutex
	store *sqliteindex.Store
	index *indexapp.SyncService
}

// New creates a client without opening the index.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.ContentDir) == "" {
		return nil, ErrContentDirRequired
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Index.DBPath == "" {
		cfg.Index.DBPath = DefaultConfig(cfg.ContentDir).Index.DBPath
	}
	registry, err := Default()
	if err != nil {
		return nil, err
	}
	return &Client{
		cfg:    cfg,
		loader: loadapp.NewService(filesystem.EntrySource{}, frontmatter.Parser{}, registry, cfg.Logger),
	}, nil
}

// Load validates the configured collections of the content tree.
func (c *Client) Load(ctx context.Context) (LoadResult, error) {
	return c.load(ctx, c.cfg.Collections)
}

func (c *Client) load(ctx context.Context, collections []string) (LoadResult, error) {
	return c.loader.Load(ctx, c.cfg.ContentDir, loadapp.Options{
		Collections: collections,
		Strict:      c.cfg.Strict,
		Concurrency: c.cfg.Concurrency,
	})
}

// OpenIndex opens the SQLite index database.
func (c *Client) OpenIndex(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store != nil {
		return nil
	}

	dbPath, err := paths.NormalizeIndexPath(c.cfg.Index.DBPath)
	if err != nil {
		return err
	}
	store, err := sqliteindex.OpenWithOptions(dbPath, sqliteindex.OpenOptions{Fast: c.cfg.Index.Fast})
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		_ = store.Close()
		return err
	}
	clock := platform.RealClock{}
	c.store = store
	c.index = indexapp.NewSyncService(
		store,
		canonicaljson.Canonicalizer{},
		hash.SHA256{},
		ident.NewULIDGenerator(clock),
		clock,
		c.cfg.Logger,
	)
	return nil
}

// SyncIndex loads every collection and mirrors it into the index, regardless
// of Config.Collections. Nothing is written when any entry fails validation.
func (c *Client) SyncIndex(ctx context.Context, reset bool) (SyncResult, LoadResult, error) {
	service, err := c.indexService()
	if err != nil {
		return SyncResult{}, LoadResult{}, err
	}
	loaded, err := c.load(ctx, nil)
	if err != nil {
		return SyncResult{}, loaded, err
	}
	if len(loaded.Failures) > 0 {
		return SyncResult{}, loaded, fmt.Errorf("%w: %w", ErrInvalidContent, loaded.Err())
	}

	entries := make([]indexapp.SourceEntry, 0, len(loaded.Entries))
	for _, entry := range loaded.Entries {
		entries = append(entries, indexapp.SourceEntry{
			Collection: entry.Collection,
			ID:         entry.ID,
			Path:       entry.Path,
			Entry:      entry.Entry,
		})
	}
	result, err := service.Sync(ctx, entries, indexapp.SyncOptions{Reset: reset})
	return result, loaded, err
}

// IndexedEntries lists the indexed entries of a collection.
func (c *Client) IndexedEntries(ctx context.Context, collection string) ([]IndexedEntry, error) {
	service, err := c.indexService()
	if err != nil {
		return nil, err
	}
	return service.List(ctx, collection)
}

func (c *Client) IndexState(ctx context.Context) (IndexState, error) {
	service, err := c.indexService()
	if err != nil {
		return IndexState{}, err
	}
	return service.State(ctx)
}

// Close closes the index if it was opened.
func (c *Client) Close() error {
	c.mu.Lock()
	store := c.store
	c.store = nil
	c.index = nil
	c.mu.Unlock()

	if store != nil {
		return store.Close()
	}
	return nil
}

func (c *Client) indexService() (*indexapp.SyncService, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index == nil {
		return nil, ErrIndexNotOpen
	}
	return c.index, nil
}
