package sqliteindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	indexapp "github.com/osvaldoandrade/contentschema/internal/app/index"
	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

type OpenOptions struct {
	Fast bool
}

func Open(path string) (*Store, error) {
	return OpenWithOptions(path, OpenOptions{})
}

func OpenWithOptions(path string, opts OpenOptions) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path required")
	}

	if shouldCreateDir(path) {
		dir := filepath.Dir(path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db}
	if err := store.applyPragmas(context.Background(), opts); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) GetState(ctx context.Context) (indexapp.State, error) {
	var state indexapp.State
	err := s.db.QueryRowContext(ctx, "SELECT last_run_id, last_run_at, entries FROM index_state WHERE id = 1").
		Scan(&state.LastRunID, &state.LastRunAt, &state.Entries)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return indexapp.State{}, nil
		}
		return indexapp.State{}, fmt.Errorf("read index state: %w", err)
	}
	return state, nil
}

func (s *Store) Begin(ctx context.Context) (indexapp.StoreTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin index transaction: %w", err)
	}
	return &storeTx{tx: tx, tableCache: make(map[string]string)}, nil
}

func (s *Store) ListEntries(ctx context.Context, collection string) ([]indexapp.EntryRecord, error) {
	var tableName string
	err := s.db.QueryRowContext(ctx, "SELECT table_name FROM collection_registry WHERE collection = ?", collection).Scan(&tableName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup collection: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT entry_id, path, payload, content_hash, run_id, updated_at
		FROM %s ORDER BY entry_id
	`, quoteIdent(tableName))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var records []indexapp.EntryRecord
	for rows.Next() {
		var record indexapp.EntryRecord
		if err := rows.Scan(&record.EntryID, &record.Path, &record.Payload, &record.ContentHash, &record.RunID, &record.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return records, nil
}

// Reset clears the index in a transaction of its own.
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	if err := tx.Reset(ctx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}

func (s *Store) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS index_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			last_run_id TEXT NOT NULL DEFAULT '',
			last_run_at INTEGER NOT NULL DEFAULT 0,
			entries INTEGER NOT NULL DEFAULT 0
		)
	`); err != nil {
		return fmt.Errorf("create state table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS collection_registry (
			collection TEXT PRIMARY KEY,
			table_name TEXT NOT NULL UNIQUE
		)
	`); err != nil {
		return fmt.Errorf("create collection registry: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO index_state (id, last_run_id, last_run_at, entries) VALUES (1, '', 0, 0)
	`); err != nil {
		return fmt.Errorf("seed state table: %w", err)
	}
	return nil
}

func (s *Store) applyPragmas(ctx context.Context, opts OpenOptions) error {
	if !opts.Fast {
		return nil
	}
	var mode string
	if err := s.db.QueryRowContext(ctx, "PRAGMA journal_mode = WAL").Scan(&mode); err != nil {
		return fmt.Errorf("set journal_mode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA synchronous = NORMAL"); err != nil {
		return fmt.Errorf("set synchronous: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA temp_store = MEMORY"); err != nil {
		return fmt.Errorf("set temp_store: %w", err)
	}
	return nil
}

type storeTx struct {
	tx         *sql.Tx
	tableCache map[string]string
}

func (s *storeTx) EnsureCollection(ctx context.Context, collection string) (string, error) {
	tableName, err := s.lookupCollection(ctx, collection)
	if err == nil {
		return tableName, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("lookup collection: %w", err)
	}

	tableName = tableNameForCollection(collection)
	if err := s.createCollectionTable(ctx, tableName); err != nil {
		return "", err
	}
	if _, err := s.tx.ExecContext(ctx, `
		INSERT INTO collection_registry (collection, table_name) VALUES (?, ?)
	`, collection, tableName); err != nil {
		return "", fmt.Errorf("register collection: %w", err)
	}
	s.tableCache[collection] = tableName
	return tableName, nil
}

func (s *storeTx) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rows, err := s.tx.QueryContext(ctx, "SELECT table_name FROM collection_registry")
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan collection table: %w", err)
		}
		tables = append(tables, tableName)
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("close collection rows: %w", err)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate collection rows: %w", err)
	}

	for _, tableName := range tables {
		stmt := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdent(tableName))
		if _, err := s.tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("drop table %s: %w", tableName, err)
		}
	}
	if _, err := s.tx.ExecContext(ctx, "DELETE FROM collection_registry"); err != nil {
		return fmt.Errorf("clear collection registry: %w", err)
	}
	if _, err := s.tx.ExecContext(ctx, "UPDATE index_state SET last_run_id = '', last_run_at = 0, entries = 0 WHERE id = 1"); err != nil {
		return fmt.Errorf("reset index state: %w", err)
	}
	s.tableCache = make(map[string]string)
	return nil
}

func (s *storeTx) ListCollections(ctx context.Context) ([]string, error) {
	rows, err := s.tx.QueryContext(ctx, "SELECT collection FROM collection_registry ORDER BY collection")
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}
	return names, nil
}

func (s *storeTx) ListEntryIDs(ctx context.Context, collection string) ([]string, error) {
	tableName, err := s.lookupCollection(ctx, collection)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup collection: %w", err)
	}

	rows, err := s.tx.QueryContext(ctx, fmt.Sprintf("SELECT entry_id FROM %s ORDER BY entry_id", quoteIdent(tableName)))
	if err != nil {
		return nil, fmt.Errorf("list entry ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan entry id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entry ids: %w", err)
	}
	return ids, nil
}

func (s *storeTx) GetEntry(ctx context.Context, collection, entryID string) (indexapp.EntryRecord, bool, error) {
	tableName, err := s.lookupCollection(ctx, collection)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return indexapp.EntryRecord{}, false, nil
		}
		return indexapp.EntryRecord{}, false, fmt.Errorf("lookup collection: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT entry_id, path, payload, content_hash, run_id, updated_at
		FROM %s WHERE entry_id = ?
	`, quoteIdent(tableName))
	var record indexapp.EntryRecord
	if err := s.tx.QueryRowContext(ctx, query, entryID).Scan(
		&record.EntryID,
		&record.Path,
		&record.Payload,
		&record.ContentHash,
		&record.RunID,
		&record.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return indexapp.EntryRecord{}, false, nil
		}
		return indexapp.EntryRecord{}, false, fmt.Errorf("read entry: %w", err)
	}
	return record, true, nil
}

func (s *storeTx) UpsertEntry(ctx context.Context, collection string, record indexapp.EntryRecord) error {
	tableName, err := s.lookupCollection(ctx, collection)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("collection not initialized: %s", collection)
		}
		return fmt.Errorf("lookup collection: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (entry_id, path, payload, content_hash, run_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(entry_id) DO UPDATE SET
			path = excluded.path,
			payload = excluded.payload,
			content_hash = excluded.content_hash,
			run_id = excluded.run_id,
			updated_at = excluded.updated_at
	`, quoteIdent(tableName))

	if _, err := s.tx.ExecContext(ctx, query,
		record.EntryID,
		record.Path,
		record.Payload,
		record.ContentHash,
		record.RunID,
		record.UpdatedAt,
	); err != nil {
		return fmt.Errorf("upsert entry: %w", err)
	}
	return nil
}

func (s *storeTx) DeleteEntry(ctx context.Context, collection, entryID string) error {
	tableName, err := s.lookupCollection(ctx, collection)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("lookup collection: %w", err)
	}
	stmt := fmt.Sprintf("DELETE FROM %s WHERE entry_id = ?", quoteIdent(tableName))
	if _, err := s.tx.ExecContext(ctx, stmt, entryID); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

func (s *storeTx) SetState(ctx context.Context, state indexapp.State) error {
	if _, err := s.tx.ExecContext(ctx, `
		INSERT INTO index_state (id, last_run_id, last_run_at, entries) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			last_run_id = excluded.last_run_id,
			last_run_at = excluded.last_run_at,
			entries = excluded.entries
	`, state.LastRunID, state.LastRunAt, state.Entries); err != nil {
		return fmt.Errorf("update index state: %w", err)
	}
	return nil
}

func (s *storeTx) Commit() error {
	return s.tx.Commit()
}

func (s *storeTx) Rollback() error {
	return s.tx.Rollback()
}

func (s *storeTx) lookupCollection(ctx context.Context, collection string) (string, error) {
	if tableName, ok := s.tableCache[collection]; ok {
		return tableName, nil
	}
	var tableName string
	err := s.tx.QueryRowContext(ctx, `
		SELECT table_name FROM collection_registry WHERE collection = ?
	`, collection).Scan(&tableName)
	if err != nil {
		return "", err
	}
	s.tableCache[collection] = tableName
	return tableName, nil
}

func (s *storeTx) createCollectionTable(ctx context.Context, tableName string) error {
	stmt := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			entry_id TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			payload BLOB NOT NULL,
			content_hash TEXT NOT NULL,
			run_id TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`, quoteIdent(tableName))
	if _, err := s.tx.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create collection table: %w", err)
	}
	return nil
}

func tableNameForCollection(collection string) string {
	return "collection_" + collection
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func shouldCreateDir(path string) bool {
	if path == ":memory:" {
		return false
	}
	if strings.HasPrefix(path, "file:") {
		return false
	}
	return true
}
