package index

import "github.com/osvaldoandrade/contentschema/internal/domain"

type State struct {
	LastRunID string
	LastRunAt int64
	Entries   int
}

type SourceEntry struct {
	Collection string
	ID         string
	Path       string
	Entry      domain.Entry
}

type EntryRecord struct {
	EntryID     string
	Path        string
	Payload     []byte
	ContentHash string
	RunID       string
	UpdatedAt   int64
}

type SyncOptions struct {
	Reset bool
}

type SyncResult struct {
	RunID       string
	Reset       bool
	Collections int
	Upserted    int
	Unchanged   int
	Removed     int
}
