package index

import (
	"context"
	"time"
)

type Store interface {
	GetState(ctx context.Context) (State, error)
	Begin(ctx context.Context) (StoreTx, error)
	ListEntries(ctx context.Context, collection string) ([]EntryRecord, error)
}

type StoreTx interface {
	// Reset drops every indexed collection and clears the run state. It only
	// takes effect when the transaction commits.
	Reset(ctx context.Context) error
	EnsureCollection(ctx context.Context, collection string) (string, error)
	ListCollections(ctx context.Context) ([]string, error)
	ListEntryIDs(ctx context.Context, collection string) ([]string, error)
	GetEntry(ctx context.Context, collection, entryID string) (EntryRecord, bool, error)
	UpsertEntry(ctx context.Context, collection string, record EntryRecord) error
	DeleteEntry(ctx context.Context, collection, entryID string) error
	SetState(ctx context.Context, state State) error
	Commit() error
	Rollback() error
}

type Encoder interface {
	EncodeFields(ctx context.Context, fields map[string]any) ([]byte, error)
}

type Hasher interface {
	SumHex(data []byte) string
}

type IDGenerator interface {
	NewID() (string, error)
}

type Clock interface {
	Now() time.Time
}
