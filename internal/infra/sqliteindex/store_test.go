package sqliteindex

import (
	"context"
	"path/filepath"
	"testing"

	indexapp "github.com/osvaldoandrade/contentschema/internal/app/index"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenWithOptions(filepath.Join(t.TempDir(), "nested", "index.db"), OpenOptions{Fast: true})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(" "); err == nil {
		t.Fatalf("expected error for blank path")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	if _, err := tx.EnsureCollection(ctx, "blog"); err != nil {
		t.Fatalf("EnsureCollection returned error: %v", err)
	}
	if _, err := tx.EnsureCollection(ctx, "blog"); err != nil {
		t.Fatalf("second EnsureCollection returned error: %v", err)
	}
	for _, id := range []string{"b", "a"} {
		if err := tx.UpsertEntry(ctx, "blog", indexapp.EntryRecord{
			EntryID:     id,
			Path:        "/content/blog/" + id + ".md",
			Payload:     []byte(`{"title":"` + id + `"}`),
			ContentHash: "hash-" + id,
			RunID:       "run-1",
			UpdatedAt:   42,
		}); err != nil {
			t.Fatalf("UpsertEntry returned error: %v", err)
		}
	}
	if err := tx.SetState(ctx, indexapp.State{LastRunID: "run-1", LastRunAt: 42, Entries: 2}); err != nil {
		t.Fatalf("SetState returned error: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}

	records, err := store.ListEntries(ctx, "blog")
	if err != nil {
		t.Fatalf("ListEntries returned error: %v", err)
	}
	if len(records) != 2 || records[0].EntryID != "a" || string(records[0].Payload) != `{"title":"a"}` {
		t.Fatalf("unexpected records: %+v", records)
	}

	state, err := store.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState returned error: %v", err)
	}
	if state.LastRunID != "run-1" || state.Entries != 2 {
		t.Fatalf("unexpected state: %+v", state)
	}

	tx, err = store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	names, err := tx.ListCollections(ctx)
	if err != nil || len(names) != 1 || names[0] != "blog" {
		t.Fatalf("unexpected collections %v (%v)", names, err)
	}
	if err := tx.DeleteEntry(ctx, "blog", "a"); err != nil {
		t.Fatalf("DeleteEntry returned error: %v", err)
	}
	ids, err := tx.ListEntryIDs(ctx, "blog")
	if err != nil || len(ids) != 1 || ids[0] != "b" {
		t.Fatalf("unexpected ids %v (%v)", ids, err)
	}
	record, found, err := tx.GetEntry(ctx, "blog", "b")
	if err != nil || !found || record.ContentHash != "hash-b" {
		t.Fatalf("unexpected record %+v found=%v err=%v", record, found, err)
	}
	if _, found, _ := tx.GetEntry(ctx, "portfolio", "x"); found {
		t.Fatalf("expected no entry in unknown collection")
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback returned error: %v", err)
	}

	records, err = store.ListEntries(ctx, "blog")
	if err != nil || len(records) != 2 {
		t.Fatalf("rollback should keep both records, got %d (%v)", len(records), err)
	}
}

func TestStoreReset(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	if _, err := tx.EnsureCollection(ctx, "portfolio"); err != nil {
		t.Fatalf("EnsureCollection returned error: %v", err)
	}
	if err := tx.UpsertEntry(ctx, "portfolio", indexapp.EntryRecord{EntryID: "x", Path: "p", Payload: []byte("{}"), ContentHash: "h", RunID: "r"}); err != nil {
		t.Fatalf("UpsertEntry returned error: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("Reset returned error: %v", err)
	}
	records, err := store.ListEntries(ctx, "portfolio")
	if err != nil {
		t.Fatalf("ListEntries returned error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records after reset, got %v", records)
	}
}

func TestStoreTxResetRollsBack(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	if _, err := tx.EnsureCollection(ctx, "blog"); err != nil {
		t.Fatalf("EnsureCollection returned error: %v", err)
	}
	if err := tx.UpsertEntry(ctx, "blog", indexapp.EntryRecord{EntryID: "a", Path: "p", Payload: []byte("{}"), ContentHash: "h", RunID: "r1"}); err != nil {
		t.Fatalf("UpsertEntry returned error: %v", err)
	}
	if err := tx.SetState(ctx, indexapp.State{LastRunID: "r1", LastRunAt: 1, Entries: 1}); err != nil {
		t.Fatalf("SetState returned error: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}

	tx, err = store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	if err := tx.Reset(ctx); err != nil {
		t.Fatalf("Reset returned error: %v", err)
	}
	collections, err := tx.ListCollections(ctx)
	if err != nil {
		t.Fatalf("ListCollections returned error: %v", err)
	}
	if len(collections) != 0 {
		t.Fatalf("expected no collections inside the reset transaction, got %v", collections)
	}
	if _, err := tx.EnsureCollection(ctx, "blog"); err != nil {
		t.Fatalf("EnsureCollection after reset returned error: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback returned error: %v", err)
	}

	records, err := store.ListEntries(ctx, "blog")
	if err != nil {
		t.Fatalf("ListEntries returned error: %v", err)
	}
	if len(records) != 1 || records[0].EntryID != "a" {
		t.Fatalf("expected rolled back reset to keep entries, got %+v", records)
	}
	state, err := store.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState returned error: %v", err)
	}
	if state.LastRunID != "r1" {
		t.Fatalf("expected state to survive rollback, got %+v", state)
	}
}

func TestUpsertRequiresCollection(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	if err := tx.UpsertEntry(ctx, "blog", indexapp.EntryRecord{EntryID: "x"}); err == nil {
		t.Fatalf("expected error for uninitialized collection")
	}
	_ = tx.Rollback()
}
