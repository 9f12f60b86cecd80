package index

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/osvaldoandrade/contentschema/internal/domain"
)

type SyncService struct {
	store   Store
	encoder Encoder
	hasher  Hasher
	idGen   IDGenerator
	clock   Clock
	logger  *slog.Logger
}

func NewSyncService(store Store, encoder Encoder, hasher Hasher, idGen IDGenerator, clock Clock, logger *slog.Logger) *SyncService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncService{
		store:   store,
		encoder: encoder,
		hasher:  hasher,
		idGen:   idGen,
		clock:   clock,
		logger:  logger,
	}
}

// Sync makes the index mirror entries: changed entries are rewritten, entries
// that disappeared are removed and unchanged ones are left alone. All writes
// happen in one transaction.
func (s *SyncService) Sync(ctx context.Context, entries []SourceEntry, opts SyncOptions) (SyncResult, error) {
	if err := validateEntries(entries); err != nil {
		return SyncResult{}, err
	}

	runID, err := s.idGen.NewID()
	if err != nil {
		return SyncResult{}, err
	}
	now := s.clock.Now().UnixNano()
	result := SyncResult{RunID: runID, Reset: opts.Reset}

	byCollection := make(map[string][]SourceEntry)
	for _, entry := range entries {
		byCollection[entry.Collection] = append(byCollection[entry.Collection], entry)
	}

	storeTx, err := s.store.Begin(ctx)
	if err != nil {
		return SyncResult{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = storeTx.Rollback()
		}
	}()

	if opts.Reset {
		if err := storeTx.Reset(ctx); err != nil {
			return SyncResult{}, err
		}
	}

	existing, err := storeTx.ListCollections(ctx)
	if err != nil {
		return SyncResult{}, err
	}
	collections := mergeCollections(existing, byCollection)
	result.Collections = len(collections)

	for _, collection := range collections {
		if err := ctx.Err(); err != nil {
			return SyncResult{}, err
		}
		if _, err := storeTx.EnsureCollection(ctx, collection); err != nil {
			return SyncResult{}, err
		}

		present := make(map[string]struct{}, len(byCollection[collection]))
		for _, entry := range byCollection[collection] {
			present[entry.ID] = struct{}{}
			changed, err := s.syncEntry(ctx, storeTx, entry, runID, now)
			if err != nil {
				return SyncResult{}, err
			}
			if changed {
				result.Upserted++
			} else {
				result.Unchanged++
			}
		}

		ids, err := storeTx.ListEntryIDs(ctx, collection)
		if err != nil {
			return SyncResult{}, err
		}
		for _, id := range ids {
			if _, ok := present[id]; ok {
				continue
			}
			if err := storeTx.DeleteEntry(ctx, collection, id); err != nil {
				return SyncResult{}, err
			}
			result.Removed++
		}
	}

	if err := storeTx.SetState(ctx, State{LastRunID: runID, LastRunAt: now, Entries: len(entries)}); err != nil {
		return SyncResult{}, err
	}
	if err := storeTx.Commit(); err != nil {
		return SyncResult{}, fmt.Errorf("commit index: %w", err)
	}
	committed = true

	s.logger.Info("index synced",
		"run_id", runID,
		"upserted", result.Upserted,
		"unchanged", result.Unchanged,
		"removed", result.Removed,
	)
	return result, nil
}

func (s *SyncService) syncEntry(ctx context.Context, storeTx StoreTx, entry SourceEntry, runID string, now int64) (bool, error) {
	payload, err := s.encoder.EncodeFields(ctx, entry.Entry.Fields())
	if err != nil {
		return false, fmt.Errorf("encode %s/%s: %w", entry.Collection, entry.ID, err)
	}
	hash := s.hasher.SumHex(payload)

	current, found, err := storeTx.GetEntry(ctx, entry.Collection, entry.ID)
	if err != nil {
		return false, err
	}
	if found && current.ContentHash == hash && current.Path == entry.Path {
		return false, nil
	}

	return true, storeTx.UpsertEntry(ctx, entry.Collection, EntryRecord{
		EntryID:     entry.ID,
		Path:        entry.Path,
		Payload:     payload,
		ContentHash: hash,
		RunID:       runID,
		UpdatedAt:   now,
	})
}

func (s *SyncService) List(ctx context.Context, collection string) ([]EntryRecord, error) {
	collection = strings.TrimSpace(collection)
	if collection == "" {
		return nil, ErrCollectionRequired
	}
	return s.store.ListEntries(ctx, collection)
}

func (s *SyncService) State(ctx context.Context) (State, error) {
	return s.store.GetState(ctx)
}

func validateEntries(entries []SourceEntry) error {
	for _, entry := range entries {
		if strings.TrimSpace(entry.Collection) == "" || !domain.IsValidCollectionName(entry.Collection) {
			return ErrCollectionRequired
		}
		if strings.TrimSpace(entry.ID) == "" {
			return ErrEntryIDRequired
		}
		if entry.Entry == nil {
			return ErrEntryRequired
		}
	}
	return nil
}

func mergeCollections(existing []string, current map[string][]SourceEntry) []string {
	seen := make(map[string]struct{}, len(existing)+len(current))
	var merged []string
	for _, name := range existing {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		merged = append(merged, name)
	}
	for name := range current {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		merged = append(merged, name)
	}
	sort.Strings(merged)
	return merged
}
