package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"fittrack/internal/core/model"
	"fittrack/internal/storage/kv"
)

// HistoryKey holds the JSON array of completed workouts.
var HistoryKey = kv.Key("workoutHistory")

// HistoryStore is the append-only list of completed workouts kept under HistoryKey.
// The backing store only supports whole-value writes, so appends read, modify and
// replace the array under a process-local lock.
type HistoryStore struct {
	mu    sync.Mutex
	store kv.Store
}

// NewHistoryStore wraps store.
func NewHistoryStore(store kv.Store) *HistoryStore {
	return &HistoryStore{store: store}
}

// AppendRecord adds record to the end of the history.
func (history *HistoryStore) AppendRecord(ctx context.Context, record model.HistoryRecord) error {
	history.mu.Lock()
	defer history.mu.Unlock()

	records, err := history.readLocked(ctx)
	if err != nil {
		return err
	}
	records = append(records, record)

	data, err := json.Marshal(records)
	if err != nil {
		return &model.StorageError{Op: "encode", Key: HistoryKey, Err: err}
	}
	return history.store.Set(ctx, HistoryKey, string(data))
}

// ReadAll returns records in insertion order. A missing key yields an empty slice.
func (history *HistoryStore) ReadAll(ctx context.Context) ([]model.HistoryRecord, error) {
	history.mu.Lock()
	defer history.mu.Unlock()
	return history.readLocked(ctx)
}

// Recent returns records newest first.
func (history *HistoryStore) Recent(ctx context.Context) ([]model.HistoryRecord, error) {
	records, err := history.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// Summary aggregates the stored history.
func (history *HistoryStore) Summary(ctx context.Context) (model.HistorySummary, error) {
	records, err := history.ReadAll(ctx)
	if err != nil {
		return model.HistorySummary{}, err
	}
	return model.Summarize(records), nil
}

func (history *HistoryStore) readLocked(ctx context.Context) ([]model.HistoryRecord, error) {
	raw, ok, err := history.store.Get(ctx, HistoryKey)
	if err != nil {
		return nil, err
	}
	records := []model.HistoryRecord{}
	if !ok || raw == "" {
		return records, nil
	}
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, &model.StorageError{Op: "decode", Key: HistoryKey, Err: fmt.Errorf("parse history json: %w", err)}
	}
	return records, nil
}
