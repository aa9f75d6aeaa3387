package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fittrack/internal/core/model"
	"fittrack/internal/storage"
	"fittrack/internal/storage/kv"
)

type failingStore struct {
	*kv.MemoryStore
	failSet bool
	failGet bool
}

func (store *failingStore) Get(ctx context.Context, key string) (string, bool, error) {
	if store.failGet {
		return "", false, &model.StorageError{Op: "get", Key: key, Err: errors.New("unavailable")}
	}
	return store.MemoryStore.Get(ctx, key)
}

func (store *failingStore) Set(ctx context.Context, key, value string) error {
	if store.failSet {
		return &model.StorageError{Op: "set", Key: key, Err: errors.New("read-only")}
	}
	return store.MemoryStore.Set(ctx, key, value)
}

func TestHistoryEmpty(t *testing.T) {
	history := storage.NewHistoryStore(kv.NewMemoryStore())

	records, err := history.ReadAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestHistoryAppendKeepsInsertionOrderAndLayout(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	history := storage.NewHistoryStore(store)
	base := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, history.AppendRecord(ctx, model.NewHistoryRecord("Push Workout", base)))
	require.NoError(t, history.AppendRecord(ctx, model.NewHistoryRecord("Leg Workout", base.Add(time.Minute))))

	raw, ok, err := store.Get(ctx, storage.HistoryKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[
		{"title":"Push Workout","completedAt":"2024-02-01T09:00:00.000Z"},
		{"title":"Leg Workout","completedAt":"2024-02-01T09:01:00.000Z"}
	]`, raw)

	records, err := history.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Push Workout", records[0].Title)

	recent, err := history.Recent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Leg Workout", recent[0].Title)
	assert.Equal(t, "Push Workout", recent[1].Title)

	summary, err := history.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.True(t, summary.LastCompletedAt.Equal(base.Add(time.Minute)))
}

func TestHistoryReadsExistingArray(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	require.NoError(t, store.Set(ctx, storage.HistoryKey, `[{"title":"Pull Workout","completedAt":"2023-12-24T18:30:00.000Z"}]`))

	records, err := storage.NewHistoryStore(store).ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Pull Workout", records[0].Title)
	assert.Equal(t, 2023, records[0].CompletedAt.Year())
}

func TestHistoryErrorsAreStorageErrors(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		store *failingStore
		op    string
	}{
		{name: "write failure", store: &failingStore{MemoryStore: kv.NewMemoryStore(), failSet: true}, op: "set"},
		{name: "read failure", store: &failingStore{MemoryStore: kv.NewMemoryStore(), failGet: true}, op: "get"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := storage.NewHistoryStore(tt.store).AppendRecord(ctx, model.NewHistoryRecord("Push Workout", time.Now()))
			var storageErr *model.StorageError
			require.True(t, errors.As(err, &storageErr))
			assert.Equal(t, tt.op, storageErr.Op)
		})
	}
}

func TestHistoryCorruptValue(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	require.NoError(t, store.Set(ctx, storage.HistoryKey, `{not json`))

	_, err := storage.NewHistoryStore(store).ReadAll(ctx)
	var storageErr *model.StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "decode", storageErr.Op)
}
