package kv

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"fittrack/internal/core/model"
)

const fileSuffix = ".value"

// FileStore keeps one file per key under a directory.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// OpenFileStore creates dir if needed.
func OpenFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (store *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, &model.StorageError{Op: "get", Key: key, Err: err}
	}
	store.mu.Lock()
	defer store.mu.Unlock()

	data, err := os.ReadFile(store.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, &model.StorageError{Op: "get", Key: key, Err: err}
	}
	return string(data), true, nil
}

// Set replaces the value atomically via a temp file and rename.
func (store *FileStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return &model.StorageError{Op: "set", Key: key, Err: err}
	}
	store.mu.Lock()
	defer store.mu.Unlock()

	if err := store.writeLocked(key, value); err != nil {
		return &model.StorageError{Op: "set", Key: key, Err: err}
	}
	return nil
}

func (store *FileStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return &model.StorageError{Op: "remove", Key: key, Err: err}
	}
	store.mu.Lock()
	defer store.mu.Unlock()

	if err := os.Remove(store.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &model.StorageError{Op: "remove", Key: key, Err: err}
	}
	return nil
}

func (store *FileStore) Close() error {
	return nil
}

func (store *FileStore) writeLocked(key, value string) error {
	tmp, err := os.CreateTemp(store.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, store.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace value file: %w", err)
	}
	return nil
}

func (store *FileStore) path(key string) string {
	return filepath.Join(store.dir, url.PathEscape(key)+fileSuffix)
}
