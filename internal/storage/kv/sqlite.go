package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"fittrack/internal/core/model"
)

type item struct {
	Key   string `gorm:"column:item_key;primaryKey"`
	Value string `gorm:"column:item_value;not null"`
}

func (item) TableName() string {
	return "kv_items"
}

// SQLiteStore keeps values in a single SQLite table.
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) the database at path and migrates the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.AutoMigrate(&item{}); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, fmt.Errorf("migrate kv schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (store *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var row item
	err := store.db.WithContext(ctx).Where("item_key = ?", key).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, &model.StorageError{Op: "get", Key: key, Err: err}
	}
	return row.Value, true, nil
}

func (store *SQLiteStore) Set(ctx context.Context, key, value string) error {
	err := store.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"item_value"}),
	}).Create(&item{Key: key, Value: value}).Error
	if err != nil {
		return &model.StorageError{Op: "set", Key: key, Err: err}
	}
	return nil
}

func (store *SQLiteStore) Remove(ctx context.Context, key string) error {
	if err := store.db.WithContext(ctx).Where("item_key = ?", key).Delete(&item{}).Error; err != nil {
		return &model.StorageError{Op: "remove", Key: key, Err: err}
	}
	return nil
}

func (store *SQLiteStore) Close() error {
	sqlDB, err := store.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
