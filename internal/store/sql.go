package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// item is one row of the storage table.
type item struct {
	Key   string `gorm:"column:item_key;primaryKey"`
	Value string `gorm:"column:item_value;type:text;not null"`
}

// SQLBackend stores items as rows of a two-column table.
type SQLBackend struct {
	db    *gorm.DB
	table string
}

// OpenPostgres connects to postgres with dsn and migrates the storage table.
func OpenPostgres(dsn, table string) (*SQLBackend, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	backend, err := NewSQLBackend(db, table)
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}
	return backend, nil
}

// NewSQLBackend uses an existing gorm connection and migrates the table.
func NewSQLBackend(db *gorm.DB, table string) (*SQLBackend, error) {
	if table == "" {
		table = "storage_items"
	}
	if err := db.Table(table).AutoMigrate(&item{}); err != nil {
		return nil, fmt.Errorf("failed to migrate table %s: %w", table, err)
	}
	return &SQLBackend{db: db, table: table}, nil
}

// GetItem implements Backend.
func (s *SQLBackend) GetItem(ctx context.Context, key string) (string, bool, error) {
	var row item
	err := s.db.WithContext(ctx).Table(s.table).Where("item_key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return row.Value, true, nil
}

// SetItem implements Backend.
func (s *SQLBackend) SetItem(ctx context.Context, key, value string) error {
	return s.db.WithContext(ctx).Table(s.table).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"item_value"}),
	}).Create(&item{Key: key, Value: value}).Error
}

// Close implements Backend.
func (s *SQLBackend) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
