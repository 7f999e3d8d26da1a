// Package store is the sole owner of persistence for roomkeeper. Every other
// package holds read-only value-type projections; all reads and writes of
// durable state go through a *Store.
package store

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrNotFound is returned when a lookup by id finds nothing.
var ErrNotFound = errors.New("not found")

// Store wraps a gorm-managed sqlite database. Each exported method opens (or
// reuses) the pooled connection, does its work inside a transaction where
// more than one statement is involved, and returns plain Go errors — no
// partial commits are ever left behind.
type Store struct {
	gdb *gorm.DB
}

// New opens (creating if necessary) the sqlite database at path and runs
// AutoMigrate against every model. AutoMigrate only adds missing
// tables/columns, so this is safe to call on every startup, including the
// "add stakeholder_id with default UNKNOWN if absent" migration.
func New(path string) (*Store, error) {
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	if err := gdb.AutoMigrate(
		&dbRoom{},
		&dbBookingRecord{},
		&dbRequest{},
		&dbIdlePrediction{},
		&dbAllocationLog{},
		&dbDemandForecast{},
		&dbModelMetadata{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}

	log.Info().Str("path", path).Msg("store opened")
	return &Store{gdb: gdb}, nil
}

// Close releases the underlying sqlite connection.
func (s *Store) Close() error {
	sqlDB, err := s.gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
