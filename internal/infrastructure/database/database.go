// Package database owns the sqlite connection and schema migration.
package database

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"readwiser/internal/infrastructure/logger"
)

var SchemaRegistry []interface{}

func RegisterSchemaForAutoMigrate(models ...interface{}) {
	SchemaRegistry = append(SchemaRegistry, models...)
}

// Connect opens (creating if needed) the sqlite database at path. The busy
// timeout keeps the sample-and-bump transaction from failing under
// concurrent digest and command traffic.
func Connect(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		log := logger.GetLogger()
		log.Error().
			Str("error_code", "0b0286c5-41bc-4f6a-9fca-dba5e0a9d6f8").
			Err(err).
			Str("path", path).
			Msg("unable to open database")
		return nil, err
	}

	// sqlite serializes writers; a single connection avoids lock churn.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// Migrate runs AutoMigrate for every registered schema. gorm only adds
// columns and indexes here, which keeps schema evolution additive.
func Migrate(db *gorm.DB) error {
	for _, model := range SchemaRegistry {
		if err := db.AutoMigrate(model); err != nil {
			log := logger.GetLogger()
			log.Error().
				Str("error_code", "8f52b1cc-2d3e-40e7-9f00-6c51b0383a21").
				Err(err).
				Msgf("failed to auto migrate schema: %T", model)
			return err
		}
	}
	return nil
}
