// Package repo is the persistence layer: SQLite bootstrapping, schema
// migration, and query functions over the domain models, all through GORM.
package repo

import (
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/meupet/go-pet-backend/internal/domain"
)

// OpenSQLite opens or creates the database at path, tunes the connection,
// and installs the OpenTelemetry plugin so every query becomes a span.
func OpenSQLite(path string) (*gorm.DB, error) {
	// A missing parent directory surfaces from the sqlite driver as the
	// cryptic "out of memory (14)"; check it up front instead.
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}

	applyPragmas(db)
	tunePool(db)
	return db, nil
}

// WAL with relaxed sync is the standard concurrency posture for a single
// sqlite file; the busy timeout smooths contention between writers.
func applyPragmas(db *gorm.DB) {
	for _, p := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	} {
		db.Exec(p)
	}
}

func tunePool(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
}

// AutoMigrate creates or updates the schema for all registry models.
// Order matters on a fresh database: referenced tables come first.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Owner{},
		&domain.State{},
		&domain.City{},
		&domain.Kind{},
		&domain.Pet{},
		&domain.Photo{},
	)
}
