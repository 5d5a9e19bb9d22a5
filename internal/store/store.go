// Package store is the relational data-access layer shared by the charge
// generator and the spreadsheet importer. All parameters are bound
// positionally; conditions are plain SQL fragments with ? placeholders.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/beesaferoot/imobipro/internal/batch"
	"github.com/beesaferoot/imobipro/internal/config"
	"github.com/beesaferoot/imobipro/models"
)

// ErrNotFound is returned by Get when no row has the requested id.
var ErrNotFound = errors.New("record not found")

// Store is the data-access surface consumed by the core components.
type Store interface {
	// Insert persists record, a pointer to a model; its ID is set on success.
	Insert(ctx context.Context, record any) error
	// Find loads every row of dest's model matching query. An empty query
	// matches all rows.
	Find(ctx context.Context, dest any, query string, args ...any) error
	// Get loads the row with the given id into dest.
	Get(ctx context.Context, dest any, id uint) error
	// Count returns how many rows of model match query.
	Count(ctx context.Context, model any, query string, args ...any) (int64, error)
	// Update sets fields on the row with the given id and reports whether
	// a row matched.
	Update(ctx context.Context, model any, id uint, fields map[string]any) (bool, error)
}

// GormStore implements Store on top of gorm.
type GormStore struct {
	db *gorm.DB
}

// New wraps an open gorm connection.
func New(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// DB exposes the underlying connection for maintenance tasks such as backups.
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func (s *GormStore) Insert(ctx context.Context, record any) error {
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return batch.Storage(fmt.Sprintf("insert %T", record), err)
	}
	return nil
}

func (s *GormStore) Find(ctx context.Context, dest any, query string, args ...any) error {
	tx := s.db.WithContext(ctx).Order("id")
	if query != "" {
		tx = tx.Where(query, args...)
	}
	if err := tx.Find(dest).Error; err != nil {
		return batch.Storage(fmt.Sprintf("query %T", dest), err)
	}
	return nil
}

func (s *GormStore) Get(ctx context.Context, dest any, id uint) error {
	err := s.db.WithContext(ctx).First(dest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %T %d", ErrNotFound, dest, id)
	}
	if err != nil {
		return batch.Storage(fmt.Sprintf("get %T %d", dest, id), err)
	}
	return nil
}

func (s *GormStore) Count(ctx context.Context, model any, query string, args ...any) (int64, error) {
	var n int64
	tx := s.db.WithContext(ctx).Model(model)
	if query != "" {
		tx = tx.Where(query, args...)
	}
	if err := tx.Count(&n).Error; err != nil {
		return 0, batch.Storage(fmt.Sprintf("count %T", model), err)
	}
	return n, nil
}

func (s *GormStore) Update(ctx context.Context, model any, id uint, fields map[string]any) (bool, error) {
	tx := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return false, batch.Storage(fmt.Sprintf("update %T %d", model, id), tx.Error)
	}
	return tx.RowsAffected > 0, nil
}

// Open connects to the database named by cfg.DatabaseURL.
func Open(cfg *config.Config) (*gorm.DB, error) {
	gcfg := gormConfig(cfg.Debug)
	if cfg.IsPostgres() {
		db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), gcfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return db, nil
	}
	return OpenSQLite(cfg.DatabaseURL, gcfg)
}

// OpenSQLite opens a SQLite database with foreign keys enforced. A single
// connection is kept so that ":memory:" databases are shared by every query.
func OpenSQLite(dsn string, gcfg *gorm.Config) (*gorm.DB, error) {
	if gcfg == nil {
		gcfg = gormConfig(false)
	}

	db, err := gorm.Open(sqlite.Open(dsn), gcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", dsn, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the tables of every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func gormConfig(debug bool) *gorm.Config {
	level := logger.Silent
	if debug {
		level = logger.Info
	}
	return &gorm.Config{Logger: logger.Default.LogMode(level)}
}
