// Package backup snapshots the SQLite database into timestamped files and
// keeps the backup directory bounded.
package backup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/beesaferoot/imobipro/internal/config"
)

const (
	filePrefix = "imobipro_backup_db_"
	fileSuffix = ".db"
	stampFmt   = "20060102_150405"
)

// ErrUnsupported is returned for databases other than SQLite.
var ErrUnsupported = errors.New("backups are only supported for sqlite databases")

// Entry describes one backup file.
type Entry struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Service writes and rotates backups of db under dir.
type Service struct {
	db  *gorm.DB
	dir string
	log *log.Logger
	now func() time.Time
}

// New returns a backup Service. A nil logger uses log.Default().
func New(db *gorm.DB, dir string, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{db: db, dir: dir, log: logger, now: time.Now}
}

// Create writes a consistent copy of the database with VACUUM INTO and
// returns its entry.
func (s *Service) Create(ctx context.Context) (*Entry, error) {
	if s.db.Dialector.Name() != "sqlite" {
		return nil, ErrUnsupported
	}

	dir, err := config.EnsureDir(s.dir)
	if err != nil {
		return nil, err
	}

	created := s.now()
	name := filePrefix + created.Format(stampFmt) + fileSuffix
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("backup %s already exists", name)
	}

	if err := s.db.WithContext(ctx).Exec("VACUUM INTO ?", path).Error; err != nil {
		return nil, fmt.Errorf("failed to write backup %s: %w", name, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup %s: %w", name, err)
	}

	s.log.Printf("backup: wrote %s (%d bytes)", path, info.Size())
	return &Entry{Name: name, Path: path, Size: info.Size(), CreatedAt: created}, nil
}

// List returns the backups in the directory, newest first. A missing
// directory holds no backups.
func (s *Service) List() ([]Entry, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var out []Entry
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
		created, err := time.ParseInLocation(stampFmt, stamp, time.Local)
		if err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{Name: name, Path: filepath.Join(s.dir, name), Size: info.Size(), CreatedAt: created})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Prune deletes all but the keep newest backups and returns the removed names.
func (s *Service) Prune(keep int) ([]string, error) {
	if keep < 1 {
		return nil, fmt.Errorf("keep must be positive, got %d", keep)
	}

	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(entries) <= keep {
		return nil, nil
	}

	var removed []string
	for _, e := range entries[keep:] {
		if err := os.Remove(e.Path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", e.Name, err)
		}
		removed = append(removed, e.Name)
	}
	s.log.Printf("backup: removed %d old backups", len(removed))
	return removed, nil
}
