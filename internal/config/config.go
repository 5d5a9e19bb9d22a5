// Package config reads runtime settings from the environment. Values are
// resolved once and passed to each component; nothing reads the
// environment after Load.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds process configuration.
type Config struct {
	DatabaseURL     string
	BackupDir       string
	BackupKeep      int
	ListenAddr      string
	BillingSchedule string
	BackupSchedule  string
	DefaultCity     string
	DefaultState    string
	Debug           bool
}

// Load builds a Config from the environment, applying defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:     getenv("DATABASE_URL", "imobipro.db"),
		BackupDir:       getenv("BACKUP_DIR", "backups"),
		ListenAddr:      getenv("LISTEN_ADDR", ":8080"),
		BillingSchedule: getenv("BILLING_CRON", "0 6 * * *"),
		BackupSchedule:  getenv("BACKUP_CRON", "0 2 * * *"),
		DefaultCity:     os.Getenv("IMOBIPRO_DEFAULT_CITY"),
		DefaultState:    os.Getenv("IMOBIPRO_DEFAULT_STATE"),
	}

	keep, err := strconv.Atoi(getenv("BACKUP_KEEP", "7"))
	if err != nil || keep < 1 {
		return nil, fmt.Errorf("invalid BACKUP_KEEP %q: must be a positive integer", os.Getenv("BACKUP_KEEP"))
	}
	cfg.BackupKeep = keep

	if v := os.Getenv("IMOBIPRO_DEBUG"); v != "" {
		cfg.Debug, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid IMOBIPRO_DEBUG %q: %w", v, err)
		}
	}

	return cfg, nil
}

// IsPostgres reports whether DatabaseURL points at a PostgreSQL server.
func (c *Config) IsPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

// EnsureDir cleans path, makes it absolute and creates it if missing.
func EnsureDir(path string) (string, error) {
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("invalid directory %q: %w", path, err)
	}

	if err := os.MkdirAll(absPath, 0755); err != nil {
		return "", fmt.Errorf("directory %s is not writable: %w", absPath, err)
	}

	return absPath, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
