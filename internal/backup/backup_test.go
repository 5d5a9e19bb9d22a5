package backup

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beesaferoot/imobipro/internal/store"
	"github.com/beesaferoot/imobipro/models"
)

func setupService(t *testing.T) (*Service, string) {
	tmp := t.TempDir()
	db, err := store.OpenSQLite(filepath.Join(tmp, "imobipro.db"), nil)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))
	require.NoError(t, store.New(db).Insert(context.Background(), &models.Property{Address: "Rua A, 100"}))

	dir := filepath.Join(tmp, "backups")
	return New(db, dir, log.New(io.Discard, "", 0)), dir
}

func TestCreateBackup(t *testing.T) {
	svc, dir := setupService(t)
	svc.now = func() time.Time { return time.Date(2026, 3, 15, 2, 0, 0, 0, time.Local) }

	entry, err := svc.Create(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "imobipro_backup_db_20260315_020000.db", entry.Name)
	assert.Positive(t, entry.Size)

	// the copy is a usable database
	db, err := store.OpenSQLite(filepath.Join(dir, entry.Name), nil)
	require.NoError(t, err)
	n, err := store.New(db).Count(context.Background(), &models.Property{}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = svc.Create(context.Background())
	assert.Error(t, err, "same timestamp must not overwrite")
}

func TestListAndPrune(t *testing.T) {
	svc, dir := setupService(t)

	base := time.Date(2026, 3, 1, 2, 0, 0, 0, time.Local)
	for i := 0; i < 4; i++ {
		stamp := base.AddDate(0, 0, i)
		svc.now = func() time.Time { return stamp }
		_, err := svc.Create(context.Background())
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	entries, err := svc.List()
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, "imobipro_backup_db_20260304_020000.db", entries[0].Name)

	removed, err := svc.Prune(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"imobipro_backup_db_20260302_020000.db", "imobipro_backup_db_20260301_020000.db"}, removed)

	entries, err = svc.List()
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, err = os.Stat(filepath.Join(dir, "notes.txt"))
	assert.NoError(t, err)

	_, err = svc.Prune(0)
	assert.Error(t, err)
}

func TestListMissingDirectory(t *testing.T) {
	svc := New(nil, filepath.Join(t.TempDir(), "none"), nil)
	entries, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}
