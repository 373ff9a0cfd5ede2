package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/punchlist/internal/service"
)

func TestSQLiteStorage_Backup(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	advance := fixedClock(store, time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))

	_, err := store.SaveInspection(ctx, testItems(5), testMetrics("Harbour View"), "A", "a.csv")
	require.NoError(t, err)

	info, err := store.Backup(ctx, "before-import")
	require.NoError(t, err)
	assert.Equal(t, "before-import", info.ID)
	assert.Equal(t, ExpectedSchemaVersion, info.SchemaVersion)
	assert.Equal(t, 5, info.RowCounts["inspector_inspection_items"])
	assert.Equal(t, 1, info.RowCounts["inspector_inspections"])
	assert.Positive(t, info.FileSize)
	assert.FileExists(t, info.Path)
	assert.FileExists(t, filepath.Join(filepath.Dir(store.Path()), "backups", "before-import.meta.json"))

	// The copy is a usable database.
	restored, err := NewSQLiteStorage(info.Path)
	require.NoError(t, err)
	defer func() { _ = restored.Close() }()
	inspections, err := restored.ListInspections(ctx, service.InspectionFilter{})
	require.NoError(t, err)
	assert.Len(t, inspections, 1)

	_, err = store.Backup(ctx, "before-import")
	assert.ErrorIs(t, err, ErrBackupExists)

	advance(time.Hour)
	auto, err := store.Backup(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "backup-2024-05-01-100000", auto.ID)

	backups, err := store.ListBackups()
	require.NoError(t, err)
	require.Len(t, backups, 2)
	assert.Equal(t, auto.ID, backups[0].ID, "newest first")
}

func TestSQLiteStorage_BackupRejectsBadTags(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	for _, tag := range []string{"../escape", "a/b", "it's"} {
		_, err := store.Backup(ctx, tag)
		assert.Error(t, err, tag)
	}
}

func TestSQLiteStorage_BackupInMemory(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, err = store.Backup(context.Background(), "x")
	assert.ErrorIs(t, err, ErrBackupUnsupported)
}

func TestSQLiteStorage_ListBackupsEmpty(t *testing.T) {
	store := createTestStorage(t)

	backups, err := store.ListBackups()
	require.NoError(t, err)
	assert.Empty(t, backups)

	_, statErr := os.Stat(filepath.Join(filepath.Dir(store.Path()), "backups"))
	assert.True(t, os.IsNotExist(statErr))
}
