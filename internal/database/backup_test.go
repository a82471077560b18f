package database

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelbook/internal/config"
	"hotelbook/internal/models"
)

func TestBackupService(t *testing.T) {
	tempDir := t.TempDir()
	storagePath := filepath.Join(tempDir, "backups")

	logger := zerolog.Nop()
	db, err := NewDB(filepath.Join(tempDir, "source.db"), &logger)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.CreateHotel(ctx, &models.Hotel{ID: "h1", Name: "Seaside", Location: "Nice", IsActive: true}))

	cfg := config.BackupConfig{
		Enabled:       true,
		StoragePath:   storagePath,
		RetentionDays: 1,
	}
	s := NewBackupService(db, cfg, &logger)

	t.Run("PerformBackup", func(t *testing.T) {
		path, err := s.PerformBackup(ctx)
		require.NoError(t, err)

		snapshot, err := sql.Open("sqlite3", path)
		require.NoError(t, err)
		defer snapshot.Close()

		var name string
		require.NoError(t, snapshot.QueryRow(`SELECT name FROM hotels WHERE id = 'h1'`).Scan(&name))
		assert.Equal(t, "Seaside", name)
	})

	t.Run("SameSecondRefused", func(t *testing.T) {
		fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		s.now = func() time.Time { return fixed }
		defer func() { s.now = time.Now }()

		_, err := s.PerformBackup(ctx)
		require.NoError(t, err)
		_, err = s.PerformBackup(ctx)
		assert.Error(t, err)
	})

	t.Run("CleanupOldBackups", func(t *testing.T) {
		oldFile := filepath.Join(storagePath, backupPrefix+"old.db")
		require.NoError(t, os.WriteFile(oldFile, []byte("old"), 0o644))
		foreign := filepath.Join(storagePath, "notes.txt")
		require.NoError(t, os.WriteFile(foreign, []byte("keep"), 0o644))

		oldTime := time.Now().AddDate(0, 0, -2)
		require.NoError(t, os.Chtimes(oldFile, oldTime, oldTime))
		require.NoError(t, os.Chtimes(foreign, oldTime, oldTime))

		s.CleanupOldBackups()

		_, err := os.Stat(oldFile)
		assert.True(t, os.IsNotExist(err))
		_, err = os.Stat(foreign)
		assert.NoError(t, err)
	})
}

func TestBackupService_MemoryDB(t *testing.T) {
	db := setupTestDB(t)
	logger := zerolog.Nop()
	s := NewBackupService(db, config.BackupConfig{Enabled: true, StoragePath: t.TempDir()}, &logger)

	_, err := s.PerformBackup(context.Background())
	assert.Error(t, err)
}

func TestBackupService_Disabled(t *testing.T) {
	logger := zerolog.Nop()
	s := NewBackupService(nil, config.BackupConfig{Enabled: false}, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NotPanics(t, func() { s.Start(ctx) })
}
