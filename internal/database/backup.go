package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"hotelbook/internal/config"
)

const backupPrefix = "hotelbook_"

// BackupService periodically snapshots the SQLite file with VACUUM INTO.
type BackupService struct {
	db     *DB
	config config.BackupConfig
	logger *zerolog.Logger
	now    func() time.Time
}

func NewBackupService(db *DB, cfg config.BackupConfig, logger *zerolog.Logger) *BackupService {
	return &BackupService{
		db:     db,
		config: cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Start runs one backup immediately and then one per schedule interval until ctx is done.
func (s *BackupService) Start(ctx context.Context) {
	if !s.config.Enabled {
		s.logger.Info().Msg("Backup service is disabled")
		return
	}

	interval := 24 * time.Hour
	if s.config.Schedule != "" {
		if d, err := time.ParseDuration(s.config.Schedule); err == nil && d > 0 {
			interval = d
		} else {
			s.logger.Warn().Str("schedule", s.config.Schedule).Msg("Invalid backup schedule, using 24h")
		}
	}
	s.logger.Info().Dur("interval", interval).Msg("Backup service started")

	s.runOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *BackupService) runOnce(ctx context.Context) {
	if _, err := s.PerformBackup(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Backup failed")
		return
	}
	s.CleanupOldBackups()
}

// PerformBackup writes a consistent copy of the live database and returns its path.
func (s *BackupService) PerformBackup(ctx context.Context) (string, error) {
	if isMemoryPath(s.db.Path()) {
		return "", errors.New("in-memory database cannot be backed up")
	}
	if err := os.MkdirAll(s.config.StoragePath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := backupPrefix + s.now().UTC().Format("20060102_150405") + ".db"
	backupPath := filepath.Join(s.config.StoragePath, name)

	// VACUUM INTO refuses to overwrite.
	if _, err := os.Stat(backupPath); err == nil {
		return "", fmt.Errorf("backup %s already exists", backupPath)
	}

	quoted := strings.ReplaceAll(backupPath, "'", "''")
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", quoted)); err != nil {
		return "", fmt.Errorf("vacuum into %s: %w", backupPath, err)
	}

	s.logger.Info().Str("path", backupPath).Msg("Backup completed")
	return backupPath, nil
}

// CleanupOldBackups removes backups older than the retention window.
func (s *BackupService) CleanupOldBackups() {
	if s.config.RetentionDays <= 0 {
		return
	}

	files, err := os.ReadDir(s.config.StoragePath)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read backup directory for cleanup")
		return
	}

	cutoff := s.now().AddDate(0, 0, -s.config.RetentionDays)

	for _, file := range files {
		if file.IsDir() || !strings.HasPrefix(file.Name(), backupPrefix) {
			continue
		}

		info, err := file.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			path := filepath.Join(s.config.StoragePath, file.Name())
			if err := os.Remove(path); err != nil {
				s.logger.Warn().Err(err).Str("file", file.Name()).Msg("Failed to delete old backup")
				continue
			}
			s.logger.Info().Str("file", file.Name()).Msg("Deleted old backup")
		}
	}
}
