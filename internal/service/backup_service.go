package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/straye-as/project-tracker/internal/domain"
	"github.com/straye-as/project-tracker/internal/repository"
	"go.uber.org/zap"
)

// BackupService creates, lists, restores and prunes snapshots of the store
type BackupService struct {
	store  *repository.Store
	dir    string
	logger *zap.Logger
}

func NewBackupService(store *repository.Store, dir string, logger *zap.Logger) *BackupService {
	return &BackupService{
		store:  store,
		dir:    dir,
		logger: logger,
	}
}

func (s *BackupService) Create(ctx context.Context) (*domain.BackupInfo, error) {
	info, err := s.store.Backup(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create backup: %w", err)
	}
	return info, nil
}

// List returns backups newest first
func (s *BackupService) List(ctx context.Context) ([]domain.BackupInfo, error) {
	backups, err := repository.ListBackups(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}
	return backups, nil
}

// Restore replaces the store with a backup. The current state is backed up first.
func (s *BackupService) Restore(ctx context.Context, name string) (*domain.BackupInfo, error) {
	if err := repository.ValidateBackupName(name); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	backups, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if !containsBackup(backups, name) {
		return nil, ErrBackupNotFound
	}

	safety, err := s.Create(ctx)
	if err != nil {
		return nil, err
	}

	info, err := s.store.Restore(s.dir, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBackupNotFound
		}
		return nil, fmt.Errorf("failed to restore backup: %w", err)
	}

	s.logger.Info("Backup restored",
		zap.String("file_name", name),
		zap.String("safety_backup", safety.FileName),
	)
	return info, nil
}

// Prune keeps the newest keep backups and returns the removed file names
func (s *BackupService) Prune(ctx context.Context, keep int) ([]string, error) {
	removed, err := repository.PruneBackups(s.dir, keep)
	if err != nil {
		return removed, fmt.Errorf("failed to prune backups: %w", err)
	}
	if len(removed) > 0 {
		s.logger.Info("Old backups pruned", zap.Int("removed", len(removed)), zap.Int("kept", keep))
	}
	return removed, nil
}

func containsBackup(backups []domain.BackupInfo, name string) bool {
	for _, b := range backups {
		if b.FileName == name {
			return true
		}
	}
	return false
}
