package repository

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/straye-as/project-tracker/internal/domain"
	"go.uber.org/zap"
)

const (
	backupPrefix     = "project_tracker_"
	backupTimeLayout = "20060102T150405Z"
)

// ErrInvalidBackupName is returned for names that could escape the backups directory
var ErrInvalidBackupName = errors.New("invalid backup file name")

// Backup writes a timestamped copy of the current document into dir
func (s *Store) Backup(dir string) (*domain.BackupInfo, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backups directory: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	base := backupPrefix + time.Now().UTC().Format(backupTimeLayout)
	name := base + ".json"
	for i := 1; fileExists(filepath.Join(dir, name)); i++ {
		name = fmt.Sprintf("%s_%d.json", base, i)
	}

	path := filepath.Join(dir, name)
	if err := writeDocument(path, s.doc); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Backup created", zap.String("file_name", name))
	return &domain.BackupInfo{FileName: name, CreatedAt: info.ModTime().UTC()}, nil
}

// ListBackups returns the JSON backups in dir, newest first
func ListBackups(dir string) ([]domain.BackupInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.BackupInfo{}, nil
		}
		return nil, err
	}

	backups := make([]domain.BackupInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, domain.BackupInfo{
			FileName:  entry.Name(),
			CreatedAt: info.ModTime().UTC(),
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].CreatedAt.Equal(backups[j].CreatedAt) {
			return backups[i].FileName > backups[j].FileName
		}
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// Restore replaces the document with the named backup and persists it
func (s *Store) Restore(dir, name string) (*domain.BackupInfo, error) {
	if err := ValidateBackupName(name); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	doc, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	if err := s.replace(doc); err != nil {
		return nil, err
	}

	s.logger.Info("Store restored from backup", zap.String("file_name", name))
	return &domain.BackupInfo{FileName: name, CreatedAt: info.ModTime().UTC()}, nil
}

// PruneBackups keeps the newest keep backups in dir and removes the rest
func PruneBackups(dir string, keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}
	backups, err := ListBackups(dir)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, b := range backups {
		if !strings.HasPrefix(b.FileName, backupPrefix) {
			continue
		}
		if keep > 0 {
			keep--
			continue
		}
		if err := os.Remove(filepath.Join(dir, b.FileName)); err != nil {
			return removed, err
		}
		removed = append(removed, b.FileName)
	}
	return removed, nil
}

// ValidateBackupName rejects names with path components or a non-JSON extension
func ValidateBackupName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") ||
		strings.ContainsAny(name, `/\`) || !strings.HasSuffix(name, ".json") {
		return ErrInvalidBackupName
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
