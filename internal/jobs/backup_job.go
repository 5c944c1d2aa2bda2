package jobs

import (
	"context"
	"time"

	"github.com/straye-as/project-tracker/internal/domain"
	"go.uber.org/zap"
)

// BackupJobName is the name of the scheduled store backup job
const BackupJobName = "store_backup"

// BackupService is the part of the backup service the job needs
type BackupService interface {
	Create(ctx context.Context) (*domain.BackupInfo, error)
	Prune(ctx context.Context, keep int) ([]string, error)
}

// BackupJob snapshots the document store and prunes old snapshots
type BackupJob struct {
	backups BackupService
	keep    int
	timeout time.Duration
	logger  *zap.Logger
}

// NewBackupJob creates a backup job. keep <= 0 disables pruning.
func NewBackupJob(backups BackupService, keep int, timeout time.Duration, logger *zap.Logger) *BackupJob {
	return &BackupJob{
		backups: backups,
		keep:    keep,
		timeout: timeout,
		logger:  logger,
	}
}

// Run creates one backup and then applies retention. A failed backup skips pruning.
func (j *BackupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	info, err := j.backups.Create(ctx)
	if err != nil {
		j.logger.Error("scheduled backup failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	var removed []string
	if j.keep > 0 {
		removed, err = j.backups.Prune(ctx, j.keep)
		if err != nil {
			j.logger.Error("backup retention failed", zap.Error(err), zap.Int("keep", j.keep))
		}
	}

	j.logger.Info("scheduled backup completed",
		zap.String("file_name", info.FileName),
		zap.Int("pruned", len(removed)),
		zap.Duration("duration", time.Since(start)))
}

// RegisterBackupJob registers the backup job with the scheduler
func RegisterBackupJob(scheduler *Scheduler, backups BackupService, keep int, cronExpr string, timeout time.Duration, logger *zap.Logger) error {
	job := NewBackupJob(backups, keep, timeout, logger)
	return scheduler.AddJob(BackupJobName, cronExpr, job.Run)
}
