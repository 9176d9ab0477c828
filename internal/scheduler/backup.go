package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/stresswatch/internal/reliability"
)

const backupRetentionDays = 30

// BackupJob snapshots the databases and uploads the archive to object
// storage, then rotates old backups.
type BackupJob struct {
	log    zerolog.Logger
	backup *reliability.BackupService
}

// NewBackupJob creates a new BackupJob
func NewBackupJob(backup *reliability.BackupService) *BackupJob {
	return &BackupJob{
		log:    zerolog.Nop(),
		backup: backup,
	}
}

// SetLogger sets the logger for the job
func (j *BackupJob) SetLogger(log zerolog.Logger) {
	j.log = log
}

// Name returns the job name
func (j *BackupJob) Name() string {
	return "backup"
}

// Run executes the backup job
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	if err := j.backup.CreateAndUploadBackup(ctx); err != nil {
		return err
	}

	if err := j.backup.RotateOldBackups(ctx, backupRetentionDays); err != nil {
		j.log.Warn().Err(err).Msg("Backup rotation failed")
	}

	return nil
}
