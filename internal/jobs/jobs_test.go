package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/straye-as/project-tracker/internal/domain"
	"github.com/straye-as/project-tracker/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBackups struct {
	created   int
	prunedTo  []int
	createErr error
}

func (f *fakeBackups) Create(ctx context.Context) (*domain.BackupInfo, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created++
	return &domain.BackupInfo{FileName: "project_tracker_20250101T030000Z.json", CreatedAt: time.Now()}, nil
}

func (f *fakeBackups) Prune(ctx context.Context, keep int) ([]string, error) {
	f.prunedTo = append(f.prunedTo, keep)
	return []string{"old.json"}, nil
}

func TestBackupJob_Run(t *testing.T) {
	tests := []struct {
		name        string
		keep        int
		createErr   error
		wantCreated int
		wantPruned  []int
	}{
		{name: "creates and prunes", keep: 7, wantCreated: 1, wantPruned: []int{7}},
		{name: "keep zero keeps everything", keep: 0, wantCreated: 1},
		{name: "failed backup skips pruning", keep: 7, createErr: errors.New("disk full")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backups := &fakeBackups{createErr: tt.createErr}
			jobs.NewBackupJob(backups, tt.keep, time.Second, zap.NewNop()).Run()

			assert.Equal(t, tt.wantCreated, backups.created)
			assert.Equal(t, tt.wantPruned, backups.prunedTo)
		})
	}
}

func TestScheduler_AddAndRemoveJobs(t *testing.T) {
	scheduler := jobs.NewScheduler(zap.NewNop())

	require.NoError(t, jobs.RegisterBackupJob(scheduler, &fakeBackups{}, 3, "0 3 * * *", time.Minute, zap.NewNop()))
	assert.Equal(t, []string{jobs.BackupJobName}, scheduler.GetJobNames())

	assert.Error(t, scheduler.AddJob(jobs.BackupJobName, "@daily", func() {}), "names are unique")
	assert.NoError(t, scheduler.AddJob("with_seconds", "0 */30 * * * *", func() {}))
	assert.Error(t, scheduler.AddJob("broken", "not a cron", func() {}))

	require.NoError(t, scheduler.RemoveJob("with_seconds"))
	assert.Error(t, scheduler.RemoveJob("with_seconds"))
}

func TestScheduler_RunsJobs(t *testing.T) {
	scheduler := jobs.NewScheduler(zap.NewNop())
	ran := make(chan struct{}, 1)
	require.NoError(t, scheduler.AddJob("tick", "@every 1s", func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	}))

	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}
