package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kioskbooth/portraits/internal/store"
	"github.com/kioskbooth/portraits/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJob(t *testing.T) *models.GenerationJob {
	t.Helper()
	now := time.Now().UTC()
	return &models.GenerationJob{
		ID:             uuid.NewString(),
		IdempotencyKey: uuid.NewString(),
		StyleID:        "cyberpunk",
		Status:         models.JobStatusQueued,
		Progress:       0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestCreateGet_Roundtrip(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	job := newJob(t)

	require.NoError(t, s.CreateJob(ctx, job))

	got, err := s.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, models.JobStatusQueued, got.Status)
	assert.Equal(t, 0, got.Progress)
	assert.Nil(t, got.ImageURL)
	assert.Nil(t, got.ResultURL)
	assert.Nil(t, got.Error)
}

func TestCreateJob_DuplicateID(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	job := newJob(t)

	require.NoError(t, s.CreateJob(ctx, job))
	err := s.CreateJob(ctx, job)
	assert.ErrorIs(t, err, store.ErrDuplicateJob)
}

func TestGetJob_NotFound(t *testing.T) {
	s := store.NewMemoryStore()
	_, err := s.GetJob(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetJob_ReturnsCopy(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	job := newJob(t)
	require.NoError(t, s.CreateJob(ctx, job))

	got, err := s.GetJob(ctx, job.ID)
	require.NoError(t, err)
	got.Status = models.JobStatusDone
	got.Progress = 100

	again, err := s.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusQueued, again.Status)
	assert.Equal(t, 0, again.Progress)
}

func TestUpdateJobStatus_PipelineTransitions(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	job := newJob(t)
	require.NoError(t, s.CreateJob(ctx, job))

	require.NoError(t, s.UpdateJobStatus(ctx, job.ID, models.JobStatusRunning, store.WithProgress(10)))
	require.NoError(t, s.UpdateJobStatus(ctx, job.ID, models.JobStatusRunning,
		store.WithProgress(30), store.WithImageURL("https://img.test/input.jpg")))
	require.NoError(t, s.UpdateJobStatus(ctx, job.ID, models.JobStatusRunning, store.WithProgress(50)))
	require.NoError(t, s.UpdateJobStatus(ctx, job.ID, models.JobStatusRunning, store.WithProgress(90)))
	require.NoError(t, s.UpdateJobStatus(ctx, job.ID, models.JobStatusDone,
		store.WithProgress(100), store.WithResultURL("https://img.test/result.jpg")))

	got, err := s.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusDone, got.Status)
	assert.Equal(t, 100, got.Progress)
	require.NotNil(t, got.ImageURL)
	assert.Equal(t, "https://img.test/input.jpg", *got.ImageURL)
	require.NotNil(t, got.ResultURL)
	assert.Equal(t, "https://img.test/result.jpg", *got.ResultURL)
	assert.Nil(t, got.Error)
}

func TestUpdateJobStatus_TerminalStatesAreFinal(t *testing.T) {
	tests := []struct {
		name     string
		terminal string
	}{
		{"done", models.JobStatusDone},
		{"failed", models.JobStatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := store.NewMemoryStore()
			ctx := context.Background()
			job := newJob(t)
			require.NoError(t, s.CreateJob(ctx, job))
			require.NoError(t, s.UpdateJobStatus(ctx, job.ID, models.JobStatusRunning, store.WithProgress(10)))
			if tt.terminal == models.JobStatusDone {
				require.NoError(t, s.UpdateJobStatus(ctx, job.ID, tt.terminal, store.WithProgress(100)))
			} else {
				require.NoError(t, s.UpdateJobStatus(ctx, job.ID, tt.terminal))
			}

			for _, next := range []string{
				models.JobStatusQueued,
				models.JobStatusRunning,
				models.JobStatusDone,
				models.JobStatusFailed,
			} {
				err := s.UpdateJobStatus(ctx, job.ID, next)
				assert.ErrorIs(t, err, store.ErrBadTransition, "transition %s -> %s", tt.terminal, next)
			}
		})
	}
}

func TestUpdateJobStatus_QueuedCannotSkipToDone(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	job := newJob(t)
	require.NoError(t, s.CreateJob(ctx, job))

	err := s.UpdateJobStatus(ctx, job.ID, models.JobStatusDone, store.WithProgress(100))
	assert.ErrorIs(t, err, store.ErrBadTransition)
}

func TestUpdateJobStatus_QueuedCanFail(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	job := newJob(t)
	require.NoError(t, s.CreateJob(ctx, job))

	je := &models.JobError{Code: models.CodeUnknown, Message: "boom"}
	require.NoError(t, s.UpdateJobStatus(ctx, job.ID, models.JobStatusFailed, store.WithJobError(je)))

	got, err := s.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, got.Status)
	require.NotNil(t, got.Error)
	assert.Equal(t, models.CodeUnknown, got.Error.Code)
	assert.Equal(t, 0, got.Progress)
}

func TestUpdateJobStatus_ProgressNeverDecreases(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	job := newJob(t)
	require.NoError(t, s.CreateJob(ctx, job))

	require.NoError(t, s.UpdateJobStatus(ctx, job.ID, models.JobStatusRunning, store.WithProgress(50)))
	require.NoError(t, s.UpdateJobStatus(ctx, job.ID, models.JobStatusRunning, store.WithProgress(10)))

	got, err := s.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.Progress)
}

func TestUpdateJobStatus_NotFound(t *testing.T) {
	s := store.NewMemoryStore()
	err := s.UpdateJobStatus(context.Background(), uuid.NewString(), models.JobStatusRunning)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateJobStatus_RefreshesUpdatedAt(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	job := newJob(t)
	job.UpdatedAt = time.Now().UTC().Add(-1 * time.Hour)
	require.NoError(t, s.CreateJob(ctx, job))

	require.NoError(t, s.UpdateJobStatus(ctx, job.ID, models.JobStatusRunning, store.WithProgress(10)))

	got, err := s.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.After(job.UpdatedAt))
}
