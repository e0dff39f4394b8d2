// Package store holds the job registry. The server keeps jobs in process
// memory only; a persistent backing store can be substituted behind the same
// interface.
package store

import (
	"context"
	"errors"

	"github.com/kioskbooth/portraits/pkg/models"
)

var (
	ErrNotFound      = errors.New("job not found")
	ErrDuplicateJob  = errors.New("job id already exists")
	ErrBadTransition = errors.New("illegal job status transition")
)

// Store is the job registry interface. All job reads and writes go through
// here. Implementations must be safe for concurrent use and must apply every
// field of a status update atomically: a concurrent read never observes a
// half-applied transition.
type Store interface {
	CreateJob(ctx context.Context, job *models.GenerationJob) error
	GetJob(ctx context.Context, id string) (*models.GenerationJob, error)
	UpdateJobStatus(ctx context.Context, id string, status string, opts ...JobUpdateOption) error
}

type jobUpdateParams struct {
	Progress  *int
	ImageURL  *string
	ResultURL *string
	Error     *models.JobError
}

// JobUpdateOption attaches an extra field mutation to a status update.
type JobUpdateOption func(*jobUpdateParams)

func WithProgress(p int) JobUpdateOption {
	return func(u *jobUpdateParams) { u.Progress = &p }
}

func WithImageURL(url string) JobUpdateOption {
	return func(u *jobUpdateParams) { u.ImageURL = &url }
}

func WithResultURL(url string) JobUpdateOption {
	return func(u *jobUpdateParams) { u.ResultURL = &url }
}

func WithJobError(je *models.JobError) JobUpdateOption {
	return func(u *jobUpdateParams) { u.Error = je }
}
