package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kioskbooth/portraits/pkg/models"
)

// MemoryStore keeps jobs in a mutex-guarded map. Jobs are never deleted:
// growth is bounded by the kiosk's process lifetime.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*models.GenerationJob
	now  func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs: make(map[string]*models.GenerationJob),
		now:  time.Now,
	}
}

func (s *MemoryStore) CreateJob(_ context.Context, job *models.GenerationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, job.ID)
	}
	s.jobs[job.ID] = cloneJob(job)
	return nil
}

func (s *MemoryStore) GetJob(_ context.Context, id string) (*models.GenerationJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return cloneJob(job), nil
}

// UpdateJobStatus applies a transition plus any option fields in one critical
// section. Transitions out of a terminal state, or along an edge the state
// machine does not allow, fail with ErrBadTransition. Progress never moves
// backwards.
func (s *MemoryStore) UpdateJobStatus(_ context.Context, id string, status string, opts ...JobUpdateOption) error {
	var params jobUpdateParams
	for _, opt := range opts {
		opt(&params)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !allowedTransition(job.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrBadTransition, job.Status, status)
	}

	job.Status = status
	if params.Progress != nil && *params.Progress > job.Progress {
		job.Progress = *params.Progress
	}
	if params.ImageURL != nil {
		job.ImageURL = params.ImageURL
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.Error != nil {
		e := *params.Error
		job.Error = &e
	}
	job.UpdatedAt = s.now()
	return nil
}

func allowedTransition(from, to string) bool {
	switch from {
	case models.JobStatusQueued:
		return to == models.JobStatusRunning || to == models.JobStatusFailed
	case models.JobStatusRunning:
		return to == models.JobStatusRunning || to == models.JobStatusDone || to == models.JobStatusFailed
	default:
		// done and failed are terminal
		return false
	}
}

func cloneJob(job *models.GenerationJob) *models.GenerationJob {
	c := *job
	if job.ImageURL != nil {
		u := *job.ImageURL
		c.ImageURL = &u
	}
	if job.ResultURL != nil {
		u := *job.ResultURL
		c.ResultURL = &u
	}
	if job.Error != nil {
		e := *job.Error
		c.Error = &e
	}
	return &c
}

var _ Store = (*MemoryStore)(nil)
