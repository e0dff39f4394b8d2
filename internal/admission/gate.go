// Package admission composes the checks a submission must clear before a
// generation job exists: input validation, idempotency replay, bot
// verification, per-client rate limiting, and the global daily cap.
package admission

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kioskbooth/portraits/internal/store"
	"github.com/kioskbooth/portraits/pkg/models"
	"github.com/kioskbooth/portraits/pkg/styles"
)

const maxIdempotencyKeyLen = 256

// BotVerifier checks a submission's bot token.
type BotVerifier interface {
	Verify(ctx context.Context, token string) error
}

// Params are the admission inputs for one submission.
type Params struct {
	StyleID        string
	IdempotencyKey string
	BotToken       string
	ClientID       string
}

// Gate runs the fixed, short-circuiting admission sequence. Checks before the
// commit point have no side effects beyond counter increments; the idempotency
// record and the job row are committed together.
type Gate struct {
	jobs     store.Store
	index    *IdempotencyIndex
	limiter  *RateLimiter
	daily    *DailyCounter
	verifier BotVerifier
	limit    int
}

// NewGate wires the admission checkpoint.
func NewGate(jobs store.Store, index *IdempotencyIndex, limiter *RateLimiter, daily *DailyCounter, verifier BotVerifier, requestsPerWindow int) *Gate {
	return &Gate{
		jobs:     jobs,
		index:    index,
		limiter:  limiter,
		daily:    daily,
		verifier: verifier,
		limit:    requestsPerWindow,
	}
}

// Admit either replays the job already created for the idempotency key
// (created=false) or, after all checks pass, creates and registers a fresh
// queued job (created=true).
func (g *Gate) Admit(ctx context.Context, p Params) (job *models.GenerationJob, created bool, err error) {
	if !styles.Valid(p.StyleID) {
		return nil, false, models.NewDomainError(models.CodeRunwareBadInput, fmt.Sprintf("Invalid style ID: %s", p.StyleID))
	}
	if p.IdempotencyKey == "" || len(p.IdempotencyKey) >= maxIdempotencyKeyLen {
		return nil, false, models.NewDomainError(models.CodeRunwareBadInput, "Invalid idempotency key")
	}

	// Replay before bot/rate/quota so client retries stay free.
	if id, ok := g.index.Lookup(p.IdempotencyKey); ok {
		existing, err := g.jobs.GetJob(ctx, id)
		if err != nil {
			return nil, false, fmt.Errorf("loading replayed job %s: %w", id, err)
		}
		slog.Info("returning existing job for idempotency key", "job_id", id)
		return existing, false, nil
	}

	if err := g.verifier.Verify(ctx, p.BotToken); err != nil {
		return nil, false, err
	}
	if err := g.limiter.Allow(p.ClientID, g.limit); err != nil {
		return nil, false, err
	}
	if err := g.daily.Take(); err != nil {
		return nil, false, err
	}

	id, existing, err := g.index.LoadOrCreate(p.IdempotencyKey, func() (string, error) {
		now := time.Now().UTC()
		fresh := &models.GenerationJob{
			ID:             uuid.NewString(),
			IdempotencyKey: p.IdempotencyKey,
			StyleID:        p.StyleID,
			Status:         models.JobStatusQueued,
			Progress:       0,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := g.jobs.CreateJob(ctx, fresh); err != nil {
			return "", fmt.Errorf("creating job: %w", err)
		}
		return fresh.ID, nil
	})
	if err != nil {
		return nil, false, err
	}

	job, err = g.jobs.GetJob(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("loading job %s: %w", id, err)
	}
	if existing {
		// Lost a same-key race after passing the checks; hand back the winner.
		return job, false, nil
	}

	slog.Info("created generation job", "job_id", job.ID, "style_id", job.StyleID)
	return job, true, nil
}
