// Package mock provides a no-network image generator for kiosk development
// and tests.
package mock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kioskbooth/portraits/pkg/models"
)

// Provider satisfies models.ImageGenerator without calling any external API.
type Provider struct {
	Name_        string
	Delay        time.Duration
	GenerateFunc func(ctx context.Context, req models.GenerationRequest) (string, error)
}

func (p *Provider) Name() string { return p.Name_ }

func (p *Provider) Generate(ctx context.Context, req models.GenerationRequest) (string, error) {
	if p.Delay > 0 {
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if p.GenerateFunc != nil {
		return p.GenerateFunc(ctx, req)
	}
	return ResultURL(req.JobID), nil
}

// NewProvider returns a Provider that simulates a successful generation with
// a deterministic result URL per job id.
func NewProvider() *Provider {
	return &Provider{
		Name_: "mock",
		GenerateFunc: func(_ context.Context, req models.GenerationRequest) (string, error) {
			slog.Info("mock generation complete", "job_id", req.JobID)
			return ResultURL(req.JobID), nil
		},
	}
}

// NewFailingProvider returns a Provider that always returns the given error.
func NewFailingProvider(err error) *Provider {
	return &Provider{
		Name_: "mock-failing",
		GenerateFunc: func(context.Context, models.GenerationRequest) (string, error) {
			return "", err
		},
	}
}

// ResultURL is the fake image URL the mock produces for a job.
func ResultURL(jobID string) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s/1024/1024", jobID)
}

var _ models.ImageGenerator = (*Provider)(nil)
