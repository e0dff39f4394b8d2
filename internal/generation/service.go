// Package generation runs the portrait pipeline: admit a submission, process
// it in the background through checkpointed stages, and answer poll and email
// requests against the job registry.
package generation

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/kioskbooth/portraits/internal/admission"
	"github.com/kioskbooth/portraits/internal/store"
	"github.com/kioskbooth/portraits/internal/storage"
	"github.com/kioskbooth/portraits/pkg/models"
	"github.com/kioskbooth/portraits/pkg/styles"
)

// pipelineTimeout bounds one background generation run end to end.
const pipelineTimeout = 5 * time.Minute

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Progress checkpoints reported to polling clients.
const (
	progressStarted   = 10
	progressUploaded  = 30
	progressPrompted  = 50
	progressGenerated = 90
	progressComplete  = 100
)

// Service owns the generation pipeline and the sibling email flow.
type Service struct {
	jobs       store.Store
	gate       *admission.Gate
	generator  models.ImageGenerator
	assets     storage.Storage
	sender     models.EmailSender
	verifier   admission.BotVerifier
	limiter    *admission.RateLimiter
	emailLimit int
}

// Config carries the collaborators a Service needs.
type Config struct {
	Jobs       store.Store
	Gate       *admission.Gate
	Generator  models.ImageGenerator
	Assets     storage.Storage
	Sender     models.EmailSender
	Verifier   admission.BotVerifier
	Limiter    *admission.RateLimiter
	EmailLimit int
}

// NewService wires the pipeline service.
func NewService(cfg Config) *Service {
	return &Service{
		jobs:       cfg.Jobs,
		gate:       cfg.Gate,
		generator:  cfg.Generator,
		assets:     cfg.Assets,
		sender:     cfg.Sender,
		verifier:   cfg.Verifier,
		limiter:    cfg.Limiter,
		emailLimit: cfg.EmailLimit,
	}
}

// SubmitParams are the inputs for one portrait submission.
type SubmitParams struct {
	Image          []byte
	StyleID        string
	IdempotencyKey string
	BotToken       string
	ClientIP       string
}

// Submit admits the submission and, for a fresh job, starts the background
// pipeline. The returned flag is true when a new job was created and false on
// an idempotent replay.
func (s *Service) Submit(ctx context.Context, p SubmitParams) (*models.GenerationJob, bool, error) {
	if len(p.Image) == 0 {
		return nil, false, models.NewDomainError(models.CodeRunwareBadInput, "Image is required")
	}

	job, created, err := s.gate.Admit(ctx, admission.Params{
		StyleID:        p.StyleID,
		IdempotencyKey: p.IdempotencyKey,
		BotToken:       p.BotToken,
		ClientID:       p.ClientIP,
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		image := make([]byte, len(p.Image))
		copy(image, p.Image)
		go s.runPipeline(job.ID, job.StyleID, image)
	}
	return job, created, nil
}

// Status returns the current snapshot of a job. Missing jobs surface
// store.ErrNotFound.
func (s *Service) Status(ctx context.Context, jobID string) (*models.GenerationJob, error) {
	return s.jobs.GetJob(ctx, jobID)
}

// runPipeline drives one job from queued to a terminal state. Every failure,
// including a panic in a collaborator, lands on the job as a classified
// error; nothing escapes to the caller.
func (s *Service) runPipeline(jobID, styleID string, image []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), pipelineTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("pipeline panic", "job_id", jobID, "panic", r)
			s.fail(jobID, fmt.Errorf("pipeline panic: %v", r))
		}
	}()

	if err := s.jobs.UpdateJobStatus(ctx, jobID, models.JobStatusRunning, store.WithProgress(progressStarted)); err != nil {
		slog.Error("starting job", "job_id", jobID, "error", err)
		return
	}

	imageURL, err := s.assets.Upload(ctx, "input_"+jobID+".jpg", image)
	if err != nil {
		s.fail(jobID, err)
		return
	}
	if err := s.jobs.UpdateJobStatus(ctx, jobID, models.JobStatusRunning,
		store.WithProgress(progressUploaded), store.WithImageURL(imageURL)); err != nil {
		slog.Error("recording input upload", "job_id", jobID, "error", err)
		return
	}

	prompt := styles.Prompt(styleID)
	if err := s.jobs.UpdateJobStatus(ctx, jobID, models.JobStatusRunning, store.WithProgress(progressPrompted)); err != nil {
		slog.Error("recording prompt stage", "job_id", jobID, "error", err)
		return
	}

	generatedURL, err := s.generator.Generate(ctx, models.GenerationRequest{
		Image:  image,
		Prompt: prompt,
		JobID:  jobID,
	})
	if err != nil {
		s.fail(jobID, err)
		return
	}
	if err := s.jobs.UpdateJobStatus(ctx, jobID, models.JobStatusRunning, store.WithProgress(progressGenerated)); err != nil {
		slog.Error("recording generation stage", "job_id", jobID, "error", err)
		return
	}

	result, err := s.assets.Download(ctx, generatedURL)
	if err != nil {
		s.fail(jobID, err)
		return
	}
	resultURL, err := s.assets.Upload(ctx, "result_"+jobID+".jpg", result)
	if err != nil {
		s.fail(jobID, err)
		return
	}

	if err := s.jobs.UpdateJobStatus(ctx, jobID, models.JobStatusDone,
		store.WithProgress(progressComplete), store.WithResultURL(resultURL)); err != nil {
		slog.Error("completing job", "job_id", jobID, "error", err)
		return
	}
	slog.Info("generation complete", "job_id", jobID, "provider", s.generator.Name())
}

// fail records a terminal failure on the job. The error is classified first
// so polling clients always see a stable code.
func (s *Service) fail(jobID string, cause error) {
	de := models.AsDomainError(cause)
	slog.Error("generation failed", "job_id", jobID, "code", de.Code, "error", cause)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.jobs.UpdateJobStatus(ctx, jobID, models.JobStatusFailed, store.WithJobError(de.JobError())); err != nil {
		slog.Error("recording job failure", "job_id", jobID, "error", err)
	}
}

// SendParams are the inputs for the result email flow.
type SendParams struct {
	JobID    string
	Email    string
	BotToken string
	ClientIP string
}

// SendResult emails the finished portrait to the visitor. The job must be
// done and have a result URL. Missing jobs surface store.ErrNotFound.
func (s *Service) SendResult(ctx context.Context, p SendParams) error {
	if !emailPattern.MatchString(p.Email) {
		return models.NewDomainError(models.CodeEmailBlocked, "Invalid email address")
	}
	if err := s.verifier.Verify(ctx, p.BotToken); err != nil {
		return err
	}
	if err := s.limiter.Allow("email:"+p.ClientIP, s.emailLimit); err != nil {
		return err
	}

	job, err := s.jobs.GetJob(ctx, p.JobID)
	if err != nil {
		return err
	}
	if job.Status != models.JobStatusDone || job.ResultURL == nil {
		return models.NewDomainError(models.CodeRunwareBadInput, "Job is not completed")
	}

	msg := models.EmailMessage{
		To:        p.Email,
		Subject:   "Your AI portrait is ready",
		HTMLBody:  resultEmailBody(*job.ResultURL),
		ResultURL: *job.ResultURL,
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return err
	}
	slog.Info("result email sent", "job_id", p.JobID, "provider", s.sender.Name())
	return nil
}

func resultEmailBody(resultURL string) string {
	return fmt.Sprintf(
		`<p>Your AI portrait is ready.</p><p><a href="%s">View your portrait</a></p><p>The link stays valid while the booth is running.</p>`,
		resultURL,
	)
}
