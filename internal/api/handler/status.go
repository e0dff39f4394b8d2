package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kioskbooth/portraits/internal/api/response"
	"github.com/kioskbooth/portraits/internal/store"
	"github.com/kioskbooth/portraits/pkg/models"
)

// statusResponse is the trimmed snapshot polled by the kiosk. Internal fields
// like the style id and timestamps stay off the wire.
type statusResponse struct {
	JobID     string           `json:"jobId"`
	Status    string           `json:"status"`
	Progress  int              `json:"progress"`
	ResultURL *string          `json:"resultUrl"`
	Error     *models.JobError `json:"error"`
}

// NewStatusHandler returns an http.HandlerFunc for GET /api/v1/generate/{jobID}.
// The kiosk polls this until the job reaches a terminal status.
func NewStatusHandler(svc GenerationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID := chi.URLParam(r, "jobID")
		if jobID == "" {
			response.Error(w, http.StatusBadRequest, "RUNWARE_BAD_INPUT", "jobID is required", nil)
			return
		}

		job, err := svc.Status(r.Context(), jobID)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "RUNWARE_BAD_INPUT", "Job not found", nil)
			return
		}
		if err != nil {
			response.DomainError(w, err)
			return
		}
		response.JSON(w, statusResponse{
			JobID:     job.ID,
			Status:    job.Status,
			Progress:  job.Progress,
			ResultURL: job.ResultURL,
			Error:     job.Error,
		})
	}
}
