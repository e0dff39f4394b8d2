package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kioskbooth/portraits/internal/api/response"
	"github.com/kioskbooth/portraits/internal/generation"
	"github.com/kioskbooth/portraits/internal/store"
)

// NewEmailHandler returns an http.HandlerFunc for POST /api/v1/email. It
// emails a completed job's portrait to the visitor.
func NewEmailHandler(svc GenerationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			JobID    string `json:"jobId"`
			Email    string `json:"email"`
			BotToken string `json:"botToken"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "RUNWARE_BAD_INPUT", "Invalid JSON body", nil)
			return
		}
		if req.JobID == "" {
			response.Error(w, http.StatusBadRequest, "RUNWARE_BAD_INPUT", "jobId is required", nil)
			return
		}

		err := svc.SendResult(r.Context(), generation.SendParams{
			JobID:    req.JobID,
			Email:    req.Email,
			BotToken: req.BotToken,
			ClientIP: clientIP(r),
		})
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "RUNWARE_BAD_INPUT", "Job not found", nil)
			return
		}
		if err != nil {
			response.DomainError(w, err)
			return
		}
		response.JSON(w, map[string]bool{"sent": true})
	}
}
