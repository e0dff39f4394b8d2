package handler

import (
	"io"
	"net/http"

	"github.com/kioskbooth/portraits/internal/api/response"
	"github.com/kioskbooth/portraits/internal/generation"
)

// maxUploadBytes bounds a kiosk photo upload.
const maxUploadBytes = 10 << 20

// NewGenerateHandler returns an http.HandlerFunc for POST /api/v1/generate.
// The request is a multipart form with an image file plus styleId,
// idempotencyKey and botToken fields. A fresh job answers 202, an idempotent
// replay answers 200 with the existing job.
func NewGenerateHandler(svc GenerationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			response.Error(w, http.StatusBadRequest, "RUNWARE_BAD_INPUT", "Invalid multipart form", nil)
			return
		}

		file, _, err := r.FormFile("image")
		if err != nil {
			response.Error(w, http.StatusBadRequest, "RUNWARE_BAD_INPUT", "Image is required", nil)
			return
		}
		defer file.Close()
		image, err := io.ReadAll(file)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "RUNWARE_BAD_INPUT", "Could not read image", nil)
			return
		}

		job, created, err := svc.Submit(r.Context(), generation.SubmitParams{
			Image:          image,
			StyleID:        r.FormValue("styleId"),
			IdempotencyKey: r.FormValue("idempotencyKey"),
			BotToken:       r.FormValue("botToken"),
			ClientIP:       clientIP(r),
		})
		if err != nil {
			response.DomainError(w, err)
			return
		}

		if created {
			response.Accepted(w, job)
			return
		}
		response.JSON(w, job)
	}
}
