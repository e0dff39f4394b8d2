package response_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kioskbooth/portraits/internal/api/response"
	"github.com/kioskbooth/portraits/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	response.JSON(w, map[string]string{"name": "test"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	data := body["data"].(map[string]any)
	assert.Equal(t, "test", data["name"])
}

func TestAccepted(t *testing.T) {
	w := httptest.NewRecorder()
	response.Accepted(w, map[string]string{"jobId": "j1"})

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	data := body["data"].(map[string]any)
	assert.Equal(t, "j1", data["jobId"])
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()
	response.Error(w, http.StatusBadRequest, "RUNWARE_BAD_INPUT", "Invalid style ID", map[string][]string{
		"styleId": {"unknown style"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	errObj := body["error"].(map[string]any)
	assert.Equal(t, "RUNWARE_BAD_INPUT", errObj["code"])
	assert.Equal(t, "Invalid style ID", errObj["message"])
	assert.NotNil(t, errObj["details"])
}

func TestError_NoDetails(t *testing.T) {
	w := httptest.NewRecorder()
	response.Error(w, http.StatusNotFound, "RUNWARE_BAD_INPUT", "Job not found", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	errObj := body["error"].(map[string]any)
	assert.Equal(t, "RUNWARE_BAD_INPUT", errObj["code"])
	_, hasDetails := errObj["details"]
	assert.False(t, hasDetails)
}

func TestDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "rate limited",
			err:        models.NewDomainError(models.CodeRateLimited, "Too many requests. Please try again later."),
			wantStatus: http.StatusTooManyRequests,
			wantCode:   "RATE_LIMITED",
		},
		{
			name:       "daily cap",
			err:        models.NewDomainError(models.CodeDailyCap, "Daily generation limit reached"),
			wantStatus: http.StatusTooManyRequests,
			wantCode:   "DAILY_CAP",
		},
		{
			name:       "bot check",
			err:        models.NewDomainError(models.CodeBotCheckFailed, "Bot check failed"),
			wantStatus: http.StatusForbidden,
			wantCode:   "BOT_CHECK_FAILED",
		},
		{
			name:       "quota",
			err:        models.NewDomainError(models.CodeRunwareQuota, "Quota exceeded"),
			wantStatus: http.StatusPaymentRequired,
			wantCode:   "RUNWARE_QUOTA",
		},
		{
			name:       "unclassified normalized",
			err:        errors.New("nope"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "UNKNOWN_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			response.DomainError(w, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			errObj := body["error"].(map[string]any)
			assert.Equal(t, tt.wantCode, errObj["code"])
		})
	}
}
