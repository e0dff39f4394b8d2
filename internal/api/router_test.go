package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/kioskbooth/portraits/internal/api"
	mw "github.com/kioskbooth/portraits/internal/api/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(assetsDir string) http.Handler {
	return api.NewRouter(api.Dependencies{
		HealthHandler: func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		},
		AssetsDir: assetsDir,
	})
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router := newTestRouter("")

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_UnwiredHandlersAnswer501(t *testing.T) {
	router := newTestRouter("")

	endpoints := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/generate"},
		{"GET", "/api/v1/generate/some-job"},
		{"POST", "/api/v1/email"},
	}

	for _, ep := range endpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			req := httptest.NewRequest(ep.method, ep.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusNotImplemented, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			errObj := body["error"].(map[string]any)
			assert.Equal(t, "NOT_IMPLEMENTED", errObj["code"])
		})
	}
}

func TestRouter_RequestIDEchoed(t *testing.T) {
	router := newTestRouter("")

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get(mw.RequestIDHeader))
}

func TestRouter_ServesGeneratedAssets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "result_abc.jpg"), []byte("image"), 0o644))

	router := newTestRouter(dir)

	req := httptest.NewRequest("GET", "/generated/result_abc.jpg", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image", w.Body.String())
}

func TestRouter_NoAssetsDirNoRoute(t *testing.T) {
	router := newTestRouter("")

	req := httptest.NewRequest("GET", "/generated/result_abc.jpg", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter("")

	req := httptest.NewRequest("GET", "/api/v1/nonexistent", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
