package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/kioskbooth/portraits/internal/api/middleware"
	"github.com/kioskbooth/portraits/internal/api/response"
)

// Dependencies holds all handler dependencies for the router.
type Dependencies struct {
	HealthHandler   http.HandlerFunc
	GenerateHandler http.HandlerFunc
	StatusHandler   http.HandlerFunc
	EmailHandler    http.HandlerFunc

	// AssetsDir, when set, serves generated images from disk under /generated/.
	AssetsDir string
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	r.Post("/api/v1/generate", orNotImplemented(deps.GenerateHandler))
	r.Get("/api/v1/generate/{jobID}", orNotImplemented(deps.StatusHandler))
	r.Post("/api/v1/email", orNotImplemented(deps.EmailHandler))

	if deps.AssetsDir != "" {
		fs := http.StripPrefix("/generated/", http.FileServer(http.Dir(deps.AssetsDir)))
		r.Get("/generated/*", fs.ServeHTTP)
	}

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
