package handler

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/kioskbooth/portraits/internal/generation"
	"github.com/kioskbooth/portraits/pkg/models"
)

// GenerationService defines the interface the handlers depend on.
type GenerationService interface {
	Submit(ctx context.Context, p generation.SubmitParams) (*models.GenerationJob, bool, error)
	Status(ctx context.Context, jobID string) (*models.GenerationJob, error)
	SendResult(ctx context.Context, p generation.SendParams) error
}

// clientIP resolves the caller's address, preferring the first hop recorded
// by a reverse proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if ip, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(ip)
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
