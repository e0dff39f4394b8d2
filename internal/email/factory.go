// Package email selects and constructs the outbound mail backend.
package email

import (
	"fmt"

	"github.com/kioskbooth/portraits/internal/config"
	"github.com/kioskbooth/portraits/internal/email/mock"
	"github.com/kioskbooth/portraits/internal/email/sendgrid"
	"github.com/kioskbooth/portraits/pkg/models"
)

// NewSender constructs the configured email backend. Called once at server
// startup.
func NewSender(cfg config.EmailConfig) (models.EmailSender, error) {
	switch cfg.Provider {
	case "sendgrid":
		return sendgrid.NewSender(cfg.APIKey, cfg.BaseURL, cfg.From, cfg.Timeout), nil
	case "mock":
		return mock.NewSender(), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q: must be one of sendgrid, mock", cfg.Provider)
	}
}
