// Package botcheck verifies submission bot tokens. The current policy is the
// kiosk placeholder: a shared token in production, permissive in development.
// A CAPTCHA or attestation backend can replace StaticVerifier behind the same
// interface.
package botcheck

import (
	"context"
	"crypto/subtle"
	"log/slog"

	"github.com/kioskbooth/portraits/pkg/models"
)

// DevToken is the token kiosk builds send while no real bot-check backend is
// configured.
const DevToken = "placeholder"

// StaticVerifier accepts a configured shared token. With an empty configured
// token every non-empty submission token passes, so development setups work
// without provisioning a secret.
type StaticVerifier struct {
	token       string
	development bool
}

// NewStaticVerifier builds a verifier for the given shared token.
// development relaxes the comparison so local kiosks work without secrets.
func NewStaticVerifier(token string, development bool) *StaticVerifier {
	return &StaticVerifier{token: token, development: development}
}

// Verify checks the submission token. A missing token always fails.
func (v *StaticVerifier) Verify(_ context.Context, token string) error {
	if token == "" {
		return models.NewDomainError(models.CodeBotCheckFailed, "Bot token is required")
	}

	if v.development {
		return nil
	}

	if v.token == "" {
		slog.Warn("bot check has no configured token, accepting submission token")
		return nil
	}

	if subtle.ConstantTimeCompare([]byte(v.token), []byte(token)) != 1 {
		return models.NewDomainError(models.CodeBotCheckFailed, "Bot check failed")
	}
	return nil
}
