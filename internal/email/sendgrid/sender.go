package sendgrid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kioskbooth/portraits/pkg/models"
)

// Sender delivers mail through the SendGrid v3 API.
type Sender struct {
	apiKey  string
	baseURL string
	from    string
	client  *http.Client
}

// NewSender creates a SendGrid-backed sender.
func NewSender(apiKey, baseURL, from string, timeout time.Duration) *Sender {
	return &Sender{
		apiKey:  apiKey,
		baseURL: baseURL,
		from:    from,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *Sender) Name() string {
	return "sendgrid"
}

type address struct {
	Email string `json:"email"`
}

type personalization struct {
	To []address `json:"to"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type mailRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []mailContent     `json:"content"`
}

// Send posts the message to the mail API. Rejections (4xx) are reported as
// blocked so callers do not retry a bad address; transport failures and
// server errors are temporary.
func (s *Sender) Send(ctx context.Context, msg models.EmailMessage) error {
	if s.apiKey == "" {
		return models.NewDomainError(models.CodeEmailBlocked, "Email service is not configured")
	}

	payload := mailRequest{
		Personalizations: []personalization{{To: []address{{Email: msg.To}}}},
		From:             address{Email: s.from},
		Subject:          msg.Subject,
		Content:          []mailContent{{Type: "text/html", Value: msg.HTMLBody}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v3/mail/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return models.NewDomainError(models.CodeEmailTemporary, "Failed to reach email service")
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return models.NewDomainError(models.CodeEmailTemporary, "Email service is unavailable")
	default:
		return models.NewDomainError(models.CodeEmailBlocked, "Email was rejected")
	}
}

var _ models.EmailSender = (*Sender)(nil)
