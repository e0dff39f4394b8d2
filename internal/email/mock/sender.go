// Package mock provides an email sender for development and tests. It records
// messages instead of delivering them.
package mock

import (
	"context"
	"sync"

	"github.com/kioskbooth/portraits/pkg/models"
)

// Sender records every message handed to it.
type Sender struct {
	// Name_ overrides the reported name when set.
	Name_ string
	// SendFunc replaces the default behavior when set.
	SendFunc func(ctx context.Context, msg models.EmailMessage) error

	mu   sync.Mutex
	sent []models.EmailMessage
}

// NewSender creates a recording sender that accepts every message.
func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Name() string {
	if s.Name_ != "" {
		return s.Name_
	}
	return "mock"
}

func (s *Sender) Send(ctx context.Context, msg models.EmailMessage) error {
	if s.SendFunc != nil {
		return s.SendFunc(ctx, msg)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	return nil
}

// Sent returns a copy of every recorded message.
func (s *Sender) Sent() []models.EmailMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.EmailMessage, len(s.sent))
	copy(out, s.sent)
	return out
}

var _ models.EmailSender = (*Sender)(nil)
