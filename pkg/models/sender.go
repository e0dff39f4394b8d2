package models

import "context"

// EmailMessage is a single outbound result email.
type EmailMessage struct {
	To        string
	Subject   string
	HTMLBody  string
	ResultURL string
}

// EmailSender delivers result emails to kiosk visitors.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
	Name() string
}
