// Package mail wraps the outbound email transport behind a small interface
// so the queue worker can be tested without network calls.
package mail

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"

	"viagens-crm/internal/config"
)

type Sender interface {
	Send(ctx context.Context, toEmail, subject, html, text string) error
}

type resendSender struct {
	client    *resend.Client
	fromEmail string
	fromName  string
}

func NewResendSender(cfg *config.Config) Sender {
	return &resendSender{
		client:    resend.NewClient(cfg.ResendAPIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}
}

func (s *resendSender) Send(ctx context.Context, toEmail, subject, html, text string) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail),
		To:      []string{toEmail},
		Subject: subject,
		Html:    html,
		Text:    text,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	return err
}
