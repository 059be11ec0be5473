package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MailSender struct {
	mock.Mock
}

func (m *MailSender) Send(ctx context.Context, toEmail, subject, html, text string) error {
	args := m.Called(ctx, toEmail, subject, html, text)
	return args.Error(0)
}
