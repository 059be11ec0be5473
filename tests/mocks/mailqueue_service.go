package mocks

import (
	"context"
	"time"

	"viagens-crm/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MailQueueService struct {
	mock.Mock
}

func (m *MailQueueService) Enqueue(ctx context.Context, templateType string, recipientID uuid.UUID, vars domain.Variables, scheduledAt time.Time) (uuid.UUID, error) {
	args := m.Called(ctx, templateType, recipientID, vars, scheduledAt)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MailQueueService) ProcessQueue(ctx context.Context, batchSize int) (int, error) {
	args := m.Called(ctx, batchSize)
	return args.Int(0), args.Error(1)
}

func (m *MailQueueService) CleanOldEntries(ctx context.Context, retentionDays int) (int64, error) {
	args := m.Called(ctx, retentionDays)
	return args.Get(0).(int64), args.Error(1)
}
