package mocks

import (
	"context"
	"time"

	"viagens-crm/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type QueueRepository struct {
	mock.Mock
}

func (m *QueueRepository) Insert(ctx context.Context, entry *domain.EmailQueueEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *QueueRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.EmailQueueEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmailQueueEntry), args.Error(1)
}

func (m *QueueRepository) ClaimPending(ctx context.Context, batchSize int, now time.Time) ([]domain.EmailQueueEntry, error) {
	args := m.Called(ctx, batchSize, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EmailQueueEntry), args.Error(1)
}

func (m *QueueRepository) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	args := m.Called(ctx, id, sentAt)
	return args.Error(0)
}

func (m *QueueRepository) MarkFailed(ctx context.Context, id uuid.UUID, attempts int, lastError string) error {
	args := m.Called(ctx, id, attempts, lastError)
	return args.Error(0)
}

func (m *QueueRepository) Reschedule(ctx context.Context, id uuid.UUID, attempts int, lastError string, nextAt time.Time) error {
	args := m.Called(ctx, id, attempts, lastError, nextAt)
	return args.Error(0)
}

func (m *QueueRepository) DeleteTerminalOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
