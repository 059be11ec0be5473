package mocks

import (
	"context"

	"viagens-crm/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type NotificationService struct {
	mock.Mock
}

func (m *NotificationService) Create(ctx context.Context, input domain.CreateNotificationInput) (*domain.Notification, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *NotificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error) {
	args := m.Called(ctx, userID, unreadOnly, params)
	return args.Get(0).(domain.PaginatedResponse[domain.Notification]), args.Error(1)
}

func (m *NotificationService) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationService) MarkAsRead(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *NotificationService) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *NotificationService) ClearRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationService) CleanReadOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	args := m.Called(ctx, retentionDays)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationService) NotifyTravelCreated(ctx context.Context, travel *domain.Travel) error {
	args := m.Called(ctx, travel)
	return args.Error(0)
}

func (m *NotificationService) NotifyTravelStatusChanged(ctx context.Context, travel *domain.Travel, previous domain.TravelStatus) error {
	args := m.Called(ctx, travel, previous)
	return args.Error(0)
}

func (m *NotificationService) NotifyPaymentReceived(ctx context.Context, travel *domain.Travel, amount float64) error {
	args := m.Called(ctx, travel, amount)
	return args.Error(0)
}

func (m *NotificationService) NotifyDocumentsPending(ctx context.Context, travel *domain.Travel, documents []string) error {
	args := m.Called(ctx, travel, documents)
	return args.Error(0)
}
