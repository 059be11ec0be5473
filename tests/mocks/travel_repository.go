package mocks

import (
	"context"
	"time"

	"viagens-crm/internal/domain"

	"github.com/stretchr/testify/mock"
)

type TravelRepository struct {
	mock.Mock
}

func (m *TravelRepository) FindDepartingBetween(ctx context.Context, from, to time.Time, statuses []domain.TravelStatus) ([]domain.Travel, error) {
	args := m.Called(ctx, from, to, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Travel), args.Error(1)
}

func (m *TravelRepository) FindDepartingBetweenWithBalance(ctx context.Context, from, to time.Time, statuses []domain.TravelStatus) ([]domain.Travel, error) {
	args := m.Called(ctx, from, to, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Travel), args.Error(1)
}

func (m *TravelRepository) FindOverdue(ctx context.Context, before time.Time, excludedStatuses []domain.TravelStatus) ([]domain.Travel, error) {
	args := m.Called(ctx, before, excludedStatuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Travel), args.Error(1)
}
