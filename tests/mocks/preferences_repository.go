package mocks

import (
	"context"

	"viagens-crm/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type PreferencesRepository struct {
	mock.Mock
}

func (m *PreferencesRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*domain.NotificationPreferences, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NotificationPreferences), args.Error(1)
}

func (m *PreferencesRepository) Upsert(ctx context.Context, prefs *domain.NotificationPreferences) error {
	args := m.Called(ctx, prefs)
	return args.Error(0)
}
