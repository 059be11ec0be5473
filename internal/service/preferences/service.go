package preferences

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"viagens-crm/internal/domain"
	"viagens-crm/internal/repository"
)

type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.NotificationPreferences, error)
	Update(ctx context.Context, userID uuid.UUID, input domain.UpdatePreferencesInput) (*domain.NotificationPreferences, error)
}

type service struct {
	prefsRepo repository.PreferencesRepository
}

func NewService(prefsRepo repository.PreferencesRepository) Service {
	return &service{prefsRepo: prefsRepo}
}

// Get returns the stored row or the default-allow preferences for users
// who never saved any.
func (s *service) Get(ctx context.Context, userID uuid.UUID) (*domain.NotificationPreferences, error) {
	prefs, err := s.prefsRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	if prefs == nil {
		return domain.DefaultPreferences(userID), nil
	}
	return prefs, nil
}

func (s *service) Update(ctx context.Context, userID uuid.UUID, input domain.UpdatePreferencesInput) (*domain.NotificationPreferences, error) {
	prefs, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	input.Apply(prefs)
	prefs.UserID = userID

	if err := s.prefsRepo.Upsert(ctx, prefs); err != nil {
		return nil, fmt.Errorf("failed to save preferences: %w", err)
	}

	return prefs, nil
}
