package mocks

import (
	"context"

	"viagens-crm/internal/domain"

	"github.com/stretchr/testify/mock"
)

type TemplateRepository struct {
	mock.Mock
}

func (m *TemplateRepository) GetByType(ctx context.Context, templateType string) (*domain.EmailTemplate, error) {
	args := m.Called(ctx, templateType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmailTemplate), args.Error(1)
}
