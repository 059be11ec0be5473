package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type AlertsService struct {
	mock.Mock
}

func (m *AlertsService) RunScans(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
