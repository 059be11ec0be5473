package unit_test

import (
	"context"
	"testing"

	"viagens-crm/internal/domain"
	"viagens-crm/internal/service/templates"
	"viagens-crm/tests/mocks"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestTemplates_Preview(t *testing.T) {
	ctx := context.Background()

	t.Run("With Supplied Variables", func(t *testing.T) {
		templateRepo := new(mocks.TemplateRepository)
		svc := templates.NewService(templateRepo)

		templateRepo.On("GetByType", ctx, "payment_due_soon").Return(&domain.EmailTemplate{
			Type:        "payment_due_soon",
			Subject:     "Saldo de {balance}",
			HTMLContent: "<p>{customerName}</p>",
			TextContent: "{customerName}",
			IsActive:    true,
		}, nil).Once()

		out, err := svc.Preview(ctx, "payment_due_soon", domain.Variables{
			"balance":      2500.0,
			"customerName": "Maria Souza",
		})

		assert.NoError(t, err)
		assert.Equal(t, "Saldo de R$ 2.500,00", out.Subject)
		assert.Equal(t, "Maria Souza", out.Text)
	})

	t.Run("Falls Back To Sample Variables", func(t *testing.T) {
		templateRepo := new(mocks.TemplateRepository)
		svc := templates.NewService(templateRepo)

		templateRepo.On("GetByType", ctx, "travel_upcoming").Return(&domain.EmailTemplate{
			Type:          "travel_upcoming",
			Subject:       "Viagem de {customerName}",
			TextContent:   "{customerName}",
			AvailableVars: pq.StringArray{"customerName"},
			IsActive:      true,
		}, nil).Once()

		out, err := svc.Preview(ctx, "travel_upcoming", nil)

		assert.NoError(t, err)
		assert.Equal(t, "Viagem de [customerName]", out.Subject)
	})

	t.Run("Unknown Template", func(t *testing.T) {
		templateRepo := new(mocks.TemplateRepository)
		svc := templates.NewService(templateRepo)

		templateRepo.On("GetByType", ctx, "nope").Return(nil, domain.ErrTemplateNotFound).Once()

		_, err := svc.Preview(ctx, "nope", nil)

		assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
	})
}
