package templates

import (
	"context"

	"viagens-crm/internal/domain"
	"viagens-crm/internal/repository"
	"viagens-crm/internal/service/render"
)

type Service interface {
	Get(ctx context.Context, templateType string) (*domain.EmailTemplate, error)
	// Preview renders the template with the supplied variables, falling
	// back to generated samples when none are given. It bypasses the queue
	// entirely.
	Preview(ctx context.Context, templateType string, vars domain.Variables) (domain.RenderedEmail, error)
}

type service struct {
	templateRepo repository.TemplateRepository
}

func NewService(templateRepo repository.TemplateRepository) Service {
	return &service{templateRepo: templateRepo}
}

func (s *service) Get(ctx context.Context, templateType string) (*domain.EmailTemplate, error) {
	return s.templateRepo.GetByType(ctx, templateType)
}

func (s *service) Preview(ctx context.Context, templateType string, vars domain.Variables) (domain.RenderedEmail, error) {
	tpl, err := s.templateRepo.GetByType(ctx, templateType)
	if err != nil {
		return domain.RenderedEmail{}, err
	}

	if len(vars) == 0 {
		vars = render.SampleVariables(tpl)
	}

	return render.Render(tpl, vars), nil
}
