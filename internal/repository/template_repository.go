package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"viagens-crm/internal/domain"
)

type TemplateRepository interface {
	GetByType(ctx context.Context, templateType string) (*domain.EmailTemplate, error)
}

type templateRepository struct {
	db *sqlx.DB
}

func NewTemplateRepository(db *sqlx.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) GetByType(ctx context.Context, templateType string) (*domain.EmailTemplate, error) {
	var tpl domain.EmailTemplate
	query := `SELECT * FROM email_templates WHERE type = $1`
	if err := r.db.GetContext(ctx, &tpl, query, templateType); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, err
	}
	return &tpl, nil
}
