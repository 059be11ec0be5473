package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"viagens-crm/internal/domain"
)

// TravelRepository is the scanner's read-only window over the travel CRUD
// surface. It never mutates travel rows.
type TravelRepository interface {
	FindDepartingBetween(ctx context.Context, from, to time.Time, statuses []domain.TravelStatus) ([]domain.Travel, error)
	FindDepartingBetweenWithBalance(ctx context.Context, from, to time.Time, statuses []domain.TravelStatus) ([]domain.Travel, error)
	FindOverdue(ctx context.Context, before time.Time, excludedStatuses []domain.TravelStatus) ([]domain.Travel, error)
}

type travelRepository struct {
	db *sqlx.DB
}

func NewTravelRepository(db *sqlx.DB) TravelRepository {
	return &travelRepository{db: db}
}

const travelColumns = `id, customer_name, destination, departure_date, return_date,
	status, total_value, paid_value, agent_id`

func statusStrings(statuses []domain.TravelStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func (r *travelRepository) FindDepartingBetween(ctx context.Context, from, to time.Time, statuses []domain.TravelStatus) ([]domain.Travel, error) {
	query := `
		SELECT ` + travelColumns + ` FROM travels
		WHERE departure_date >= $1 AND departure_date < $2
		  AND status = ANY($3)
		ORDER BY departure_date`

	var travels []domain.Travel
	err := r.db.SelectContext(ctx, &travels, query, from, to, pq.Array(statusStrings(statuses)))
	return travels, err
}

func (r *travelRepository) FindDepartingBetweenWithBalance(ctx context.Context, from, to time.Time, statuses []domain.TravelStatus) ([]domain.Travel, error) {
	query := `
		SELECT ` + travelColumns + ` FROM travels
		WHERE departure_date >= $1 AND departure_date < $2
		  AND status = ANY($3)
		  AND total_value - paid_value > 0
		ORDER BY departure_date`

	var travels []domain.Travel
	err := r.db.SelectContext(ctx, &travels, query, from, to, pq.Array(statusStrings(statuses)))
	return travels, err
}

func (r *travelRepository) FindOverdue(ctx context.Context, before time.Time, excludedStatuses []domain.TravelStatus) ([]domain.Travel, error) {
	query := `
		SELECT ` + travelColumns + ` FROM travels
		WHERE departure_date < $1
		  AND status <> ALL($2)
		  AND total_value - paid_value > 0
		ORDER BY departure_date`

	var travels []domain.Travel
	err := r.db.SelectContext(ctx, &travels, query, before, pq.Array(statusStrings(excludedStatuses)))
	return travels, err
}
