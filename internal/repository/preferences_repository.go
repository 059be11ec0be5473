package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"viagens-crm/internal/domain"
)

type PreferencesRepository interface {
	// GetByUser returns (nil, nil) when the user has no preferences row.
	GetByUser(ctx context.Context, userID uuid.UUID) (*domain.NotificationPreferences, error)
	Upsert(ctx context.Context, prefs *domain.NotificationPreferences) error
}

type preferencesRepository struct {
	db *sqlx.DB
}

func NewPreferencesRepository(db *sqlx.DB) PreferencesRepository {
	return &preferencesRepository{db: db}
}

func (r *preferencesRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*domain.NotificationPreferences, error) {
	var prefs domain.NotificationPreferences
	query := `SELECT * FROM notification_preferences WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &prefs, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &prefs, nil
}

func (r *preferencesRepository) Upsert(ctx context.Context, prefs *domain.NotificationPreferences) error {
	query := `
		INSERT INTO notification_preferences (
			user_id, in_app_enabled, email_enabled,
			travel_created_in_app, travel_created_email,
			travel_status_changed_in_app, travel_status_changed_email,
			payment_received_in_app, payment_received_email,
			travel_upcoming_in_app, travel_upcoming_email,
			payment_due_soon_in_app, payment_due_soon_email,
			payment_overdue_in_app, payment_overdue_email,
			documents_pending_in_app, documents_pending_email,
			digest_mode, digest_time
		) VALUES (
			:user_id, :in_app_enabled, :email_enabled,
			:travel_created_in_app, :travel_created_email,
			:travel_status_changed_in_app, :travel_status_changed_email,
			:payment_received_in_app, :payment_received_email,
			:travel_upcoming_in_app, :travel_upcoming_email,
			:payment_due_soon_in_app, :payment_due_soon_email,
			:payment_overdue_in_app, :payment_overdue_email,
			:documents_pending_in_app, :documents_pending_email,
			:digest_mode, :digest_time
		)
		ON CONFLICT (user_id) DO UPDATE SET
			in_app_enabled = EXCLUDED.in_app_enabled,
			email_enabled = EXCLUDED.email_enabled,
			travel_created_in_app = EXCLUDED.travel_created_in_app,
			travel_created_email = EXCLUDED.travel_created_email,
			travel_status_changed_in_app = EXCLUDED.travel_status_changed_in_app,
			travel_status_changed_email = EXCLUDED.travel_status_changed_email,
			payment_received_in_app = EXCLUDED.payment_received_in_app,
			payment_received_email = EXCLUDED.payment_received_email,
			travel_upcoming_in_app = EXCLUDED.travel_upcoming_in_app,
			travel_upcoming_email = EXCLUDED.travel_upcoming_email,
			payment_due_soon_in_app = EXCLUDED.payment_due_soon_in_app,
			payment_due_soon_email = EXCLUDED.payment_due_soon_email,
			payment_overdue_in_app = EXCLUDED.payment_overdue_in_app,
			payment_overdue_email = EXCLUDED.payment_overdue_email,
			documents_pending_in_app = EXCLUDED.documents_pending_in_app,
			documents_pending_email = EXCLUDED.documents_pending_email,
			digest_mode = EXCLUDED.digest_mode,
			digest_time = EXCLUDED.digest_time,
			updated_at = NOW()`

	_, err := r.db.NamedExecContext(ctx, query, prefs)
	return err
}
