package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"viagens-crm/internal/domain"
)

type QueueRepository interface {
	Insert(ctx context.Context, entry *domain.EmailQueueEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.EmailQueueEntry, error)
	ClaimPending(ctx context.Context, batchSize int, now time.Time) ([]domain.EmailQueueEntry, error)
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, attempts int, lastError string) error
	Reschedule(ctx context.Context, id uuid.UUID, attempts int, lastError string, nextAt time.Time) error
	DeleteTerminalOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type queueRepository struct {
	db *sqlx.DB
}

func NewQueueRepository(db *sqlx.DB) QueueRepository {
	return &queueRepository{db: db}
}

const queueColumns = `id, template_type, recipient_user_id, variables, status,
	attempts, max_attempts, last_error, scheduled_at, sent_at, created_at, updated_at`

func (r *queueRepository) Insert(ctx context.Context, entry *domain.EmailQueueEntry) error {
	query := `
		INSERT INTO email_queue (id, template_type, recipient_user_id, variables, status, max_attempts, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		entry.ID, entry.TemplateType, entry.RecipientUserID, entry.Variables,
		entry.Status, entry.MaxAttempts, entry.ScheduledAt,
	).Scan(&entry.CreatedAt, &entry.UpdatedAt)
}

func (r *queueRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.EmailQueueEntry, error) {
	var entry domain.EmailQueueEntry
	query := `SELECT ` + queueColumns + ` FROM email_queue WHERE id = $1`
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ClaimPending flips up to batchSize due pending entries to processing in a
// single conditional update. SKIP LOCKED keeps overlapping ticks (or a second
// process instance) from claiming the same rows.
func (r *queueRepository) ClaimPending(ctx context.Context, batchSize int, now time.Time) ([]domain.EmailQueueEntry, error) {
	query := `
		UPDATE email_queue SET status = 'processing', updated_at = NOW()
		WHERE id IN (
			SELECT id FROM email_queue
			WHERE status = 'pending' AND scheduled_at <= $1
			ORDER BY scheduled_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + queueColumns

	var entries []domain.EmailQueueEntry
	if err := r.db.SelectContext(ctx, &entries, query, now, batchSize); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *queueRepository) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	query := `
		UPDATE email_queue SET status = 'sent', sent_at = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'processing'`
	_, err := r.db.ExecContext(ctx, query, id, sentAt)
	return err
}

func (r *queueRepository) MarkFailed(ctx context.Context, id uuid.UUID, attempts int, lastError string) error {
	query := `
		UPDATE email_queue SET status = 'failed', attempts = $2, last_error = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'processing'`
	_, err := r.db.ExecContext(ctx, query, id, attempts, lastError)
	return err
}

func (r *queueRepository) Reschedule(ctx context.Context, id uuid.UUID, attempts int, lastError string, nextAt time.Time) error {
	query := `
		UPDATE email_queue SET status = 'pending', attempts = $2, last_error = $3, scheduled_at = $4, updated_at = NOW()
		WHERE id = $1 AND status = 'processing'`
	_, err := r.db.ExecContext(ctx, query, id, attempts, lastError, nextAt)
	return err
}

func (r *queueRepository) DeleteTerminalOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM email_queue WHERE status IN ('sent', 'failed') AND updated_at < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
