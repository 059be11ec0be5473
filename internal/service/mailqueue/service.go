package mailqueue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"viagens-crm/internal/domain"
	"viagens-crm/internal/pkg/metrics"
	"viagens-crm/internal/repository"
	"viagens-crm/internal/service/mail"
	"viagens-crm/internal/service/render"
)

type Service interface {
	Enqueue(ctx context.Context, templateType string, recipientID uuid.UUID, vars domain.Variables, scheduledAt time.Time) (uuid.UUID, error)
	ProcessQueue(ctx context.Context, batchSize int) (int, error)
	CleanOldEntries(ctx context.Context, retentionDays int) (int64, error)
}

type service struct {
	queueRepo    repository.QueueRepository
	templateRepo repository.TemplateRepository
	prefsRepo    repository.PreferencesRepository
	userRepo     repository.UserRepository
	sender       mail.Sender
	limiter      *rate.Limiter
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

func NewService(
	queueRepo repository.QueueRepository,
	templateRepo repository.TemplateRepository,
	prefsRepo repository.PreferencesRepository,
	userRepo repository.UserRepository,
	sender mail.Sender,
	limiter *rate.Limiter,
	m *metrics.Metrics,
	logger *zap.Logger,
) Service {
	return &service{
		queueRepo:    queueRepo,
		templateRepo: templateRepo,
		prefsRepo:    prefsRepo,
		userRepo:     userRepo,
		sender:       sender,
		limiter:      limiter,
		metrics:      m,
		logger:       logger,
	}
}

const backoffBase = 2 * time.Minute
const backoffCap = time.Hour

// backoff grows exponentially with the attempt count: 2m, 4m, 8m, ... up
// to one hour.
func backoff(attempts int) time.Duration {
	d := backoffBase << (attempts - 1)
	if d > backoffCap || d <= 0 {
		return backoffCap
	}
	return d
}

func (s *service) Enqueue(ctx context.Context, templateType string, recipientID uuid.UUID, vars domain.Variables, scheduledAt time.Time) (uuid.UUID, error) {
	tpl, err := s.templateRepo.GetByType(ctx, templateType)
	if err != nil {
		if errors.Is(err, domain.ErrTemplateNotFound) {
			return uuid.Nil, &domain.ValidationError{Field: "template_type", Message: "unknown template type " + templateType}
		}
		return uuid.Nil, fmt.Errorf("failed to look up template: %w", err)
	}
	if !tpl.IsActive {
		return uuid.Nil, &domain.ValidationError{Field: "template_type", Message: "template " + templateType + " is inactive"}
	}

	if scheduledAt.IsZero() {
		scheduledAt = time.Now()
	}

	entry := &domain.EmailQueueEntry{
		ID:              uuid.New(),
		TemplateType:    templateType,
		RecipientUserID: recipientID,
		Variables:       vars,
		Status:          domain.QueuePending,
		MaxAttempts:     domain.DefaultMaxAttempts,
		ScheduledAt:     scheduledAt,
	}

	if err := s.queueRepo.Insert(ctx, entry); err != nil {
		return uuid.Nil, fmt.Errorf("failed to enqueue email: %w", err)
	}

	return entry.ID, nil
}

// ProcessQueue is the worker tick: claim a batch of due entries, deliver
// each one, and record the outcome. Transport errors never escape this
// method; they are captured on the entry.
func (s *service) ProcessQueue(ctx context.Context, batchSize int) (int, error) {
	now := time.Now()

	entries, err := s.queueRepo.ClaimPending(ctx, batchSize, now)
	if err != nil {
		return 0, fmt.Errorf("failed to claim queue entries: %w", err)
	}

	for i := range entries {
		s.processEntry(ctx, &entries[i])
		s.metrics.QueueProcessed.Inc()
	}

	return len(entries), nil
}

func (s *service) processEntry(ctx context.Context, entry *domain.EmailQueueEntry) {
	log := s.logger.With(
		zap.String("entry_id", entry.ID.String()),
		zap.String("template", entry.TemplateType),
	)

	prefs, err := s.prefsRepo.GetByUser(ctx, entry.RecipientUserID)
	if err != nil {
		s.retryOrFail(ctx, entry, fmt.Errorf("failed to load preferences: %w", err), log)
		return
	}
	if prefs == nil {
		prefs = domain.DefaultPreferences(entry.RecipientUserID)
	}

	if !prefs.AllowsEmail(domain.EventType(entry.TemplateType)) {
		// Preference-gated skip is a successful no-op delivery.
		if err := s.queueRepo.MarkSent(ctx, entry.ID, time.Now()); err != nil {
			log.Error("failed to mark skipped entry sent", zap.Error(err))
			return
		}
		s.metrics.EmailsSkipped.Inc()
		log.Debug("email skipped by recipient preferences")
		return
	}

	tpl, err := s.templateRepo.GetByType(ctx, entry.TemplateType)
	if err != nil {
		// Only a template that truly does not exist is unrecoverable; a
		// store error on the lookup gets another tick.
		if errors.Is(err, domain.ErrTemplateNotFound) {
			s.failPermanently(ctx, entry, "template unavailable: "+entry.TemplateType, log)
		} else {
			s.retryOrFail(ctx, entry, fmt.Errorf("failed to load template: %w", err), log)
		}
		return
	}
	if !tpl.IsActive {
		s.failPermanently(ctx, entry, "template inactive: "+entry.TemplateType, log)
		return
	}

	user, err := s.userRepo.GetByID(ctx, entry.RecipientUserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.failPermanently(ctx, entry, "recipient has no email address", log)
		} else {
			s.retryOrFail(ctx, entry, fmt.Errorf("failed to load recipient: %w", err), log)
		}
		return
	}
	if user.Email == "" {
		s.failPermanently(ctx, entry, "recipient has no email address", log)
		return
	}

	rendered := render.Render(tpl, entry.Variables)

	if err := s.limiter.Wait(ctx); err != nil {
		s.retryOrFail(ctx, entry, err, log)
		return
	}

	if err := s.sender.Send(ctx, user.Email, rendered.Subject, rendered.HTML, rendered.Text); err != nil {
		s.retryOrFail(ctx, entry, err, log)
		return
	}

	if err := s.queueRepo.MarkSent(ctx, entry.ID, time.Now()); err != nil {
		log.Error("failed to mark entry sent", zap.Error(err))
		return
	}
	s.metrics.EmailsSent.Inc()
	log.Info("email sent", zap.String("to", user.Email))
}

// failPermanently dead-letters an entry that no amount of retrying can fix.
func (s *service) failPermanently(ctx context.Context, entry *domain.EmailQueueEntry, reason string, log *zap.Logger) {
	if err := s.queueRepo.MarkFailed(ctx, entry.ID, entry.Attempts, reason); err != nil {
		log.Error("failed to mark entry failed", zap.Error(err))
		return
	}
	s.metrics.EmailsFailed.Inc()
	log.Warn("email dead-lettered", zap.String("reason", reason))
}

func (s *service) retryOrFail(ctx context.Context, entry *domain.EmailQueueEntry, sendErr error, log *zap.Logger) {
	attempts := entry.Attempts + 1

	if attempts >= entry.MaxAttempts {
		if err := s.queueRepo.MarkFailed(ctx, entry.ID, attempts, sendErr.Error()); err != nil {
			log.Error("failed to mark entry failed", zap.Error(err))
			return
		}
		s.metrics.EmailsFailed.Inc()
		log.Warn("email dead-lettered after max attempts", zap.Int("attempts", attempts), zap.Error(sendErr))
		return
	}

	nextAt := time.Now().Add(backoff(attempts))
	if err := s.queueRepo.Reschedule(ctx, entry.ID, attempts, sendErr.Error(), nextAt); err != nil {
		log.Error("failed to reschedule entry", zap.Error(err))
		return
	}
	s.metrics.EmailsRetried.Inc()
	log.Info("email delivery rescheduled",
		zap.Int("attempts", attempts),
		zap.Time("next_at", nextAt),
		zap.Error(sendErr),
	)
}

func (s *service) CleanOldEntries(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	deleted, err := s.queueRepo.DeleteTerminalOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean old queue entries: %w", err)
	}
	if deleted > 0 {
		s.logger.Info("cleaned old queue entries", zap.Int64("deleted", deleted))
	}
	return deleted, nil
}
