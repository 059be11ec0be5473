package unit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"viagens-crm/internal/domain"
	"viagens-crm/internal/pkg/metrics"
	"viagens-crm/internal/service/mailqueue"
	"viagens-crm/tests/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func newQueueService(
	queueRepo *mocks.QueueRepository,
	templateRepo *mocks.TemplateRepository,
	prefsRepo *mocks.PreferencesRepository,
	userRepo *mocks.UserRepository,
	sender *mocks.MailSender,
) mailqueue.Service {
	return mailqueue.NewService(
		queueRepo, templateRepo, prefsRepo, userRepo,
		sender, rate.NewLimiter(rate.Inf, 0), metrics.New(), zap.NewNop(),
	)
}

func activeTemplate(templateType string) *domain.EmailTemplate {
	return &domain.EmailTemplate{
		Type:        templateType,
		Subject:     "Pagamento pendente: {balance}",
		HTMLContent: "<p>Saldo em aberto de {balance}</p>",
		TextContent: "Saldo em aberto de {balance}",
		IsActive:    true,
		Version:     1,
	}
}

func pendingEntry(templateType string, attempts int) domain.EmailQueueEntry {
	return domain.EmailQueueEntry{
		ID:              uuid.New(),
		TemplateType:    templateType,
		RecipientUserID: uuid.New(),
		Variables:       domain.Variables{"balance": 2500.0, "currency": "BRL"},
		Status:          domain.QueueProcessing,
		Attempts:        attempts,
		MaxAttempts:     domain.DefaultMaxAttempts,
		ScheduledAt:     time.Now().Add(-time.Minute),
	}
}

func TestMailQueue_Enqueue(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		queueRepo := new(mocks.QueueRepository)
		templateRepo := new(mocks.TemplateRepository)
		svc := newQueueService(queueRepo, templateRepo, new(mocks.PreferencesRepository), new(mocks.UserRepository), new(mocks.MailSender))

		recipient := uuid.New()
		templateRepo.On("GetByType", ctx, "payment_due_soon").Return(activeTemplate("payment_due_soon"), nil).Once()
		queueRepo.On("Insert", ctx, mock.MatchedBy(func(e *domain.EmailQueueEntry) bool {
			return e.TemplateType == "payment_due_soon" &&
				e.RecipientUserID == recipient &&
				e.Status == domain.QueuePending &&
				e.Attempts == 0 &&
				e.MaxAttempts == domain.DefaultMaxAttempts
		})).Return(nil).Once()

		id, err := svc.Enqueue(ctx, "payment_due_soon", recipient, domain.Variables{"balance": 2500.0}, time.Time{})

		assert.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, id)
		queueRepo.AssertExpectations(t)
	})

	t.Run("Unknown Template", func(t *testing.T) {
		queueRepo := new(mocks.QueueRepository)
		templateRepo := new(mocks.TemplateRepository)
		svc := newQueueService(queueRepo, templateRepo, new(mocks.PreferencesRepository), new(mocks.UserRepository), new(mocks.MailSender))

		templateRepo.On("GetByType", ctx, "no_such_template").Return(nil, domain.ErrTemplateNotFound).Once()

		_, err := svc.Enqueue(ctx, "no_such_template", uuid.New(), nil, time.Time{})

		var validationErr *domain.ValidationError
		assert.ErrorAs(t, err, &validationErr)
		queueRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})

	t.Run("Inactive Template", func(t *testing.T) {
		queueRepo := new(mocks.QueueRepository)
		templateRepo := new(mocks.TemplateRepository)
		svc := newQueueService(queueRepo, templateRepo, new(mocks.PreferencesRepository), new(mocks.UserRepository), new(mocks.MailSender))

		tpl := activeTemplate("travel_upcoming")
		tpl.IsActive = false
		templateRepo.On("GetByType", ctx, "travel_upcoming").Return(tpl, nil).Once()

		_, err := svc.Enqueue(ctx, "travel_upcoming", uuid.New(), nil, time.Time{})

		var validationErr *domain.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestMailQueue_ProcessQueue_Success(t *testing.T) {
	ctx := context.Background()
	queueRepo := new(mocks.QueueRepository)
	templateRepo := new(mocks.TemplateRepository)
	prefsRepo := new(mocks.PreferencesRepository)
	userRepo := new(mocks.UserRepository)
	sender := new(mocks.MailSender)
	svc := newQueueService(queueRepo, templateRepo, prefsRepo, userRepo, sender)

	entry := pendingEntry("payment_due_soon", 0)

	queueRepo.On("ClaimPending", ctx, 50, mock.AnythingOfType("time.Time")).Return([]domain.EmailQueueEntry{entry}, nil).Once()
	prefsRepo.On("GetByUser", ctx, entry.RecipientUserID).Return(nil, nil).Once()
	templateRepo.On("GetByType", ctx, "payment_due_soon").Return(activeTemplate("payment_due_soon"), nil).Once()
	userRepo.On("GetByID", ctx, entry.RecipientUserID).Return(&domain.User{ID: entry.RecipientUserID, Email: "agente@agencia.com"}, nil).Once()
	sender.On("Send", ctx, "agente@agencia.com", "Pagamento pendente: R$ 2.500,00", mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(nil).Once()
	queueRepo.On("MarkSent", ctx, entry.ID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	processed, err := svc.ProcessQueue(ctx, 50)

	assert.NoError(t, err)
	assert.Equal(t, 1, processed)
	queueRepo.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestMailQueue_ProcessQueue_PreferenceSkip(t *testing.T) {
	ctx := context.Background()
	queueRepo := new(mocks.QueueRepository)
	templateRepo := new(mocks.TemplateRepository)
	prefsRepo := new(mocks.PreferencesRepository)
	userRepo := new(mocks.UserRepository)
	sender := new(mocks.MailSender)
	svc := newQueueService(queueRepo, templateRepo, prefsRepo, userRepo, sender)

	entry := pendingEntry("payment_due_soon", 0)
	prefs := domain.DefaultPreferences(entry.RecipientUserID)
	prefs.PaymentDueSoonEmail = false

	queueRepo.On("ClaimPending", ctx, 10, mock.AnythingOfType("time.Time")).Return([]domain.EmailQueueEntry{entry}, nil).Once()
	prefsRepo.On("GetByUser", ctx, entry.RecipientUserID).Return(prefs, nil).Once()
	queueRepo.On("MarkSent", ctx, entry.ID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	processed, err := svc.ProcessQueue(ctx, 10)

	assert.NoError(t, err)
	assert.Equal(t, 1, processed)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	queueRepo.AssertExpectations(t)
}

// Transport fails on the first tick, succeeds on the second: the entry
// ends sent with exactly one recorded attempt.
func TestMailQueue_ProcessQueue_TransientFailureThenSent(t *testing.T) {
	ctx := context.Background()
	queueRepo := new(mocks.QueueRepository)
	templateRepo := new(mocks.TemplateRepository)
	prefsRepo := new(mocks.PreferencesRepository)
	userRepo := new(mocks.UserRepository)
	sender := new(mocks.MailSender)
	svc := newQueueService(queueRepo, templateRepo, prefsRepo, userRepo, sender)

	entry := pendingEntry("payment_due_soon", 0)
	user := &domain.User{ID: entry.RecipientUserID, Email: "agente@agencia.com"}

	prefsRepo.On("GetByUser", ctx, entry.RecipientUserID).Return(nil, nil).Twice()
	templateRepo.On("GetByType", ctx, "payment_due_soon").Return(activeTemplate("payment_due_soon"), nil).Twice()
	userRepo.On("GetByID", ctx, entry.RecipientUserID).Return(user, nil).Twice()

	// First tick: transport error, entry goes back to pending with one attempt.
	queueRepo.On("ClaimPending", ctx, 10, mock.AnythingOfType("time.Time")).Return([]domain.EmailQueueEntry{entry}, nil).Once()
	sender.On("Send", ctx, user.Email, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp timeout")).Once()
	queueRepo.On("Reschedule", ctx, entry.ID, 1, "smtp timeout", mock.MatchedBy(func(nextAt time.Time) bool {
		return nextAt.After(time.Now())
	})).Return(nil).Once()

	processed, err := svc.ProcessQueue(ctx, 10)
	assert.NoError(t, err)
	assert.Equal(t, 1, processed)

	// Second tick: the rescheduled entry is claimed again and delivered.
	retried := entry
	retried.Attempts = 1
	queueRepo.On("ClaimPending", ctx, 10, mock.AnythingOfType("time.Time")).Return([]domain.EmailQueueEntry{retried}, nil).Once()
	sender.On("Send", ctx, user.Email, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	queueRepo.On("MarkSent", ctx, entry.ID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	processed, err = svc.ProcessQueue(ctx, 10)
	assert.NoError(t, err)
	assert.Equal(t, 1, processed)

	queueRepo.AssertExpectations(t)
	queueRepo.AssertNumberOfCalls(t, "Reschedule", 1)
	queueRepo.AssertNotCalled(t, "MarkFailed", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMailQueue_ProcessQueue_DeadLetterAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	queueRepo := new(mocks.QueueRepository)
	templateRepo := new(mocks.TemplateRepository)
	prefsRepo := new(mocks.PreferencesRepository)
	userRepo := new(mocks.UserRepository)
	sender := new(mocks.MailSender)
	svc := newQueueService(queueRepo, templateRepo, prefsRepo, userRepo, sender)

	entry := pendingEntry("payment_overdue", domain.DefaultMaxAttempts-1)
	user := &domain.User{ID: entry.RecipientUserID, Email: "agente@agencia.com"}

	queueRepo.On("ClaimPending", ctx, 10, mock.AnythingOfType("time.Time")).Return([]domain.EmailQueueEntry{entry}, nil).Once()
	prefsRepo.On("GetByUser", ctx, entry.RecipientUserID).Return(nil, nil).Once()
	templateRepo.On("GetByType", ctx, "payment_overdue").Return(activeTemplate("payment_overdue"), nil).Once()
	userRepo.On("GetByID", ctx, entry.RecipientUserID).Return(user, nil).Once()
	sender.On("Send", ctx, user.Email, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("permanent refusal")).Once()
	queueRepo.On("MarkFailed", ctx, entry.ID, domain.DefaultMaxAttempts, "permanent refusal").Return(nil).Once()

	processed, err := svc.ProcessQueue(ctx, 10)

	assert.NoError(t, err)
	assert.Equal(t, 1, processed)
	queueRepo.AssertExpectations(t)
	queueRepo.AssertNotCalled(t, "Reschedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// A store outage while loading the template or recipient must not
// dead-letter the entry; it is retried like a transport failure.
func TestMailQueue_ProcessQueue_TransientStoreErrorRetries(t *testing.T) {
	ctx := context.Background()

	t.Run("Template Lookup", func(t *testing.T) {
		queueRepo := new(mocks.QueueRepository)
		templateRepo := new(mocks.TemplateRepository)
		prefsRepo := new(mocks.PreferencesRepository)
		sender := new(mocks.MailSender)
		svc := newQueueService(queueRepo, templateRepo, prefsRepo, new(mocks.UserRepository), sender)

		entry := pendingEntry("payment_due_soon", 0)

		queueRepo.On("ClaimPending", ctx, 10, mock.AnythingOfType("time.Time")).Return([]domain.EmailQueueEntry{entry}, nil).Once()
		prefsRepo.On("GetByUser", ctx, entry.RecipientUserID).Return(nil, nil).Once()
		templateRepo.On("GetByType", ctx, "payment_due_soon").Return(nil, errors.New("connection reset by peer")).Once()
		queueRepo.On("Reschedule", ctx, entry.ID, 1, "failed to load template: connection reset by peer", mock.AnythingOfType("time.Time")).Return(nil).Once()

		_, err := svc.ProcessQueue(ctx, 10)

		assert.NoError(t, err)
		queueRepo.AssertExpectations(t)
		queueRepo.AssertNotCalled(t, "MarkFailed", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Recipient Lookup", func(t *testing.T) {
		queueRepo := new(mocks.QueueRepository)
		templateRepo := new(mocks.TemplateRepository)
		prefsRepo := new(mocks.PreferencesRepository)
		userRepo := new(mocks.UserRepository)
		svc := newQueueService(queueRepo, templateRepo, prefsRepo, userRepo, new(mocks.MailSender))

		entry := pendingEntry("payment_due_soon", 0)

		queueRepo.On("ClaimPending", ctx, 10, mock.AnythingOfType("time.Time")).Return([]domain.EmailQueueEntry{entry}, nil).Once()
		prefsRepo.On("GetByUser", ctx, entry.RecipientUserID).Return(nil, nil).Once()
		templateRepo.On("GetByType", ctx, "payment_due_soon").Return(activeTemplate("payment_due_soon"), nil).Once()
		userRepo.On("GetByID", ctx, entry.RecipientUserID).Return(nil, errors.New("connection reset by peer")).Once()
		queueRepo.On("Reschedule", ctx, entry.ID, 1, "failed to load recipient: connection reset by peer", mock.AnythingOfType("time.Time")).Return(nil).Once()

		_, err := svc.ProcessQueue(ctx, 10)

		assert.NoError(t, err)
		queueRepo.AssertExpectations(t)
		queueRepo.AssertNotCalled(t, "MarkFailed", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestMailQueue_ProcessQueue_UnknownRecipient(t *testing.T) {
	ctx := context.Background()
	queueRepo := new(mocks.QueueRepository)
	templateRepo := new(mocks.TemplateRepository)
	prefsRepo := new(mocks.PreferencesRepository)
	userRepo := new(mocks.UserRepository)
	svc := newQueueService(queueRepo, templateRepo, prefsRepo, userRepo, new(mocks.MailSender))

	entry := pendingEntry("travel_upcoming", 0)

	queueRepo.On("ClaimPending", ctx, 10, mock.AnythingOfType("time.Time")).Return([]domain.EmailQueueEntry{entry}, nil).Once()
	prefsRepo.On("GetByUser", ctx, entry.RecipientUserID).Return(nil, nil).Once()
	templateRepo.On("GetByType", ctx, "travel_upcoming").Return(activeTemplate("travel_upcoming"), nil).Once()
	userRepo.On("GetByID", ctx, entry.RecipientUserID).Return(nil, domain.ErrNotFound).Once()
	queueRepo.On("MarkFailed", ctx, entry.ID, 0, "recipient has no email address").Return(nil).Once()

	_, err := svc.ProcessQueue(ctx, 10)

	assert.NoError(t, err)
	queueRepo.AssertExpectations(t)
	queueRepo.AssertNotCalled(t, "Reschedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMailQueue_ProcessQueue_RecipientWithoutEmail(t *testing.T) {
	ctx := context.Background()
	queueRepo := new(mocks.QueueRepository)
	templateRepo := new(mocks.TemplateRepository)
	prefsRepo := new(mocks.PreferencesRepository)
	userRepo := new(mocks.UserRepository)
	sender := new(mocks.MailSender)
	svc := newQueueService(queueRepo, templateRepo, prefsRepo, userRepo, sender)

	entry := pendingEntry("travel_upcoming", 0)

	queueRepo.On("ClaimPending", ctx, 10, mock.AnythingOfType("time.Time")).Return([]domain.EmailQueueEntry{entry}, nil).Once()
	prefsRepo.On("GetByUser", ctx, entry.RecipientUserID).Return(nil, nil).Once()
	templateRepo.On("GetByType", ctx, "travel_upcoming").Return(activeTemplate("travel_upcoming"), nil).Once()
	userRepo.On("GetByID", ctx, entry.RecipientUserID).Return(&domain.User{ID: entry.RecipientUserID, Email: ""}, nil).Once()
	// Permanent failure: no retry attempt is consumed.
	queueRepo.On("MarkFailed", ctx, entry.ID, 0, "recipient has no email address").Return(nil).Once()

	processed, err := svc.ProcessQueue(ctx, 10)

	assert.NoError(t, err)
	assert.Equal(t, 1, processed)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	queueRepo.AssertExpectations(t)
}

func TestMailQueue_CleanOldEntries(t *testing.T) {
	ctx := context.Background()
	queueRepo := new(mocks.QueueRepository)
	svc := newQueueService(queueRepo, new(mocks.TemplateRepository), new(mocks.PreferencesRepository), new(mocks.UserRepository), new(mocks.MailSender))

	queueRepo.On("DeleteTerminalOlderThan", ctx, mock.MatchedBy(func(cutoff time.Time) bool {
		expected := time.Now().AddDate(0, 0, -30)
		return cutoff.Sub(expected).Abs() < time.Minute
	})).Return(int64(3), nil).Once()

	deleted, err := svc.CleanOldEntries(ctx, 30)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	queueRepo.AssertExpectations(t)
}
