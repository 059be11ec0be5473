package unit_test

import (
	"context"
	"testing"
	"time"

	"viagens-crm/internal/domain"
	"viagens-crm/internal/realtime"
	"viagens-crm/internal/service/notification"
	"viagens-crm/tests/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newNotificationService(
	notifRepo *mocks.NotificationRepository,
	prefsRepo *mocks.PreferencesRepository,
	queue *mocks.MailQueueService,
	hub *realtime.Hub,
) notification.Service {
	return notification.NewService(notifRepo, prefsRepo, queue, hub, nil, "BRL", zap.NewNop())
}

func sampleTravel(agentID uuid.UUID) *domain.Travel {
	return &domain.Travel{
		ID:            uuid.New(),
		CustomerName:  "Maria Souza",
		Destination:   "Lisboa",
		DepartureDate: time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC),
		Status:        domain.TravelConfirmada,
		TotalValue:    5000,
		PaidValue:     2500,
		AgentID:       agentID,
	}
}

func TestNotification_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success With Default Preferences", func(t *testing.T) {
		notifRepo := new(mocks.NotificationRepository)
		prefsRepo := new(mocks.PreferencesRepository)
		hub := realtime.NewHub()
		svc := newNotificationService(notifRepo, prefsRepo, new(mocks.MailQueueService), hub)

		userID := uuid.New()
		sub := hub.Subscribe(userID)
		defer hub.Unsubscribe(sub)

		// No preferences row: everything is allowed.
		prefsRepo.On("GetByUser", ctx, userID).Return(nil, nil).Once()
		notifRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.UserID == userID && n.Title == "Pagamento recebido"
		})).Return(nil).Once()

		notif, err := svc.Create(ctx, domain.CreateNotificationInput{
			UserID:   userID,
			Event:    domain.EventPaymentReceived,
			Type:     domain.NotifSuccess,
			Priority: domain.PriorityNormal,
			Title:    "Pagamento recebido",
			Message:  "Pagamento registrado na viagem de Maria Souza",
		})

		assert.NoError(t, err)
		assert.NotNil(t, notif)

		select {
		case pushed := <-sub.C:
			assert.Equal(t, notif.ID, pushed.ID)
		case <-time.After(time.Second):
			t.Fatal("expected a pushed notification")
		}
		notifRepo.AssertExpectations(t)
	})

	t.Run("Gated By Preferences", func(t *testing.T) {
		notifRepo := new(mocks.NotificationRepository)
		prefsRepo := new(mocks.PreferencesRepository)
		svc := newNotificationService(notifRepo, prefsRepo, new(mocks.MailQueueService), realtime.NewHub())

		userID := uuid.New()
		prefs := domain.DefaultPreferences(userID)
		prefs.PaymentReceivedInApp = false
		prefsRepo.On("GetByUser", ctx, userID).Return(prefs, nil).Once()

		notif, err := svc.Create(ctx, domain.CreateNotificationInput{
			UserID:   userID,
			Event:    domain.EventPaymentReceived,
			Type:     domain.NotifSuccess,
			Priority: domain.PriorityNormal,
			Title:    "Pagamento recebido",
			Message:  "Pagamento registrado",
		})

		assert.NoError(t, err)
		assert.Nil(t, notif)
		notifRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Master Toggle Off", func(t *testing.T) {
		notifRepo := new(mocks.NotificationRepository)
		prefsRepo := new(mocks.PreferencesRepository)
		svc := newNotificationService(notifRepo, prefsRepo, new(mocks.MailQueueService), realtime.NewHub())

		userID := uuid.New()
		prefs := domain.DefaultPreferences(userID)
		prefs.InAppEnabled = false
		prefsRepo.On("GetByUser", ctx, userID).Return(prefs, nil).Once()

		notif, err := svc.Create(ctx, domain.CreateNotificationInput{
			UserID:   userID,
			Event:    domain.EventTravelCreated,
			Type:     domain.NotifSuccess,
			Priority: domain.PriorityNormal,
			Title:    "Nova viagem cadastrada",
			Message:  "Viagem cadastrada",
		})

		assert.NoError(t, err)
		assert.Nil(t, notif)
		notifRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestNotification_NotifyPaymentReceived(t *testing.T) {
	ctx := context.Background()
	notifRepo := new(mocks.NotificationRepository)
	prefsRepo := new(mocks.PreferencesRepository)
	queue := new(mocks.MailQueueService)
	svc := newNotificationService(notifRepo, prefsRepo, queue, realtime.NewHub())

	agentID := uuid.New()
	travel := sampleTravel(agentID)

	prefsRepo.On("GetByUser", ctx, agentID).Return(nil, nil).Once()
	notifRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.UserID == agentID &&
			n.Type == domain.NotifSuccess &&
			n.RelatedEntityID != nil && *n.RelatedEntityID == travel.ID
	})).Return(nil).Once()
	queue.On("Enqueue", ctx, "payment_received", agentID, mock.MatchedBy(func(vars domain.Variables) bool {
		return vars["amount"] == 1000.0 &&
			vars["balance"] == travel.Balance() &&
			vars["currency"] == "BRL"
	}), time.Time{}).Return(uuid.New(), nil).Once()

	err := svc.NotifyPaymentReceived(ctx, travel, 1000)

	assert.NoError(t, err)
	notifRepo.AssertExpectations(t)
	queue.AssertExpectations(t)
}

// Enqueue failure must not surface to the business operation that fired
// the event.
func TestNotification_NotifyTravelCreated_QueueFailureSwallowed(t *testing.T) {
	ctx := context.Background()
	notifRepo := new(mocks.NotificationRepository)
	prefsRepo := new(mocks.PreferencesRepository)
	queue := new(mocks.MailQueueService)
	svc := newNotificationService(notifRepo, prefsRepo, queue, realtime.NewHub())

	agentID := uuid.New()
	travel := sampleTravel(agentID)

	prefsRepo.On("GetByUser", ctx, agentID).Return(nil, nil).Once()
	notifRepo.On("Create", ctx, mock.Anything).Return(nil).Once()
	queue.On("Enqueue", ctx, "travel_created", agentID, mock.Anything, time.Time{}).
		Return(uuid.Nil, assert.AnError).Once()

	err := svc.NotifyTravelCreated(ctx, travel)

	assert.NoError(t, err)
	queue.AssertExpectations(t)
}

// The configured base currency flows into every queued email's variables.
func TestNotification_ConfiguredCurrencyInVariables(t *testing.T) {
	ctx := context.Background()
	notifRepo := new(mocks.NotificationRepository)
	prefsRepo := new(mocks.PreferencesRepository)
	queue := new(mocks.MailQueueService)
	svc := notification.NewService(notifRepo, prefsRepo, queue, realtime.NewHub(), nil, "USD", zap.NewNop())

	agentID := uuid.New()
	travel := sampleTravel(agentID)

	prefsRepo.On("GetByUser", ctx, agentID).Return(nil, nil).Once()
	notifRepo.On("Create", ctx, mock.Anything).Return(nil).Once()
	queue.On("Enqueue", ctx, "travel_created", agentID, mock.MatchedBy(func(vars domain.Variables) bool {
		return vars["currency"] == "USD"
	}), time.Time{}).Return(uuid.New(), nil).Once()

	err := svc.NotifyTravelCreated(ctx, travel)

	assert.NoError(t, err)
	queue.AssertExpectations(t)
}

func TestNotification_GetUnreadCount(t *testing.T) {
	ctx := context.Background()
	notifRepo := new(mocks.NotificationRepository)
	svc := newNotificationService(notifRepo, new(mocks.PreferencesRepository), new(mocks.MailQueueService), realtime.NewHub())

	userID := uuid.New()
	notifRepo.On("CountUnread", ctx, userID).Return(int64(7), nil).Once()

	count, err := svc.GetUnreadCount(ctx, userID)

	assert.NoError(t, err)
	assert.Equal(t, int64(7), count)
	notifRepo.AssertExpectations(t)
}

func TestNotification_MarkAsRead(t *testing.T) {
	ctx := context.Background()
	notifRepo := new(mocks.NotificationRepository)
	svc := newNotificationService(notifRepo, new(mocks.PreferencesRepository), new(mocks.MailQueueService), realtime.NewHub())

	id := uuid.New()
	userID := uuid.New()
	notifRepo.On("MarkAsRead", ctx, id, userID).Return(nil).Once()

	assert.NoError(t, svc.MarkAsRead(ctx, id, userID))
	notifRepo.AssertExpectations(t)
}

func TestNotification_Delete_NotOwned(t *testing.T) {
	ctx := context.Background()
	notifRepo := new(mocks.NotificationRepository)
	svc := newNotificationService(notifRepo, new(mocks.PreferencesRepository), new(mocks.MailQueueService), realtime.NewHub())

	id := uuid.New()
	userID := uuid.New()
	notifRepo.On("Delete", ctx, id, userID).Return(domain.ErrNotificationNotFound).Once()

	err := svc.Delete(ctx, id, userID)

	assert.ErrorIs(t, err, domain.ErrNotificationNotFound)
}

func TestNotification_ClearRead(t *testing.T) {
	ctx := context.Background()
	notifRepo := new(mocks.NotificationRepository)
	svc := newNotificationService(notifRepo, new(mocks.PreferencesRepository), new(mocks.MailQueueService), realtime.NewHub())

	userID := uuid.New()
	notifRepo.On("DeleteRead", ctx, userID).Return(int64(4), nil).Once()

	deleted, err := svc.ClearRead(ctx, userID)

	assert.NoError(t, err)
	assert.Equal(t, int64(4), deleted)
}
