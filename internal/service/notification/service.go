package notification

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"viagens-crm/internal/domain"
	"viagens-crm/internal/realtime"
	"viagens-crm/internal/repository"
	"viagens-crm/internal/service/mailqueue"
	"viagens-crm/internal/service/render"
)

type Service interface {
	Create(ctx context.Context, input domain.CreateNotificationInput) (*domain.Notification, error)
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error)
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkAsRead(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
	ClearRead(ctx context.Context, userID uuid.UUID) (int64, error)
	CleanReadOlderThan(ctx context.Context, retentionDays int) (int64, error)

	NotifyTravelCreated(ctx context.Context, travel *domain.Travel) error
	NotifyTravelStatusChanged(ctx context.Context, travel *domain.Travel, previous domain.TravelStatus) error
	NotifyPaymentReceived(ctx context.Context, travel *domain.Travel, amount float64) error
	NotifyDocumentsPending(ctx context.Context, travel *domain.Travel, documents []string) error
}

type service struct {
	notifRepo repository.NotificationRepository
	prefsRepo repository.PreferencesRepository
	queue     mailqueue.Service
	hub       *realtime.Hub
	redis     *redis.Client
	currency  string
	logger    *zap.Logger
}

func NewService(
	notifRepo repository.NotificationRepository,
	prefsRepo repository.PreferencesRepository,
	queue mailqueue.Service,
	hub *realtime.Hub,
	redisClient *redis.Client,
	currency string,
	logger *zap.Logger,
) Service {
	if currency == "" {
		currency = render.DefaultCurrency
	}
	return &service{
		notifRepo: notifRepo,
		prefsRepo: prefsRepo,
		queue:     queue,
		hub:       hub,
		redis:     redisClient,
		currency:  currency,
		logger:    logger,
	}
}

const unreadCacheTTL = time.Minute

func unreadCacheKey(userID uuid.UUID) string {
	return "notif:unread:" + userID.String()
}

func (s *service) invalidateUnreadCache(ctx context.Context, userID uuid.UUID) {
	if s.redis != nil {
		_ = s.redis.Del(ctx, unreadCacheKey(userID)).Err()
	}
}

// Create persists an in-app notification when the recipient's preferences
// allow it, then pushes it to any open streams. Push is best-effort and
// never blocks the caller. A gated create returns (nil, nil).
func (s *service) Create(ctx context.Context, input domain.CreateNotificationInput) (*domain.Notification, error) {
	prefs, err := s.prefsRepo.GetByUser(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	if prefs == nil {
		prefs = domain.DefaultPreferences(input.UserID)
	}

	if !prefs.AllowsInApp(input.Event) {
		return nil, nil
	}

	notif := &domain.Notification{
		ID:              uuid.New(),
		UserID:          input.UserID,
		Type:            input.Type,
		Priority:        input.Priority,
		Title:           input.Title,
		Message:         input.Message,
		ActionURL:       input.ActionURL,
		RelatedEntity:   input.RelatedEntity,
		RelatedEntityID: input.RelatedEntityID,
	}

	if err := s.notifRepo.Create(ctx, notif); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	s.invalidateUnreadCache(ctx, input.UserID)
	s.hub.Publish(input.UserID, *notif)

	return notif, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error) {
	notifications, total, err := s.notifRepo.ListByUser(ctx, userID, unreadOnly, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Notification]{}, err
	}

	return domain.NewPaginatedResponse(notifications, params.Page, params.PageSize, total), nil
}

func (s *service) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, unreadCacheKey(userID)).Result(); err == nil {
			if count, err := strconv.ParseInt(cached, 10, 64); err == nil {
				return count, nil
			}
		}
	}

	count, err := s.notifRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}

	if s.redis != nil {
		_ = s.redis.Set(ctx, unreadCacheKey(userID), strconv.FormatInt(count, 10), unreadCacheTTL).Err()
	}

	return count, nil
}

func (s *service) MarkAsRead(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	if err := s.notifRepo.MarkAsRead(ctx, id, userID); err != nil {
		return err
	}
	s.invalidateUnreadCache(ctx, userID)
	return nil
}

func (s *service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.notifRepo.MarkAllAsRead(ctx, userID); err != nil {
		return err
	}
	s.invalidateUnreadCache(ctx, userID)
	return nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	if err := s.notifRepo.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.invalidateUnreadCache(ctx, userID)
	return nil
}

func (s *service) ClearRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifRepo.DeleteRead(ctx, userID)
}

func (s *service) CleanReadOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return s.notifRepo.DeleteReadOlderThan(ctx, cutoff)
}

// emit creates the in-app notification and enqueues the matching email for
// a domain event. Failures are logged and swallowed so the triggering
// business operation never fails on its notification side-effect.
func (s *service) emit(ctx context.Context, input domain.CreateNotificationInput, vars domain.Variables) {
	if _, err := s.Create(ctx, input); err != nil {
		s.logger.Error("failed to create event notification",
			zap.String("event", string(input.Event)),
			zap.String("user_id", input.UserID.String()),
			zap.Error(err),
		)
	}

	if _, err := s.queue.Enqueue(ctx, string(input.Event), input.UserID, vars, time.Time{}); err != nil {
		s.logger.Error("failed to enqueue event email",
			zap.String("event", string(input.Event)),
			zap.String("user_id", input.UserID.String()),
			zap.Error(err),
		)
	}
}

func (s *service) travelVars(travel *domain.Travel) domain.Variables {
	return domain.Variables{
		"customerName":  travel.CustomerName,
		"destination":   travel.Destination,
		"departureDate": travel.DepartureDate,
		"currency":      s.currency,
	}
}

func relatedTravel(travel *domain.Travel) (entity *string, id *uuid.UUID) {
	e := "travel"
	travelID := travel.ID
	return &e, &travelID
}

func (s *service) NotifyTravelCreated(ctx context.Context, travel *domain.Travel) error {
	entity, id := relatedTravel(travel)
	s.emit(ctx, domain.CreateNotificationInput{
		UserID:          travel.AgentID,
		Event:           domain.EventTravelCreated,
		Type:            domain.NotifSuccess,
		Priority:        domain.PriorityNormal,
		Title:           "Nova viagem cadastrada",
		Message:         fmt.Sprintf("Viagem de %s para %s foi cadastrada", travel.CustomerName, travel.Destination),
		RelatedEntity:   entity,
		RelatedEntityID: id,
	}, s.travelVars(travel))
	return nil
}

func (s *service) NotifyTravelStatusChanged(ctx context.Context, travel *domain.Travel, previous domain.TravelStatus) error {
	vars := s.travelVars(travel)
	vars["previousStatus"] = string(previous)
	vars["status"] = string(travel.Status)

	entity, id := relatedTravel(travel)
	s.emit(ctx, domain.CreateNotificationInput{
		UserID:          travel.AgentID,
		Event:           domain.EventTravelStatusChanged,
		Type:            domain.NotifInfo,
		Priority:        domain.PriorityNormal,
		Title:           "Status da viagem atualizado",
		Message:         fmt.Sprintf("Viagem de %s mudou de %s para %s", travel.CustomerName, previous, travel.Status),
		RelatedEntity:   entity,
		RelatedEntityID: id,
	}, vars)
	return nil
}

func (s *service) NotifyPaymentReceived(ctx context.Context, travel *domain.Travel, amount float64) error {
	vars := s.travelVars(travel)
	vars["amount"] = amount
	vars["balance"] = travel.Balance()

	entity, id := relatedTravel(travel)
	s.emit(ctx, domain.CreateNotificationInput{
		UserID:          travel.AgentID,
		Event:           domain.EventPaymentReceived,
		Type:            domain.NotifSuccess,
		Priority:        domain.PriorityNormal,
		Title:           "Pagamento recebido",
		Message:         fmt.Sprintf("Pagamento registrado na viagem de %s", travel.CustomerName),
		RelatedEntity:   entity,
		RelatedEntityID: id,
	}, vars)
	return nil
}

func (s *service) NotifyDocumentsPending(ctx context.Context, travel *domain.Travel, documents []string) error {
	vars := s.travelVars(travel)
	vars["documents"] = documents

	entity, id := relatedTravel(travel)
	s.emit(ctx, domain.CreateNotificationInput{
		UserID:          travel.AgentID,
		Event:           domain.EventDocumentsPending,
		Type:            domain.NotifWarning,
		Priority:        domain.PriorityHigh,
		Title:           "Documentos pendentes",
		Message:         fmt.Sprintf("Viagem de %s possui documentos pendentes", travel.CustomerName),
		RelatedEntity:   entity,
		RelatedEntityID: id,
	}, vars)
	return nil
}
