// Package alerts runs the daily time-window scans that turn travel and
// payment state into notifications and queued emails.
package alerts

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"viagens-crm/internal/domain"
	"viagens-crm/internal/pkg/metrics"
	"viagens-crm/internal/repository"
	"viagens-crm/internal/service/mailqueue"
	"viagens-crm/internal/service/notification"
	"viagens-crm/internal/service/render"
)

type Service interface {
	RunScans(ctx context.Context) error
}

type service struct {
	travelRepo repository.TravelRepository
	notifSvc   notification.Service
	queue      mailqueue.Service
	currency   string
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

func NewService(
	travelRepo repository.TravelRepository,
	notifSvc notification.Service,
	queue mailqueue.Service,
	currency string,
	m *metrics.Metrics,
	logger *zap.Logger,
) Service {
	if currency == "" {
		currency = render.DefaultCurrency
	}
	return &service{
		travelRepo: travelRepo,
		notifSvc:   notifSvc,
		queue:      queue,
		currency:   currency,
		metrics:    m,
		logger:     logger,
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// RunScans executes the three scans in sequence. Each scan is isolated: a
// failing query is logged and the remaining scans still run. A travel that
// stays inside a qualifying window is re-notified on every run; there is no
// suppression across days.
func (s *service) RunScans(ctx context.Context) error {
	today := startOfDay(time.Now())

	s.scanUpcomingTravels(ctx, today)
	s.scanPaymentsDueSoon(ctx, today)
	s.scanOverduePayments(ctx, today)

	return nil
}

func (s *service) scanUpcomingTravels(ctx context.Context, today time.Time) {
	from := today.AddDate(0, 0, 7)
	to := today.AddDate(0, 0, 8)

	travels, err := s.travelRepo.FindDepartingBetween(ctx, from, to,
		[]domain.TravelStatus{domain.TravelConfirmada, domain.TravelEmAndamento})
	if err != nil {
		s.logger.Error("upcoming travels scan failed", zap.Error(err))
		return
	}

	for i := range travels {
		travel := &travels[i]
		s.emit(ctx, travel, domain.EventTravelUpcoming,
			domain.NotifInfo, domain.PriorityHigh,
			"Viagem se aproximando",
			fmt.Sprintf("A viagem de %s para %s parte em 7 dias", travel.CustomerName, travel.Destination),
			s.baseVars(travel),
		)
	}

	s.logger.Info("upcoming travels scan finished", zap.Int("matched", len(travels)))
}

func (s *service) scanPaymentsDueSoon(ctx context.Context, today time.Time) {
	from := today.AddDate(0, 0, 3)
	to := today.AddDate(0, 0, 4)

	travels, err := s.travelRepo.FindDepartingBetweenWithBalance(ctx, from, to,
		[]domain.TravelStatus{domain.TravelAguardandoPagamento, domain.TravelConfirmada})
	if err != nil {
		s.logger.Error("payments due soon scan failed", zap.Error(err))
		return
	}

	for i := range travels {
		travel := &travels[i]
		vars := s.baseVars(travel)
		vars["balance"] = travel.Balance()

		s.emit(ctx, travel, domain.EventPaymentDueSoon,
			domain.NotifWarning, domain.PriorityHigh,
			"Pagamento vence em breve",
			fmt.Sprintf("A viagem de %s parte em 3 dias com saldo em aberto", travel.CustomerName),
			vars,
		)
	}

	s.logger.Info("payments due soon scan finished", zap.Int("matched", len(travels)))
}

func (s *service) scanOverduePayments(ctx context.Context, today time.Time) {
	travels, err := s.travelRepo.FindOverdue(ctx, today,
		[]domain.TravelStatus{domain.TravelFinalizada, domain.TravelCancelada})
	if err != nil {
		s.logger.Error("overdue payments scan failed", zap.Error(err))
		return
	}

	for i := range travels {
		travel := &travels[i]
		vars := s.baseVars(travel)
		vars["balance"] = travel.Balance()

		s.emit(ctx, travel, domain.EventPaymentOverdue,
			domain.NotifError, domain.PriorityUrgent,
			"Pagamento em atraso",
			fmt.Sprintf("A viagem de %s já partiu e possui saldo em aberto", travel.CustomerName),
			vars,
		)
	}

	s.logger.Info("overdue payments scan finished", zap.Int("matched", len(travels)))
}

// emit creates the in-app notification and queues the alert email for the
// travel's responsible agent. Failures are logged; the scan loop moves on.
func (s *service) emit(
	ctx context.Context,
	travel *domain.Travel,
	event domain.EventType,
	notifType domain.NotificationType,
	priority domain.NotificationPriority,
	title, message string,
	vars domain.Variables,
) {
	entity := "travel"
	travelID := travel.ID

	_, err := s.notifSvc.Create(ctx, domain.CreateNotificationInput{
		UserID:          travel.AgentID,
		Event:           event,
		Type:            notifType,
		Priority:        priority,
		Title:           title,
		Message:         message,
		RelatedEntity:   &entity,
		RelatedEntityID: &travelID,
	})
	if err != nil {
		s.logger.Error("failed to create alert notification",
			zap.String("event", string(event)),
			zap.String("travel_id", travel.ID.String()),
			zap.Error(err),
		)
	}

	if _, err := s.queue.Enqueue(ctx, string(event), travel.AgentID, vars, time.Time{}); err != nil {
		s.logger.Error("failed to enqueue alert email",
			zap.String("event", string(event)),
			zap.String("travel_id", travel.ID.String()),
			zap.Error(err),
		)
	}

	s.metrics.AlertsEmitted.WithLabelValues(string(event)).Inc()
}

func (s *service) baseVars(travel *domain.Travel) domain.Variables {
	return domain.Variables{
		"customerName":  travel.CustomerName,
		"destination":   travel.Destination,
		"departureDate": travel.DepartureDate,
		"currency":      s.currency,
	}
}
