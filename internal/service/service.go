package service

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"viagens-crm/internal/config"
	"viagens-crm/internal/pkg/metrics"
	"viagens-crm/internal/realtime"
	"viagens-crm/internal/repository"
	"viagens-crm/internal/service/alerts"
	"viagens-crm/internal/service/mail"
	"viagens-crm/internal/service/mailqueue"
	"viagens-crm/internal/service/notification"
	"viagens-crm/internal/service/preferences"
	"viagens-crm/internal/service/scheduler"
	"viagens-crm/internal/service/templates"
)

type Services struct {
	Queue        mailqueue.Service
	Notification notification.Service
	Preferences  preferences.Service
	Templates    templates.Service
	Alerts       alerts.Service
	Scheduler    *scheduler.Scheduler
}

func NewServices(
	repos *repository.Repositories,
	redisClient *redis.Client,
	hub *realtime.Hub,
	cfg *config.Config,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Services {
	sender := mail.NewResendSender(cfg)
	limiter := rate.NewLimiter(rate.Limit(cfg.EmailRatePerSecond), cfg.EmailRatePerSecond)

	queueService := mailqueue.NewService(
		repos.Queue, repos.Template, repos.Preferences, repos.User,
		sender, limiter, m, logger,
	)
	notificationService := notification.NewService(
		repos.Notification, repos.Preferences, queueService, hub, redisClient, cfg.BaseCurrency, logger,
	)
	preferencesService := preferences.NewService(repos.Preferences)
	templatesService := templates.NewService(repos.Template)
	alertsService := alerts.NewService(repos.Travel, notificationService, queueService, cfg.BaseCurrency, m, logger)
	schedulerService := scheduler.New(queueService, alertsService, notificationService, cfg, logger)

	return &Services{
		Queue:        queueService,
		Notification: notificationService,
		Preferences:  preferencesService,
		Templates:    templatesService,
		Alerts:       alertsService,
		Scheduler:    schedulerService,
	}
}
