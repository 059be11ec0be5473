package handler

import (
	"viagens-crm/internal/realtime"
	"viagens-crm/internal/service"
)

type Handlers struct {
	Notification *NotificationHandler
	Preferences  *PreferencesHandler
	Template     *TemplateHandler
	Stream       *StreamHandler
}

func NewHandlers(services *service.Services, hub *realtime.Hub) *Handlers {
	validate := NewValidator()

	return &Handlers{
		Notification: NewNotificationHandler(services.Notification),
		Preferences:  NewPreferencesHandler(services.Preferences, validate),
		Template:     NewTemplateHandler(services.Templates),
		Stream:       NewStreamHandler(hub),
	}
}
