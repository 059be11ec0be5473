package repository

import (
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	Notification NotificationRepository
	Queue        QueueRepository
	Preferences  PreferencesRepository
	Template     TemplateRepository
	Travel       TravelRepository
	User         UserRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Notification: NewNotificationRepository(db),
		Queue:        NewQueueRepository(db),
		Preferences:  NewPreferencesRepository(db),
		Template:     NewTemplateRepository(db),
		Travel:       NewTravelRepository(db),
		User:         NewUserRepository(db),
	}
}
