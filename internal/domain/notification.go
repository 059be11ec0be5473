package domain

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID              uuid.UUID            `json:"id" db:"id"`
	UserID          uuid.UUID            `json:"user_id" db:"user_id"`
	Type            NotificationType     `json:"type" db:"type"`
	Priority        NotificationPriority `json:"priority" db:"priority"`
	Title           string               `json:"title" db:"title"`
	Message         string               `json:"message" db:"message"`
	IsRead          bool                 `json:"is_read" db:"is_read"`
	ReadAt          *time.Time           `json:"read_at,omitempty" db:"read_at"`
	ActionURL       *string              `json:"action_url,omitempty" db:"action_url"`
	RelatedEntity   *string              `json:"related_entity,omitempty" db:"related_entity"`
	RelatedEntityID *uuid.UUID           `json:"related_entity_id,omitempty" db:"related_entity_id"`
	CreatedAt       time.Time            `json:"created_at" db:"created_at"`
}

type NotificationType string

const (
	NotifInfo    NotificationType = "info"
	NotifSuccess NotificationType = "success"
	NotifWarning NotificationType = "warning"
	NotifError   NotificationType = "error"
)

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityNormal NotificationPriority = "normal"
	PriorityHigh   NotificationPriority = "high"
	PriorityUrgent NotificationPriority = "urgent"
)

// EventType identifies the business event behind a notification or email.
// Preference flags and email template types share these keys.
type EventType string

const (
	EventTravelCreated       EventType = "travel_created"
	EventTravelStatusChanged EventType = "travel_status_changed"
	EventPaymentReceived     EventType = "payment_received"
	EventTravelUpcoming      EventType = "travel_upcoming"
	EventPaymentDueSoon      EventType = "payment_due_soon"
	EventPaymentOverdue      EventType = "payment_overdue"
	EventDocumentsPending    EventType = "documents_pending"
)

type CreateNotificationInput struct {
	UserID          uuid.UUID            `json:"user_id" validate:"required"`
	Event           EventType            `json:"event"`
	Type            NotificationType     `json:"type" validate:"required,oneof=info success warning error"`
	Priority        NotificationPriority `json:"priority" validate:"required,oneof=low normal high urgent"`
	Title           string               `json:"title" validate:"required"`
	Message         string               `json:"message" validate:"required"`
	ActionURL       *string              `json:"action_url,omitempty"`
	RelatedEntity   *string              `json:"related_entity,omitempty"`
	RelatedEntityID *uuid.UUID           `json:"related_entity_id,omitempty"`
}
