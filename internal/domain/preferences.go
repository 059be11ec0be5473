package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationPreferences is one row per user. A user without a row gets
// DefaultPreferences (everything enabled, digest off).
type NotificationPreferences struct {
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	InAppEnabled bool      `json:"in_app_enabled" db:"in_app_enabled"`
	EmailEnabled bool      `json:"email_enabled" db:"email_enabled"`

	TravelCreatedInApp       bool `json:"travel_created_in_app" db:"travel_created_in_app"`
	TravelCreatedEmail       bool `json:"travel_created_email" db:"travel_created_email"`
	TravelStatusChangedInApp bool `json:"travel_status_changed_in_app" db:"travel_status_changed_in_app"`
	TravelStatusChangedEmail bool `json:"travel_status_changed_email" db:"travel_status_changed_email"`
	PaymentReceivedInApp     bool `json:"payment_received_in_app" db:"payment_received_in_app"`
	PaymentReceivedEmail     bool `json:"payment_received_email" db:"payment_received_email"`
	TravelUpcomingInApp      bool `json:"travel_upcoming_in_app" db:"travel_upcoming_in_app"`
	TravelUpcomingEmail      bool `json:"travel_upcoming_email" db:"travel_upcoming_email"`
	PaymentDueSoonInApp      bool `json:"payment_due_soon_in_app" db:"payment_due_soon_in_app"`
	PaymentDueSoonEmail      bool `json:"payment_due_soon_email" db:"payment_due_soon_email"`
	PaymentOverdueInApp      bool `json:"payment_overdue_in_app" db:"payment_overdue_in_app"`
	PaymentOverdueEmail      bool `json:"payment_overdue_email" db:"payment_overdue_email"`
	DocumentsPendingInApp    bool `json:"documents_pending_in_app" db:"documents_pending_in_app"`
	DocumentsPendingEmail    bool `json:"documents_pending_email" db:"documents_pending_email"`

	DigestMode bool      `json:"digest_mode" db:"digest_mode"`
	DigestTime string    `json:"digest_time" db:"digest_time"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

func DefaultPreferences(userID uuid.UUID) *NotificationPreferences {
	return &NotificationPreferences{
		UserID:       userID,
		InAppEnabled: true,
		EmailEnabled: true,

		TravelCreatedInApp:       true,
		TravelCreatedEmail:       true,
		TravelStatusChangedInApp: true,
		TravelStatusChangedEmail: true,
		PaymentReceivedInApp:     true,
		PaymentReceivedEmail:     true,
		TravelUpcomingInApp:      true,
		TravelUpcomingEmail:      true,
		PaymentDueSoonInApp:      true,
		PaymentDueSoonEmail:      true,
		PaymentOverdueInApp:      true,
		PaymentOverdueEmail:      true,
		DocumentsPendingInApp:    true,
		DocumentsPendingEmail:    true,

		DigestMode: false,
		DigestTime: "08:00",
	}
}

// AllowsInApp combines the in-app master toggle with the per-event flag.
// Unknown events fall back to the master toggle alone.
func (p *NotificationPreferences) AllowsInApp(event EventType) bool {
	if !p.InAppEnabled {
		return false
	}
	switch event {
	case EventTravelCreated:
		return p.TravelCreatedInApp
	case EventTravelStatusChanged:
		return p.TravelStatusChangedInApp
	case EventPaymentReceived:
		return p.PaymentReceivedInApp
	case EventTravelUpcoming:
		return p.TravelUpcomingInApp
	case EventPaymentDueSoon:
		return p.PaymentDueSoonInApp
	case EventPaymentOverdue:
		return p.PaymentOverdueInApp
	case EventDocumentsPending:
		return p.DocumentsPendingInApp
	default:
		return true
	}
}

// AllowsEmail combines the email master toggle with the per-event flag.
func (p *NotificationPreferences) AllowsEmail(event EventType) bool {
	if !p.EmailEnabled {
		return false
	}
	switch event {
	case EventTravelCreated:
		return p.TravelCreatedEmail
	case EventTravelStatusChanged:
		return p.TravelStatusChangedEmail
	case EventPaymentReceived:
		return p.PaymentReceivedEmail
	case EventTravelUpcoming:
		return p.TravelUpcomingEmail
	case EventPaymentDueSoon:
		return p.PaymentDueSoonEmail
	case EventPaymentOverdue:
		return p.PaymentOverdueEmail
	case EventDocumentsPending:
		return p.DocumentsPendingEmail
	default:
		return true
	}
}

type UpdatePreferencesInput struct {
	InAppEnabled *bool `json:"in_app_enabled,omitempty"`
	EmailEnabled *bool `json:"email_enabled,omitempty"`

	TravelCreatedInApp       *bool `json:"travel_created_in_app,omitempty"`
	TravelCreatedEmail       *bool `json:"travel_created_email,omitempty"`
	TravelStatusChangedInApp *bool `json:"travel_status_changed_in_app,omitempty"`
	TravelStatusChangedEmail *bool `json:"travel_status_changed_email,omitempty"`
	PaymentReceivedInApp     *bool `json:"payment_received_in_app,omitempty"`
	PaymentReceivedEmail     *bool `json:"payment_received_email,omitempty"`
	TravelUpcomingInApp      *bool `json:"travel_upcoming_in_app,omitempty"`
	TravelUpcomingEmail      *bool `json:"travel_upcoming_email,omitempty"`
	PaymentDueSoonInApp      *bool `json:"payment_due_soon_in_app,omitempty"`
	PaymentDueSoonEmail      *bool `json:"payment_due_soon_email,omitempty"`
	PaymentOverdueInApp      *bool `json:"payment_overdue_in_app,omitempty"`
	PaymentOverdueEmail      *bool `json:"payment_overdue_email,omitempty"`
	DocumentsPendingInApp    *bool `json:"documents_pending_in_app,omitempty"`
	DocumentsPendingEmail    *bool `json:"documents_pending_email,omitempty"`

	DigestMode *bool   `json:"digest_mode,omitempty"`
	DigestTime *string `json:"digest_time,omitempty" validate:"omitempty,datetime=15:04"`
}

// Apply overlays the set fields of the input onto p.
func (i UpdatePreferencesInput) Apply(p *NotificationPreferences) {
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.InAppEnabled, i.InAppEnabled)
	set(&p.EmailEnabled, i.EmailEnabled)
	set(&p.TravelCreatedInApp, i.TravelCreatedInApp)
	set(&p.TravelCreatedEmail, i.TravelCreatedEmail)
	set(&p.TravelStatusChangedInApp, i.TravelStatusChangedInApp)
	set(&p.TravelStatusChangedEmail, i.TravelStatusChangedEmail)
	set(&p.PaymentReceivedInApp, i.PaymentReceivedInApp)
	set(&p.PaymentReceivedEmail, i.PaymentReceivedEmail)
	set(&p.TravelUpcomingInApp, i.TravelUpcomingInApp)
	set(&p.TravelUpcomingEmail, i.TravelUpcomingEmail)
	set(&p.PaymentDueSoonInApp, i.PaymentDueSoonInApp)
	set(&p.PaymentDueSoonEmail, i.PaymentDueSoonEmail)
	set(&p.PaymentOverdueInApp, i.PaymentOverdueInApp)
	set(&p.PaymentOverdueEmail, i.PaymentOverdueEmail)
	set(&p.DocumentsPendingInApp, i.DocumentsPendingInApp)
	set(&p.DocumentsPendingEmail, i.DocumentsPendingEmail)
	set(&p.DigestMode, i.DigestMode)
	if i.DigestTime != nil {
		p.DigestTime = *i.DigestTime
	}
}
