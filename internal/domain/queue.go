package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type QueueStatus string

const (
	QueuePending    QueueStatus = "pending"
	QueueProcessing QueueStatus = "processing"
	QueueSent       QueueStatus = "sent"
	QueueFailed     QueueStatus = "failed"
)

// IsTerminal reports whether the entry can no longer change state.
func (s QueueStatus) IsTerminal() bool {
	return s == QueueSent || s == QueueFailed
}

// Variables is the template variable bag stored as JSONB alongside each
// queue entry. Values are scalars, dates (RFC3339 strings after a round
// trip) or arrays.
type Variables map[string]any

func (v Variables) Value() (driver.Value, error) {
	if v == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(v)
}

func (v *Variables) Scan(src any) error {
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, v)
	case string:
		return json.Unmarshal([]byte(data), v)
	case nil:
		*v = Variables{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Variables", src)
	}
}

type EmailQueueEntry struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	TemplateType    string      `json:"template_type" db:"template_type"`
	RecipientUserID uuid.UUID   `json:"recipient_user_id" db:"recipient_user_id"`
	Variables       Variables   `json:"variables" db:"variables"`
	Status          QueueStatus `json:"status" db:"status"`
	Attempts        int         `json:"attempts" db:"attempts"`
	MaxAttempts     int         `json:"max_attempts" db:"max_attempts"`
	LastError       *string     `json:"last_error,omitempty" db:"last_error"`
	ScheduledAt     time.Time   `json:"scheduled_at" db:"scheduled_at"`
	SentAt          *time.Time  `json:"sent_at,omitempty" db:"sent_at"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}

const DefaultMaxAttempts = 5
