package domain

import (
	"time"

	"github.com/google/uuid"
)

type TravelStatus string

const (
	TravelOrcamento           TravelStatus = "orcamento"
	TravelAguardandoPagamento TravelStatus = "aguardando-pagamento"
	TravelConfirmada          TravelStatus = "confirmada"
	TravelEmAndamento         TravelStatus = "em-andamento"
	TravelFinalizada          TravelStatus = "finalizada"
	TravelCancelada           TravelStatus = "cancelada"
)

// Travel is the read-only view the alert scanner needs; the travel CRUD
// surface owns the full entity.
type Travel struct {
	ID            uuid.UUID    `json:"id" db:"id"`
	CustomerName  string       `json:"customer_name" db:"customer_name"`
	Destination   string       `json:"destination" db:"destination"`
	DepartureDate time.Time    `json:"departure_date" db:"departure_date"`
	ReturnDate    *time.Time   `json:"return_date,omitempty" db:"return_date"`
	Status        TravelStatus `json:"status" db:"status"`
	TotalValue    float64      `json:"total_value" db:"total_value"`
	PaidValue     float64      `json:"paid_value" db:"paid_value"`
	AgentID       uuid.UUID    `json:"agent_id" db:"agent_id"`
}

func (t *Travel) Balance() float64 {
	return t.TotalValue - t.PaidValue
}
