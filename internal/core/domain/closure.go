package domain

import (
	"errors"
	"time"
)

// ClosureStatus is the lifecycle state of a monthly closure.
type ClosureStatus string

const (
	ClosureEmAberto ClosureStatus = "Em aberto"
	ClosureFechado  ClosureStatus = "Fechado"
	ClosureAprovado ClosureStatus = "Aprovado"
	ClosureReprovado ClosureStatus = "Reprovado"
	ClosureReaberto ClosureStatus = "Reaberto"
)

// closureTransitions defines the allowed state machine transitions.
// Reaberto is equivalent to Em aberto: the month can be closed again.
var closureTransitions = map[ClosureStatus][]ClosureStatus{
	ClosureEmAberto:  {ClosureFechado, ClosureAprovado, ClosureReprovado},
	ClosureFechado:   {ClosureAprovado, ClosureReprovado, ClosureReaberto},
	ClosureAprovado:  {ClosureReaberto},
	ClosureReprovado: {ClosureReaberto, ClosureFechado},
	ClosureReaberto:  {ClosureFechado, ClosureAprovado, ClosureReprovado},
}

var ErrClosureExists = errors.New("closure already exists for month")

// CanTransitionTo reports whether a transition from s to next is valid.
func (s ClosureStatus) CanTransitionTo(next ClosureStatus) bool {
	for _, allowed := range closureTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Locked reports whether the status freezes financial fields on every
// inspection of that month. The legacy boolean "fechado" flag is subsumed
// by this predicate.
func (s ClosureStatus) Locked() bool {
	return s == ClosureFechado || s == ClosureAprovado
}

// IndicationTotals aggregates the month's fiches for one referral partner.
// The empty-id row collects fiches without an indication.
type IndicationTotals struct {
	IndicationID   string  `json:"indication_id" bson:"indication_id"`
	IndicationName string  `json:"indication_name" bson:"indication_name"`
	TotalCount     int     `json:"total_count" bson:"total_count"`
	PaidCount      int     `json:"paid_count" bson:"paid_count"`
	ToPayCount     int     `json:"to_pay_count" bson:"to_pay_count"`
	PaidValue      float64 `json:"paid_value" bson:"paid_value"`
	ToPayValue     float64 `json:"to_pay_value" bson:"to_pay_value"`
	TotalValue     float64 `json:"total_value" bson:"total_value"`
}

// ClosureReport is the financial summary attached when a month is closed.
type ClosureReport struct {
	ByIndication []IndicationTotals `json:"by_indication" bson:"by_indication"`
}

// Closure is the monthly financial lock/approval aggregate. The month string
// (YYYY-MM) is the document id, which makes creation idempotent per month.
type Closure struct {
	Mes            string        `json:"mes" bson:"_id"`
	Status         ClosureStatus `json:"status" bson:"status"`
	DataFechamento time.Time     `json:"data_fechamento,omitempty" bson:"data_fechamento,omitempty"`
	FechadoPor     string        `json:"fechado_por,omitempty" bson:"fechado_por,omitempty"`
	AprovadoPor    string        `json:"aprovado_por,omitempty" bson:"aprovado_por,omitempty"`
	DataAprovacao  time.Time     `json:"data_aprovacao,omitempty" bson:"data_aprovacao,omitempty"`
	ReabertoPor    string        `json:"reaberto_por,omitempty" bson:"reaberto_por,omitempty"`
	DataReabertura time.Time     `json:"data_reabertura,omitempty" bson:"data_reabertura,omitempty"`
	Report         *ClosureReport `json:"report,omitempty" bson:"report,omitempty"`
	CreatedAt      time.Time     `json:"created_at" bson:"created_at"`
}

// Locked reports whether the closure freezes its month's financial fields.
func (c *Closure) Locked() bool {
	return c != nil && c.Status.Locked()
}

// Closure log actions, one per state transition.
const (
	LogFechamento = "fechamento"
	LogAprovacao  = "aprovacao"
	LogReprovacao = "reprovacao"
	LogReabertura = "reabertura"
)

// ClosureLog is one append-only audit entry for a closure transition.
// Entries are never edited or deleted.
type ClosureLog struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	ClosureID   string    `json:"closure_id" bson:"closure_id"`
	Action      string    `json:"action" bson:"action"`
	PerformedBy string    `json:"performed_by" bson:"performed_by"`
	PerformedAt time.Time `json:"performed_at" bson:"performed_at"`
	Note        string    `json:"note,omitempty" bson:"note,omitempty"`
}
