package domain

import "time"

// Financial event kinds.
const (
	AuditPaymentChange = "payment_change"
	AuditValueChange   = "value_change"
	AuditStatusChange  = "status_change"
	AuditBulkUpdate    = "bulk_update"
)

// FieldChange captures a single field's before/after snapshot.
type FieldChange struct {
	Before string `json:"before" bson:"before"`
	After  string `json:"after" bson:"after"`
}

// FinancialEvent is one append-only audit entry for a financial mutation on
// an inspection. A concrete tagged type replaces the original's ad hoc diff
// blobs.
type FinancialEvent struct {
	ID            string                 `json:"id" bson:"_id,omitempty"`
	Kind          string                 `json:"kind" bson:"kind"`
	Who           string                 `json:"who" bson:"who"`
	When          time.Time              `json:"when" bson:"when"`
	FicheID       string                 `json:"fiche_id" bson:"fiche_id"`
	Mes           string                 `json:"mes" bson:"mes"`
	FieldsChanged map[string]FieldChange `json:"fields_changed" bson:"fields_changed"`
}
