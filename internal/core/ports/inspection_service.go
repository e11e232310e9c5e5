package ports

import (
	"context"

	"github.com/prevencar/inspection-system/internal/core/domain"
)

// Actor identifies the authenticated user performing an operation.
type Actor struct {
	ID   string
	Name string
	Role string
}

// SelectedServiceInput is one service chosen on the form. ChargedValue zero
// means "untouched": the engine fills it with the resolved base value.
type SelectedServiceInput struct {
	ServiceID    string
	ChargedValue float64
}

// ClientInput holds the customer data collected on the form.
type ClientInput struct {
	Name       string
	CPF        string
	Address    string
	CEP        string
	Number     string
	Complement string
}

// SaveInspectionInput carries all form data for creating or updating a fiche.
// ID empty means create.
type SaveInspectionInput struct {
	ID               string
	Date             string
	VehicleModel     string
	LicensePlate     string
	VehicleCategory  string
	SelectedServices []SelectedServiceInput
	Client           ClientInput
	Inspector        string
	IndicationID     string
	Observations     string
	External         bool
	NFe              string
	Contact          string
	PaymentStatus    string
	Valor            *float64
}

// BulkItemError is one per-record failure inside a bulk operation.
type BulkItemError struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// BulkResult reports a bulk operation's partial outcome: updated records and
// the errors of the skipped ones, surfaced together.
type BulkResult struct {
	Updated []string        `json:"updated"`
	Errors  []BulkItemError `json:"errors"`
}

// InspectionService is the lifecycle/rules engine over fiches.
type InspectionService interface {
	// Save validates, computes derived fields and persists. The explicit
	// workflow actions below advance status; Save never auto-advances.
	Save(ctx context.Context, in SaveInspectionInput, actor Actor) (*domain.Inspection, error)
	// SendToCashier moves a validated fiche Iniciada → No Caixa.
	SendToCashier(ctx context.Context, in SaveInspectionInput, actor Actor) (*domain.Inspection, error)
	// FinalizePayment concludes the fiche with the chosen payment method.
	FinalizePayment(ctx context.Context, in SaveInspectionInput, actor Actor) (*domain.Inspection, error)
	Get(ctx context.Context, id string, actor Actor) (*domain.Inspection, error)
	List(ctx context.Context, filter ListInspectionsFilter, actor Actor) ([]*domain.Inspection, int64, error)
	Delete(ctx context.Context, id string, actor Actor) error
	// BulkUpdatePayment applies a payment status to many fiches with
	// per-record closure and completeness checks; partial success.
	BulkUpdatePayment(ctx context.Context, ids []string, payment string, actor Actor) (*BulkResult, error)
	// BulkUpdateStatus reassigns workflow status with the same closure gate.
	BulkUpdateStatus(ctx context.Context, ids []string, status string, actor Actor) (*BulkResult, error)
}
