package ports

import (
	"context"

	"github.com/prevencar/inspection-system/internal/core/domain"
)

// ListInspectionsFilter carries all query parameters for listing fiches.
type ListInspectionsFilter struct {
	Status        string  // optional: workflow status
	PaymentStatus string  // optional: payment status / method
	IndicationID  string  // optional: referral partner
	ServiceName   string  // optional: fiches carrying this service
	Search        string  // optional: partial match on plate, model or client name
	DateFrom      string  // optional: date >= DateFrom (YYYY-MM-DD)
	DateTo        string  // optional: date <= DateTo
	Mes           string  // optional: mes_referencia (YYYY-MM)
	MinValue      float64 // optional: total_value >= MinValue
	MaxValue      float64 // optional: total_value <= MaxValue (0 = unbounded)
	Page          int     // 1-based
	Limit         int     // max rows per page (capped at 100 by service)
}

// InspectionRepository defines persistence operations for inspections.
// Writes replace the whole document (last-write-wins, no version field).
type InspectionRepository interface {
	Create(ctx context.Context, i *domain.Inspection) error
	Update(ctx context.Context, i *domain.Inspection) error
	FindByID(ctx context.Context, id string) (*domain.Inspection, error)
	Delete(ctx context.Context, id string) error
	// List returns a page of inspections matching filter and the total count.
	List(ctx context.Context, filter ListInspectionsFilter) ([]*domain.Inspection, int64, error)
	// FindByMes returns every inspection whose mes_referencia matches.
	FindByMes(ctx context.Context, mes string) ([]*domain.Inspection, error)
}
