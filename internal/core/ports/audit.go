package ports

import (
	"context"

	"github.com/prevencar/inspection-system/internal/core/domain"
)

// AuditRepository appends financial events to the audit collection.
// The log is append-only: there is no update or delete.
type AuditRepository interface {
	Append(ctx context.Context, e *domain.FinancialEvent) error
	ListByFiche(ctx context.Context, ficheID string) ([]*domain.FinancialEvent, error)
	ListByMes(ctx context.Context, mes string) ([]*domain.FinancialEvent, error)
}

// AuditRecorder is the asynchronous entry point services use to emit
// financial events. Implementations must preserve per-fiche ordering.
type AuditRecorder interface {
	Record(e domain.FinancialEvent)
}
