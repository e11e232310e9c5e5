package ports

import (
	"context"

	"github.com/prevencar/inspection-system/internal/core/domain"
)

// ClosureRepository persists monthly closures and their append-only logs.
type ClosureRepository interface {
	// Insert creates the closure document keyed by month. Returns
	// domain.ErrClosureExists when the month already has one.
	Insert(ctx context.Context, c *domain.Closure) error
	Update(ctx context.Context, c *domain.Closure) error
	FindByMes(ctx context.Context, mes string) (*domain.Closure, error)
	List(ctx context.Context) ([]*domain.Closure, error)
	AppendLog(ctx context.Context, log *domain.ClosureLog) error
	ListLogs(ctx context.Context, closureID string) ([]*domain.ClosureLog, error)
}

// CloseMonthInput controls the close-month action.
type CloseMonthInput struct {
	Mes string
	// CheckPendencias enables the non-blocking pre-check for incomplete or
	// unpaid fiches in the month.
	CheckPendencias bool
	// Force applies the close even when the pre-check found pendências
	// (the user confirmed the warning).
	Force bool
}

// CloseMonthResult reports the outcome of a close-month action. When
// Warnings is non-empty and the close was not forced, Closure is nil and the
// month stays open.
type CloseMonthResult struct {
	Closure  *domain.Closure `json:"closure,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
}

// ClosureService drives the monthly closure state machine. Every operation
// requires the admin or financeiro role and writes an immutable log entry.
type ClosureService interface {
	CreateClosure(ctx context.Context, mes string, actor Actor) (*domain.Closure, error)
	CloseMonth(ctx context.Context, in CloseMonthInput, actor Actor) (*CloseMonthResult, error)
	ApproveClosure(ctx context.Context, mes string, actor Actor) (*domain.Closure, error)
	RejectClosure(ctx context.Context, mes string, reason string, actor Actor) (*domain.Closure, error)
	ReopenClosure(ctx context.Context, mes string, actor Actor) (*domain.Closure, error)
	ListClosures(ctx context.Context, actor Actor) ([]*domain.Closure, error)
	ListLogs(ctx context.Context, mes string, actor Actor) ([]*domain.ClosureLog, error)
	// IsMonthClosed is the single source of truth consulted by the rules
	// engine before permitting financial-field mutations.
	IsMonthClosed(ctx context.Context, mes string) (bool, error)
}
