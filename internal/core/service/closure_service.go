package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prevencar/inspection-system/internal/core/domain"
	"github.com/prevencar/inspection-system/internal/core/ports"
)

// MonthLockCache abstracts the closure-lock cache (Redis). A miss falls
// through to the repository; failures are non-fatal.
type MonthLockCache interface {
	Get(ctx context.Context, mes string) (locked bool, ok bool, err error)
	Set(ctx context.Context, mes string, locked bool) error
	Invalidate(ctx context.Context, mes string) error
}

// NopMonthLockCache disables caching: every IsMonthClosed call queries the
// store. Used when Redis is not configured.
type NopMonthLockCache struct{}

func (NopMonthLockCache) Get(context.Context, string) (bool, bool, error) { return false, false, nil }
func (NopMonthLockCache) Set(context.Context, string, bool) error         { return nil }
func (NopMonthLockCache) Invalidate(context.Context, string) error        { return nil }

// ClosureService drives the monthly closure state machine. The approve/
// reject/reopen machine is the single authority; the legacy boolean flag is
// derived from it.
type ClosureService struct {
	closures    ports.ClosureRepository
	inspections ports.InspectionRepository
	cache       MonthLockCache
	logger      zerolog.Logger
	now         func() time.Time
}

func NewClosureService(
	closures ports.ClosureRepository,
	inspections ports.InspectionRepository,
	cache MonthLockCache,
	logger zerolog.Logger,
) *ClosureService {
	return &ClosureService{
		closures:    closures,
		inspections: inspections,
		cache:       cache,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func validMes(mes string) bool {
	_, err := time.Parse("2006-01", mes)
	return err == nil
}

// CreateClosure inserts the closure document for a month. Idempotent: an
// existing closure is returned as-is without a new log entry.
func (s *ClosureService) CreateClosure(ctx context.Context, mes string, actor ports.Actor) (*domain.Closure, error) {
	if !domain.CanManageFinance(actor.Role) {
		return nil, domain.ErrPermissionDenied
	}
	if !validMes(mes) {
		return nil, &domain.ValidationError{Messages: []string{fmt.Sprintf("mês inválido: %q (esperado YYYY-MM)", mes)}}
	}

	closure := &domain.Closure{
		Mes:       mes,
		Status:    domain.ClosureEmAberto,
		CreatedAt: s.now(),
	}
	if err := s.closures.Insert(ctx, closure); err != nil {
		if errors.Is(err, domain.ErrClosureExists) {
			return s.closures.FindByMes(ctx, mes)
		}
		return nil, err
	}
	s.appendLog(ctx, mes, domain.LogFechamento, actor, fmt.Sprintf("%s criou fechamento", actor.Name))
	s.logger.Info().Str("mes", mes).Str("by", actor.Name).Msg("closure created")
	return closure, nil
}

// CloseMonth marks the month as Fechado, freezing its financial fields.
// With CheckPendencias set, incomplete or unpaid fiches produce warnings and
// the close is withheld until the caller confirms with Force.
func (s *ClosureService) CloseMonth(ctx context.Context, in ports.CloseMonthInput, actor ports.Actor) (*ports.CloseMonthResult, error) {
	if !domain.CanManageFinance(actor.Role) {
		return nil, domain.ErrPermissionDenied
	}
	if !validMes(in.Mes) {
		return nil, &domain.ValidationError{Messages: []string{fmt.Sprintf("mês inválido: %q (esperado YYYY-MM)", in.Mes)}}
	}

	fiches, err := s.inspections.FindByMes(ctx, in.Mes)
	if err != nil {
		return nil, err
	}

	if in.CheckPendencias && !in.Force {
		var warnings []string
		for _, f := range fiches {
			if deriveStatusFicha(f) != domain.FichaCompleta {
				warnings = append(warnings, fmt.Sprintf("ficha %s (%s) está incompleta", f.ID, f.LicensePlate))
			}
			if !f.PaymentStatus.Paid() {
				warnings = append(warnings, fmt.Sprintf("ficha %s (%s) está com pagamento pendente", f.ID, f.LicensePlate))
			}
		}
		if len(warnings) > 0 {
			return &ports.CloseMonthResult{Warnings: warnings}, nil
		}
	}

	closure, err := s.closures.FindByMes(ctx, in.Mes)
	if errors.Is(err, domain.ErrClosureNotFound) {
		closure = &domain.Closure{Mes: in.Mes, Status: domain.ClosureEmAberto, CreatedAt: s.now()}
		if err := s.closures.Insert(ctx, closure); err != nil && !errors.Is(err, domain.ErrClosureExists) {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	if closure.Status == domain.ClosureFechado {
		// already closed; closing is idempotent per month
		return &ports.CloseMonthResult{Closure: closure}, nil
	}
	if !closure.Status.CanTransitionTo(domain.ClosureFechado) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, closure.Status, domain.ClosureFechado)
	}

	closure.Status = domain.ClosureFechado
	closure.DataFechamento = s.now()
	closure.FechadoPor = actor.Name
	closure.Report = buildClosureReport(fiches)
	if err := s.closures.Update(ctx, closure); err != nil {
		return nil, err
	}
	s.appendLog(ctx, in.Mes, domain.LogFechamento, actor, fmt.Sprintf("%s fechou o mês", actor.Name))
	s.invalidate(ctx, in.Mes)
	s.logger.Info().Str("mes", in.Mes).Str("by", actor.Name).Msg("month closed")
	return &ports.CloseMonthResult{Closure: closure}, nil
}

// ApproveClosure sets the closure to Aprovado, recording approver and time.
func (s *ClosureService) ApproveClosure(ctx context.Context, mes string, actor ports.Actor) (*domain.Closure, error) {
	return s.transition(ctx, mes, domain.ClosureAprovado, domain.LogAprovacao, actor, fmt.Sprintf("%s aprovou", actor.Name))
}

// RejectClosure sets the closure to Reprovado with the given reason.
func (s *ClosureService) RejectClosure(ctx context.Context, mes string, reason string, actor ports.Actor) (*domain.Closure, error) {
	note := reason
	if note == "" {
		note = fmt.Sprintf("%s reprovou", actor.Name)
	}
	return s.transition(ctx, mes, domain.ClosureReprovado, domain.LogReprovacao, actor, note)
}

// ReopenClosure sets the closure to Reaberto, unlocking the month again.
func (s *ClosureService) ReopenClosure(ctx context.Context, mes string, actor ports.Actor) (*domain.Closure, error) {
	return s.transition(ctx, mes, domain.ClosureReaberto, domain.LogReabertura, actor, fmt.Sprintf("%s reabriu", actor.Name))
}

func (s *ClosureService) transition(ctx context.Context, mes string, target domain.ClosureStatus, action string, actor ports.Actor, note string) (*domain.Closure, error) {
	if !domain.CanManageFinance(actor.Role) {
		return nil, domain.ErrPermissionDenied
	}
	closure, err := s.closures.FindByMes(ctx, mes)
	if err != nil {
		return nil, err
	}
	if !closure.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, closure.Status, target)
	}

	closure.Status = target
	switch target {
	case domain.ClosureAprovado, domain.ClosureReprovado:
		closure.AprovadoPor = actor.Name
		closure.DataAprovacao = s.now()
	case domain.ClosureReaberto:
		closure.ReabertoPor = actor.Name
		closure.DataReabertura = s.now()
	}
	if err := s.closures.Update(ctx, closure); err != nil {
		return nil, err
	}
	s.appendLog(ctx, mes, action, actor, note)
	s.invalidate(ctx, mes)
	s.logger.Info().Str("mes", mes).Str("action", action).Str("by", actor.Name).Msg("closure transition")
	return closure, nil
}

// ListClosures returns every closure, newest month first.
func (s *ClosureService) ListClosures(ctx context.Context, actor ports.Actor) ([]*domain.Closure, error) {
	if !domain.CanManageFinance(actor.Role) {
		return nil, domain.ErrPermissionDenied
	}
	return s.closures.List(ctx)
}

// ListLogs returns the append-only transition log of one closure.
func (s *ClosureService) ListLogs(ctx context.Context, mes string, actor ports.Actor) ([]*domain.ClosureLog, error) {
	if !domain.CanManageFinance(actor.Role) {
		return nil, domain.ErrPermissionDenied
	}
	return s.closures.ListLogs(ctx, mes)
}

// IsMonthClosed reports whether financial fields of the month are frozen.
// A month with no closure record is open. Cache failures fall through to
// the repository.
func (s *ClosureService) IsMonthClosed(ctx context.Context, mes string) (bool, error) {
	if mes == "" {
		return false, nil
	}
	if locked, ok, err := s.cache.Get(ctx, mes); err != nil {
		s.logger.Warn().Err(err).Str("mes", mes).Msg("closure cache read failed, querying store")
	} else if ok {
		return locked, nil
	}

	closure, err := s.closures.FindByMes(ctx, mes)
	if errors.Is(err, domain.ErrClosureNotFound) {
		if cerr := s.cache.Set(ctx, mes, false); cerr != nil {
			s.logger.Warn().Err(cerr).Str("mes", mes).Msg("closure cache write failed")
		}
		return false, nil
	}
	if err != nil {
		return false, err
	}

	locked := closure.Locked()
	if cerr := s.cache.Set(ctx, mes, locked); cerr != nil {
		s.logger.Warn().Err(cerr).Str("mes", mes).Msg("closure cache write failed")
	}
	return locked, nil
}

// appendLog writes the immutable audit entry for a transition. Log failures
// never roll back the transition itself.
func (s *ClosureService) appendLog(ctx context.Context, mes, action string, actor ports.Actor, note string) {
	entry := &domain.ClosureLog{
		ID:          uuid.NewString(),
		ClosureID:   mes,
		Action:      action,
		PerformedBy: actor.ID,
		PerformedAt: s.now(),
		Note:        note,
	}
	if err := s.closures.AppendLog(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("mes", mes).Str("action", action).Msg("failed to append closure log")
	}
}

func (s *ClosureService) invalidate(ctx context.Context, mes string) {
	if err := s.cache.Invalidate(ctx, mes); err != nil {
		s.logger.Warn().Err(err).Str("mes", mes).Msg("failed to invalidate closure cache")
	}
}

// buildClosureReport aggregates the month's fiches per referral partner.
// Fiches without an indication fall into the empty-id row.
func buildClosureReport(fiches []*domain.Inspection) *domain.ClosureReport {
	byID := make(map[string]*domain.IndicationTotals)
	var order []string
	for _, f := range fiches {
		t, ok := byID[f.IndicationID]
		if !ok {
			name := f.IndicationName
			if f.IndicationID == "" {
				name = "Cliente Particular"
			}
			t = &domain.IndicationTotals{IndicationID: f.IndicationID, IndicationName: name}
			byID[f.IndicationID] = t
			order = append(order, f.IndicationID)
		}
		value := f.EffectiveValue()
		t.TotalCount++
		t.TotalValue += value
		if f.PaymentStatus.Paid() {
			t.PaidCount++
			t.PaidValue += value
		} else {
			t.ToPayCount++
			t.ToPayValue += value
		}
	}

	report := &domain.ClosureReport{ByIndication: make([]domain.IndicationTotals, 0, len(order))}
	for _, id := range order {
		report.ByIndication = append(report.ByIndication, *byID[id])
	}
	return report
}
