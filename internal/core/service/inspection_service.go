package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prevencar/inspection-system/internal/core/domain"
	"github.com/prevencar/inspection-system/internal/core/ports"
)

const maxPageSize = 100

// InspectionService is the lifecycle/rules engine over fiches: it computes
// derived fields and enforces workflow invariants on every create/update.
type InspectionService struct {
	repo        ports.InspectionRepository
	services    ports.ServiceRepository
	indications ports.IndicationRepository
	closures    ports.ClosureService
	audit       ports.AuditRecorder
	logger      zerolog.Logger
	now         func() time.Time
}

func NewInspectionService(
	repo ports.InspectionRepository,
	services ports.ServiceRepository,
	indications ports.IndicationRepository,
	closures ports.ClosureService,
	audit ports.AuditRecorder,
	logger zerolog.Logger,
) *InspectionService {
	return &InspectionService{
		repo:        repo,
		services:    services,
		indications: indications,
		closures:    closures,
		audit:       audit,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Save validates, computes derived fields and persists a fiche. It never
// auto-advances workflow status: SendToCashier and FinalizePayment are the
// explicit actions for that.
func (s *InspectionService) Save(ctx context.Context, in ports.SaveInspectionInput, actor ports.Actor) (*domain.Inspection, error) {
	return s.save(ctx, in, actor, "")
}

// SendToCashier validates the full form and moves the fiche to No Caixa.
func (s *InspectionService) SendToCashier(ctx context.Context, in ports.SaveInspectionInput, actor ports.Actor) (*domain.Inspection, error) {
	return s.save(ctx, in, actor, domain.StatusNoCaixa)
}

// FinalizePayment validates the full form, requires a payment method and
// concludes the fiche, stamping data_pagamento.
func (s *InspectionService) FinalizePayment(ctx context.Context, in ports.SaveInspectionInput, actor ports.Actor) (*domain.Inspection, error) {
	payment := domain.PaymentStatus(in.PaymentStatus)
	if !payment.Paid() {
		return nil, &domain.ValidationError{Messages: []string{"forma de pagamento é obrigatória para finalizar"}}
	}
	return s.save(ctx, in, actor, domain.StatusConcluida)
}

// save is the single write path. targetStatus empty keeps the current status
// (Iniciada for a new fiche); a non-empty target gates on the full required
// field list before persisting anything.
func (s *InspectionService) save(ctx context.Context, in ports.SaveInspectionInput, actor ports.Actor, targetStatus domain.InspectionStatus) (*domain.Inspection, error) {
	var existing *domain.Inspection
	if in.ID != "" {
		found, err := s.repo.FindByID(ctx, in.ID)
		if err != nil {
			return nil, err
		}
		if err := guardEdit(found, actor); err != nil {
			return nil, err
		}
		existing = found
	}

	insp, err := s.buildInspection(ctx, in, existing, actor)
	if err != nil {
		return nil, err
	}

	if targetStatus != "" {
		if verr := validateRequiredFields(insp); verr != nil {
			return nil, verr
		}
		insp.Status = targetStatus
	}
	if targetStatus == domain.StatusConcluida && insp.PaymentStatus.Paid() && insp.DataPagamento.IsZero() {
		insp.DataPagamento = s.now()
	}
	insp.StatusFicha = deriveStatusFicha(insp)

	if existing != nil {
		changed, diff := financialFieldsChanged(existing, insp)
		if changed {
			// A month move is gated by both the source and target month.
			months := []string{existing.MesReferencia}
			if insp.MesReferencia != existing.MesReferencia {
				months = append(months, insp.MesReferencia)
			}
			for _, mes := range months {
				locked, err := s.closures.IsMonthClosed(ctx, mes)
				if err != nil {
					return nil, fmt.Errorf("check month closure: %w", err)
				}
				if locked {
					return nil, domain.ErrClosedPeriod
				}
			}
		}
		insp.UpdatedAt = s.now()
		if err := s.repo.Update(ctx, insp); err != nil {
			s.logger.Error().Err(err).Str("fiche_id", insp.ID).Msg("failed to update inspection")
			return nil, err
		}
		if changed {
			s.audit.Record(domain.FinancialEvent{
				Kind:          domain.AuditValueChange,
				Who:           actor.Name,
				When:          s.now(),
				FicheID:       insp.ID,
				Mes:           insp.MesReferencia,
				FieldsChanged: diff,
			})
		}
	} else {
		insp.ID = uuid.NewString()
		insp.CreatedBy = actor.ID
		insp.CreatedAt = s.now()
		insp.UpdatedAt = insp.CreatedAt
		if err := s.repo.Create(ctx, insp); err != nil {
			s.logger.Error().Err(err).Msg("failed to create inspection")
			return nil, err
		}
	}

	s.logger.Info().
		Str("fiche_id", insp.ID).
		Str("status", string(insp.Status)).
		Str("plate", insp.LicensePlate).
		Msg("inspection saved")
	return insp, nil
}

// buildInspection assembles the aggregate from the form input, resolving
// prices against the current catalog and indication.
func (s *InspectionService) buildInspection(ctx context.Context, in ports.SaveInspectionInput, existing *domain.Inspection, actor ports.Actor) (*domain.Inspection, error) {
	category := domain.VehicleCategory(in.VehicleCategory)
	if in.VehicleCategory != "" && !domain.ValidVehicleCategory(category) {
		return nil, &domain.ValidationError{Messages: []string{fmt.Sprintf("categoria de veículo desconhecida: %q", in.VehicleCategory)}}
	}

	var indication *domain.Indication
	indicationName := ""
	if in.IndicationID != "" {
		found, err := s.indications.FindByID(ctx, in.IndicationID)
		if err != nil {
			return nil, err
		}
		indication = found
		indicationName = found.Name
	}

	inputs := make([]selectedServiceInput, 0, len(in.SelectedServices))
	for _, sel := range in.SelectedServices {
		item, err := s.services.FindByID(ctx, sel.ServiceID)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, selectedServiceInput{item: item, chargedValue: sel.ChargedValue})
	}

	var previous []domain.SelectedService
	status := domain.StatusIniciada
	if existing != nil {
		previous = existing.SelectedServices
		status = existing.Status
	}

	selected, err := resolveServices(inputs, category, indication, previous)
	if err != nil {
		return nil, err
	}

	payment := domain.PaymentStatus(in.PaymentStatus)
	if payment == "" {
		payment = domain.PaymentAPagar
	}
	if !domain.ValidPaymentStatus(payment) {
		return nil, &domain.ValidationError{Messages: []string{fmt.Sprintf("status de pagamento desconhecido: %q", in.PaymentStatus)}}
	}

	insp := &domain.Inspection{
		ID:               in.ID,
		Date:             in.Date,
		VehicleModel:     in.VehicleModel,
		LicensePlate:     in.LicensePlate,
		VehicleCategory:  category,
		SelectedServices: selected,
		Client: domain.Client{
			Name:       in.Client.Name,
			CPF:        in.Client.CPF,
			Address:    in.Client.Address,
			CEP:        in.Client.CEP,
			Number:     in.Client.Number,
			Complement: in.Client.Complement,
		},
		Inspector:      in.Inspector,
		IndicationID:   in.IndicationID,
		IndicationName: indicationName,
		Observations:   in.Observations,
		External:       in.External,
		NFe:            in.NFe,
		Contact:        in.Contact,
		Status:         status,
		PaymentStatus:  payment,
		Valor:          in.Valor,
	}
	if existing != nil {
		insp.CreatedBy = existing.CreatedBy
		insp.CreatedAt = existing.CreatedAt
		insp.DataPagamento = existing.DataPagamento
	}
	if in.Valor != nil && *in.Valor <= 0 {
		return nil, &domain.ValidationError{Messages: []string{"valor deve ser maior que zero"}}
	}
	if in.Date == "" && existing != nil {
		insp.Date = existing.Date
	}
	insp.TotalValue = computeTotal(selected)
	insp.MesReferencia = deriveMesReferencia(insp.Date)
	return insp, nil
}

// Get loads one fiche. Financial values are not redacted here; the transport
// layer hides them from the vistoriador role.
func (s *InspectionService) Get(ctx context.Context, id string, actor ports.Actor) (*domain.Inspection, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns a page of fiches matching the filter.
func (s *InspectionService) List(ctx context.Context, filter ports.ListInspectionsFilter, actor ports.Actor) ([]*domain.Inspection, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 || filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	return s.repo.List(ctx, filter)
}

// Delete removes a fiche. The vistoriador role can never delete, regardless
// of ownership.
func (s *InspectionService) Delete(ctx context.Context, id string, actor ports.Actor) error {
	if err := guardDelete(actor); err != nil {
		return err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("fiche_id", id).Msg("failed to delete inspection")
		return err
	}
	s.logger.Info().Str("fiche_id", id).Str("by", actor.Name).Msg("inspection deleted")
	return nil
}

// BulkUpdatePayment applies a payment status to many fiches. Records in a
// closed month, or incomplete fiches being marked paid, are skipped with
// their errors accumulated; the rest proceed (partial success).
func (s *InspectionService) BulkUpdatePayment(ctx context.Context, ids []string, payment string, actor ports.Actor) (*ports.BulkResult, error) {
	if !domain.CanManageFinance(actor.Role) {
		return nil, domain.ErrPermissionDenied
	}
	target := domain.PaymentStatus(payment)
	if !domain.ValidPaymentStatus(target) {
		return nil, &domain.ValidationError{Messages: []string{fmt.Sprintf("status de pagamento desconhecido: %q", payment)}}
	}

	result := &ports.BulkResult{}
	for _, id := range ids {
		if err := s.applyPaymentUpdate(ctx, id, target, actor); err != nil {
			result.Errors = append(result.Errors, ports.BulkItemError{ID: id, Message: err.Error()})
			continue
		}
		result.Updated = append(result.Updated, id)
	}
	s.logger.Info().
		Int("updated", len(result.Updated)).
		Int("errors", len(result.Errors)).
		Str("payment", payment).
		Msg("bulk payment update finished")
	return result, nil
}

func (s *InspectionService) applyPaymentUpdate(ctx context.Context, id string, target domain.PaymentStatus, actor ports.Actor) error {
	insp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	locked, err := s.closures.IsMonthClosed(ctx, insp.MesReferencia)
	if err != nil {
		return fmt.Errorf("check month closure: %w", err)
	}
	if locked {
		return domain.ErrClosedPeriod
	}
	insp.StatusFicha = deriveStatusFicha(insp)
	if target.Paid() && insp.StatusFicha != domain.FichaCompleta {
		return &domain.ValidationError{Messages: []string{"ficha incompleta não pode ser marcada como paga"}}
	}

	before := *insp
	insp.PaymentStatus = target
	if target.Paid() {
		insp.Status = domain.StatusConcluida
		insp.DataPagamento = s.now()
	} else {
		insp.Status = domain.StatusNoCaixa
		insp.DataPagamento = time.Time{}
	}
	insp.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, insp); err != nil {
		return err
	}

	_, diff := financialFieldsChanged(&before, insp)
	diff["status"] = domain.FieldChange{Before: string(before.Status), After: string(insp.Status)}
	s.audit.Record(domain.FinancialEvent{
		Kind:          domain.AuditPaymentChange,
		Who:           actor.Name,
		When:          s.now(),
		FicheID:       insp.ID,
		Mes:           insp.MesReferencia,
		FieldsChanged: diff,
	})
	return nil
}

// BulkUpdateStatus reassigns the workflow status for the selected fiches.
// The closure gate applies here as well: fiches in a locked month are
// skipped with an error.
func (s *InspectionService) BulkUpdateStatus(ctx context.Context, ids []string, status string, actor ports.Actor) (*ports.BulkResult, error) {
	if !domain.CanManageFinance(actor.Role) {
		return nil, domain.ErrPermissionDenied
	}
	target := domain.InspectionStatus(status)
	if !domain.ValidInspectionStatus(target) {
		return nil, &domain.ValidationError{Messages: []string{fmt.Sprintf("status desconhecido: %q", status)}}
	}

	result := &ports.BulkResult{}
	for _, id := range ids {
		insp, err := s.repo.FindByID(ctx, id)
		if err != nil {
			result.Errors = append(result.Errors, ports.BulkItemError{ID: id, Message: err.Error()})
			continue
		}
		locked, err := s.closures.IsMonthClosed(ctx, insp.MesReferencia)
		if err != nil {
			result.Errors = append(result.Errors, ports.BulkItemError{ID: id, Message: err.Error()})
			continue
		}
		if locked {
			result.Errors = append(result.Errors, ports.BulkItemError{ID: id, Message: domain.ErrClosedPeriod.Error()})
			continue
		}
		before := insp.Status
		insp.Status = target
		insp.StatusFicha = deriveStatusFicha(insp)
		insp.UpdatedAt = s.now()
		if err := s.repo.Update(ctx, insp); err != nil {
			result.Errors = append(result.Errors, ports.BulkItemError{ID: id, Message: err.Error()})
			continue
		}
		s.audit.Record(domain.FinancialEvent{
			Kind:    domain.AuditStatusChange,
			Who:     actor.Name,
			When:    s.now(),
			FicheID: insp.ID,
			Mes:     insp.MesReferencia,
			FieldsChanged: map[string]domain.FieldChange{
				"status": {Before: string(before), After: string(target)},
			},
		})
		result.Updated = append(result.Updated, id)
	}
	return result, nil
}
