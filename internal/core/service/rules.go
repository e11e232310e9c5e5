package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/prevencar/inspection-system/internal/core/domain"
	"github.com/prevencar/inspection-system/internal/core/ports"
)

// computeTotal sums the charged value of every selected service.
// Zero services means total 0.
func computeTotal(services []domain.SelectedService) float64 {
	var total float64
	for _, s := range services {
		total += s.ChargedValue
	}
	return total
}

// applyPricing resolves the base value of a service for one fiche: the
// indication's per-service override wins, otherwise the catalog price for the
// vehicle category (with the Outros row as fallback).
func applyPricing(svc *domain.ServiceItem, category domain.VehicleCategory, indication *domain.Indication) float64 {
	if price, ok := indication.OverrideFor(svc.ID); ok {
		return price
	}
	return svc.PriceFor(category)
}

// resolveServices builds the fiche's service list from form input, re-pricing
// base values against the current catalog/indication/category. A charged
// value edited earlier (previous charged differs from previous base) is
// preserved; an untouched one follows the new base value. A service removed
// and re-added gets a fresh base value because its previous entry is gone.
func resolveServices(
	inputs []selectedServiceInput,
	category domain.VehicleCategory,
	indication *domain.Indication,
	previous []domain.SelectedService,
) ([]domain.SelectedService, error) {
	prevByID := make(map[string]domain.SelectedService, len(previous))
	for _, p := range previous {
		prevByID[p.ServiceID] = p
	}

	out := make([]domain.SelectedService, 0, len(inputs))
	for _, in := range inputs {
		base := applyPricing(in.item, category, indication)
		charged := base
		switch {
		case in.chargedValue > 0:
			charged = in.chargedValue
		case in.chargedValue < 0:
			return nil, &domain.ValidationError{Messages: []string{
				fmt.Sprintf("valor cobrado do serviço %q deve ser maior que zero", in.item.Name),
			}}
		default:
			if prev, ok := prevByID[in.item.ID]; ok && prev.ChargedValue != prev.BaseValue {
				charged = prev.ChargedValue
			}
		}
		out = append(out, domain.SelectedService{
			ServiceID:    in.item.ID,
			Name:         in.item.Name,
			BaseValue:    base,
			ChargedValue: charged,
		})
	}
	return out, nil
}

// selectedServiceInput pairs a resolved catalog item with the form's charged
// value (zero = untouched).
type selectedServiceInput struct {
	item         *domain.ServiceItem
	chargedValue float64
}

// deriveStatusFicha computes the completeness flag. Idempotent: it depends
// only on the fiche's current data.
func deriveStatusFicha(i *domain.Inspection) string {
	complete := i.Client.Name != "" &&
		i.Client.CPF != "" &&
		i.Client.Address != "" &&
		i.Client.CEP != "" &&
		i.LicensePlate != "" &&
		i.VehicleModel != "" &&
		len(i.SelectedServices) > 0 &&
		i.EffectiveValue() > 0
	if complete {
		return domain.FichaCompleta
	}
	return domain.FichaIncompleta
}

// deriveMesReferencia extracts "YYYY-MM" from a fiche date. An unparsable
// date yields the empty string rather than an error.
func deriveMesReferencia(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	return t.Format("2006-01")
}

// digitCount counts the numeric digits in a masked document string.
func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// validateRequiredFields gates the send-to-cashier and finalize-payment
// actions. It returns every missing field at once so the user can fix the
// whole form in one pass.
func validateRequiredFields(i *domain.Inspection) *domain.ValidationError {
	var msgs []string
	if strings.TrimSpace(i.VehicleModel) == "" {
		msgs = append(msgs, "modelo do veículo é obrigatório")
	}
	if strings.TrimSpace(i.LicensePlate) == "" {
		msgs = append(msgs, "placa é obrigatória")
	}
	if strings.TrimSpace(i.Inspector) == "" {
		msgs = append(msgs, "vistoriador responsável é obrigatório")
	}
	if !domain.ValidVehicleCategory(i.VehicleCategory) {
		msgs = append(msgs, "categoria do veículo é obrigatória")
	}
	if strings.TrimSpace(i.Client.Name) == "" {
		msgs = append(msgs, "nome do cliente é obrigatório")
	}
	if digitCount(i.Client.CPF) < 11 {
		msgs = append(msgs, "CPF/CNPJ do cliente deve ter ao menos 11 dígitos")
	}
	if len(i.SelectedServices) == 0 {
		msgs = append(msgs, "selecione ao menos um serviço")
	}
	for _, s := range i.SelectedServices {
		if s.ChargedValue <= 0 {
			msgs = append(msgs, fmt.Sprintf("valor cobrado do serviço %q deve ser maior que zero", s.Name))
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return &domain.ValidationError{Messages: msgs}
}

// guardEdit enforces role-based edit restrictions. Admin and financeiro are
// unrestricted here (the closure lock is checked separately); a vistoriador
// may edit only fiches they authored or fiches still in the initial state.
func guardEdit(i *domain.Inspection, actor ports.Actor) error {
	if domain.CanManageFinance(actor.Role) {
		return nil
	}
	if actor.Role != domain.RoleVistoriador {
		return domain.ErrPermissionDenied
	}
	if i.CreatedBy == actor.ID || i.Inspector == actor.Name || i.Status == domain.StatusIniciada {
		return nil
	}
	return domain.ErrPermissionDenied
}

// guardDelete blocks deletion for the vistoriador role regardless of
// ownership.
func guardDelete(actor ports.Actor) error {
	if domain.CanManageFinance(actor.Role) {
		return nil
	}
	return domain.ErrPermissionDenied
}

// financialFieldsChanged reports whether a save mutates any field frozen by
// a month closure, with the per-field diff for the audit trail.
func financialFieldsChanged(before, after *domain.Inspection) (bool, map[string]domain.FieldChange) {
	changes := make(map[string]domain.FieldChange)
	if before.MesReferencia != after.MesReferencia {
		// Moving a fiche between months shifts revenue and must respect
		// the closure lock of both months.
		changes["mes_referencia"] = domain.FieldChange{
			Before: before.MesReferencia,
			After:  after.MesReferencia,
		}
	}
	if before.PaymentStatus != after.PaymentStatus {
		changes["payment_status"] = domain.FieldChange{
			Before: string(before.PaymentStatus),
			After:  string(after.PaymentStatus),
		}
	}
	if before.TotalValue != after.TotalValue {
		changes["total_value"] = domain.FieldChange{
			Before: formatValue(before.TotalValue),
			After:  formatValue(after.TotalValue),
		}
	}
	if beforeV, afterV := before.Valor, after.Valor; !equalValor(beforeV, afterV) {
		changes["valor"] = domain.FieldChange{
			Before: formatValorPtr(beforeV),
			After:  formatValorPtr(afterV),
		}
	}
	for _, a := range after.SelectedServices {
		for _, b := range before.SelectedServices {
			if a.ServiceID == b.ServiceID && a.ChargedValue != b.ChargedValue {
				changes["charged:"+a.Name] = domain.FieldChange{
					Before: formatValue(b.ChargedValue),
					After:  formatValue(a.ChargedValue),
				}
			}
		}
	}
	return len(changes) > 0, changes
}

func equalValor(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func formatValue(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func formatValorPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatValue(*v)
}
