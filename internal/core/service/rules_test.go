package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prevencar/inspection-system/internal/core/domain"
	"github.com/prevencar/inspection-system/internal/core/ports"
)

func actorOf(id, name, role string) ports.Actor {
	return ports.Actor{ID: id, Name: name, Role: role}
}

func laudoCautelar() *domain.ServiceItem {
	return &domain.ServiceItem{
		ID:   "svc-laudo",
		Name: "Laudo Cautelar",
		Prices: map[domain.VehicleCategory]float64{
			domain.CategoryAutomoveis:   250,
			domain.CategoryMotocicletas: 180,
			domain.CategoryOutros:       200,
		},
	}
}

func TestApplyPricing_CatalogPrice(t *testing.T) {
	svc := laudoCautelar()

	assert.Equal(t, 250.0, applyPricing(svc, domain.CategoryAutomoveis, nil))
	assert.Equal(t, 180.0, applyPricing(svc, domain.CategoryMotocicletas, nil))
	// unknown category falls back to the Outros row
	assert.Equal(t, 200.0, applyPricing(svc, domain.CategoryCarretas, nil))
}

func TestApplyPricing_IndicationOverrideWins(t *testing.T) {
	svc := laudoCautelar()
	oficina := &domain.Indication{
		ID:            "ind-1",
		Name:          "Oficina do Zé",
		ServicePrices: map[string]float64{"svc-laudo": 220},
	}

	assert.Equal(t, 220.0, applyPricing(svc, domain.CategoryAutomoveis, oficina))

	// an indication without an override for this service keeps the catalog price
	outra := &domain.Indication{ID: "ind-2", Name: "Outra"}
	assert.Equal(t, 250.0, applyPricing(svc, domain.CategoryAutomoveis, outra))
}

func TestResolveServices_UntouchedFollowsBase(t *testing.T) {
	svc := laudoCautelar()

	out, err := resolveServices(
		[]selectedServiceInput{{item: svc}},
		domain.CategoryAutomoveis, nil, nil,
	)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 250.0, out[0].BaseValue)
	assert.Equal(t, 250.0, out[0].ChargedValue)
}

func TestResolveServices_ExplicitChargedWins(t *testing.T) {
	svc := laudoCautelar()

	out, err := resolveServices(
		[]selectedServiceInput{{item: svc, chargedValue: 230}},
		domain.CategoryAutomoveis, nil, nil,
	)
	require.NoError(t, err)
	assert.Equal(t, 250.0, out[0].BaseValue)
	assert.Equal(t, 230.0, out[0].ChargedValue)
}

func TestResolveServices_EditedChargedSurvivesRepricing(t *testing.T) {
	svc := laudoCautelar()
	// previously billed 230 against a 250 base, so the user edited it
	previous := []domain.SelectedService{
		{ServiceID: "svc-laudo", Name: "Laudo Cautelar", BaseValue: 250, ChargedValue: 230},
	}

	// category changes, base drops to the motorcycle price, charged stays
	out, err := resolveServices(
		[]selectedServiceInput{{item: svc}},
		domain.CategoryMotocicletas, nil, previous,
	)
	require.NoError(t, err)
	assert.Equal(t, 180.0, out[0].BaseValue)
	assert.Equal(t, 230.0, out[0].ChargedValue)
}

func TestResolveServices_UntouchedChargedFollowsNewBase(t *testing.T) {
	svc := laudoCautelar()
	// previously charged == base: the user never touched the value
	previous := []domain.SelectedService{
		{ServiceID: "svc-laudo", Name: "Laudo Cautelar", BaseValue: 250, ChargedValue: 250},
	}

	out, err := resolveServices(
		[]selectedServiceInput{{item: svc}},
		domain.CategoryMotocicletas, nil, previous,
	)
	require.NoError(t, err)
	assert.Equal(t, 180.0, out[0].ChargedValue)
}

func TestResolveServices_ReAddResetsBase(t *testing.T) {
	svc := laudoCautelar()

	// the service was removed from the fiche; re-adding it finds no
	// previous entry, so the edited value from the past does not return
	out, err := resolveServices(
		[]selectedServiceInput{{item: svc}},
		domain.CategoryAutomoveis, nil, []domain.SelectedService{},
	)
	require.NoError(t, err)
	assert.Equal(t, 250.0, out[0].ChargedValue)
}

func TestResolveServices_NegativeChargedRejected(t *testing.T) {
	svc := laudoCautelar()

	_, err := resolveServices(
		[]selectedServiceInput{{item: svc, chargedValue: -10}},
		domain.CategoryAutomoveis, nil, nil,
	)
	ve, ok := domain.AsValidation(err)
	require.True(t, ok, "expected ValidationError, got %v", err)
	assert.Len(t, ve.Messages, 1)
}

func TestComputeTotal(t *testing.T) {
	assert.Equal(t, 0.0, computeTotal(nil))
	assert.Equal(t, 430.0, computeTotal([]domain.SelectedService{
		{ChargedValue: 230},
		{ChargedValue: 200},
	}))
}

func completeFiche() *domain.Inspection {
	return &domain.Inspection{
		VehicleModel: "Gol 1.6",
		LicensePlate: "ABC1D23",
		Client: domain.Client{
			Name:    "João da Silva",
			CPF:     "123.456.789-09",
			Address: "Rua das Flores",
			CEP:     "30130-000",
		},
		SelectedServices: []domain.SelectedService{
			{ServiceID: "svc-laudo", Name: "Laudo Cautelar", BaseValue: 250, ChargedValue: 250},
		},
		TotalValue: 250,
	}
}

func TestDeriveStatusFicha(t *testing.T) {
	fiche := completeFiche()
	assert.Equal(t, domain.FichaCompleta, deriveStatusFicha(fiche))

	// derivation is idempotent: running it twice changes nothing
	fiche.StatusFicha = deriveStatusFicha(fiche)
	assert.Equal(t, domain.FichaCompleta, deriveStatusFicha(fiche))

	fiche.Client.CEP = ""
	assert.Equal(t, domain.FichaIncompleta, deriveStatusFicha(fiche))
}

func TestDeriveStatusFicha_ValorOverrideCounts(t *testing.T) {
	fiche := completeFiche()
	fiche.TotalValue = 0
	assert.Equal(t, domain.FichaIncompleta, deriveStatusFicha(fiche))

	valor := 300.0
	fiche.Valor = &valor
	assert.Equal(t, domain.FichaCompleta, deriveStatusFicha(fiche))
}

func TestDeriveMesReferencia(t *testing.T) {
	assert.Equal(t, "2025-03", deriveMesReferencia("2025-03-15"))
	assert.Equal(t, "", deriveMesReferencia("15/03/2025"))
	assert.Equal(t, "", deriveMesReferencia(""))
}

func TestValidateRequiredFields_CollectsAllProblems(t *testing.T) {
	err := validateRequiredFields(&domain.Inspection{})
	require.NotNil(t, err)
	// model, plate, inspector, category, client name, CPF, services
	assert.GreaterOrEqual(t, len(err.Messages), 6)
}

func TestValidateRequiredFields_CPFDigits(t *testing.T) {
	fiche := completeFiche()
	fiche.Inspector = "Carlos"
	fiche.VehicleCategory = domain.CategoryAutomoveis

	require.Nil(t, validateRequiredFields(fiche))

	fiche.Client.CPF = "123.456"
	err := validateRequiredFields(fiche)
	require.NotNil(t, err)
	assert.Contains(t, err.Messages[0], "CPF")
}

func TestFinancialFieldsChanged(t *testing.T) {
	before := completeFiche()
	after := completeFiche()

	changed, _ := financialFieldsChanged(before, after)
	assert.False(t, changed)

	after.PaymentStatus = domain.PaymentPix
	after.SelectedServices[0].ChargedValue = 230
	after.TotalValue = 230

	changed, diff := financialFieldsChanged(before, after)
	require.True(t, changed)
	assert.Equal(t, "Pix", diff["payment_status"].After)
	assert.Equal(t, "250.00", diff["charged:Laudo Cautelar"].Before)
	assert.Equal(t, "230.00", diff["charged:Laudo Cautelar"].After)
	assert.Equal(t, "230.00", diff["total_value"].After)
}

func TestFinancialFieldsChanged_MonthMove(t *testing.T) {
	before := completeFiche()
	before.MesReferencia = "2025-03"
	after := completeFiche()
	after.MesReferencia = "2025-04"

	changed, diff := financialFieldsChanged(before, after)
	require.True(t, changed)
	assert.Equal(t, "2025-03", diff["mes_referencia"].Before)
	assert.Equal(t, "2025-04", diff["mes_referencia"].After)
}

func TestGuardEdit(t *testing.T) {
	fiche := &domain.Inspection{Status: domain.StatusNoCaixa, CreatedBy: "u1", Inspector: "Carlos"}

	assert.NoError(t, guardEdit(fiche, actorOf("x", "Ana", domain.RoleAdmin)))
	assert.NoError(t, guardEdit(fiche, actorOf("x", "Ana", domain.RoleFinanceiro)))
	assert.NoError(t, guardEdit(fiche, actorOf("u1", "Outro", domain.RoleVistoriador)))
	assert.NoError(t, guardEdit(fiche, actorOf("u2", "Carlos", domain.RoleVistoriador)))
	assert.ErrorIs(t, guardEdit(fiche, actorOf("u2", "Ana", domain.RoleVistoriador)), domain.ErrPermissionDenied)

	// anyone may touch a fiche still in the initial state
	fiche.Status = domain.StatusIniciada
	assert.NoError(t, guardEdit(fiche, actorOf("u2", "Ana", domain.RoleVistoriador)))
}

func TestGuardDelete(t *testing.T) {
	assert.NoError(t, guardDelete(actorOf("x", "Ana", domain.RoleAdmin)))
	assert.NoError(t, guardDelete(actorOf("x", "Ana", domain.RoleFinanceiro)))
	assert.ErrorIs(t, guardDelete(actorOf("u1", "Carlos", domain.RoleVistoriador)), domain.ErrPermissionDenied)
}
