package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/prevencar/inspection-system/internal/core/domain"
	"github.com/prevencar/inspection-system/internal/core/ports"
)

func newCatalogFixture() (*CatalogService, *stubServiceRepo, *stubIndicationRepo) {
	services := &stubServiceRepo{items: map[string]*domain.ServiceItem{
		"svc-laudo": laudoCautelar(),
	}}
	indications := &stubIndicationRepo{items: map[string]*domain.Indication{}}
	return NewCatalogService(services, indications, zerolog.Nop()), services, indications
}

func TestSaveService_UnknownCategoryRejected(t *testing.T) {
	svc, _, _ := newCatalogFixture()

	_, err := svc.SaveService(context.Background(), ports.SaveServiceInput{
		Name:   "Vistoria Veicular",
		Prices: map[string]float64{"Bicicletas": 50},
	}, financeActor())
	ve, ok := domain.AsValidation(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Messages) != 1 {
		t.Errorf("messages = %v", ve.Messages)
	}
}

func TestSaveService_NegativePriceRejected(t *testing.T) {
	svc, _, _ := newCatalogFixture()

	_, err := svc.SaveService(context.Background(), ports.SaveServiceInput{
		Name:   "Vistoria Veicular",
		Prices: map[string]float64{string(domain.CategoryAutomoveis): -10},
	}, financeActor())
	if _, ok := domain.AsValidation(err); !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSaveService_RoleGate(t *testing.T) {
	svc, _, _ := newCatalogFixture()

	vis := ports.Actor{ID: "u-vis", Name: "Pedro", Role: domain.RoleVistoriador}
	_, err := svc.SaveService(context.Background(), ports.SaveServiceInput{Name: "X"}, vis)
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
}

func TestSaveService_CreateAssignsID(t *testing.T) {
	svc, _, _ := newCatalogFixture()

	item, err := svc.SaveService(context.Background(), ports.SaveServiceInput{
		Name:   "  Vistoria Veicular ",
		Prices: map[string]float64{string(domain.CategoryAutomoveis): 150},
	}, financeActor())
	if err != nil {
		t.Fatalf("SaveService: %v", err)
	}
	if item.ID == "" {
		t.Error("expected generated id")
	}
	if item.Name != "Vistoria Veicular" {
		t.Errorf("name not trimmed: %q", item.Name)
	}
	if item.Prices[domain.CategoryAutomoveis] != 150 {
		t.Errorf("prices = %v", item.Prices)
	}
}

func TestSaveService_UpdateUnknownID(t *testing.T) {
	svc, _, _ := newCatalogFixture()

	_, err := svc.SaveService(context.Background(), ports.SaveServiceInput{
		ID:     "nao-existe",
		Name:   "Laudo Cautelar",
		Prices: map[string]float64{},
	}, financeActor())
	if !errors.Is(err, domain.ErrServiceNotFound) {
		t.Fatalf("err = %v, want ErrServiceNotFound", err)
	}
}

func TestSaveIndication_UnknownServiceInPriceTable(t *testing.T) {
	svc, _, _ := newCatalogFixture()

	_, err := svc.SaveIndication(context.Background(), ports.SaveIndicationInput{
		Name:          "Oficina do Zé",
		ServicePrices: map[string]float64{"svc-fantasma": 100},
	}, financeActor())
	if _, ok := domain.AsValidation(err); !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSaveIndication_OverridesAccepted(t *testing.T) {
	svc, _, _ := newCatalogFixture()

	ind, err := svc.SaveIndication(context.Background(), ports.SaveIndicationInput{
		Name:          "Oficina do Zé",
		ServicePrices: map[string]float64{"svc-laudo": 220},
	}, financeActor())
	if err != nil {
		t.Fatalf("SaveIndication: %v", err)
	}
	if price, ok := ind.OverrideFor("svc-laudo"); !ok || price != 220 {
		t.Errorf("override = %v/%v", price, ok)
	}
}

func TestDeleteCatalog_MissingEntries(t *testing.T) {
	svc, _, _ := newCatalogFixture()
	ctx := context.Background()

	if err := svc.DeleteService(ctx, "nao-existe", financeActor()); !errors.Is(err, domain.ErrServiceNotFound) {
		t.Fatalf("err = %v, want ErrServiceNotFound", err)
	}
	if err := svc.DeleteIndication(ctx, "nao-existe", financeActor()); !errors.Is(err, domain.ErrIndicationNotFound) {
		t.Fatalf("err = %v, want ErrIndicationNotFound", err)
	}
}
