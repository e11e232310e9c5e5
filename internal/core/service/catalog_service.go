package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prevencar/inspection-system/internal/core/domain"
	"github.com/prevencar/inspection-system/internal/core/ports"
)

// CatalogService manages the billable service catalog and referral partners.
type CatalogService struct {
	services    ports.ServiceRepository
	indications ports.IndicationRepository
	logger      zerolog.Logger
}

func NewCatalogService(
	services ports.ServiceRepository,
	indications ports.IndicationRepository,
	logger zerolog.Logger,
) *CatalogService {
	return &CatalogService{
		services:    services,
		indications: indications,
		logger:      logger,
	}
}

// SaveService creates or updates a catalog service. Price edits never rewrite
// existing fiches; values were captured at selection time.
func (s *CatalogService) SaveService(ctx context.Context, in ports.SaveServiceInput, actor ports.Actor) (*domain.ServiceItem, error) {
	if !domain.CanManageFinance(actor.Role) {
		return nil, domain.ErrPermissionDenied
	}

	var problems []string
	if strings.TrimSpace(in.Name) == "" {
		problems = append(problems, "nome do serviço é obrigatório")
	}
	prices := make(map[domain.VehicleCategory]float64, len(in.Prices))
	for cat, value := range in.Prices {
		category := domain.VehicleCategory(cat)
		if !domain.ValidVehicleCategory(category) {
			problems = append(problems, fmt.Sprintf("categoria desconhecida: %q", cat))
			continue
		}
		if value < 0 {
			problems = append(problems, fmt.Sprintf("preço negativo para %s", cat))
			continue
		}
		prices[category] = value
	}
	if len(problems) > 0 {
		return nil, &domain.ValidationError{Messages: problems}
	}

	item := &domain.ServiceItem{
		ID:          in.ID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Prices:      prices,
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	} else if _, err := s.services.FindByID(ctx, item.ID); err != nil {
		return nil, err
	}

	if err := s.services.Save(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Info().Str("service_id", item.ID).Str("name", item.Name).Str("by", actor.Name).Msg("catalog service saved")
	return item, nil
}

func (s *CatalogService) ListServices(ctx context.Context) ([]*domain.ServiceItem, error) {
	return s.services.List(ctx)
}

// DeleteService removes a catalog entry. Fiches that already carry the
// service keep their embedded copy.
func (s *CatalogService) DeleteService(ctx context.Context, id string, actor ports.Actor) error {
	if !domain.CanManageFinance(actor.Role) {
		return domain.ErrPermissionDenied
	}
	if _, err := s.services.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.services.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("service_id", id).Str("by", actor.Name).Msg("catalog service deleted")
	return nil
}

// SaveIndication creates or updates a referral partner. Override prices are
// keyed by service id; a missing key means the catalog price applies.
func (s *CatalogService) SaveIndication(ctx context.Context, in ports.SaveIndicationInput, actor ports.Actor) (*domain.Indication, error) {
	if !domain.CanManageFinance(actor.Role) {
		return nil, domain.ErrPermissionDenied
	}

	var problems []string
	if strings.TrimSpace(in.Name) == "" {
		problems = append(problems, "nome da indicação é obrigatório")
	}
	for serviceID, value := range in.ServicePrices {
		if value < 0 {
			problems = append(problems, fmt.Sprintf("preço negativo para o serviço %s", serviceID))
			continue
		}
		if _, err := s.services.FindByID(ctx, serviceID); err != nil {
			problems = append(problems, fmt.Sprintf("serviço desconhecido na tabela de preços: %s", serviceID))
		}
	}
	if len(problems) > 0 {
		return nil, &domain.ValidationError{Messages: problems}
	}

	ind := &domain.Indication{
		ID:            in.ID,
		Name:          strings.TrimSpace(in.Name),
		Document:      strings.TrimSpace(in.Document),
		Phone:         strings.TrimSpace(in.Phone),
		Email:         strings.TrimSpace(in.Email),
		Address:       strings.TrimSpace(in.Address),
		CEP:           strings.TrimSpace(in.CEP),
		Number:        strings.TrimSpace(in.Number),
		ServicePrices: in.ServicePrices,
	}
	if ind.ID == "" {
		ind.ID = uuid.NewString()
	} else if _, err := s.indications.FindByID(ctx, ind.ID); err != nil {
		return nil, err
	}

	if err := s.indications.Save(ctx, ind); err != nil {
		return nil, err
	}
	s.logger.Info().Str("indication_id", ind.ID).Str("name", ind.Name).Str("by", actor.Name).Msg("indication saved")
	return ind, nil
}

func (s *CatalogService) ListIndications(ctx context.Context) ([]*domain.Indication, error) {
	return s.indications.List(ctx)
}

// DeleteIndication removes a referral partner. Historical fiches keep the
// denormalized indication name for reporting.
func (s *CatalogService) DeleteIndication(ctx context.Context, id string, actor ports.Actor) error {
	if !domain.CanManageFinance(actor.Role) {
		return domain.ErrPermissionDenied
	}
	if _, err := s.indications.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.indications.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("indication_id", id).Str("by", actor.Name).Msg("indication deleted")
	return nil
}
