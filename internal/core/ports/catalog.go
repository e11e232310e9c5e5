package ports

import (
	"context"

	"github.com/prevencar/inspection-system/internal/core/domain"
)

// ServiceRepository persists the billable service catalog.
type ServiceRepository interface {
	Save(ctx context.Context, s *domain.ServiceItem) error
	FindByID(ctx context.Context, id string) (*domain.ServiceItem, error)
	List(ctx context.Context) ([]*domain.ServiceItem, error)
	Delete(ctx context.Context, id string) error
}

// IndicationRepository persists referral partners.
type IndicationRepository interface {
	Save(ctx context.Context, i *domain.Indication) error
	FindByID(ctx context.Context, id string) (*domain.Indication, error)
	List(ctx context.Context) ([]*domain.Indication, error)
	Delete(ctx context.Context, id string) error
}

// SaveServiceInput carries the form data for a catalog service.
type SaveServiceInput struct {
	ID          string
	Name        string
	Description string
	Prices      map[string]float64
}

// SaveIndicationInput carries the form data for a referral partner.
type SaveIndicationInput struct {
	ID            string
	Name          string
	Document      string
	Phone         string
	Email         string
	Address       string
	CEP           string
	Number        string
	ServicePrices map[string]float64
}

// CatalogService manages services and indications. Mutations require the
// admin or financeiro role; deletion never cascades into inspections.
type CatalogService interface {
	SaveService(ctx context.Context, in SaveServiceInput, actor Actor) (*domain.ServiceItem, error)
	ListServices(ctx context.Context) ([]*domain.ServiceItem, error)
	DeleteService(ctx context.Context, id string, actor Actor) error
	SaveIndication(ctx context.Context, in SaveIndicationInput, actor Actor) (*domain.Indication, error)
	ListIndications(ctx context.Context) ([]*domain.Indication, error)
	DeleteIndication(ctx context.Context, id string, actor Actor) error
}
