package domain

// VehicleCategory selects the row of a service's price table.
type VehicleCategory string

const (
	CategoryMotocicletas VehicleCategory = "Motocicletas"
	CategoryAutomoveis   VehicleCategory = "Automóveis"
	CategoryUtilitarios  VehicleCategory = "Utilitários"
	CategoryCaminhoes    VehicleCategory = "Caminhões"
	CategoryCarretas     VehicleCategory = "Carretas"
	CategoryOutros       VehicleCategory = "Outros"
)

// VehicleCategories lists every category in display order.
var VehicleCategories = []VehicleCategory{
	CategoryMotocicletas,
	CategoryAutomoveis,
	CategoryUtilitarios,
	CategoryCaminhoes,
	CategoryCarretas,
	CategoryOutros,
}

// ValidVehicleCategory reports whether c is a known category.
func ValidVehicleCategory(c VehicleCategory) bool {
	for _, v := range VehicleCategories {
		if v == c {
			return true
		}
	}
	return false
}

// ServiceItem is a billable catalog entry. Prices vary per vehicle category;
// CategoryOutros doubles as the fallback row for unknown categories.
type ServiceItem struct {
	ID          string                      `json:"id" bson:"_id,omitempty"`
	Name        string                      `json:"name" bson:"name"`
	Description string                      `json:"description" bson:"description"`
	Prices      map[VehicleCategory]float64 `json:"prices" bson:"prices"`
}

// PriceFor resolves the catalog price for the given category, falling back to
// the Outros row when the category has no entry.
func (s *ServiceItem) PriceFor(category VehicleCategory) float64 {
	if p, ok := s.Prices[category]; ok {
		return p
	}
	return s.Prices[CategoryOutros]
}

// Indication is a referral partner (auto shop, dealership). Its referrals may
// carry special pricing via per-service overrides keyed by service id.
type Indication struct {
	ID            string             `json:"id" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	Document      string             `json:"document" bson:"document"`
	Phone         string             `json:"phone" bson:"phone"`
	Email         string             `json:"email" bson:"email"`
	Address       string             `json:"address,omitempty" bson:"address,omitempty"`
	CEP           string             `json:"cep,omitempty" bson:"cep,omitempty"`
	Number        string             `json:"number,omitempty" bson:"number,omitempty"`
	ServicePrices map[string]float64 `json:"service_prices,omitempty" bson:"service_prices,omitempty"`
}

// OverrideFor returns the indication's negotiated price for a service, if any.
func (i *Indication) OverrideFor(serviceID string) (float64, bool) {
	if i == nil || i.ServicePrices == nil {
		return 0, false
	}
	p, ok := i.ServicePrices[serviceID]
	return p, ok
}
