package domain

import "time"

// InspectionStatus is the workflow state of a fiche. The canonical set is
// Iniciada → No Caixa → Concluída; intermediate enums from earlier schema
// revisions were collapsed into these three.
type InspectionStatus string

const (
	StatusIniciada  InspectionStatus = "Iniciada"
	StatusNoCaixa   InspectionStatus = "No Caixa"
	StatusConcluida InspectionStatus = "Concluída"
)

// ValidInspectionStatus reports whether s is a known workflow status.
func ValidInspectionStatus(s InspectionStatus) bool {
	return s == StatusIniciada || s == StatusNoCaixa || s == StatusConcluida
}

// PaymentStatus is "A pagar" or the method the fiche was paid with.
type PaymentStatus string

const (
	PaymentAPagar   PaymentStatus = "A pagar"
	PaymentPix      PaymentStatus = "Pix"
	PaymentCredito  PaymentStatus = "Crédito"
	PaymentDebito   PaymentStatus = "Débito"
	PaymentDinheiro PaymentStatus = "Dinheiro"
)

// ValidPaymentStatus reports whether p is a known payment status.
func ValidPaymentStatus(p PaymentStatus) bool {
	switch p {
	case PaymentAPagar, PaymentPix, PaymentCredito, PaymentDebito, PaymentDinheiro:
		return true
	}
	return false
}

// Paid reports whether p represents a settled payment.
func (p PaymentStatus) Paid() bool {
	return p != "" && p != PaymentAPagar
}

// Completeness of a fiche, derived from its mandatory fields.
const (
	FichaCompleta   = "Completa"
	FichaIncompleta = "Incompleta"
)

// Client is the customer data embedded in an inspection.
type Client struct {
	Name       string `json:"name" bson:"name"`
	CPF        string `json:"cpf" bson:"cpf"`
	Address    string `json:"address" bson:"address"`
	CEP        string `json:"cep" bson:"cep"`
	Number     string `json:"number" bson:"number"`
	Complement string `json:"complement,omitempty" bson:"complement,omitempty"`
}

// SelectedService is one catalog service attached to an inspection.
// BaseValue is the catalog/override price captured at selection time and is
// re-derived whenever category or indication changes; ChargedValue is the
// amount actually billed and, once edited, survives re-pricing.
type SelectedService struct {
	ServiceID    string  `json:"service_id" bson:"service_id"`
	Name         string  `json:"name" bson:"name"`
	BaseValue    float64 `json:"base_value" bson:"base_value"`
	ChargedValue float64 `json:"charged_value" bson:"charged_value"`
}

// Difference is the reporting delta between billed and reference price.
func (s SelectedService) Difference() float64 {
	return s.ChargedValue - s.BaseValue
}

// Inspection is the root aggregate: one vehicle-inspection job from intake
// through payment completion.
type Inspection struct {
	ID               string            `json:"id" bson:"_id,omitempty"`
	Date             string            `json:"date" bson:"date"` // YYYY-MM-DD
	VehicleModel     string            `json:"vehicle_model" bson:"vehicle_model"`
	LicensePlate     string            `json:"license_plate" bson:"license_plate"`
	VehicleCategory  VehicleCategory   `json:"vehicle_category" bson:"vehicle_category"`
	SelectedServices []SelectedService `json:"selected_services" bson:"selected_services"`
	Client           Client            `json:"client" bson:"client"`
	Inspector        string            `json:"inspector" bson:"inspector"`
	IndicationID     string            `json:"indication_id,omitempty" bson:"indication_id,omitempty"`
	IndicationName   string            `json:"indication_name,omitempty" bson:"indication_name,omitempty"`
	Observations     string            `json:"observations,omitempty" bson:"observations,omitempty"`
	External         bool              `json:"external_inspection" bson:"external_inspection"`
	NFe              string            `json:"nfe,omitempty" bson:"nfe,omitempty"`
	Contact          string            `json:"contact,omitempty" bson:"contact,omitempty"`

	Status        InspectionStatus `json:"status" bson:"status"`
	PaymentStatus PaymentStatus    `json:"payment_status" bson:"payment_status"`
	TotalValue    float64          `json:"total_value" bson:"total_value"`
	StatusFicha   string           `json:"status_ficha" bson:"status_ficha"`
	MesReferencia string           `json:"mes_referencia" bson:"mes_referencia"` // YYYY-MM
	// Valor, when set, overrides TotalValue for financial reporting.
	Valor         *float64  `json:"valor,omitempty" bson:"valor,omitempty"`
	DataPagamento time.Time `json:"data_pagamento,omitempty" bson:"data_pagamento,omitempty"`

	CreatedBy string    `json:"created_by,omitempty" bson:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// EffectiveValue is the authoritative financial value: the explicit Valor
// override when present, the derived TotalValue otherwise.
func (i *Inspection) EffectiveValue() float64 {
	if i.Valor != nil {
		return *i.Valor
	}
	return i.TotalValue
}

// HasService reports whether the fiche carries the named service.
func (i *Inspection) HasService(name string) bool {
	for _, s := range i.SelectedServices {
		if s.Name == name {
			return true
		}
	}
	return false
}
