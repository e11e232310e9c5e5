package handler

import (
	"time"

	"github.com/prevencar/inspection-system/internal/core/domain"
)

// --- Request types ---

type clientRequest struct {
	Name       string `json:"name"       validate:"required"`
	CPF        string `json:"cpf"        validate:"required"`
	Address    string `json:"address"`
	CEP        string `json:"cep"`
	Number     string `json:"number"`
	Complement string `json:"complement"`
}

type selectedServiceRequest struct {
	ServiceID    string  `json:"service_id" validate:"required"`
	ChargedValue float64 `json:"charged_value"`
}

type saveInspectionRequest struct {
	Date             string                   `json:"date"              validate:"required"`
	VehicleModel     string                   `json:"vehicle_model"     validate:"required"`
	LicensePlate     string                   `json:"license_plate"     validate:"required"`
	VehicleCategory  string                   `json:"vehicle_category"  validate:"required"`
	SelectedServices []selectedServiceRequest `json:"selected_services" validate:"required,min=1,dive"`
	Client           clientRequest            `json:"client"            validate:"required"`
	Inspector        string                   `json:"inspector"`
	IndicationID     string                   `json:"indication_id"`
	Observations     string                   `json:"observations"`
	External         bool                     `json:"external_inspection"`
	NFe              string                   `json:"nfe"`
	Contact          string                   `json:"contact"`
	PaymentStatus    string                   `json:"payment_status"`
	Valor            *float64                 `json:"valor"`
}

type bulkPaymentRequest struct {
	IDs           []string `json:"ids"            validate:"required,min=1"`
	PaymentStatus string   `json:"payment_status" validate:"required"`
}

type bulkStatusRequest struct {
	IDs    []string `json:"ids"    validate:"required,min=1"`
	Status string   `json:"status" validate:"required"`
}

// --- Response types (owned by the transport layer) ---

type clientResponse struct {
	Name       string `json:"name"`
	CPF        string `json:"cpf"`
	Address    string `json:"address"`
	CEP        string `json:"cep"`
	Number     string `json:"number"`
	Complement string `json:"complement,omitempty"`
}

type selectedServiceResponse struct {
	ServiceID    string  `json:"service_id"`
	Name         string  `json:"name"`
	BaseValue    float64 `json:"base_value"`
	ChargedValue float64 `json:"charged_value"`
	Difference   float64 `json:"difference"`
}

type inspectionResponse struct {
	ID               string                    `json:"id"`
	Date             string                    `json:"date"`
	VehicleModel     string                    `json:"vehicle_model"`
	LicensePlate     string                    `json:"license_plate"`
	VehicleCategory  string                    `json:"vehicle_category"`
	SelectedServices []selectedServiceResponse `json:"selected_services"`
	Client           clientResponse            `json:"client"`
	Inspector        string                    `json:"inspector"`
	IndicationID     string                    `json:"indication_id,omitempty"`
	IndicationName   string                    `json:"indication_name,omitempty"`
	Observations     string                    `json:"observations,omitempty"`
	External         bool                      `json:"external_inspection"`
	NFe              string                    `json:"nfe,omitempty"`
	Contact          string                    `json:"contact,omitempty"`
	Status           string                    `json:"status"`
	PaymentStatus    string                    `json:"payment_status"`
	TotalValue       float64                   `json:"total_value"`
	EffectiveValue   float64                   `json:"effective_value"`
	Valor            *float64                  `json:"valor,omitempty"`
	StatusFicha      string                    `json:"status_ficha"`
	MesReferencia    string                    `json:"mes_referencia"`
	DataPagamento    *time.Time                `json:"data_pagamento,omitempty"`
	CreatedAt        time.Time                 `json:"created_at"`
	UpdatedAt        time.Time                 `json:"updated_at"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listInspectionsResponse struct {
	Data       []inspectionResponse `json:"data"`
	Pagination paginationResponse   `json:"pagination"`
}

func toInspectionResponse(i *domain.Inspection) inspectionResponse {
	services := make([]selectedServiceResponse, 0, len(i.SelectedServices))
	for _, s := range i.SelectedServices {
		services = append(services, selectedServiceResponse{
			ServiceID:    s.ServiceID,
			Name:         s.Name,
			BaseValue:    s.BaseValue,
			ChargedValue: s.ChargedValue,
			Difference:   s.Difference(),
		})
	}

	var paidAt *time.Time
	if !i.DataPagamento.IsZero() {
		t := i.DataPagamento
		paidAt = &t
	}

	return inspectionResponse{
		ID:               i.ID,
		Date:             i.Date,
		VehicleModel:     i.VehicleModel,
		LicensePlate:     i.LicensePlate,
		VehicleCategory:  string(i.VehicleCategory),
		SelectedServices: services,
		Client: clientResponse{
			Name:       i.Client.Name,
			CPF:        i.Client.CPF,
			Address:    i.Client.Address,
			CEP:        i.Client.CEP,
			Number:     i.Client.Number,
			Complement: i.Client.Complement,
		},
		Inspector:      i.Inspector,
		IndicationID:   i.IndicationID,
		IndicationName: i.IndicationName,
		Observations:   i.Observations,
		External:       i.External,
		NFe:            i.NFe,
		Contact:        i.Contact,
		Status:         string(i.Status),
		PaymentStatus:  string(i.PaymentStatus),
		TotalValue:     i.TotalValue,
		EffectiveValue: i.EffectiveValue(),
		Valor:          i.Valor,
		StatusFicha:    i.StatusFicha,
		MesReferencia:  i.MesReferencia,
		DataPagamento:  paidAt,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
}
