package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/prevencar/inspection-system/internal/api/metrics"
	"github.com/prevencar/inspection-system/internal/core/domain"
	"github.com/prevencar/inspection-system/internal/core/ports"
)

// InspectionHandler handles HTTP requests for fiche operations.
type InspectionHandler struct {
	service ports.InspectionService
	audit   ports.AuditRepository
}

func NewInspectionHandler(service ports.InspectionService, audit ports.AuditRepository) *InspectionHandler {
	return &InspectionHandler{service: service, audit: audit}
}

// Create handles POST /v1/inspections.
//
// @Summary      Create an inspection fiche
// @Tags         inspections
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      saveInspectionRequest  true  "Fiche details"
// @Success      201   {object}  inspectionResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/inspections [post]
func (h *InspectionHandler) Create(c echo.Context) error {
	return h.save(c, "")
}

// Update handles PUT /v1/inspections/:id.
//
// @Summary      Update an inspection fiche
// @Tags         inspections
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Fiche id"
// @Param        body  body      saveInspectionRequest  true  "Fiche details"
// @Success      200   {object}  inspectionResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/inspections/{id} [put]
func (h *InspectionHandler) Update(c echo.Context) error {
	return h.save(c, c.Param("id"))
}

func (h *InspectionHandler) save(c echo.Context, id string) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req saveInspectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "payload inválido")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Save(c.Request().Context(), toSaveInput(req, id), actor)
	if err != nil {
		return err
	}

	operation := "update"
	code := http.StatusOK
	if id == "" {
		operation = "create"
		code = http.StatusCreated
	}
	metrics.InspectionsSavedTotal.WithLabelValues(operation, string(result.Status)).Inc()

	return c.JSON(code, toInspectionResponse(result))
}

// SendToCashier handles POST /v1/inspections/:id/send-to-cashier.
//
// @Summary      Move a fiche to the cashier
// @Tags         inspections
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Fiche id"
// @Param        body  body      saveInspectionRequest  true  "Fiche details"
// @Success      200   {object}  inspectionResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/inspections/{id}/send-to-cashier [post]
func (h *InspectionHandler) SendToCashier(c echo.Context) error {
	return h.workflow(c, func(ctx context.Context, in ports.SaveInspectionInput, actor ports.Actor) (*domain.Inspection, error) {
		return h.service.SendToCashier(ctx, in, actor)
	})
}

// FinalizePayment handles POST /v1/inspections/:id/finalize.
//
// @Summary      Finalize a fiche's payment
// @Tags         inspections
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Fiche id"
// @Param        body  body      saveInspectionRequest  true  "Fiche details with payment method"
// @Success      200   {object}  inspectionResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/inspections/{id}/finalize [post]
func (h *InspectionHandler) FinalizePayment(c echo.Context) error {
	return h.workflow(c, func(ctx context.Context, in ports.SaveInspectionInput, actor ports.Actor) (*domain.Inspection, error) {
		result, err := h.service.FinalizePayment(ctx, in, actor)
		if err == nil {
			metrics.PaymentsFinalizedTotal.WithLabelValues(string(result.PaymentStatus)).Inc()
		}
		return result, err
	})
}

type workflowFunc func(ctx context.Context, in ports.SaveInspectionInput, actor ports.Actor) (*domain.Inspection, error)

func (h *InspectionHandler) workflow(c echo.Context, fn workflowFunc) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req saveInspectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "payload inválido")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := fn(c.Request().Context(), toSaveInput(req, c.Param("id")), actor)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toInspectionResponse(result))
}

// Get handles GET /v1/inspections/:id.
//
// @Summary      Get a fiche by id
// @Tags         inspections
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Fiche id"
// @Success      200 {object}  inspectionResponse
// @Failure      404 {object}  errorResponse
// @Router       /v1/inspections/{id} [get]
func (h *InspectionHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	result, err := h.service.Get(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toInspectionResponse(result))
}

// List handles GET /v1/inspections.
//
// @Summary      List fiches with filters
// @Tags         inspections
// @Produce      json
// @Security     BearerAuth
// @Param        status          query  string  false  "Workflow status"
// @Param        payment_status  query  string  false  "Payment status"
// @Param        indication_id   query  string  false  "Referral partner id"
// @Param        service         query  string  false  "Service name"
// @Param        search          query  string  false  "Partial match on plate, model or client"
// @Param        date_from       query  string  false  "Date >= (YYYY-MM-DD)"
// @Param        date_to         query  string  false  "Date <= (YYYY-MM-DD)"
// @Param        mes             query  string  false  "Reference month (YYYY-MM)"
// @Param        min_value       query  number  false  "Total value >="
// @Param        max_value       query  number  false  "Total value <="
// @Param        page            query  int     false  "Page (1-based)"
// @Param        limit           query  int     false  "Page size (max 100)"
// @Success      200  {object}  listInspectionsResponse
// @Router       /v1/inspections [get]
func (h *InspectionHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	filter := ports.ListInspectionsFilter{
		Status:        c.QueryParam("status"),
		PaymentStatus: c.QueryParam("payment_status"),
		IndicationID:  c.QueryParam("indication_id"),
		ServiceName:   c.QueryParam("service"),
		Search:        c.QueryParam("search"),
		DateFrom:      c.QueryParam("date_from"),
		DateTo:        c.QueryParam("date_to"),
		Mes:           c.QueryParam("mes"),
	}
	filter.MinValue, _ = strconv.ParseFloat(c.QueryParam("min_value"), 64)
	filter.MaxValue, _ = strconv.ParseFloat(c.QueryParam("max_value"), 64)
	filter.Page, _ = strconv.Atoi(c.QueryParam("page"))
	filter.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	items, total, err := h.service.List(c.Request().Context(), filter, actor)
	if err != nil {
		return err
	}

	data := make([]inspectionResponse, 0, len(items))
	for _, i := range items {
		data = append(data, toInspectionResponse(i))
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return c.JSON(http.StatusOK, listInspectionsResponse{
		Data: data,
		Pagination: paginationResponse{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages,
		},
	})
}

// Delete handles DELETE /v1/inspections/:id.
//
// @Summary      Delete a fiche
// @Tags         inspections
// @Security     BearerAuth
// @Param        id  path  string  true  "Fiche id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/inspections/{id} [delete]
func (h *InspectionHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), c.Param("id"), actor); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// BulkPayment handles POST /v1/inspections/bulk/payment.
//
// @Summary      Apply a payment status to many fiches
// @Tags         inspections
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      bulkPaymentRequest  true  "Fiche ids and payment status"
// @Success      200   {object}  ports.BulkResult
// @Failure      403   {object}  errorResponse
// @Router       /v1/inspections/bulk/payment [post]
func (h *InspectionHandler) BulkPayment(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req bulkPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "payload inválido")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.BulkUpdatePayment(c.Request().Context(), req.IDs, req.PaymentStatus, actor)
	if err != nil {
		return err
	}

	metrics.BulkItemsTotal.WithLabelValues("payment", "ok").Add(float64(len(result.Updated)))
	metrics.BulkItemsTotal.WithLabelValues("payment", "error").Add(float64(len(result.Errors)))

	return c.JSON(http.StatusOK, result)
}

// BulkStatus handles POST /v1/inspections/bulk/status.
//
// @Summary      Reassign workflow status on many fiches
// @Tags         inspections
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      bulkStatusRequest  true  "Fiche ids and status"
// @Success      200   {object}  ports.BulkResult
// @Failure      403   {object}  errorResponse
// @Router       /v1/inspections/bulk/status [post]
func (h *InspectionHandler) BulkStatus(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req bulkStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "payload inválido")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.BulkUpdateStatus(c.Request().Context(), req.IDs, req.Status, actor)
	if err != nil {
		return err
	}

	metrics.BulkItemsTotal.WithLabelValues("status", "ok").Add(float64(len(result.Updated)))
	metrics.BulkItemsTotal.WithLabelValues("status", "error").Add(float64(len(result.Errors)))

	return c.JSON(http.StatusOK, result)
}

// AuditTrail handles GET /v1/inspections/:id/audit.
//
// @Summary      List the financial audit trail of a fiche
// @Tags         inspections
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Fiche id"
// @Success      200  {array}   domain.FinancialEvent
// @Router       /v1/inspections/{id}/audit [get]
func (h *InspectionHandler) AuditTrail(c echo.Context) error {
	if _, err := ctxActor(c); err != nil {
		return err
	}

	events, err := h.audit.ListByFiche(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}

func toSaveInput(req saveInspectionRequest, id string) ports.SaveInspectionInput {
	services := make([]ports.SelectedServiceInput, 0, len(req.SelectedServices))
	for _, s := range req.SelectedServices {
		services = append(services, ports.SelectedServiceInput{
			ServiceID:    s.ServiceID,
			ChargedValue: s.ChargedValue,
		})
	}

	return ports.SaveInspectionInput{
		ID:               id,
		Date:             req.Date,
		VehicleModel:     req.VehicleModel,
		LicensePlate:     req.LicensePlate,
		VehicleCategory:  req.VehicleCategory,
		SelectedServices: services,
		Client: ports.ClientInput{
			Name:       req.Client.Name,
			CPF:        req.Client.CPF,
			Address:    req.Client.Address,
			CEP:        req.Client.CEP,
			Number:     req.Client.Number,
			Complement: req.Client.Complement,
		},
		Inspector:     req.Inspector,
		IndicationID:  req.IndicationID,
		Observations:  req.Observations,
		External:      req.External,
		NFe:           req.NFe,
		Contact:       req.Contact,
		PaymentStatus: req.PaymentStatus,
		Valor:         req.Valor,
	}
}
