package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/prevencar/inspection-system/internal/core/ports"
)

// CatalogHandler handles HTTP requests for services and referral partners.
type CatalogHandler struct {
	service ports.CatalogService
}

func NewCatalogHandler(service ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

type saveServiceRequest struct {
	Name        string             `json:"name" validate:"required"`
	Description string             `json:"description"`
	Prices      map[string]float64 `json:"prices" validate:"required"`
}

type saveIndicationRequest struct {
	Name          string             `json:"name" validate:"required"`
	Document      string             `json:"document"`
	Phone         string             `json:"phone"`
	Email         string             `json:"email" validate:"omitempty,email"`
	Address       string             `json:"address"`
	CEP           string             `json:"cep"`
	Number        string             `json:"number"`
	ServicePrices map[string]float64 `json:"service_prices"`
}

// ListServices handles GET /v1/services.
//
// @Summary      List the service catalog
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.ServiceItem
// @Router       /v1/services [get]
func (h *CatalogHandler) ListServices(c echo.Context) error {
	services, err := h.service.ListServices(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, services)
}

// CreateService handles POST /v1/services.
//
// @Summary      Create a catalog service
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      saveServiceRequest  true  "Service with per-category prices"
// @Success      201   {object}  domain.ServiceItem
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/services [post]
func (h *CatalogHandler) CreateService(c echo.Context) error {
	return h.saveService(c, "")
}

// UpdateService handles PUT /v1/services/:id.
//
// @Summary      Update a catalog service
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Service id"
// @Param        body  body      saveServiceRequest  true  "Service with per-category prices"
// @Success      200   {object}  domain.ServiceItem
// @Failure      404   {object}  errorResponse
// @Router       /v1/services/{id} [put]
func (h *CatalogHandler) UpdateService(c echo.Context) error {
	return h.saveService(c, c.Param("id"))
}

func (h *CatalogHandler) saveService(c echo.Context, id string) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req saveServiceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "payload inválido")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item, err := h.service.SaveService(c.Request().Context(), ports.SaveServiceInput{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Prices:      req.Prices,
	}, actor)
	if err != nil {
		return err
	}

	code := http.StatusOK
	if id == "" {
		code = http.StatusCreated
	}
	return c.JSON(code, item)
}

// DeleteService handles DELETE /v1/services/:id.
//
// @Summary      Delete a catalog service
// @Tags         catalog
// @Security     BearerAuth
// @Param        id  path  string  true  "Service id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /v1/services/{id} [delete]
func (h *CatalogHandler) DeleteService(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteService(c.Request().Context(), c.Param("id"), actor); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListIndications handles GET /v1/indications.
//
// @Summary      List referral partners
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Indication
// @Router       /v1/indications [get]
func (h *CatalogHandler) ListIndications(c echo.Context) error {
	indications, err := h.service.ListIndications(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, indications)
}

// CreateIndication handles POST /v1/indications.
//
// @Summary      Create a referral partner
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      saveIndicationRequest  true  "Partner with optional per-service price overrides"
// @Success      201   {object}  domain.Indication
// @Failure      403   {object}  errorResponse
// @Router       /v1/indications [post]
func (h *CatalogHandler) CreateIndication(c echo.Context) error {
	return h.saveIndication(c, "")
}

// UpdateIndication handles PUT /v1/indications/:id.
//
// @Summary      Update a referral partner
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Partner id"
// @Param        body  body      saveIndicationRequest  true  "Partner details"
// @Success      200   {object}  domain.Indication
// @Failure      404   {object}  errorResponse
// @Router       /v1/indications/{id} [put]
func (h *CatalogHandler) UpdateIndication(c echo.Context) error {
	return h.saveIndication(c, c.Param("id"))
}

func (h *CatalogHandler) saveIndication(c echo.Context, id string) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req saveIndicationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "payload inválido")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ind, err := h.service.SaveIndication(c.Request().Context(), ports.SaveIndicationInput{
		ID:            id,
		Name:          req.Name,
		Document:      req.Document,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		CEP:           req.CEP,
		Number:        req.Number,
		ServicePrices: req.ServicePrices,
	}, actor)
	if err != nil {
		return err
	}

	code := http.StatusOK
	if id == "" {
		code = http.StatusCreated
	}
	return c.JSON(code, ind)
}

// DeleteIndication handles DELETE /v1/indications/:id.
//
// @Summary      Delete a referral partner
// @Tags         catalog
// @Security     BearerAuth
// @Param        id  path  string  true  "Partner id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /v1/indications/{id} [delete]
func (h *CatalogHandler) DeleteIndication(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteIndication(c.Request().Context(), c.Param("id"), actor); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
