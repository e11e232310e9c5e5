package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/prevencar/inspection-system/internal/api/metrics"
	"github.com/prevencar/inspection-system/internal/core/domain"
	"github.com/prevencar/inspection-system/internal/core/ports"
)

// ClosureHandler handles HTTP requests for monthly closures.
type ClosureHandler struct {
	service ports.ClosureService
	audit   ports.AuditRepository
}

func NewClosureHandler(service ports.ClosureService, audit ports.AuditRepository) *ClosureHandler {
	return &ClosureHandler{service: service, audit: audit}
}

type createClosureRequest struct {
	Mes string `json:"mes" validate:"required"`
}

type closeMonthRequest struct {
	CheckPendencias bool `json:"check_pendencias"`
	Force           bool `json:"force"`
}

type rejectClosureRequest struct {
	Reason string `json:"reason"`
}

// List handles GET /v1/closures.
//
// @Summary      List monthly closures
// @Tags         closures
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Closure
// @Failure      403  {object}  errorResponse
// @Router       /v1/closures [get]
func (h *ClosureHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	closures, err := h.service.ListClosures(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, closures)
}

// Create handles POST /v1/closures.
//
// @Summary      Create the closure record for a month
// @Tags         closures
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createClosureRequest  true  "Month (YYYY-MM)"
// @Success      201   {object}  domain.Closure
// @Failure      403   {object}  errorResponse
// @Router       /v1/closures [post]
func (h *ClosureHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createClosureRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "payload inválido")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	closure, err := h.service.CreateClosure(c.Request().Context(), req.Mes, actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, closure)
}

// Close handles POST /v1/closures/:mes/close.
//
// @Summary      Close a month, freezing its financial fields
// @Tags         closures
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        mes   path      string             true   "Month (YYYY-MM)"
// @Param        body  body      closeMonthRequest  false  "Pendência check options"
// @Success      200   {object}  ports.CloseMonthResult
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/closures/{mes}/close [post]
func (h *ClosureHandler) Close(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req closeMonthRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "payload inválido")
	}

	result, err := h.service.CloseMonth(c.Request().Context(), ports.CloseMonthInput{
		Mes:             c.Param("mes"),
		CheckPendencias: req.CheckPendencias,
		Force:           req.Force,
	}, actor)
	if err != nil {
		return err
	}

	if result.Closure != nil {
		metrics.ClosureTransitionsTotal.WithLabelValues(domain.LogFechamento).Inc()
	}
	return c.JSON(http.StatusOK, result)
}

// Approve handles POST /v1/closures/:mes/approve.
//
// @Summary      Approve a closed month
// @Tags         closures
// @Produce      json
// @Security     BearerAuth
// @Param        mes  path      string  true  "Month (YYYY-MM)"
// @Success      200  {object}  domain.Closure
// @Failure      422  {object}  errorResponse
// @Router       /v1/closures/{mes}/approve [post]
func (h *ClosureHandler) Approve(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	closure, err := h.service.ApproveClosure(c.Request().Context(), c.Param("mes"), actor)
	if err != nil {
		return err
	}
	metrics.ClosureTransitionsTotal.WithLabelValues(domain.LogAprovacao).Inc()
	return c.JSON(http.StatusOK, closure)
}

// Reject handles POST /v1/closures/:mes/reject.
//
// @Summary      Reject a closed month
// @Tags         closures
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        mes   path      string                true   "Month (YYYY-MM)"
// @Param        body  body      rejectClosureRequest  false  "Rejection reason"
// @Success      200   {object}  domain.Closure
// @Failure      422   {object}  errorResponse
// @Router       /v1/closures/{mes}/reject [post]
func (h *ClosureHandler) Reject(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req rejectClosureRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "payload inválido")
	}

	closure, err := h.service.RejectClosure(c.Request().Context(), c.Param("mes"), req.Reason, actor)
	if err != nil {
		return err
	}
	metrics.ClosureTransitionsTotal.WithLabelValues(domain.LogReprovacao).Inc()
	return c.JSON(http.StatusOK, closure)
}

// Reopen handles POST /v1/closures/:mes/reopen.
//
// @Summary      Reopen a month, unlocking financial fields
// @Tags         closures
// @Produce      json
// @Security     BearerAuth
// @Param        mes  path      string  true  "Month (YYYY-MM)"
// @Success      200  {object}  domain.Closure
// @Failure      422  {object}  errorResponse
// @Router       /v1/closures/{mes}/reopen [post]
func (h *ClosureHandler) Reopen(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	closure, err := h.service.ReopenClosure(c.Request().Context(), c.Param("mes"), actor)
	if err != nil {
		return err
	}
	metrics.ClosureTransitionsTotal.WithLabelValues(domain.LogReabertura).Inc()
	return c.JSON(http.StatusOK, closure)
}

// Logs handles GET /v1/closures/:mes/logs.
//
// @Summary      List the transition log of a closure
// @Tags         closures
// @Produce      json
// @Security     BearerAuth
// @Param        mes  path      string  true  "Month (YYYY-MM)"
// @Success      200  {array}   domain.ClosureLog
// @Router       /v1/closures/{mes}/logs [get]
func (h *ClosureHandler) Logs(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	logs, err := h.service.ListLogs(c.Request().Context(), c.Param("mes"), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, logs)
}

// FinancialLogs handles GET /v1/closures/:mes/financial-logs.
//
// @Summary      List the month's financial audit events
// @Tags         closures
// @Produce      json
// @Security     BearerAuth
// @Param        mes  path      string  true  "Month (YYYY-MM)"
// @Success      200  {array}   domain.FinancialEvent
// @Router       /v1/closures/{mes}/financial-logs [get]
func (h *ClosureHandler) FinancialLogs(c echo.Context) error {
	if _, err := ctxActor(c); err != nil {
		return err
	}

	events, err := h.audit.ListByMes(c.Request().Context(), c.Param("mes"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}
