package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/prevencar/inspection-system/internal/api/metrics"
	"github.com/prevencar/inspection-system/internal/infrastructure/cep"
)

// CEPLookup is the narrow view of the ViaCEP client the handler needs.
type CEPLookup interface {
	Lookup(ctx context.Context, cep string) (*cep.Address, error)
}

// CEPHandler resolves postal codes for the intake form.
type CEPHandler struct {
	client CEPLookup
}

func NewCEPHandler(client CEPLookup) *CEPHandler {
	return &CEPHandler{client: client}
}

// Lookup handles GET /v1/cep/:cep.
//
// @Summary      Resolve a CEP to an address
// @Tags         cep
// @Produce      json
// @Security     BearerAuth
// @Param        cep  path      string  true  "CEP (8 digits)"
// @Success      200  {object}  cep.Address
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/cep/{cep} [get]
func (h *CEPHandler) Lookup(c echo.Context) error {
	addr, err := h.client.Lookup(c.Request().Context(), c.Param("cep"))
	if err != nil {
		switch {
		case errors.Is(err, cep.ErrInvalidCEP):
			metrics.CEPLookupsTotal.WithLabelValues("error").Inc()
			return echo.NewHTTPError(http.StatusBadRequest, "cep inválido")
		case errors.Is(err, cep.ErrCEPNotFound):
			metrics.CEPLookupsTotal.WithLabelValues("miss").Inc()
			return echo.NewHTTPError(http.StatusNotFound, "cep não encontrado")
		default:
			// Lookup is best-effort: upstream failures degrade to an
			// empty result instead of blocking intake.
			metrics.CEPLookupsTotal.WithLabelValues("error").Inc()
			return c.JSON(http.StatusOK, cep.Address{})
		}
	}

	metrics.CEPLookupsTotal.WithLabelValues("hit").Inc()
	return c.JSON(http.StatusOK, addr)
}
