package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/prevencar/inspection-system/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Business-rule validation failures carry user-facing messages.
	if ve, ok := domain.AsValidation(err); ok {
		return http.StatusUnprocessableEntity, strings.Join(ve.Messages, "; ")
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInspectionNotFound):
		return http.StatusNotFound, "ficha não encontrada"
	case errors.Is(err, domain.ErrClosureNotFound):
		return http.StatusNotFound, "fechamento não encontrado"
	case errors.Is(err, domain.ErrServiceNotFound):
		return http.StatusNotFound, "serviço não encontrado"
	case errors.Is(err, domain.ErrIndicationNotFound):
		return http.StatusNotFound, "indicação não encontrada"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "usuário não encontrado"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "usuário já existe"
	case errors.Is(err, domain.ErrClosureExists):
		return http.StatusConflict, "fechamento já existe para o mês"
	case errors.Is(err, domain.ErrClosedPeriod):
		return http.StatusConflict, "mês fechado: campos financeiros bloqueados"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden, "acesso negado"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "credenciais inválidas"
	case errors.Is(err, domain.ErrProfileInconsistency):
		return http.StatusUnauthorized, "perfil do usuário não encontrado"
	case errors.Is(err, domain.ErrResetTokenInvalid):
		return http.StatusUnprocessableEntity, "token de redefinição inválido ou expirado"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "erro interno"
}
