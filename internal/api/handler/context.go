package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/prevencar/inspection-system/internal/core/ports"
)

// ctxActor extracts the auth claims injected by the Auth middleware and
// performs a fast-fail check before any service call: id and role must be
// non-empty (presence proves the middleware ran and the token carried a full
// identity).
func ctxActor(c echo.Context) (ports.Actor, error) {
	id, _ := c.Get("user_id").(string)
	name, _ := c.Get("name").(string)
	role, _ := c.Get("role").(string)

	if id == "" || role == "" {
		return ports.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	return ports.Actor{ID: id, Name: name, Role: role}, nil
}
