package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/prevencar/inspection-system/internal/core/domain"
)

// RequireRoles restricts a route group to the given roles. The role claim is
// injected by Auth; a request whose role is missing or unknown is rejected
// the same way as one with an insufficient role.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if !domain.ValidRole(role) {
				return echo.NewHTTPError(http.StatusForbidden, "acesso negado")
			}
			if _, ok := allowed[role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "acesso negado")
			}
			return next(c)
		}
	}
}
