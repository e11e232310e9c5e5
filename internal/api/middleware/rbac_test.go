package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/prevencar/inspection-system/internal/core/domain"
)

func forbiddenCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

func TestRequireRoles_Allows(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("role", domain.RoleFinanceiro)

	called := false
	mw := RequireRoles(domain.RoleAdmin, domain.RoleFinanceiro)
	handler := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRoles_Forbids(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("role", domain.RoleVistoriador)

	mw := RequireRoles(domain.RoleAdmin, domain.RoleFinanceiro)
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if code := forbiddenCode(t, handler(c)); code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}
}

func TestRequireRoles_MissingOrUnknownRole(t *testing.T) {
	e := echo.New()
	mw := RequireRoles(domain.RoleAdmin)

	for _, role := range []string{"", "gerente"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != "" {
			c.Set("role", role)
		}

		handler := mw(func(c echo.Context) error {
			t.Fatalf("should not reach next handler for role %q", role)
			return nil
		})

		if code := forbiddenCode(t, handler(c)); code != http.StatusForbidden {
			t.Fatalf("role %q: expected 403, got %d", role, code)
		}
	}
}
