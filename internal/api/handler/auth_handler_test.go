package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/prevencar/inspection-system/internal/core/domain"
	"github.com/prevencar/inspection-system/internal/core/ports"
)

type stubAuthService struct {
	loginFn        func(ctx context.Context, email, password string) (string, *domain.User, error)
	requestResetFn func(ctx context.Context, email string) (string, error)
	resetFn        func(ctx context.Context, token, newPassword string) error
	saveUserFn     func(ctx context.Context, in ports.SaveUserInput, actor ports.Actor) (*domain.User, error)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) SaveUser(ctx context.Context, in ports.SaveUserInput, actor ports.Actor) (*domain.User, error) {
	return s.saveUserFn(ctx, in, actor)
}

func (s *stubAuthService) ListUsers(_ context.Context, _ ports.Actor) ([]*domain.User, error) {
	return nil, nil
}

func (s *stubAuthService) DeleteUser(_ context.Context, _ string, _ ports.Actor) error {
	return nil
}

func (s *stubAuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	return s.requestResetFn(ctx, email)
}

func (s *stubAuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	return s.resetFn(ctx, token, newPassword)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			if email != "ana@prevencar.com.br" || password != "s3nh4forte" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return "token123", &domain.User{ID: "u1", Name: "Ana", Role: domain.RoleFinanceiro}, nil
		},
	}
	handler := NewAuthHandler(stub)

	body := strings.NewReader(`{"email":"ana@prevencar.com.br","password":"s3nh4forte"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["name"] != "Ana" || user["role"] != "financeiro" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
}

func TestAuthHandler_Login_InvalidCredentialsPropagated(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub)

	body := strings.NewReader(`{"email":"ana@prevencar.com.br","password":"errada"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// the central error handler maps the sentinel; the handler itself must
	// pass it through untouched
	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			t.Fatalf("should not be called")
			return "", nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"not-an-email","password":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Login(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400", err)
	}
}

func TestAuthHandler_PasswordResetRequest_NeverLeaksToken(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		requestResetFn: func(ctx context.Context, email string) (string, error) {
			return "secret-token", nil
		},
	}
	handler := NewAuthHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/auth/password-reset", strings.NewReader(`{"email":"ana@prevencar.com.br"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.RequestPasswordReset(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret-token") {
		t.Fatal("reset token must not appear in the response")
	}
}

func TestAuthHandler_PasswordResetRequest_SameResponseForUnknownEmail(t *testing.T) {
	e := newTestEcho()
	known := &stubAuthService{
		requestResetFn: func(ctx context.Context, email string) (string, error) { return "tok", nil },
	}
	unknown := &stubAuthService{
		requestResetFn: func(ctx context.Context, email string) (string, error) { return "", nil },
	}

	run := func(stub *stubAuthService) (int, string) {
		req := httptest.NewRequest(http.MethodPost, "/auth/password-reset", strings.NewReader(`{"email":"x@prevencar.com.br"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := NewAuthHandler(stub).RequestPasswordReset(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		return rec.Code, rec.Body.String()
	}

	knownCode, knownBody := run(known)
	unknownCode, unknownBody := run(unknown)
	if knownCode != unknownCode || knownBody != unknownBody {
		t.Fatal("responses must be indistinguishable to prevent account enumeration")
	}
}

func TestAuthHandler_ConfirmPasswordReset(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		resetFn: func(ctx context.Context, token, newPassword string) error {
			if token != "tok-1" || newPassword != "nova456" {
				t.Fatalf("unexpected args: %s %s", token, newPassword)
			}
			return nil
		},
	}
	handler := NewAuthHandler(stub)

	body := strings.NewReader(`{"token":"tok-1","new_password":"nova456"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/password-reset/confirm", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.ConfirmPasswordReset(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestAuthHandler_ConfirmPasswordReset_ShortPassword(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		resetFn: func(ctx context.Context, token, newPassword string) error {
			t.Fatalf("should not be called")
			return nil
		},
	}
	handler := NewAuthHandler(stub)

	body := strings.NewReader(`{"token":"tok-1","new_password":"123"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/password-reset/confirm", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.ConfirmPasswordReset(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400", err)
	}
}

func TestAuthHandler_CreateUser_PassesActorClaims(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		saveUserFn: func(ctx context.Context, in ports.SaveUserInput, actor ports.Actor) (*domain.User, error) {
			if actor.ID != "u-admin" || actor.Role != domain.RoleAdmin {
				t.Fatalf("actor = %+v", actor)
			}
			if in.ID != "" || in.Role != domain.RoleVistoriador {
				t.Fatalf("input = %+v", in)
			}
			return &domain.User{ID: "u-new", Name: in.Name, Role: in.Role}, nil
		},
	}
	handler := NewAuthHandler(stub)

	body := strings.NewReader(`{"name":"Pedro","email":"pedro@prevencar.com.br","role":"vistoriador","password":"inicial123"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/users", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "u-admin")
	c.Set("name", "Root")
	c.Set("role", domain.RoleAdmin)

	if err := handler.CreateUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestAuthHandler_CreateUser_MissingClaims(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		saveUserFn: func(ctx context.Context, in ports.SaveUserInput, actor ports.Actor) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/v1/users", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.CreateUser(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401", err)
	}
}
