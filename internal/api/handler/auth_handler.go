package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/prevencar/inspection-system/internal/core/domain"
	"github.com/prevencar/inspection-system/internal/core/ports"
)

// AuthHandler handles login, password reset and user administration.
type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

type passwordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type passwordResetConfirmRequest struct {
	Token       string `json:"token"        validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type saveUserRequest struct {
	Name     string `json:"name"  validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role"  validate:"required,oneof=admin financeiro vistoriador"`
	Password string `json:"password"`
}

// Login authenticates a user and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "payload inválido")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

// RequestPasswordReset issues a reset token for an account.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      passwordResetRequest  true  "Account email"
// @Success      202   {object}  map[string]string
// @Router       /auth/password-reset [post]
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	var req passwordResetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "payload inválido")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// The token is not returned: delivery happens out of band. The
	// response is identical for known and unknown emails.
	if _, err := h.authService.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return err
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"message": "se o email estiver cadastrado, as instruções de redefinição foram enviadas",
	})
}

// ConfirmPasswordReset consumes a reset token and sets the new password.
//
// @Summary      Confirm a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      passwordResetConfirmRequest  true  "Token and new password"
// @Success      204
// @Failure      422   {object}  errorResponse
// @Router       /auth/password-reset/confirm [post]
func (h *AuthHandler) ConfirmPasswordReset(c echo.Context) error {
	var req passwordResetConfirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "payload inválido")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListUsers handles GET /v1/users.
//
// @Summary      List team members
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.User
// @Failure      403  {object}  errorResponse
// @Router       /v1/users [get]
func (h *AuthHandler) ListUsers(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	users, err := h.authService.ListUsers(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// CreateUser handles POST /v1/users.
//
// @Summary      Create a team member
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      saveUserRequest  true  "User details"
// @Success      201   {object}  domain.User
// @Failure      409   {object}  errorResponse
// @Router       /v1/users [post]
func (h *AuthHandler) CreateUser(c echo.Context) error {
	return h.saveUser(c, "")
}

// UpdateUser handles PUT /v1/users/:id.
//
// @Summary      Update a team member
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "User id"
// @Param        body  body      saveUserRequest  true  "User details (password empty keeps current)"
// @Success      200   {object}  domain.User
// @Failure      404   {object}  errorResponse
// @Router       /v1/users/{id} [put]
func (h *AuthHandler) UpdateUser(c echo.Context) error {
	return h.saveUser(c, c.Param("id"))
}

func (h *AuthHandler) saveUser(c echo.Context, id string) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req saveUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "payload inválido")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.authService.SaveUser(c.Request().Context(), ports.SaveUserInput{
		ID:       id,
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
		Password: req.Password,
	}, actor)
	if err != nil {
		return err
	}

	code := http.StatusOK
	if id == "" {
		code = http.StatusCreated
	}
	return c.JSON(code, user)
}

// DeleteUser handles DELETE /v1/users/:id.
//
// @Summary      Delete a team member
// @Tags         users
// @Security     BearerAuth
// @Param        id  path  string  true  "User id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Router       /v1/users/{id} [delete]
func (h *AuthHandler) DeleteUser(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	if err := h.authService.DeleteUser(c.Request().Context(), c.Param("id"), actor); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
