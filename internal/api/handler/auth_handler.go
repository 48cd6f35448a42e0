package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/account-service/internal/api/metrics"
	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginAccessToken is the OAuth2-compatible password login.
//
// @Summary      Login for access and refresh tokens
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username  formData  string  true  "Username"
// @Param        password  formData  string  true  "Password"
// @Success      200  {object}  tokenResponse
// @Failure      400  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /auth/login/access-token [post]
func (h *AuthHandler) LoginAccessToken(c echo.Context) error {
	var form loginForm
	if err := bindAndValidate(c, &form); err != nil {
		return err
	}

	pair, err := h.authService.Login(c.Request().Context(), form.Username, form.Password)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	countIssued()
	return c.JSON(http.StatusOK, toTokenResponse(pair))
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrInactiveAccount):
		return "inactive"
	default:
		return "error"
	}
}

func countIssued() {
	metrics.TokensIssuedTotal.WithLabelValues("access").Inc()
	metrics.TokensIssuedTotal.WithLabelValues("refresh").Inc()
}

// RefreshToken exchanges a refresh token for a new pair.
//
// @Summary      Refresh tokens
// @Tags         auth
// @Produce      json
// @Param        token  query     string  true  "Refresh token"
// @Success      200  {object}  tokenResponse
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /auth/login/refresh-token [post]
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	// FormValue covers both the query string and a form body.
	token := c.FormValue("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "token is required")
	}

	pair, err := h.authService.Refresh(c.Request().Context(), token)
	if err != nil {
		return err
	}

	countIssued()
	return c.JSON(http.StatusOK, toTokenResponse(pair))
}

// RecoverPassword emails a password reset link.
//
// @Summary      Password recovery
// @Tags         auth
// @Produce      json
// @Param        email  path      string  true  "Account email"
// @Success      200  {object}  msgResponse
// @Failure      404  {object}  errorResponse
// @Router       /auth/password-recovery/{email} [post]
func (h *AuthHandler) RecoverPassword(c echo.Context) error {
	email := c.Param("email")
	if email == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "email is required")
	}

	if err := h.authService.RecoverPassword(c.Request().Context(), email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msgResponse{Msg: "Password recovery email sent"})
}

// ResetPassword sets a new password from a reset token.
//
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Reset token and new password"
// @Success      200  {object}  msgResponse
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authService.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return err
	}

	metrics.AccountMutationsTotal.WithLabelValues("reset_password").Inc()
	return c.JSON(http.StatusOK, msgResponse{Msg: "Password updated successfully"})
}
