package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/account-service/internal/api/metrics"
	"github.com/99minutos/account-service/internal/core/ports"
	"github.com/99minutos/account-service/internal/core/service"
)

// UserHandler handles HTTP requests for account management.
type UserHandler struct {
	accounts ports.AccountService
}

func NewUserHandler(accounts ports.AccountService) *UserHandler {
	return &UserHandler{accounts: accounts}
}

// Create adds a new account.
//
// @Summary      Create user (admin)
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     OAuth2Password
// @Param        body  body      createUserRequest  true  "New account"
// @Success      200  {object}  userResponse
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /users/ [post]
func (h *UserHandler) Create(c echo.Context) error {
	actor, err := ctxAccount(c)
	if err != nil {
		return err
	}

	var req createUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	input, err := toCreateInput(req)
	if err != nil {
		return err
	}

	created, err := h.accounts.Create(c.Request().Context(), actor, input)
	if err != nil {
		return err
	}

	metrics.AccountMutationsTotal.WithLabelValues("create").Inc()
	return c.JSON(http.StatusOK, toUserResponse(created))
}

// List pages through non-deleted accounts.
//
// @Summary      List users (admin)
// @Tags         users
// @Produce      json
// @Security     OAuth2Password
// @Param        skip   query     int  false  "Offset"       default(0)
// @Param        limit  query     int  false  "Page size"    default(100)
// @Success      200  {object}  userListResponse
// @Failure      403  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /users/ [get]
func (h *UserHandler) List(c echo.Context) error {
	skip, limit := 0, service.DefaultPageSize
	if err := echo.QueryParamsBinder(c).
		Int("skip", &skip).
		Int("limit", &limit).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "skip and limit must be integers")
	}
	if skip < 0 || limit < 0 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "skip and limit must not be negative")
	}

	page, err := h.accounts.List(c.Request().Context(), skip, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserListResponse(page))
}

// Me returns the caller's account.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     OAuth2Password
// @Success      200  {object}  userResponse
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	actor, err := ctxAccount(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(actor))
}

// UpdateMe changes the caller's username and/or email.
//
// @Summary      Update own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     OAuth2Password
// @Param        body  body      updateMeRequest  true  "Profile changes"
// @Success      200  {object}  userResponse
// @Failure      409  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /users/me [patch]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	actor, err := ctxAccount(c)
	if err != nil {
		return err
	}

	var req updateMeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	updated, err := h.accounts.UpdateProfile(c.Request().Context(), actor, ports.UpdateProfileInput{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}

	metrics.AccountMutationsTotal.WithLabelValues("update_profile").Inc()
	return c.JSON(http.StatusOK, toUserResponse(updated))
}

// UpdatePasswordMe changes the caller's password.
//
// @Summary      Update own password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     OAuth2Password
// @Param        body  body      updatePasswordRequest  true  "Current and new password"
// @Success      200  {object}  msgResponse
// @Failure      400  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /users/me/password [patch]
func (h *UserHandler) UpdatePasswordMe(c echo.Context) error {
	actor, err := ctxAccount(c)
	if err != nil {
		return err
	}

	var req updatePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.accounts.ChangePassword(c.Request().Context(), actor, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}

	metrics.AccountMutationsTotal.WithLabelValues("change_password").Inc()
	return c.JSON(http.StatusOK, msgResponse{Msg: "Password updated successfully"})
}

// Get returns one account by id.
//
// @Summary      Get user by id (admin)
// @Tags         users
// @Produce      json
// @Security     OAuth2Password
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  userResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	account, err := h.accounts.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(account))
}

// Disable deactivates an account.
//
// @Summary      Disable user (admin)
// @Tags         users
// @Produce      json
// @Security     OAuth2Password
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  userResponse
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id}/disable [patch]
func (h *UserHandler) Disable(c echo.Context) error {
	actor, err := ctxAccount(c)
	if err != nil {
		return err
	}

	account, err := h.accounts.Disable(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}

	metrics.AccountMutationsTotal.WithLabelValues("disable").Inc()
	return c.JSON(http.StatusOK, toUserResponse(account))
}

// Delete soft-deletes an account.
//
// @Summary      Soft delete user (admin)
// @Tags         users
// @Produce      json
// @Security     OAuth2Password
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  userResponse
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	actor, err := ctxAccount(c)
	if err != nil {
		return err
	}

	account, err := h.accounts.SoftDelete(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}

	metrics.AccountMutationsTotal.WithLabelValues("delete").Inc()
	return c.JSON(http.StatusOK, toUserResponse(account))
}
