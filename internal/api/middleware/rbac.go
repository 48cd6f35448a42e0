package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/account-service/internal/core/domain"
)

// RBAC enforces role-based access control on the account injected by Auth.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			account := CurrentAccount(c)
			if account == nil {
				return notAuthenticated()
			}
			if err := domain.RequireRole(account, allowedRoles...); err != nil {
				return err
			}
			return next(c)
		}
	}
}
