package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/account-service/internal/core/domain"
)

// ContextKeyAccount is the echo.Context key holding the resolved *domain.Account.
const ContextKeyAccount = "account"

// ResolveFunc turns a bearer token into an account, e.g. SessionResolver.ResolveActive.
type ResolveFunc func(ctx context.Context, token string) (*domain.Account, error)

// Auth extracts the bearer token, resolves it and injects the account into context.
// Resolver errors are returned untouched for the central error handler.
func Auth(resolve ResolveFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return notAuthenticated()
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return notAuthenticated()
			}

			account, err := resolve(c.Request().Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				return err
			}

			c.Set(ContextKeyAccount, account)
			return next(c)
		}
	}
}

func notAuthenticated() error {
	he := echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	he.SetInternal(domain.ErrUnauthenticated)
	return he
}

// CurrentAccount returns the account injected by Auth, or nil.
func CurrentAccount(c echo.Context) *domain.Account {
	a, _ := c.Get(ContextKeyAccount).(*domain.Account)
	return a
}
