package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/account-service/internal/core/domain"
)

func staticResolver(want string, account *domain.Account) ResolveFunc {
	return func(_ context.Context, token string) (*domain.Account, error) {
		if token != want {
			return nil, domain.ErrInvalidToken
		}
		return account, nil
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	alice := &domain.Account{ID: "1", Username: "alice", Role: domain.RoleAdmin}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(staticResolver("good-token", alice))(func(c echo.Context) error {
		called = true
		if got := CurrentAccount(c); got == nil || got.Username != "alice" {
			t.Fatalf("account not set: %+v", got)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_BadHeaders(t *testing.T) {
	tests := map[string]string{
		"missing":      "",
		"wrong scheme": "Basic abc",
		"no token":     "Bearer ",
		"no separator": "Bearer",
	}

	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			c := e.NewContext(req, httptest.NewRecorder())

			err := Auth(staticResolver("x", nil))(func(echo.Context) error {
				t.Fatal("should not reach next handler")
				return nil
			})(c)

			var he *echo.HTTPError
			if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401 HTTPError, got %v", err)
			}
		})
	}
}

func TestAuthMiddleware_ResolverErrorPassesThrough(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer forged")
	c := e.NewContext(req, httptest.NewRecorder())

	err := Auth(staticResolver("good-token", nil))(func(echo.Context) error {
		t.Fatal("should not reach next handler")
		return nil
	})(c)

	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
