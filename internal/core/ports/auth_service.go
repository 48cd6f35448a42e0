package ports

import (
	"context"

	"github.com/99minutos/account-service/internal/core/domain"
)

// AuthService covers the unauthenticated auth flows.
type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (*domain.Account, error)
	Login(ctx context.Context, username, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	RecoverPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// SessionResolver turns a bearer token into an account.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*domain.Account, error)
	ResolveActive(ctx context.Context, token string) (*domain.Account, error)
	ResolveAdmin(ctx context.Context, token string) (*domain.Account, error)
	ResolveSuperadmin(ctx context.Context, token string) (*domain.Account, error)
}
