package ports

import (
	"context"

	"github.com/99minutos/account-service/internal/core/domain"
)

// CreateAccountInput carries the fields an admin supplies for a new account.
type CreateAccountInput struct {
	Username string
	Email    string
	Password string
	Role     domain.Role
	// IsActive defaults to true when nil.
	IsActive *bool
}

// UpdateProfileInput carries the optional self-service profile changes.
// Empty strings leave the field untouched.
type UpdateProfileInput struct {
	Username string
	Email    string
}

// AccountPage is one page of a listing.
type AccountPage struct {
	Items []*domain.Account
	Total int64
}

// AccountService defines the account management use cases. The actor is the
// already-resolved caller.
type AccountService interface {
	Create(ctx context.Context, actor *domain.Account, input CreateAccountInput) (*domain.Account, error)
	Get(ctx context.Context, id string) (*domain.Account, error)
	List(ctx context.Context, skip, limit int) (*AccountPage, error)
	UpdateProfile(ctx context.Context, actor *domain.Account, input UpdateProfileInput) (*domain.Account, error)
	ChangePassword(ctx context.Context, actor *domain.Account, currentPassword, newPassword string) error
	Disable(ctx context.Context, actor *domain.Account, id string) (*domain.Account, error)
	SoftDelete(ctx context.Context, actor *domain.Account, id string) (*domain.Account, error)
	SendTestEmail(ctx context.Context, to string) error
}
