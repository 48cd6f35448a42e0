package ports

import (
	"context"

	"github.com/99minutos/account-service/internal/core/domain"
)

// AccountRepository is the account store.
//
// Lookups return domain.ErrAccountNotFound when nothing matches. Insert and
// Update return an error wrapping domain.ErrConflict when the username or email
// is held by another account; the store must make that check atomic with the
// write (e.g. unique indexes).
type AccountRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	Insert(ctx context.Context, account *domain.Account) (*domain.Account, error)
	Update(ctx context.Context, account *domain.Account) error
	// List returns non-deleted accounts in creation order and their total count.
	List(ctx context.Context, skip, limit int) ([]*domain.Account, int64, error)
}
