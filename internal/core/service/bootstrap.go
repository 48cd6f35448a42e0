package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/ports"
)

// FirstSuperuser describes the account seeded at startup.
type FirstSuperuser struct {
	Email    string
	Username string
	Password string
}

// Bootstrap creates the first superadmin unless an account with its email
// already exists. It is safe to run on every start.
func Bootstrap(ctx context.Context, repo ports.AccountRepository, hasher ports.PasswordHasher, su FirstSuperuser, log zerolog.Logger) (*domain.Account, error) {
	existing, err := repo.FindByEmail(ctx, su.Email)
	if err == nil {
		log.Debug().Str("email", su.Email).Msg("first superuser already present")
		return existing, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, fmt.Errorf("bootstrap: lookup: %w", err)
	}

	hash, err := hasher.Hash(su.Password)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: hash: %w", err)
	}

	now := time.Now().UTC()
	account, err := repo.Insert(ctx, &domain.Account{
		Username:       su.Username,
		Email:          su.Email,
		HashedPassword: hash,
		Role:           domain.RoleSuperadmin,
		IsActive:       true,
		AddedBy:        domain.SystemActor,
		TimeAdded:      now,
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: insert: %w", err)
	}

	log.Info().Str("account_id", account.ID).Str("username", account.Username).Msg("first superuser created")
	return account, nil
}
