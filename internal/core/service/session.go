package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/ports"
)

var _ ports.SessionResolver = (*SessionService)(nil)

// SessionService resolves bearer tokens to accounts. Tokens are stateless: a
// token stays valid until it expires even if its account is later disabled,
// so callers that need a live account use ResolveActive.
type SessionService struct {
	repo   ports.AccountRepository
	tokens ports.TokenService
}

func NewSessionService(repo ports.AccountRepository, tokens ports.TokenService) *SessionService {
	return &SessionService{repo: repo, tokens: tokens}
}

func (s *SessionService) Resolve(ctx context.Context, token string) (*domain.Account, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	if claims.Refresh {
		return nil, domain.ErrRefreshTokenRejected
	}
	if claims.Subject == "" {
		return nil, domain.ErrNoSubject
	}

	account, err := s.repo.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	return account, nil
}

func (s *SessionService) ResolveActive(ctx context.Context, token string) (*domain.Account, error) {
	account, err := s.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := domain.AssertUsable(account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *SessionService) ResolveAdmin(ctx context.Context, token string) (*domain.Account, error) {
	return s.resolveWithRole(ctx, token, domain.RoleAdmin, domain.RoleSuperadmin)
}

func (s *SessionService) ResolveSuperadmin(ctx context.Context, token string) (*domain.Account, error) {
	return s.resolveWithRole(ctx, token, domain.RoleSuperadmin)
}

func (s *SessionService) resolveWithRole(ctx context.Context, token string, roles ...domain.Role) (*domain.Account, error) {
	account, err := s.ResolveActive(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := domain.RequireRole(account, roles...); err != nil {
		return nil, err
	}
	return account, nil
}
