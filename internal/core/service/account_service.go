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

const (
	DefaultPageSize = 100
	MaxPageSize     = 1000
)

var _ ports.AccountService = (*AccountService)(nil)

// AccountService implements account administration and self-service.
type AccountService struct {
	repo     ports.AccountRepository
	hasher   ports.PasswordHasher
	notifier *Notifier
	now      ports.Clock
	log      zerolog.Logger
}

func NewAccountService(repo ports.AccountRepository, hasher ports.PasswordHasher, notifier *Notifier, log zerolog.Logger) *AccountService {
	return &AccountService{repo: repo, hasher: hasher, notifier: notifier, now: time.Now, log: log}
}

// WithClock replaces the wall clock used for audit timestamps.
func (s *AccountService) WithClock(c ports.Clock) *AccountService {
	if c != nil {
		s.now = c
	}
	return s
}

// Create adds an account on behalf of actor. The privilege check runs before
// any lookup so a rejected request reveals nothing about existing accounts.
func (s *AccountService) Create(ctx context.Context, actor *domain.Account, in ports.CreateAccountInput) (*domain.Account, error) {
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if err := domain.AuthorizeCreate(actor, role); err != nil {
		return nil, err
	}

	if err := s.ensureAvailable(ctx, in.Username, in.Email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	created, err := s.repo.Insert(ctx, &domain.Account{
		Username:       in.Username,
		Email:          in.Email,
		HashedPassword: hash,
		Role:           role,
		IsActive:       active,
		AddedBy:        actor.Username,
		TimeAdded:      s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("account_id", created.ID).
		Str("role", string(created.Role)).
		Str("added_by", actor.Username).
		Msg("account created")

	if err := s.notifier.NewAccount(ctx, created); err != nil {
		s.log.Warn().Err(err).Str("account_id", created.ID).Msg("welcome email not sent")
	}
	return created, nil
}

func (s *AccountService) ensureAvailable(ctx context.Context, username, email string) error {
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return domain.ErrAccountExists
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return fmt.Errorf("lookup email: %w", err)
	}
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return domain.ErrAccountExists
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return fmt.Errorf("lookup username: %w", err)
	}
	return nil
}

// Get returns the account with id, including soft-deleted ones.
func (s *AccountService) Get(ctx context.Context, id string) (*domain.Account, error) {
	return s.repo.FindByID(ctx, id)
}

// List pages through the accounts that are not deleted.
func (s *AccountService) List(ctx context.Context, skip, limit int) (*ports.AccountPage, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	items, total, err := s.repo.List(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return &ports.AccountPage{Items: items, Total: total}, nil
}

// UpdateProfile changes the caller's own username and/or email.
func (s *AccountService) UpdateProfile(ctx context.Context, actor *domain.Account, in ports.UpdateProfileInput) (*domain.Account, error) {
	target, err := s.repo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := domain.AuthorizeSelfUpdate(actor, target); err != nil {
		return nil, err
	}

	if in.Email != "" {
		if err := s.ensureNotTaken(ctx, s.repo.FindByEmail, in.Email, target.ID); err != nil {
			return nil, err
		}
		target.Email = in.Email
	}
	if in.Username != "" {
		if err := s.ensureNotTaken(ctx, s.repo.FindByUsername, in.Username, target.ID); err != nil {
			return nil, err
		}
		target.Username = in.Username
	}

	target.Touch(target.Username, s.now().UTC())
	if err := s.repo.Update(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

func (s *AccountService) ensureNotTaken(ctx context.Context, find func(context.Context, string) (*domain.Account, error), value, ownerID string) error {
	other, err := find(ctx, value)
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("uniqueness check: %w", err)
	case other.ID != ownerID:
		return domain.ErrConflict
	}
	return nil
}

func (s *AccountService) ChangePassword(ctx context.Context, actor *domain.Account, currentPassword, newPassword string) error {
	target, err := s.repo.FindByID(ctx, actor.ID)
	if err != nil {
		return err
	}
	if err := domain.AuthorizeSelfUpdate(actor, target); err != nil {
		return err
	}
	if !s.hasher.Verify(currentPassword, target.HashedPassword) {
		return domain.ErrIncorrectPassword
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	target.HashedPassword = hash
	target.Touch(target.Username, s.now().UTC())

	if err := s.repo.Update(ctx, target); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	s.log.Info().Str("account_id", target.ID).Msg("password changed")
	return nil
}

func (s *AccountService) Disable(ctx context.Context, actor *domain.Account, id string) (*domain.Account, error) {
	return s.moderate(ctx, actor, id, "disabled", (*domain.Account).Disable)
}

func (s *AccountService) SoftDelete(ctx context.Context, actor *domain.Account, id string) (*domain.Account, error) {
	return s.moderate(ctx, actor, id, "deleted", (*domain.Account).SoftDelete)
}

func (s *AccountService) moderate(ctx context.Context, actor *domain.Account, id, action string, apply func(*domain.Account, string, time.Time)) (*domain.Account, error) {
	target, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.AuthorizeModeration(actor, target); err != nil {
		s.log.Warn().
			Err(err).
			Str("actor_id", actor.ID).
			Str("target_id", target.ID).
			Msgf("account not %s", action)
		return nil, err
	}

	apply(target, actor.Username, s.now().UTC())
	if err := s.repo.Update(ctx, target); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}

	s.log.Info().Str("actor_id", actor.ID).Str("target_id", target.ID).Msgf("account %s", action)
	return target, nil
}

func (s *AccountService) SendTestEmail(ctx context.Context, to string) error {
	return s.notifier.Test(ctx, to)
}
