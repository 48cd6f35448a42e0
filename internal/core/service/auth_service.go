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

const tokenTypeBearer = "bearer"

var _ ports.AuthService = (*AuthService)(nil)

// RecoveryThrottle abstracts the per-email recovery rate limit (Redis).
type RecoveryThrottle interface {
	Allow(ctx context.Context, email string) (bool, error)
}

// AuthService implements login, token refresh and the password reset flow.
type AuthService struct {
	repo      ports.AccountRepository
	hasher    ports.PasswordHasher
	tokens    ports.TokenService
	notifier  *Notifier
	throttle  RecoveryThrottle
	accessTTL time.Duration
	now       ports.Clock
	log       zerolog.Logger
}

func NewAuthService(
	repo ports.AccountRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenService,
	notifier *Notifier,
	accessTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if accessTTL <= 0 {
		accessTTL = 8 * 24 * time.Hour
	}
	return &AuthService{
		repo:      repo,
		hasher:    hasher,
		tokens:    tokens,
		notifier:  notifier,
		accessTTL: accessTTL,
		now:       time.Now,
		log:       log,
	}
}

// WithThrottle limits recovery emails. A nil throttle sends every request.
func (s *AuthService) WithThrottle(t RecoveryThrottle) *AuthService {
	s.throttle = t
	return s
}

// WithClock replaces the wall clock used for audit timestamps.
func (s *AuthService) WithClock(c ports.Clock) *AuthService {
	if c != nil {
		s.now = c
	}
	return s
}

// Authenticate checks a username/password pair. Unknown users and wrong
// passwords fail with the same error.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.Account, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !s.hasher.Verify(password, account.HashedPassword) {
		return nil, domain.ErrInvalidCredentials
	}
	return account, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.TokenPair, error) {
	account, err := s.Authenticate(ctx, username, password)
	if err != nil {
		s.log.Info().Str("username", username).Msg("login failed")
		return nil, err
	}
	if err := domain.AssertUsable(account); err != nil {
		s.log.Info().Str("username", username).Msg("login rejected: inactive account")
		return nil, err
	}

	pair, err := s.issuePair(account.ID)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("account_id", account.ID).Msg("login succeeded")
	return pair, nil
}

// Refresh exchanges a refresh token for a new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.Refresh {
		return nil, domain.ErrNotRefreshToken
	}
	if claims.Subject == "" {
		return nil, domain.ErrNoSubject
	}

	account, err := s.repo.FindByID(ctx, claims.Subject)
	if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if account == nil || !account.IsUsable() {
		return nil, fmt.Errorf("%w or inactive", domain.ErrAccountNotFound)
	}

	return s.issuePair(account.ID)
}

func (s *AuthService) issuePair(subject string) (*ports.TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(subject, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefreshToken(subject)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &ports.TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: tokenTypeBearer}, nil
}

// RecoverPassword mails a reset link to the account registered under email.
// Unknown addresses fail with ErrAccountNotFound. Requests inside the
// throttle window succeed without sending another email.
func (s *AuthService) RecoverPassword(ctx context.Context, email string) error {
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	if s.throttle != nil {
		allowed, err := s.throttle.Allow(ctx, account.Email)
		if err != nil {
			s.log.Warn().Err(err).Str("email", account.Email).Msg("recovery throttle failed, sending anyway")
		} else if !allowed {
			s.log.Info().Str("email", account.Email).Msg("recovery email throttled")
			return nil
		}
	}

	token, err := s.tokens.IssueResetToken(account.Email)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}
	if err := s.notifier.ResetPassword(ctx, account.Email, token); err != nil {
		return fmt.Errorf("recover password: %w", err)
	}

	s.log.Info().Str("account_id", account.ID).Msg("password recovery requested")
	return nil
}

// ResetPassword sets a new password for the account named by a reset token.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return err
	}
	if claims.Subject == "" {
		return domain.ErrNoSubject
	}

	account, err := s.repo.FindByEmail(ctx, claims.Subject)
	if err != nil {
		return err
	}
	if err := domain.AssertUsable(account); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	account.HashedPassword = hash
	account.Touch(account.Username, s.now().UTC())

	if err := s.repo.Update(ctx, account); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	s.log.Info().Str("account_id", account.ID).Msg("password reset")
	return nil
}
