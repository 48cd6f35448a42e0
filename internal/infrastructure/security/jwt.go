package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/ports"
)

// ResetTokenTTL is the lifetime of password reset tokens.
const ResetTokenTTL = time.Hour

// claims is the wire payload: {sub, exp, refresh}.
type claims struct {
	jwt.RegisteredClaims
	Refresh bool `json:"refresh,omitempty"`
}

// TokenService signs HS256 tokens with a process-wide secret.
type TokenService struct {
	secret     []byte
	refreshTTL time.Duration
	resetTTL   time.Duration
	now        ports.Clock
	parser     *jwt.Parser
}

// NewTokenService builds a TokenService. A nil clock means time.Now.
func NewTokenService(secret []byte, refreshTTL time.Duration, clock ports.Clock) *TokenService {
	if clock == nil {
		clock = time.Now
	}
	return &TokenService{
		secret:     secret,
		refreshTTL: refreshTTL,
		resetTTL:   ResetTokenTTL,
		now:        clock,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(clock),
		),
	}
}

// WithResetTTL overrides the reset token lifetime.
func (s *TokenService) WithResetTTL(ttl time.Duration) *TokenService {
	if ttl > 0 {
		s.resetTTL = ttl
	}
	return s
}

func (s *TokenService) IssueAccessToken(subject string, ttl time.Duration) (string, error) {
	return s.sign(subject, ttl, false)
}

func (s *TokenService) IssueRefreshToken(subject string) (string, error) {
	return s.sign(subject, s.refreshTTL, true)
}

func (s *TokenService) IssueResetToken(email string) (string, error) {
	return s.sign(email, s.resetTTL, false)
}

func (s *TokenService) sign(subject string, ttl time.Duration, refresh bool) (string, error) {
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(s.now().Add(ttl)),
		},
		Refresh: refresh,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify returns domain.ErrInvalidToken for bad signatures, malformed tokens,
// foreign algorithms and expired or exp-less tokens.
func (s *TokenService) Verify(token string) (*ports.TokenClaims, error) {
	var c claims
	parsed, err := s.parser.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", domain.ErrInvalidToken)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}

	out := &ports.TokenClaims{Subject: c.Subject, Refresh: c.Refresh}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out, nil
}
