package ports

import "time"

// PasswordHasher hashes and verifies credentials.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// TokenClaims is the decoded payload of a verified token.
type TokenClaims struct {
	Subject   string
	ExpiresAt time.Time
	Refresh   bool
}

// TokenPair is what a successful login or refresh hands back.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
}

// TokenService mints and verifies signed, expiring tokens. Tokens are
// stateless: there is no revocation, so a token stays valid until exp.
type TokenService interface {
	IssueAccessToken(subject string, ttl time.Duration) (string, error)
	IssueRefreshToken(subject string) (string, error)
	// IssueResetToken mints an access-shaped token whose subject is an email.
	IssueResetToken(email string) (string, error)
	// Verify checks signature, structure and expiry only.
	Verify(token string) (*TokenClaims, error)
}

// Clock returns the current instant. Services default to time.Now.
type Clock func() time.Time
