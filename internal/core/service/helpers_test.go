package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/ports"
	"github.com/99minutos/account-service/internal/infrastructure/db/memory"
	"github.com/99minutos/account-service/internal/infrastructure/security"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type sentMail struct {
	to, subject, body string
}

type stubMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *stubMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (m *stubMailer) bySubject(subject string) []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentMail
	for _, s := range m.sent {
		if s.subject == subject {
			out = append(out, s)
		}
	}
	return out
}

// stubRenderer puts the interesting value in the body so tests can read it back.
type stubRenderer struct{}

func (stubRenderer) ResetPassword(_, token string) (ports.Email, error) {
	return ports.Email{Subject: "reset", HTMLBody: token}, nil
}

func (stubRenderer) NewAccount(username string) (ports.Email, error) {
	return ports.Email{Subject: "welcome", HTMLBody: username}, nil
}

func (stubRenderer) Test() (ports.Email, error) {
	return ports.Email{Subject: "Test email"}, nil
}

type stubThrottle struct {
	allow bool
	err   error
	calls int
}

func (t *stubThrottle) Allow(context.Context, string) (bool, error) {
	t.calls++
	return t.allow, t.err
}

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

const (
	rootEmail    = "admin@example.com"
	rootUsername = "admin"
	rootPassword = "admin"
	accessTTL    = time.Hour
	refreshTTL   = 30 * 24 * time.Hour
)

type fixture struct {
	repo     *memory.AccountRepository
	hasher   *security.Hasher
	tokens   *security.TokenService
	clock    *fakeClock
	mailer   *stubMailer
	auth     *AuthService
	sessions *SessionService
	accounts *AccountService
	root     *domain.Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		repo:   memory.NewAccountRepository(),
		hasher: security.NewHasher(bcrypt.MinCost),
		clock:  &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)},
		mailer: &stubMailer{},
	}
	f.tokens = security.NewTokenService([]byte("test-secret"), refreshTTL, f.clock.Now)
	notifier := NewNotifier(f.mailer, stubRenderer{})

	f.auth = NewAuthService(f.repo, f.hasher, f.tokens, notifier, accessTTL, zerolog.Nop()).WithClock(f.clock.Now)
	f.sessions = NewSessionService(f.repo, f.tokens)
	f.accounts = NewAccountService(f.repo, f.hasher, notifier, zerolog.Nop()).WithClock(f.clock.Now)

	root, err := Bootstrap(context.Background(), f.repo, f.hasher, FirstSuperuser{
		Email:    rootEmail,
		Username: rootUsername,
		Password: rootPassword,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	f.root = root
	return f
}

// create adds an active account as root and fails the test on error.
func (f *fixture) create(t *testing.T, username string, role domain.Role) *domain.Account {
	t.Helper()
	a, err := f.accounts.Create(context.Background(), f.root, ports.CreateAccountInput{
		Username: username,
		Email:    username + "@x.com",
		Password: username + "-pw",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("create %s: %v", username, err)
	}
	return a
}

func (f *fixture) login(t *testing.T, username, password string) *ports.TokenPair {
	t.Helper()
	pair, err := f.auth.Login(context.Background(), username, password)
	if err != nil {
		t.Fatalf("login %s: %v", username, err)
	}
	return pair
}
