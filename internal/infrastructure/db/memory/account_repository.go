// Package memory is a process-local account store. It enforces the same
// uniqueness rules as the MongoDB store and backs STORAGE_DRIVER=memory and
// tests.
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/99minutos/account-service/internal/core/domain"
)

type AccountRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[string]*domain.Account
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{byID: make(map[string]*domain.Account)}
}

func clone(a *domain.Account) *domain.Account {
	c := *a
	return &c
}

func (r *AccountRepository) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if a, ok := r.byID[id]; ok {
		return clone(a), nil
	}
	return nil, domain.ErrAccountNotFound
}

func (r *AccountRepository) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	return r.findBy(func(a *domain.Account) bool { return a.Username == username })
}

func (r *AccountRepository) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	return r.findBy(func(a *domain.Account) bool { return a.Email == email })
}

func (r *AccountRepository) findBy(match func(*domain.Account) bool) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.byID {
		if match(a) {
			return clone(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

// Insert assigns a fresh numeric ID. IDs are never reused.
func (r *AccountRepository) Insert(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.taken(account, "") {
		return nil, domain.ErrAccountExists
	}

	r.nextID++
	stored := clone(account)
	stored.ID = strconv.FormatInt(r.nextID, 10)
	r.byID[stored.ID] = stored
	return clone(stored), nil
}

func (r *AccountRepository) Update(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[account.ID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if r.taken(account, account.ID) {
		return domain.ErrConflict
	}

	stored := clone(account)
	// isDeleted is one-way.
	stored.IsDeleted = stored.IsDeleted || current.IsDeleted
	r.byID[stored.ID] = stored
	return nil
}

func (r *AccountRepository) List(_ context.Context, skip, limit int) ([]*domain.Account, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	live := make([]*domain.Account, 0, len(r.byID))
	for _, a := range r.byID {
		if !a.IsDeleted {
			live = append(live, a)
		}
	}
	sort.Slice(live, func(i, j int) bool {
		a, _ := strconv.ParseInt(live[i].ID, 10, 64)
		b, _ := strconv.ParseInt(live[j].ID, 10, 64)
		return a < b
	})

	total := int64(len(live))
	if skip < 0 {
		skip = 0
	}
	if skip > len(live) {
		return []*domain.Account{}, total, nil
	}
	end := len(live)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}

	out := make([]*domain.Account, 0, end-skip)
	for _, a := range live[skip:end] {
		out = append(out, clone(a))
	}
	return out, total, nil
}

// taken reports whether another account (not exceptID) holds the username or
// email. Callers hold the write lock.
func (r *AccountRepository) taken(a *domain.Account, exceptID string) bool {
	for id, other := range r.byID {
		if id == exceptID {
			continue
		}
		if other.Username == a.Username || other.Email == a.Email {
			return true
		}
	}
	return false
}
