package domain

import "time"

// SystemActor is recorded as AddedBy for accounts seeded at startup.
const SystemActor = "system"

// Account is the identity record managed by the service.
//
// IsDeleted is terminal: once set, nothing clears it, and a deleted account is
// treated as inactive regardless of IsActive.
type Account struct {
	ID             string
	Username       string
	Email          string
	HashedPassword string
	Role           Role
	IsActive       bool
	IsDeleted      bool
	AddedBy        string
	TimeAdded      time.Time
	LastUpdatedBy  string
	LastUpdateTime time.Time
}

// IsUsable reports whether the account may log in or act.
func (a *Account) IsUsable() bool {
	return a.IsActive && !a.IsDeleted
}

// Touch stamps the audit trail for a mutation performed by actor.
func (a *Account) Touch(actor string, at time.Time) {
	a.LastUpdatedBy = actor
	a.LastUpdateTime = at
}

// Disable clears the active flag.
func (a *Account) Disable(actor string, at time.Time) {
	a.IsActive = false
	a.Touch(actor, at)
}

// SoftDelete marks the account deleted and inactive. Calling it on an already
// deleted account leaves it deleted.
func (a *Account) SoftDelete(actor string, at time.Time) {
	a.IsDeleted = true
	a.IsActive = false
	a.Touch(actor, at)
}

// AssertUsable fails with ErrInactiveAccount for disabled or deleted accounts.
func AssertUsable(a *Account) error {
	if !a.IsUsable() {
		return ErrInactiveAccount
	}
	return nil
}
