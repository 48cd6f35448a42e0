package domain

// RequireRole fails with ErrInsufficientPrivilege unless the account holds one
// of the given roles.
func RequireRole(a *Account, roles ...Role) error {
	for _, r := range roles {
		if a.Role == r {
			return nil
		}
	}
	return ErrInsufficientPrivilege
}

// AuthorizeCreate decides whether actor may create an account with role.
// Only a superadmin can mint another superadmin.
func AuthorizeCreate(actor *Account, role Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	if role == RoleSuperadmin && actor.Role != RoleSuperadmin {
		return ErrInsufficientPrivilege
	}
	return nil
}

// AuthorizeModeration decides whether actor may disable or soft-delete target.
func AuthorizeModeration(actor, target *Account) error {
	if actor.ID == target.ID {
		return ErrSelfActionForbidden
	}
	if target.Role == RoleSuperadmin && actor.Role != RoleSuperadmin {
		return ErrInsufficientPrivilege
	}
	return nil
}

// AuthorizeSelfUpdate permits profile and credential changes only on the
// caller's own account.
func AuthorizeSelfUpdate(actor, target *Account) error {
	if actor.ID != target.ID {
		return ErrInsufficientPrivilege
	}
	return nil
}
