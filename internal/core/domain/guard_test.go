package domain

import (
	"errors"
	"testing"
)

var allRoles = []Role{RoleSuperadmin, RoleAdmin, RoleUser}

func TestAuthorizeModeration_RolePairs(t *testing.T) {
	for _, actorRole := range allRoles {
		for _, targetRole := range allRoles {
			for _, same := range []bool{false, true} {
				actor := &Account{ID: "a", Role: actorRole}
				target := &Account{ID: "b", Role: targetRole}
				if same {
					target.ID = actor.ID
				}

				want := !same && !(targetRole == RoleSuperadmin && actorRole != RoleSuperadmin)
				err := AuthorizeModeration(actor, target)
				if (err == nil) != want {
					t.Errorf("actor=%s target=%s same=%v: permitted=%v, want %v (err=%v)",
						actorRole, targetRole, same, err == nil, want, err)
				}
				if same && !errors.Is(err, ErrSelfActionForbidden) {
					t.Errorf("actor=%s target=%s: expected ErrSelfActionForbidden, got %v", actorRole, targetRole, err)
				}
			}
		}
	}
}

func TestAuthorizeModeration_AdminOnSuperadmin(t *testing.T) {
	err := AuthorizeModeration(&Account{ID: "1", Role: RoleAdmin}, &Account{ID: "2", Role: RoleSuperadmin})
	if !errors.Is(err, ErrInsufficientPrivilege) {
		t.Fatalf("expected ErrInsufficientPrivilege, got %v", err)
	}
}

func TestAuthorizeCreate(t *testing.T) {
	cases := []struct {
		actor Role
		role  Role
		want  error
	}{
		{RoleSuperadmin, RoleSuperadmin, nil},
		{RoleSuperadmin, RoleAdmin, nil},
		{RoleAdmin, RoleAdmin, nil},
		{RoleAdmin, RoleUser, nil},
		{RoleAdmin, RoleSuperadmin, ErrInsufficientPrivilege},
		{RoleUser, RoleSuperadmin, ErrInsufficientPrivilege},
		{RoleAdmin, Role("root"), ErrInvalidRole},
	}
	for _, tc := range cases {
		err := AuthorizeCreate(&Account{ID: "x", Role: tc.actor}, tc.role)
		if !errors.Is(err, tc.want) {
			t.Errorf("actor=%s role=%s: got %v, want %v", tc.actor, tc.role, err, tc.want)
		}
	}
}

func TestAuthorizeSelfUpdate(t *testing.T) {
	me := &Account{ID: "1"}
	if err := AuthorizeSelfUpdate(me, &Account{ID: "1"}); err != nil {
		t.Fatalf("self update must be allowed, got %v", err)
	}
	if err := AuthorizeSelfUpdate(me, &Account{ID: "2"}); !errors.Is(err, ErrInsufficientPrivilege) {
		t.Fatalf("expected ErrInsufficientPrivilege, got %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	admin := &Account{Role: RoleAdmin}
	if err := RequireRole(admin, RoleAdmin, RoleSuperadmin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := RequireRole(admin, RoleSuperadmin); !errors.Is(err, ErrInsufficientPrivilege) {
		t.Fatalf("expected ErrInsufficientPrivilege, got %v", err)
	}
}
