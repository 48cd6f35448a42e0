package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/account-service/internal/api/middleware"
	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/ports"
)

type stubAccountService struct {
	createFn   func(ctx context.Context, actor *domain.Account, in ports.CreateAccountInput) (*domain.Account, error)
	getFn      func(ctx context.Context, id string) (*domain.Account, error)
	listFn     func(ctx context.Context, skip, limit int) (*ports.AccountPage, error)
	updateFn   func(ctx context.Context, actor *domain.Account, in ports.UpdateProfileInput) (*domain.Account, error)
	passwordFn func(ctx context.Context, actor *domain.Account, current, next string) error
	disableFn  func(ctx context.Context, actor *domain.Account, id string) (*domain.Account, error)
	deleteFn   func(ctx context.Context, actor *domain.Account, id string) (*domain.Account, error)
	testMailFn func(ctx context.Context, to string) error
}

func (s *stubAccountService) Create(ctx context.Context, actor *domain.Account, in ports.CreateAccountInput) (*domain.Account, error) {
	return s.createFn(ctx, actor, in)
}

func (s *stubAccountService) Get(ctx context.Context, id string) (*domain.Account, error) {
	return s.getFn(ctx, id)
}

func (s *stubAccountService) List(ctx context.Context, skip, limit int) (*ports.AccountPage, error) {
	return s.listFn(ctx, skip, limit)
}

func (s *stubAccountService) UpdateProfile(ctx context.Context, actor *domain.Account, in ports.UpdateProfileInput) (*domain.Account, error) {
	return s.updateFn(ctx, actor, in)
}

func (s *stubAccountService) ChangePassword(ctx context.Context, actor *domain.Account, current, next string) error {
	return s.passwordFn(ctx, actor, current, next)
}

func (s *stubAccountService) Disable(ctx context.Context, actor *domain.Account, id string) (*domain.Account, error) {
	return s.disableFn(ctx, actor, id)
}

func (s *stubAccountService) SoftDelete(ctx context.Context, actor *domain.Account, id string) (*domain.Account, error) {
	return s.deleteFn(ctx, actor, id)
}

func (s *stubAccountService) SendTestEmail(ctx context.Context, to string) error {
	return s.testMailFn(ctx, to)
}

var admin = &domain.Account{ID: "1", Username: "root", Email: "root@x.com", Role: domain.RoleAdmin, IsActive: true}

func jsonContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.ContextKeyAccount, admin)
	return c, rec
}

func TestUserHandler_Create(t *testing.T) {
	e := newTestEcho()
	stub := &stubAccountService{
		createFn: func(ctx context.Context, actor *domain.Account, in ports.CreateAccountInput) (*domain.Account, error) {
			if actor != admin {
				t.Fatalf("unexpected actor %+v", actor)
			}
			if in.Username != "bob" || in.Role != domain.RoleAdmin || in.IsActive == nil || *in.IsActive {
				t.Fatalf("unexpected input %+v", in)
			}
			return &domain.Account{ID: "2", Username: in.Username, Email: in.Email, Role: in.Role}, nil
		},
	}
	handler := NewUserHandler(stub)

	c, rec := jsonContext(e, http.MethodPost, "/users/",
		`{"email":"bob@x.com","username":"bob","password":"pw","roles":"admin","is_active":false}`)
	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != "2" || resp["roles"] != "admin" || resp["is_active"] != false {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if _, ok := resp["hashed_password"]; ok {
		t.Fatal("password hash leaked")
	}
}

func TestUserHandler_Create_Validation(t *testing.T) {
	e := newTestEcho()
	stub := &stubAccountService{
		createFn: func(ctx context.Context, actor *domain.Account, in ports.CreateAccountInput) (*domain.Account, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewUserHandler(stub)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"not json", "not-json", http.StatusBadRequest},
		{"missing password", `{"email":"a@x.com","username":"a"}`, http.StatusUnprocessableEntity},
		{"bad email", `{"email":"nope","username":"a","password":"pw"}`, http.StatusUnprocessableEntity},
		{"password over 72 bytes", `{"email":"a@x.com","username":"a","password":"` + strings.Repeat("p", 80) + `"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := jsonContext(e, http.MethodPost, "/users/", tt.body)
			expectHTTPError(t, handler.Create(c), tt.code)
		})
	}
}

func TestUserHandler_Create_Roles(t *testing.T) {
	e := newTestEcho()
	var got domain.Role
	handler := NewUserHandler(&stubAccountService{
		createFn: func(ctx context.Context, actor *domain.Account, in ports.CreateAccountInput) (*domain.Account, error) {
			got = in.Role
			return &domain.Account{ID: "2", Username: in.Username, Role: in.Role}, nil
		},
	})

	tests := []struct {
		roles string
		want  domain.Role
	}{
		{"", domain.RoleUser},
		{"admin", domain.RoleAdmin},
		{"ADMIN", domain.RoleAdmin},
		{"SuperAdmin", domain.RoleSuperadmin},
	}
	for _, tt := range tests {
		t.Run("roles="+tt.roles, func(t *testing.T) {
			c, _ := jsonContext(e, http.MethodPost, "/users/",
				`{"email":"a@x.com","username":"a","password":"pw","roles":"`+tt.roles+`"}`)
			if err := handler.Create(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("role = %q, want %q", got, tt.want)
			}
		})
	}

	c, _ := jsonContext(e, http.MethodPost, "/users/", `{"email":"a@x.com","username":"a","password":"pw","roles":"owner"}`)
	if err := handler.Create(c); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestUserHandler_PasswordTooLong(t *testing.T) {
	e := newTestEcho()
	handler := NewUserHandler(&stubAccountService{
		passwordFn: func(ctx context.Context, actor *domain.Account, current, next string) error {
			t.Fatalf("should not be called")
			return nil
		},
	})

	c, _ := jsonContext(e, http.MethodPatch, "/users/me/password",
		`{"current_password":"old","new_password":"`+strings.Repeat("p", 73)+`"}`)
	err := handler.UpdatePasswordMe(c)
	expectHTTPError(t, err, http.StatusUnprocessableEntity)
	if !strings.Contains(err.Error(), "new_password must be at most 72") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestUserHandler_Create_RequiresAccount(t *testing.T) {
	e := newTestEcho()
	handler := NewUserHandler(&stubAccountService{})

	req := httptest.NewRequest(http.MethodPost, "/users/", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	expectHTTPError(t, handler.Create(e.NewContext(req, httptest.NewRecorder())), http.StatusUnauthorized)
}

func TestUserHandler_List(t *testing.T) {
	e := newTestEcho()
	var gotSkip, gotLimit int
	stub := &stubAccountService{
		listFn: func(ctx context.Context, skip, limit int) (*ports.AccountPage, error) {
			gotSkip, gotLimit = skip, limit
			return &ports.AccountPage{Items: []*domain.Account{admin}, Total: 7}, nil
		},
	}
	handler := NewUserHandler(stub)

	t.Run("defaults", func(t *testing.T) {
		c, rec := jsonContext(e, http.MethodGet, "/users/", "")
		if err := handler.List(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if gotSkip != 0 || gotLimit != 100 {
			t.Fatalf("skip=%d limit=%d", gotSkip, gotLimit)
		}
		if !strings.Contains(rec.Body.String(), `"total":7`) {
			t.Fatalf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("explicit", func(t *testing.T) {
		c, _ := jsonContext(e, http.MethodGet, "/users/?skip=5&limit=10", "")
		if err := handler.List(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if gotSkip != 5 || gotLimit != 10 {
			t.Fatalf("skip=%d limit=%d", gotSkip, gotLimit)
		}
	})

	for _, q := range []string{"skip=x", "limit=-1"} {
		t.Run("rejects "+q, func(t *testing.T) {
			c, _ := jsonContext(e, http.MethodGet, "/users/?"+q, "")
			expectHTTPError(t, handler.List(c), http.StatusUnprocessableEntity)
		})
	}
}

func TestUserHandler_Me(t *testing.T) {
	e := newTestEcho()
	handler := NewUserHandler(&stubAccountService{})

	c, rec := jsonContext(e, http.MethodGet, "/users/me", "")
	if err := handler.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"username":"root"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestUserHandler_UpdateMe(t *testing.T) {
	e := newTestEcho()
	stub := &stubAccountService{
		updateFn: func(ctx context.Context, actor *domain.Account, in ports.UpdateProfileInput) (*domain.Account, error) {
			if in.Email == "taken@x.com" {
				return nil, domain.ErrConflict
			}
			updated := *actor
			updated.Username = in.Username
			return &updated, nil
		},
	}
	handler := NewUserHandler(stub)

	c, rec := jsonContext(e, http.MethodPatch, "/users/me", `{"username":"root2"}`)
	if err := handler.UpdateMe(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"username":"root2"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	c, _ = jsonContext(e, http.MethodPatch, "/users/me", `{"email":"taken@x.com"}`)
	if err := handler.UpdateMe(c); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	c, _ = jsonContext(e, http.MethodPatch, "/users/me", `{"email":"bad"}`)
	expectHTTPError(t, handler.UpdateMe(c), http.StatusUnprocessableEntity)
}

func TestUserHandler_UpdatePasswordMe(t *testing.T) {
	e := newTestEcho()
	stub := &stubAccountService{
		passwordFn: func(ctx context.Context, actor *domain.Account, current, next string) error {
			if current != "old" {
				return domain.ErrIncorrectPassword
			}
			return nil
		},
	}
	handler := NewUserHandler(stub)

	c, rec := jsonContext(e, http.MethodPatch, "/users/me/password", `{"current_password":"old","new_password":"new"}`)
	if err := handler.UpdatePasswordMe(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Password updated successfully") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	c, _ = jsonContext(e, http.MethodPatch, "/users/me/password", `{"current_password":"wrong","new_password":"new"}`)
	if err := handler.UpdatePasswordMe(c); !errors.Is(err, domain.ErrIncorrectPassword) {
		t.Fatalf("expected ErrIncorrectPassword, got %v", err)
	}
}

func TestUserHandler_Moderation(t *testing.T) {
	e := newTestEcho()
	stub := &stubAccountService{
		getFn: func(ctx context.Context, id string) (*domain.Account, error) {
			if id != "2" {
				return nil, domain.ErrAccountNotFound
			}
			return &domain.Account{ID: id, Username: "bob", Role: domain.RoleUser, IsActive: true}, nil
		},
		disableFn: func(ctx context.Context, actor *domain.Account, id string) (*domain.Account, error) {
			if id == actor.ID {
				return nil, domain.ErrSelfActionForbidden
			}
			return &domain.Account{ID: id, Username: "bob", Role: domain.RoleUser}, nil
		},
		deleteFn: func(ctx context.Context, actor *domain.Account, id string) (*domain.Account, error) {
			return &domain.Account{ID: id, Username: "bob", Role: domain.RoleUser, IsDeleted: true}, nil
		},
	}
	handler := NewUserHandler(stub)

	withID := func(method, id string) (echo.Context, *httptest.ResponseRecorder) {
		c, rec := jsonContext(e, method, "/", "")
		c.SetParamNames("id")
		c.SetParamValues(id)
		return c, rec
	}

	c, rec := withID(http.MethodGet, "2")
	if err := handler.Get(c); err != nil || !strings.Contains(rec.Body.String(), `"username":"bob"`) {
		t.Fatalf("get: err=%v body=%s", err, rec.Body.String())
	}

	c, _ = withID(http.MethodGet, "9")
	if err := handler.Get(c); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	c, rec = withID(http.MethodPatch, "2")
	if err := handler.Disable(c); err != nil || !strings.Contains(rec.Body.String(), `"is_active":false`) {
		t.Fatalf("disable: err=%v body=%s", err, rec.Body.String())
	}

	c, _ = withID(http.MethodPatch, admin.ID)
	if err := handler.Disable(c); !errors.Is(err, domain.ErrSelfActionForbidden) {
		t.Fatalf("expected ErrSelfActionForbidden, got %v", err)
	}

	c, rec = withID(http.MethodDelete, "2")
	if err := handler.Delete(c); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("delete: err=%v code=%d", err, rec.Code)
	}
}

func TestUtilsHandler_TestEmail(t *testing.T) {
	e := newTestEcho()
	var sent string
	handler := NewUtilsHandler(&stubAccountService{
		testMailFn: func(ctx context.Context, to string) error {
			sent = to
			return nil
		},
	})

	c, rec := jsonContext(e, http.MethodPost, "/utils/test-email/?email_to=ops@x.com", "")
	if err := handler.TestEmail(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated || sent != "ops@x.com" {
		t.Fatalf("code=%d sent=%q", rec.Code, sent)
	}

	c, _ = jsonContext(e, http.MethodPost, "/utils/test-email/", "")
	expectHTTPError(t, handler.TestEmail(c), http.StatusUnprocessableEntity)

	c, _ = jsonContext(e, http.MethodPost, "/utils/test-email/?email_to=nope", "")
	err := handler.TestEmail(c)
	expectHTTPError(t, err, http.StatusUnprocessableEntity)
	if !strings.Contains(err.Error(), "email_to must be a valid email") {
		t.Fatalf("unexpected message: %v", err)
	}
}
