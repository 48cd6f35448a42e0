package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/99minutos/account-service/internal/core/domain"
)

func TestMongoAccount_RoundTrip(t *testing.T) {
	added := time.Date(2026, 2, 20, 16, 31, 26, 0, time.UTC)
	in := &domain.Account{
		Username:       "bob",
		Email:          "bob@x.com",
		HashedPassword: "$2a$10$abc",
		Role:           domain.RoleAdmin,
		IsActive:       true,
		AddedBy:        "admin",
		TimeAdded:      added,
	}

	doc := toMongo(in)
	doc.ID = primitive.NewObjectID()
	out := doc.toDomain()

	if out.ID != doc.ID.Hex() {
		t.Errorf("id = %q, want %q", out.ID, doc.ID.Hex())
	}
	if out.Username != in.Username || out.Email != in.Email || out.Role != in.Role {
		t.Errorf("identity fields lost: %+v", out)
	}
	if !out.IsActive || out.IsDeleted {
		t.Errorf("flags lost: %+v", out)
	}
	if !out.TimeAdded.Equal(added) || out.AddedBy != "admin" {
		t.Errorf("audit fields lost: %+v", out)
	}
}

func TestAccountRepository_MalformedIDIsNotFound(t *testing.T) {
	// No collection is touched: the hex check fails first.
	r := &AccountRepository{}
	if _, err := r.FindByID(context.Background(), "not-an-object-id"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if err := r.Update(context.Background(), &domain.Account{ID: "42"}); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
