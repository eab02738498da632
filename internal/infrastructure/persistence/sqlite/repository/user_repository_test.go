package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/mkevin1491/fyp/internal/ports"
)

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	repo := NewUserRepository(setupDB(t))
	ctx := context.Background()

	created, err := repo.CreateUser(ctx, ports.UserCreate{Name: "Aina", Email: "Aina@Example.com ", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if created.Email != "aina@example.com" {
		t.Fatalf("CreateUser() email = %q", created.Email)
	}

	if _, err := repo.CreateUser(ctx, ports.UserCreate{Name: "Other", Email: "aina@example.com", PasswordHash: "x"}); !errors.Is(err, ports.ErrEmailTaken) {
		t.Fatalf("CreateUser(duplicate) error = %v, want ErrEmailTaken", err)
	}

	got, err := repo.GetUserByEmail(ctx, "AINA@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("GetUserByEmail() id = %d, want %d", got.ID, created.ID)
	}

	if _, err := repo.GetUser(ctx, 42); !errors.Is(err, ports.ErrUserNotFound) {
		t.Fatalf("GetUser() error = %v, want ErrUserNotFound", err)
	}
}
