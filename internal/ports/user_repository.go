package ports

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

type User struct {
	ID           uint64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type UserCreate struct {
	Name         string
	Email        string
	PasswordHash string
}

type UserRepository interface {
	CreateUser(ctx context.Context, user UserCreate) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUser(ctx context.Context, id uint64) (User, error)
}
