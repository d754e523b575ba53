package auth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrEmailTaken = errors.New("email already registered")
	ErrNoUser     = errors.New("user not found")
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type UserStore interface {
	Create(ctx context.Context, u User) error
	GetByEmail(ctx context.Context, email string) (User, error)
}
