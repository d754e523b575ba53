package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrBadCredentials = errors.New("invalid email or password")
	ErrInvalidInput   = errors.New("name, email and a password of at least 6 characters are required")
)

type Service struct {
	Users  UserStore
	Tokens TokenStore
}

// Register creates a customer account and logs it in.
func (s *Service) Register(ctx context.Context, name, email, password string) (User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || len(password) < 6 {
		return User{}, "", ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, "", err
	}
	u := User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         RoleCustomer,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return User{}, "", err
	}
	token, err := s.Tokens.Issue(ctx, identityOf(u))
	if err != nil {
		return User{}, "", err
	}
	return u, token, nil
}

// Login verifies the password and issues a fresh token. Wrong email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, ErrNoUser) {
		return User{}, "", ErrBadCredentials
	}
	if err != nil {
		return User{}, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, "", ErrBadCredentials
	}
	token, err := s.Tokens.Issue(ctx, identityOf(u))
	if err != nil {
		return User{}, "", err
	}
	return u, token, nil
}

func identityOf(u User) Identity {
	return Identity{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
