package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUsers struct {
	byEmail map[string]User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byEmail: map[string]User{}} }

func (f *fakeUsers) Create(_ context.Context, u User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return ErrEmailTaken
	}
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return User{}, ErrNoUser
	}
	return u, nil
}

type fakeTokens struct {
	issued []Identity
}

func (f *fakeTokens) Issue(_ context.Context, id Identity) (string, error) {
	f.issued = append(f.issued, id)
	return "tok-123", nil
}

func (f *fakeTokens) Verify(_ context.Context, token string) (Identity, error) {
	if token != "tok-123" || len(f.issued) == 0 {
		return Identity{}, ErrInvalidToken
	}
	return f.issued[len(f.issued)-1], nil
}

func TestRegister_CreatesCustomerAndIssuesToken(t *testing.T) {
	users := newFakeUsers()
	tokens := &fakeTokens{}
	svc := &Service{Users: users, Tokens: tokens}

	u, token, err := svc.Register(context.Background(), "Maria", "Maria@Example.com", "secret1")

	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
	assert.Equal(t, RoleCustomer, u.Role)
	assert.Equal(t, "maria@example.com", u.Email, "email is normalized")
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")))
	require.Len(t, tokens.issued, 1)
	assert.Equal(t, u.ID, tokens.issued[0].UserID)
}

func TestRegister_Validation(t *testing.T) {
	svc := &Service{Users: newFakeUsers(), Tokens: &fakeTokens{}}

	tests := []struct {
		name, userName, email, password string
	}{
		{"missing name", "", "a@b.com", "secret1"},
		{"missing email", "Maria", "", "secret1"},
		{"short password", "Maria", "a@b.com", "12345"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Register(context.Background(), tc.userName, tc.email, tc.password)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := &Service{Users: newFakeUsers(), Tokens: &fakeTokens{}}

	_, _, err := svc.Register(context.Background(), "Maria", "maria@example.com", "secret1")
	require.NoError(t, err)
	_, _, err = svc.Register(context.Background(), "Other", "maria@example.com", "secret2")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	users := newFakeUsers()
	svc := &Service{Users: users, Tokens: &fakeTokens{}}
	_, _, err := svc.Register(context.Background(), "Maria", "maria@example.com", "secret1")
	require.NoError(t, err)

	t.Run("correct password", func(t *testing.T) {
		u, token, err := svc.Login(context.Background(), "maria@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, "tok-123", token)
		assert.Equal(t, "Maria", u.Name)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(context.Background(), "maria@example.com", "nope")
		assert.ErrorIs(t, err, ErrBadCredentials)
	})

	t.Run("unknown email gets the same error", func(t *testing.T) {
		_, _, err := svc.Login(context.Background(), "ghost@example.com", "secret1")
		assert.ErrorIs(t, err, ErrBadCredentials)
	})
}
