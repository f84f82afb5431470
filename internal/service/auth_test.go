package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matenweekend/api/internal/domain"
)

func TestAuthService_SignupAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeUserRepo())

	created, err := svc.Signup(ctx, domain.User{
		Email:    "alice@example.com",
		Password: "secret1234",
		Name:     "Alice",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.NotEqual(t, "secret1234", created.Password, "password must be stored hashed")

	user, err := svc.Login(ctx, "alice@example.com", "secret1234")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
}

func TestAuthService_Signup_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeUserRepo())

	_, err := svc.Signup(ctx, domain.User{Email: "alice@example.com", Password: "secret1234"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, domain.User{Email: "alice@example.com", Password: "other12345"})
	assert.ErrorIs(t, err, ErrUserEmailExists)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeUserRepo())

	_, err := svc.Signup(ctx, domain.User{Email: "alice@example.com", Password: "secret1234"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrWrongPassword)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo())

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
