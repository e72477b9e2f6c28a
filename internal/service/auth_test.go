package service

import (
	"context"
	"testing"

	"workspace-service/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Auth.Register(ctx, RegisterInput{Name: "Alice", Email: " Alice@Example.com ", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.NotEmpty(t, res.SessionID)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.NotEqual(t, "correct-horse", res.User.Password)

	login, err := f.svc.Auth.Login(ctx, "ALICE@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)
	assert.NotEqual(t, res.SessionID, login.SessionID)

	_, err = f.svc.Auth.Login(ctx, "alice@example.com", "wrong-password")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	_, err = f.svc.Auth.Login(ctx, "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"missing name", RegisterInput{Email: "a@example.com", Password: "12345678"}},
		{"missing email", RegisterInput{Name: "a", Password: "12345678"}},
		{"bad email", RegisterInput{Name: "a", Email: "not-an-email", Password: "12345678"}},
		{"short password", RegisterInput{Name: "a", Email: "a@example.com", Password: "1234567"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Auth.Register(ctx, tt.in)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}

	_, err := f.svc.Auth.Register(ctx, RegisterInput{Name: "a", Email: "a@example.com", Password: "12345678"})
	require.NoError(t, err)
	_, err = f.svc.Auth.Register(ctx, RegisterInput{Name: "b", Email: "A@example.com", Password: "12345678"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestAuthenticateAndLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.svc.Auth.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	id, err := f.svc.Auth.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, id.UserID)
	assert.Equal(t, res.SessionID, id.SessionID)

	current, err := f.svc.Auth.Current(ctx, id.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", current.Name)

	require.NoError(t, f.svc.Auth.Logout(ctx, id.SessionID))

	// The token is still well-formed but its session is gone
	_, err = f.svc.Auth.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	assert.ErrorIs(t, f.svc.Auth.Logout(ctx, id.SessionID), apperror.ErrUnauthorized)

	_, err = f.svc.Auth.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}
