package service

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lamdang/quizforge/config"
	"github.com/lamdang/quizforge/internal/apperr"
	"github.com/lamdang/quizforge/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService() (AuthService, *fakeUserRepo) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, &config.Config{JWTSecret: "test-secret"})
	return svc, repo
}

func TestRegisterIssuesToken(t *testing.T) {
	svc, repo := newTestAuthService()

	resp, err := svc.Register(dto.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "correct horse",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.Username)

	user, err := repo.FindByUsername("alice")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", user.PasswordHash)
}

func TestLoginRoundTrip(t *testing.T) {
	svc, _ := newTestAuthService()
	_, err := svc.Register(dto.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "correct horse",
	})
	require.NoError(t, err)

	resp, err := svc.Login(dto.LoginRequest{Username: "alice", Password: "correct horse"})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	claims := &AuthClaims{}
	token, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, resp.UserID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestAuthService()
	_, err := svc.Register(dto.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "correct horse",
	})
	require.NoError(t, err)

	_, err = svc.Login(dto.LoginRequest{Username: "alice", Password: "wrong"})

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := newTestAuthService()

	_, err := svc.Login(dto.LoginRequest{Username: "nobody", Password: "whatever"})

	require.Error(t, err)
	// Unknown user and wrong password read identically to the caller.
	assert.True(t, apperr.Is(err, apperr.NotFound))
}
