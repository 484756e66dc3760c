package services

import (
	"context"
	"testing"
	"time"

	"chatline/auth"
	"chatline/errors"

	"github.com/stretchr/testify/require"
)

const testPassword = "Str0ng&Secret_42"

func TestAuthService_RegisterAndLogin(t *testing.T) {
	req := require.New(t)
	service := NewAuthService(newFakeUserRepo(), 1*time.Hour)

	// Given a successful registration
	token, user, err := service.Register("Alice", "alice@example.com", testPassword)
	req.NoError(err)
	req.NotEmpty(token)
	req.Equal("Alice", user.Name)

	// When logging in with the same credentials
	loginToken, loginUser, err := service.Login("alice@example.com", testPassword)

	// Then a valid token carrying the user identity is issued
	req.NoError(err)
	req.Equal(user.ID, loginUser.ID)
	claims, err := auth.ValidateToken(string(loginToken))
	req.NoError(err)
	req.Equal(user.ID, claims.UserID)
	req.Equal("Alice", claims.Name)
}

func TestAuthService_Register_WeakPasswordRejected(t *testing.T) {
	req := require.New(t)
	service := NewAuthService(newFakeUserRepo(), 1*time.Hour)

	_, _, err := service.Register("Alice", "alice@example.com", "alllowercasebutlong")

	req.ErrorIs(err, errors.ErrInvalidInput)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	req := require.New(t)
	service := NewAuthService(newFakeUserRepo(), 1*time.Hour)

	_, _, err := service.Register("Alice", "alice@example.com", testPassword)
	req.NoError(err)

	_, _, err = service.Register("Other Alice", "alice@example.com", testPassword)
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	req := require.New(t)
	service := NewAuthService(newFakeUserRepo(), 1*time.Hour)

	_, _, err := service.Register("Alice", "alice@example.com", testPassword)
	req.NoError(err)

	_, _, err = service.Login("alice@example.com", "Wrong&Password_42")
	req.ErrorIs(err, errors.ErrInvalidCredentials)

	_, _, err = service.Login("nobody@example.com", testPassword)
	req.ErrorIs(err, errors.ErrInvalidCredentials)
}

func TestUserService_Search_ExcludesRequester(t *testing.T) {
	req := require.New(t)
	repo := newFakeUserRepo()
	authService := NewAuthService(repo, 1*time.Hour)
	_, alice, err := authService.Register("Alice", "alice@example.com", testPassword)
	req.NoError(err)
	_, _, err = authService.Register("Bob", "bob@example.com", testPassword)
	req.NoError(err)

	users := NewUserService(repo)

	all, err := users.Search(context.Background(), alice.ID, "")
	req.NoError(err)
	req.Len(all, 1)
	req.Equal("Bob", all[0].Name)

	matches, err := users.Search(context.Background(), alice.ID, "alice")
	req.NoError(err)
	req.Empty(matches)
}
