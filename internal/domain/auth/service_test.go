package auth_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agriconnect/agriconnect/internal/domain/auth"
	"github.com/agriconnect/agriconnect/internal/infra/userrepo"
	apperrors "github.com/agriconnect/agriconnect/pkg/errors"
)

func newTestService() auth.Service {
	cfg := auth.Config{
		Secret:          "test-secret",
		TokenTTL:        time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return auth.NewService(cfg, userrepo.NewMemoryRepository(), logger)
}

func registerReq() auth.RegisterRequest {
	return auth.RegisterRequest{
		Email:    "ramesh@example.com",
		Username: "ramesh_k",
		Password: "longenough",
		Region:   "Jalgaon",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService()

	user, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "ramesh@example.com", user.Email)
	require.Equal(t, "ramesh_k", user.Username)
	// Display name defaults to the username when omitted.
	require.Equal(t, "ramesh_k", user.DisplayName)
	require.Equal(t, auth.RoleUser, user.Role)
	require.Equal(t, "Jalgaon", user.Region)

	resp, err := svc.Login(context.Background(), auth.LoginRequest{Email: "Ramesh@Example.com", Password: "longenough"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, user.ID, resp.User.ID)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService()

	cases := []auth.RegisterRequest{
		{Email: "not-an-email", Username: "ramesh_k", Password: "longenough"},
		{Email: "a@b.com", Username: "r", Password: "longenough"},
		{Email: "a@b.com", Username: "has spaces", Password: "longenough"},
		{Email: "a@b.com", Username: "ramesh_k", Password: "short"},
	}
	for _, req := range cases {
		_, err := svc.Register(context.Background(), req)
		require.True(t, apperrors.IsCode(err, "invalid_input"), "request %+v", req)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService()

	_, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	dup := registerReq()
	dup.Username = "another"
	_, err = svc.Register(context.Background(), dup)
	require.True(t, apperrors.IsCode(err, "email_exists"))
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestService()

	_, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	dup := registerReq()
	dup.Email = "other@example.com"
	_, err = svc.Register(context.Background(), dup)
	require.True(t, apperrors.IsCode(err, "username_exists"))
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService()

	_, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), auth.LoginRequest{Email: "ramesh@example.com", Password: "wrongwrong"})
	require.True(t, apperrors.IsCode(err, "invalid_credentials"))
}

func TestLoginUnknownUser(t *testing.T) {
	svc := newTestService()

	_, err := svc.Login(context.Background(), auth.LoginRequest{Email: "nobody@example.com", Password: "whatever1"})
	require.True(t, apperrors.IsCode(err, "invalid_credentials"))
}

func TestValidateToken(t *testing.T) {
	svc := newTestService()

	_, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)
	resp, err := svc.Login(context.Background(), auth.LoginRequest{Email: "ramesh@example.com", Password: "longenough"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	require.Equal(t, resp.User.ID, claims.UserID)
	require.Equal(t, "ramesh@example.com", claims.Email)
	require.Equal(t, auth.RoleUser, claims.Role)

	// A refresh token must not pass access validation.
	_, err = svc.ValidateToken(context.Background(), resp.RefreshToken)
	require.True(t, apperrors.IsCode(err, "invalid_token"))

	_, err = svc.ValidateToken(context.Background(), "garbage.token.here")
	require.True(t, apperrors.IsCode(err, "invalid_token"))
}

func TestRefreshIssuesNewTokens(t *testing.T) {
	svc := newTestService()

	_, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)
	resp, err := svc.Login(context.Background(), auth.LoginRequest{Email: "ramesh@example.com", Password: "longenough"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, refreshed.Token)
	require.Equal(t, resp.User.ID, refreshed.User.ID)

	// An access token must not be accepted as a refresh token.
	_, err = svc.Refresh(context.Background(), resp.Token)
	require.True(t, apperrors.IsCode(err, "invalid_token"))
}

func TestProfile(t *testing.T) {
	svc := newTestService()

	user, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)

	got, err := svc.Profile(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, user.Username, got.Username)

	_, err = svc.Profile(context.Background(), "missing-id")
	require.True(t, apperrors.IsCode(err, "user_not_found"))
}
