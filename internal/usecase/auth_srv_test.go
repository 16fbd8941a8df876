package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"account-service/internal/data/entity"
	"account-service/internal/dto/request"
	"account-service/pkg/apperror"
	"account-service/pkg/utils"
)

func newAuthFixture(t *testing.T, users ...*entity.User) (AuthService, *memUsers, *memSessions) {
	t.Helper()
	userRepo := newMemUsers(users...)
	sessionRepo := newMemSessions()
	cfg := &utils.Config{Session: utils.SessionConfig{TTL: time.Hour}}
	return NewAuthService(userRepo, sessionRepo, cfg, zap.NewNop()), userRepo, sessionRepo
}

func seedUser(t *testing.T, email, password string, active bool) *entity.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	return &entity.User{
		Base:         entity.Base{ID: uuid.New(), CreatedAt: time.Now()},
		Name:         "Existing",
		Email:        email,
		PasswordHash: hash,
		Role:         entity.RoleUser,
		IsActive:     active,
	}
}

func TestAuthService_Register(t *testing.T) {
	svc, users, _ := newAuthFixture(t)

	resp, err := svc.Register(context.Background(), &request.RegisterRequest{
		Name:     "Jane",
		Email:    "Jane@Example.com",
		Password: "secret123",
	}, request.ClientInfo{UserAgent: "test"})
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", resp.User.Email)
	assert.Equal(t, entity.RoleUser, resp.User.Role)
	assert.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.ExpiresAt)

	stored, err := users.FindByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
	assert.True(t, utils.CheckPasswordHash("secret123", stored.PasswordHash))
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	svc, _, _ := newAuthFixture(t, seedUser(t, "jane@example.com", "secret123", true))

	_, err := svc.Register(context.Background(), &request.RegisterRequest{
		Name:     "Jane",
		Email:    "jane@example.com",
		Password: "secret123",
	}, request.ClientInfo{})
	assert.True(t, apperror.Is(err, apperror.KindConflict))
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Register(context.Background(), &request.RegisterRequest{Email: "nope"}, request.ClientInfo{})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestAuthService_Login(t *testing.T) {
	user := seedUser(t, "jane@example.com", "secret123", true)
	svc, _, _ := newAuthFixture(t, user)
	ctx := context.Background()

	resp, err := svc.Login(ctx, &request.LoginRequest{Email: "jane@example.com", Password: "secret123"}, request.ClientInfo{})
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), resp.User.ID)

	authed, err := svc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
}

func TestAuthService_LoginFailures(t *testing.T) {
	svc, _, _ := newAuthFixture(t,
		seedUser(t, "jane@example.com", "secret123", true),
		seedUser(t, "old@example.com", "secret123", false),
	)
	ctx := context.Background()

	tests := []struct {
		name  string
		email string
		pass  string
		kind  apperror.Kind
	}{
		{"unknown email", "ghost@example.com", "secret123", apperror.KindUnauthorized},
		{"wrong password", "jane@example.com", "wrong-pass", apperror.KindUnauthorized},
		{"deactivated", "old@example.com", "secret123", apperror.KindForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, &request.LoginRequest{Email: tt.email, Password: tt.pass}, request.ClientInfo{})
			assert.True(t, apperror.Is(err, tt.kind), "got %v", err)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	svc, _, _ := newAuthFixture(t, seedUser(t, "jane@example.com", "secret123", true))
	ctx := context.Background()

	resp, err := svc.Login(ctx, &request.LoginRequest{Email: "jane@example.com", Password: "secret123"}, request.ClientInfo{})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.Token))

	_, err = svc.Authenticate(ctx, resp.Token)
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))

	err = svc.Logout(ctx, resp.Token)
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
}

func TestAuthService_AuthenticateRejectsGarbage(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Authenticate(context.Background(), "not-a-uuid")
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))

	_, err = svc.Authenticate(context.Background(), uuid.NewString())
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
}
