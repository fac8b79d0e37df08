package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundcrm/internal/domain"
)

func TestAuthService_LoginSuccess(t *testing.T) {
	env := newTestEnv(t)
	seeded := env.seedUser(t, "tanaka@bank.example", "Tanaka Yuki", domain.RoleStaff, "password123")

	u, token, err := env.auth.Login(context.Background(), "tanaka@bank.example", "password123")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, u.ID)
	require.NotEmpty(t, token)

	parsed, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	claims := parsed.Claims.(*SessionClaims)
	assert.Equal(t, "tanaka@bank.example", claims.Email)
	assert.Equal(t, domain.RoleStaff, claims.Role)

	// The login is in the chain and last_login_at is stamped.
	entries := env.lastAuditEntries(t, 1)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionLogin, entries[0].Action)
	assert.Equal(t, domain.EntitySession, entries[0].EntityType)
	require.NotNil(t, entries[0].EntityName)
	assert.Equal(t, "tanaka@bank.example", *entries[0].EntityName)

	refreshed, err := env.users.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.NotNil(t, refreshed.LastLoginAt)
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "tanaka@bank.example", "Tanaka Yuki", domain.RoleStaff, "password123")

	_, _, err := env.auth.Login(context.Background(), "tanaka@bank.example", "wrong")
	require.Error(t, err)
	var unauthorized *domain.UnauthorizedError
	assert.ErrorAs(t, err, &unauthorized)

	// Unknown email reads the same.
	_, _, err2 := env.auth.Login(context.Background(), "nobody@bank.example", "password123")
	require.Error(t, err2)
	assert.Equal(t, err.Error(), err2.Error())
}

func TestAuthService_LoginInactiveUser(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "tanaka@bank.example", "Tanaka Yuki", domain.RoleStaff, "password123")
	require.NoError(t, env.users.Update(context.Background(), u.ID, map[string]any{"is_active": 0}))

	_, _, err := env.auth.Login(context.Background(), "tanaka@bank.example", "password123")
	require.Error(t, err)
	var unauthorized *domain.UnauthorizedError
	assert.ErrorAs(t, err, &unauthorized)
}

func TestAuthService_LoginFailsWhenAuditFails(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "tanaka@bank.example", "Tanaka Yuki", domain.RoleStaff, "password123")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	brokenAudit := NewAuditService(&failingAuditRepo{}, logger)
	auth := NewAuthService(env.users, brokenAudit, []byte("test-secret"), defaultTestTTL)

	_, token, err := auth.Login(context.Background(), "tanaka@bank.example", "password123")
	require.Error(t, err)
	assert.Empty(t, token)
}

func TestAuthService_Logout(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "tanaka@bank.example", "Tanaka Yuki", domain.RoleStaff, "password123")

	require.NoError(t, env.auth.Logout(ctxAs(u)))

	entries := env.lastAuditEntries(t, 1)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionLogout, entries[0].Action)
}
