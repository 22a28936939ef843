package service

import (
	"alcyxob/fitlog-bot/internal/clock"
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func adminHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestLoginIssuesAdminToken(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	svc := NewAuthService("admin", adminHash(t, "s3cret-pass"), "jwt-secret", time.Hour, clock.NewManual(now))

	token, err := svc.Login(context.Background(), "admin", "s3cret-pass")
	require.NoError(t, err)

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(svc.GetJWTSecret()), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "admin", claims.UserID)
	assert.WithinDuration(t, now.Add(time.Hour), claims.ExpiresAt.Time, time.Second)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := NewAuthService("admin", adminHash(t, "s3cret-pass"), "jwt-secret", time.Hour, nil)
	ctx := context.Background()

	tests := []struct {
		name, user, pass string
	}{
		{"wrong password", "admin", "nope"},
		{"wrong user", "root", "s3cret-pass"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.user, tt.pass)
			assert.ErrorIs(t, err, ErrAuthenticationFailed)
		})
	}
}

func TestLoginDisabledWithoutAccount(t *testing.T) {
	svc := NewAuthService("", "", "jwt-secret", 0, nil)
	_, err := svc.Login(context.Background(), "admin", "x")
	assert.ErrorIs(t, err, ErrAdminDisabled)
}

func TestNewAuthServicePanicsWithoutSecret(t *testing.T) {
	assert.Panics(t, func() { NewAuthService("admin", "hash", "", time.Hour, nil) })
}
