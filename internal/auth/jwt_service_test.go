package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/anoixa/taskboard/database/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewJWTService_RejectsShortSecret(t *testing.T) {
	_, err := NewJWTService("short", time.Hour)
	assert.Error(t, err)
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc, err := NewJWTService(testSecret, time.Hour)
	require.NoError(t, err)

	token, expiry, err := svc.GenerateToken(&models.User{ID: 7, Username: "ana", Role: models.RoleManager})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, 5*time.Second)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "ana", claims.Username)
	assert.Equal(t, models.RoleManager, claims.Role)
}

func TestJWTService_DefaultRole(t *testing.T) {
	svc, err := NewJWTService(testSecret, time.Hour)
	require.NoError(t, err)

	token, _, err := svc.GenerateToken(&models.User{ID: 1, Username: "bo"})
	require.NoError(t, err)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, claims.Role)
}

func TestJWTService_Rejects(t *testing.T) {
	svc, err := NewJWTService(testSecret, time.Hour)
	require.NoError(t, err)

	other, err := NewJWTService(strings.Repeat("x", 32), time.Hour)
	require.NoError(t, err)
	foreign, _, err := other.GenerateToken(&models.User{ID: 1, Username: "eve"})
	require.NoError(t, err)

	expired, err := NewJWTService(testSecret, time.Hour)
	require.NoError(t, err)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, err := expired.GenerateToken(&models.User{ID: 1, Username: "eve"})
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1, Type: tokenTypeAccess}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":        "not-a-token",
		"wrong secret":   foreign,
		"expired":        stale,
		"none algorithm": none,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ParseToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
