package jwtutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUtil(t *testing.T) *JWTUtil {
	t.Helper()
	util, err := NewJWTUtil("test-signing-key", 30*24*time.Hour)
	require.NoError(t, err)
	return util
}

func TestNewJWTUtilRequiresKey(t *testing.T) {
	_, err := NewJWTUtil("", time.Hour)
	assert.Error(t, err)
}

func TestGenerateAndValidate(t *testing.T) {
	util := newTestUtil(t)

	token, err := util.GenerateToken("user-1", "9876543210", "prop-1")
	require.NoError(t, err)

	claims, err := util.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "9876543210", claims.Mobile)
	assert.Equal(t, "prop-1", claims.PropertyID)
	assert.False(t, claims.IsSupervisor())

	lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	assert.Equal(t, 30*24*time.Hour, lifetime)
}

func TestSupervisorToken(t *testing.T) {
	util := newTestUtil(t)

	token, err := util.GenerateSupervisorToken()
	require.NoError(t, err)

	claims, err := util.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, claims.IsSupervisor())
}

func TestValidateTokenFailuresAreUniform(t *testing.T) {
	util := newTestUtil(t)

	expired, err := newTestUtil(t).
		WithClock(func() time.Time { return time.Now().Add(-31 * 24 * time.Hour) }).
		GenerateToken("user-1", "9876543210", "prop-1")
	require.NoError(t, err)

	otherKey, err := NewJWTUtil("another-key", time.Hour)
	require.NoError(t, err)
	foreign, err := otherKey.GenerateToken("user-1", "9876543210", "prop-1")
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, UserClaims{UserID: "user-1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"expired":   expired,
		"wrong key": foreign,
		"malformed": "not.a.token",
		"empty":     "",
		"alg none":  unsigned,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			claims, err := util.ValidateToken(token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestValidateTokenUsesInjectedClock(t *testing.T) {
	t.Run("clock ahead of wall time expires the token", func(t *testing.T) {
		util := newTestUtil(t)
		token, err := util.GenerateToken("user-1", "9876543210", "prop-1")
		require.NoError(t, err)

		util.WithClock(func() time.Time { return time.Now().Add(31 * 24 * time.Hour) })
		_, err = util.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("clock behind wall time keeps the token valid", func(t *testing.T) {
		now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		util := newTestUtil(t).WithClock(func() time.Time { return now })

		token, err := util.GenerateToken("user-1", "9876543210", "prop-1")
		require.NoError(t, err)

		now = now.Add(time.Hour)
		claims, err := util.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)

		now = now.Add(30 * 24 * time.Hour)
		_, err = util.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
