package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/tenancy-service/pkg/jwtutil"
	"golang.org/x/crypto/bcrypt"
)

func TestSupervisorAuth(t *testing.T) {
	tokens, err := jwtutil.NewJWTUtil("test-signing-key", 30*24*time.Hour)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	require.NoError(t, err)
	auth := NewSupervisorAuth(string(hash), tokens)

	t.Run("correct secret", func(t *testing.T) {
		token, err := auth.IssueToken("letmein")
		require.NoError(t, err)

		claims, err := tokens.ValidateToken(token)
		require.NoError(t, err)
		assert.True(t, claims.IsSupervisor())
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := auth.IssueToken("guess")
		assert.ErrorIs(t, err, ErrInvalidSupervisorSecret)
	})

	t.Run("not configured", func(t *testing.T) {
		_, err := NewSupervisorAuth("", tokens).IssueToken("letmein")
		assert.ErrorIs(t, err, ErrSupervisorDisabled)
	})
}
