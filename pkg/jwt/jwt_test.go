package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

func TestGenerateAndParse(t *testing.T) {
	m := NewManager("test-secret", "library")

	token, err := m.GenerateToken(7, RoleLibrarian, time.Hour)
	require.NoError(t, err)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.True(t, claims.IsLibrarian())
	assert.NotEmpty(t, claims.ID, "应包含jti")
	assert.InDelta(t, time.Hour.Seconds(), claims.RemainingTTL(time.Now()).Seconds(), 5)
}

func TestParseInvalid(t *testing.T) {
	m := NewManager("test-secret", "library")

	t.Run("过期", func(t *testing.T) {
		token, err := m.GenerateToken(7, RoleReader, -time.Minute)
		require.NoError(t, err)
		_, err = m.ParseToken(token)
		assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
	})

	t.Run("密钥不匹配", func(t *testing.T) {
		token, err := NewManager("other-secret", "library").GenerateToken(7, RoleReader, time.Hour)
		require.NoError(t, err)
		_, err = m.ParseToken(token)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("签发方不匹配", func(t *testing.T) {
		token, err := NewManager("test-secret", "elsewhere").GenerateToken(7, RoleReader, time.Hour)
		require.NoError(t, err)
		_, err = m.ParseToken(token)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("格式错误", func(t *testing.T) {
		_, err := m.ParseToken("not-a-jwt")
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}
