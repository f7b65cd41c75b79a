package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Run("Should validate a freshly issued token", func(t *testing.T) {
		token, err := GenerateToken("u1", "a@b.com", "User", "secret", time.Hour)
		require.NoError(t, err)

		claims, err := ValidateToken(token, "secret")
		require.NoError(t, err)

		assert.Equal(t, "u1", claims.UserID)
		assert.Equal(t, "a@b.com", claims.Email)
		assert.Equal(t, "User", claims.Role)
		assert.False(t, claims.PinVerified)
	})

	t.Run("Should reject a token signed with another secret", func(t *testing.T) {
		token, err := GenerateToken("u1", "a@b.com", "User", "secret", time.Hour)
		require.NoError(t, err)

		_, err = ValidateToken(token, "other")
		assert.Error(t, err)
	})

	t.Run("Should reject an expired token", func(t *testing.T) {
		token, err := GenerateToken("u1", "a@b.com", "User", "secret", -time.Minute)
		require.NoError(t, err)

		_, err = ValidateToken(token, "secret")
		assert.Error(t, err)
	})

	t.Run("Should carry the pin claim on a reissued token", func(t *testing.T) {
		base, err := GenerateToken("u1", "a@b.com", "User", "secret", time.Hour)
		require.NoError(t, err)
		claims, err := ValidateToken(base, "secret")
		require.NoError(t, err)

		pinToken, err := GeneratePinToken(claims, "secret", time.Hour)
		require.NoError(t, err)

		pinClaims, err := ValidateToken(pinToken, "secret")
		require.NoError(t, err)
		assert.True(t, pinClaims.PinVerified)
		assert.Equal(t, "u1", pinClaims.UserID)
	})
}
