package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateAccessToken(t *testing.T) {
	cfg := testJWTConfig()

	t.Run("Round trip preserves subject", func(t *testing.T) {
		token, err := GenerateAccessToken(cfg, "user@example.com")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		subject, err := ValidateAccessToken(cfg, token)
		require.NoError(t, err)
		assert.Equal(t, "user@example.com", subject)
	})

	t.Run("Expired token is rejected", func(t *testing.T) {
		expired := JWTConfig{Secret: cfg.Secret, AccessTokenTTL: -1 * time.Minute}
		token, err := GenerateAccessToken(expired, "user@example.com")
		require.NoError(t, err)

		_, err = ValidateAccessToken(cfg, token)
		assert.Error(t, err)
	})

	t.Run("Token signed with different secret is rejected", func(t *testing.T) {
		other := JWTConfig{Secret: []byte("other-secret"), AccessTokenTTL: cfg.AccessTokenTTL}
		token, err := GenerateAccessToken(other, "user@example.com")
		require.NoError(t, err)

		_, err = ValidateAccessToken(cfg, token)
		assert.Error(t, err)
	})

	t.Run("Garbage token is rejected", func(t *testing.T) {
		_, err := ValidateAccessToken(cfg, "not.a.token")
		assert.Error(t, err)
	})

	t.Run("Unsigned token is rejected", func(t *testing.T) {
		// Заголовок {"alg":"none"} с пустой подписью
		_, err := ValidateAccessToken(cfg, "eyJhbGciOiJub25lIn0.eyJzdWIiOiJ1c2VyIn0.")
		assert.Error(t, err)
	})
}
