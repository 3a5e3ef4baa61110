package auth

import (
	"testing"
	"time"

	"alias_gateway/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret: []byte("test-secret"),
		Admin: config.AdminConfig{
			User:     "admin",
			TokenTTL: 15 * time.Minute,
		},
	}
}

func TestGenerateAdminJWT(t *testing.T) {
	cfg := testConfig()

	token, exp, err := GenerateAdminJWT("admin", cfg)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Greater(t, exp, time.Now().Unix())
	assert.LessOrEqual(t, exp, time.Now().Add(16*time.Minute).Unix())
}

func TestValidateAdminJWT(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		cfg := testConfig()

		token, _, err := GenerateAdminJWT("admin", cfg)
		require.NoError(t, err)

		claims, err := ValidateAdminJWT(token, cfg)
		require.NoError(t, err)
		assert.Equal(t, "admin", claims.User)
		assert.Equal(t, "admin", claims.Subject)
	})

	t.Run("rejects wrong secret", func(t *testing.T) {
		cfg := testConfig()

		token, _, err := GenerateAdminJWT("admin", cfg)
		require.NoError(t, err)

		otherCfg := testConfig()
		otherCfg.JWTSecret = []byte("other-secret")

		_, err = ValidateAdminJWT(token, otherCfg)
		assert.Error(t, err)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		cfg := testConfig()
		cfg.Admin.TokenTTL = -1 * time.Minute

		token, _, err := GenerateAdminJWT("admin", cfg)
		require.NoError(t, err)

		_, err = ValidateAdminJWT(token, cfg)
		assert.Error(t, err)
	})

	t.Run("rejects unsigned token", func(t *testing.T) {
		cfg := testConfig()

		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, AdminClaims{User: "admin"})
		tokenString, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = ValidateAdminJWT(tokenString, cfg)
		assert.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		cfg := testConfig()

		_, err := ValidateAdminJWT("not-a-token", cfg)
		assert.Error(t, err)
	})
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "hunter2"))
}
