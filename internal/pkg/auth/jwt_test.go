package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "storefront-test"},
		JWT: config.JWTConfig{
			Secret:             "test-secret-key-for-jwt-signing",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 7 * 24 * time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: 4},
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	mgr := NewJWTManager(testConfig())

	token, err := mgr.GenerateAccessToken(42, "jane@example.com", true)
	require.NoError(t, err)

	claims, err := mgr.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "access", claims.TokenType)
}

func TestTokenTypeIsEnforced(t *testing.T) {
	mgr := NewJWTManager(testConfig())

	access, err := mgr.GenerateAccessToken(1, "a@example.com", false)
	require.NoError(t, err)
	refresh, err := mgr.GenerateRefreshToken(1, "a@example.com")
	require.NoError(t, err)

	_, err = mgr.ValidateRefreshToken(access)
	assert.Error(t, err)

	_, err = mgr.ValidateAccessToken(refresh)
	assert.Error(t, err)

	claims, err := mgr.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin, "refresh tokens never carry admin status")
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	mgr := NewJWTManager(testConfig())

	otherCfg := testConfig()
	otherCfg.JWT.Secret = "a-different-secret-entirely"
	other := NewJWTManager(otherCfg)

	token, err := mgr.GenerateAccessToken(1, "a@example.com", false)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)

	_, err = mgr.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.AccessTokenExpiry = -time.Minute
	mgr := NewJWTManager(cfg)

	token, err := mgr.GenerateAccessToken(1, "a@example.com", false)
	require.NoError(t, err)

	_, err = mgr.ValidateToken(token)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc.def.ghi", ExtractTokenFromHeader("Bearer abc.def.ghi"))
	assert.Equal(t, "", ExtractTokenFromHeader("abc.def.ghi"))
	assert.Equal(t, "", ExtractTokenFromHeader("Basic abc"))
	assert.Equal(t, "", ExtractTokenFromHeader(""))
}

func TestPasswordManager(t *testing.T) {
	mgr := NewPasswordManager(testConfig())

	hash, err := mgr.HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.NoError(t, mgr.VerifyPassword("correct horse battery", hash))
	assert.Error(t, mgr.VerifyPassword("wrong password", hash))
}

func TestPasswordValidationBounds(t *testing.T) {
	mgr := NewPasswordManager(testConfig())

	_, err := mgr.HashPassword("short")
	assert.Error(t, err)

	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}
	_, err = mgr.HashPassword(string(long))
	assert.Error(t, err)
}
