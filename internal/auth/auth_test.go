package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashutosh-Basnet/livelizzyapp/internal/config"
)

func testConfig() config.AuthConfig {
	return config.AuthConfig{
		AdminUsername: "admin",
		AdminPassword: "s3cret",
		JWTSecret:     "test-secret",
		JWTExpiration: time.Hour,
	}
}

func TestAuthenticate(t *testing.T) {
	s := NewService(testConfig())

	assert.NoError(t, s.Authenticate("admin", "s3cret"))
	assert.ErrorIs(t, s.Authenticate("admin", "wrong"), ErrInvalidCredentials)
	assert.ErrorIs(t, s.Authenticate("root", "s3cret"), ErrInvalidCredentials)
}

func TestTokenRoundTrip(t *testing.T) {
	s := NewService(testConfig())

	token, err := s.GenerateToken("admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "admin", claims.Role)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	s := NewService(testConfig())
	token, err := s.GenerateToken("admin")
	require.NoError(t, err)

	other := NewService(config.AuthConfig{
		AdminUsername: "admin",
		JWTSecret:     "different-secret",
		JWTExpiration: time.Hour,
	})

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateExpiredToken(t *testing.T) {
	cfg := testConfig()
	cfg.JWTExpiration = -time.Minute
	s := NewService(cfg)

	token, err := s.GenerateToken("admin")
	require.NoError(t, err)

	_, err = s.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRateLimiterBurst(t *testing.T) {
	rl := NewRateLimiter(60, 3)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		assert.NoError(t, rl.Allow("10.0.0.1"))
	}
	assert.ErrorIs(t, rl.Allow("10.0.0.1"), ErrRateLimitExceeded)

	// Other clients are unaffected
	assert.NoError(t, rl.Allow("10.0.0.2"))
}
