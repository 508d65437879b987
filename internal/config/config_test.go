package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/analytics_test")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load(t.Context())
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.Addr)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 168*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 168*time.Hour, cfg.InvitationTTL)
	assert.Equal(t, "http://localhost:3000", cfg.FrontendURL)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, int64(10485760), cfg.MaxUploadBytes)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.True(t, cfg.Development())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/analytics_test")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ADDR", ":8080")
	t.Setenv("APP_ENV", "production")
	t.Setenv("TOKEN_TTL", "24h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := Load(t.Context())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.False(t, cfg.Development())
}

func TestLoadRequiresSecrets(t *testing.T) {
	// t.Setenv records the original values for restoration; the vars are
	// then removed so required-field validation can trip.
	for _, key := range []string{"DB_DSN", "JWT_SECRET"} {
		t.Setenv(key, "placeholder")
		os.Unsetenv(key)
	}

	_, err := Load(t.Context())
	assert.Error(t, err)
}
