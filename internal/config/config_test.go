package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.False(t, cfg.RestrictDeleteToOwner)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, time.Hour, cfg.CacheExpiry())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.IsDevelopment())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("RESTRICT_DELETE_TO_OWNER", "true")
	t.Setenv("CORS_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("GO_ENV", "production")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.True(t, cfg.RestrictDeleteToOwner)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.True(t, cfg.IsProduction())
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "not-a-port")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "HTTP_PORT")
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		HTTPPort:  70000,
		LogLevel:  "verbose",
		LogFormat: "xml",
		JWTSecret: "short",
		JWTExpiry: time.Hour,
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_PORT")
	assert.Contains(t, err.Error(), "LOG_LEVEL")
	assert.Contains(t, err.Error(), "LOG_FORMAT")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}
