package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "./app.db", cfg.DatabaseURL)
	assert.Equal(t, "test-secret", cfg.SecretKey)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.TemplateDir)
	assert.False(t, cfg.TemplateReload)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_MissingSecretKey(t *testing.T) {
	t.Setenv("SECRET_KEY", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SECRET_KEY", "s")
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("TEMPLATE_RELOAD", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.TemplateReload)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("SECRET_KEY", "s")
	t.Setenv("PORT", "not-a-number")

	_, err := Load()
	require.Error(t, err)
}

func TestConfig_AllowedOrigins(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: " https://a.example , ,https://b.example"}
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())

	cfg.CORSAllowedOrigins = ""
	assert.Nil(t, cfg.AllowedOrigins())
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=debug\nPORT=7000\n"), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("SECRET_KEY", "s")
	t.Setenv("PORT", "9999")
	t.Cleanup(func() { os.Unsetenv("LOG_LEVEL") })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9999, cfg.Port, "the process environment wins over .env")
}
