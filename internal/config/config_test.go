package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 8*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 5, cfg.LoginRateLimit)
	assert.Equal(t, 15*time.Minute, cfg.LoginRateWindow)
	assert.False(t, cfg.Production)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":9090"
production: true
database_dsn: "postgres://localhost/monitor"
token_ttl: 2h
cors_origin: "https://panel.example"
login_rate_limit: 3
login_rate_window: 5m
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.True(t, cfg.Production)
	assert.Equal(t, "postgres://localhost/monitor", cfg.DatabaseDSN)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "https://panel.example", cfg.CORSOrigin)
	assert.Equal(t, 3, cfg.LoginRateLimit)
	assert.Equal(t, 5*time.Minute, cfg.LoginRateWindow)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":9090\"\n"), 0o600))

	t.Setenv("MONITOR_ADDR", ":7070")
	t.Setenv("MONITOR_AUTH_SECRET", "super-secret")
	t.Setenv("MONITOR_TOKEN_TTL", "30m")
	t.Setenv("MONITOR_PRODUCTION", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, "super-secret", cfg.TokenSecret)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.True(t, cfg.Production)
}

func TestTokenSecretNeverReadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("token_secret: \"leaked\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.TokenSecret, "secret must come from the environment only")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: [oops\n"), 0o600))
	_, err = Load(path)
	require.Error(t, err)

	t.Setenv("MONITOR_TOKEN_TTL", "not-a-duration")
	_, err = Load("")
	require.Error(t, err)
}
