package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.State.Backend)
	assert.Equal(t, 24*time.Minute, cfg.Session.Lifetime)
	assert.Equal(t, "session:", cfg.Session.Options["key_prefix"])
	assert.Equal(t, "SESSID", cfg.Session.Name)
	assert.Equal(t, 1, cfg.Session.GCProbability)
	assert.Equal(t, 100, cfg.Session.GCDivisor)
	assert.Equal(t, 2*time.Second, cfg.Database.Redis.DialTimeout)
}

func TestLoad_SessionSection(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
state:
  backend: redis
session:
  lifetime: 30m
  name: APPSESS
  options:
    key_prefix: "app:sess:"
    unknown: true
`))
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.State.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Session.Lifetime)
	assert.Equal(t, "APPSESS", cfg.Session.Name)
	assert.Equal(t, "app:sess:", cfg.Session.Options["key_prefix"])
	assert.Equal(t, true, cfg.Session.Options["unknown"])
}

func TestLoad_NonStringPrefixKeptVerbatim(t *testing.T) {
	cfg, err := Load(writeConfig(t, "session:\n  options:\n    key_prefix: 42\n"))
	require.NoError(t, err)

	_, isString := cfg.Session.Options["key_prefix"].(string)
	assert.False(t, isString)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SESSION_LIFETIME", "90s")
	t.Setenv("STATE_BACKEND", "postgres")

	cfg, err := Load(writeConfig(t, "session:\n  lifetime: 10m\n"))
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.Session.Lifetime)
	assert.Equal(t, "postgres", cfg.State.Backend)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
