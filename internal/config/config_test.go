package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadAppliesDefaults(t *testing.T) {
	p := writeFile(t, t.TempDir(), "config.yml", "backend:\n  host: https://api.example.com/\n")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 38471, cfg.App.Port)
	assert.Equal(t, "https://angel.co", cfg.Render.LinkOrigin)
	assert.Equal(t, 30, cfg.Sessions.IdleMinutes)
	assert.True(t, cfg.Diagnostics.Enabled)

	norm, vr := NormalizeAndValidate(cfg)
	require.True(t, vr.OK(), vr.Errors)
	assert.NoError(t, vr.Err())
	assert.Equal(t, "https://api.example.com", norm.Backend.Host)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	p := writeFile(t, t.TempDir(), "config.yml", "backend:\n  hots: https://api.example.com\n")
	_, err := Load(p)
	require.Error(t, err)
}

func TestShippedDefaultConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "config.yml"))
	require.NoError(t, err)
	_, vr := NormalizeAndValidate(cfg)
	assert.True(t, vr.OK(), vr.Errors)
}

func TestNormalizeAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"missing host", func(c *Config) { c.Backend.Host = "" }, "backend.host is required"},
		{"relative host", func(c *Config) { c.Backend.Host = "api.example.com" }, "backend.host must be an absolute"},
		{"bad port", func(c *Config) { c.App.Port = 70000 }, "app.port"},
		{"negative timeout", func(c *Config) { c.Backend.TimeoutSeconds = -1 }, "timeout_seconds"},
		{"negative rate", func(c *Config) { c.Backend.RatePerSecond = -2 }, "rate_per_second"},
		{"bad origin", func(c *Config) { c.Render.LinkOrigin = "angel.co" }, "render.link_origin"},
		{"no idle", func(c *Config) { c.Sessions.IdleMinutes = 0 }, "idle_minutes"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Backend.Host = "https://api.example.com"
			tt.mutate(&cfg)

			_, vr := NormalizeAndValidate(cfg)
			require.False(t, vr.OK())
			assert.Contains(t, vr.Err().Error(), tt.wantErr)
		})
	}
}

func TestNormalizeFillsBurstWithWarning(t *testing.T) {
	cfg := Default()
	cfg.Backend.Host = "https://api.example.com"
	cfg.Backend.RatePerSecond = 2

	out, vr := NormalizeAndValidate(cfg)
	require.True(t, vr.OK())
	assert.Equal(t, 1, out.Backend.Burst)
	assert.NotEmpty(t, vr.Warnings)
}

func TestOverlayEnv(t *testing.T) {
	// registered with t.Setenv so they are restored, then unset so .env can fill them
	for _, key := range []string{EnvBackendHost, EnvLegacyBackendHost} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "VITE_BACKEND_HOST=https://from-dotenv.example.com\n")

	cfg := Default()
	cfg.Backend.Host = "https://from-yaml.example.com"
	require.NoError(t, OverlayEnv(&cfg, envFile))
	assert.Equal(t, "https://from-dotenv.example.com", cfg.Backend.Host)

	t.Setenv(EnvBackendHost, "https://api.example.com")
	require.NoError(t, OverlayEnv(&cfg, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "https://api.example.com", cfg.Backend.Host)
}

func TestEnsureUserConfig(t *testing.T) {
	dir := t.TempDir()
	def := writeFile(t, t.TempDir(), "default.yml", "app:\n  port: 1234\n")

	p, err := EnsureUserConfig(dir, def)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yml"), p)

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), "1234")

	// existing user config is left alone
	require.NoError(t, os.WriteFile(p, []byte("app:\n  port: 9\n"), 0o644))
	_, err = EnsureUserConfig(dir, def)
	require.NoError(t, err)
	b, _ = os.ReadFile(p)
	assert.Contains(t, string(b), "port: 9")
}

func TestEnsureUserConfigWithoutDefaultFile(t *testing.T) {
	dir := t.TempDir()

	p, err := EnsureUserConfig(dir, filepath.Join(dir, "missing.yml"))
	require.NoError(t, err)

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLoadRejectsDataDir(t *testing.T) {
	// the data dir holds the config file, so it can only come from the environment
	p := writeFile(t, t.TempDir(), "config.yml", "app:\n  data_dir: /srv/jobs\n")
	_, err := Load(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data_dir")
}
