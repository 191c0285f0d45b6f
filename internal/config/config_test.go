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

	assert.Equal(t, "dev", cfg.App.Env)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "memory", cfg.Cache.Kind)
	assert.Equal(t, "talentia_refresh", cfg.Auth.Cookie.Name)
	assert.Equal(t, "/v1/auth", cfg.Auth.Cookie.Path)
	assert.Equal(t, []string{"ceo", "admin"}, cfg.RBAC.AdminRoles)
	assert.Equal(t, []string{"manager"}, cfg.RBAC.ManagerRoles)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL())
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTTL())
	assert.Equal(t, time.Minute, cfg.RBACCacheTTL())
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  env: prod
  log_level: warn
server:
  addr: ":9090"
jwt:
  access_ttl: 5m
  refresh_ttl: 48h
rbac:
  cache_ttl: 30s
  admin_roles: [superadmin]
rate:
  enabled: true
  login:
    limit: 5
    window: 2m
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.App.Env)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Minute, cfg.AccessTTL())
	assert.Equal(t, 48*time.Hour, cfg.RefreshTTL())
	assert.Equal(t, 30*time.Second, cfg.RBACCacheTTL())
	assert.Equal(t, []string{"superadmin"}, cfg.RBAC.AdminRoles)
	assert.True(t, cfg.Rate.Enabled)
	assert.Equal(t, 5, cfg.Rate.Login.Limit)
	assert.Equal(t, 2*time.Minute, cfg.LoginRateWindow())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/no/existe.yaml")
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TALENTIA_ADDR", ":7070")
	t.Setenv("TALENTIA_DSN", "postgres://env")
	t.Setenv("TALENTIA_CACHE_KIND", "redis")
	t.Setenv("TALENTIA_REDIS_ADDR", "redis:6379")
	t.Setenv("TALENTIA_RATE_ENABLED", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "postgres://env", cfg.Storage.DSN)
	assert.Equal(t, "redis", cfg.Cache.Kind)
	assert.Equal(t, "redis:6379", cfg.Cache.Redis.Addr)
	assert.True(t, cfg.Rate.Enabled)
}

func TestDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, Duration("", time.Minute))
	assert.Equal(t, time.Minute, Duration("basura", time.Minute))
	assert.Equal(t, time.Minute, Duration("-5s", time.Minute))
	assert.Equal(t, 90*time.Second, Duration("90s", time.Minute))
}
