package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "8080"
storage:
  driver: sqlite
sqlite:
  path: /tmp/incidents.db
log:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.MetricsPort)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/incidents.db", cfg.SQLite.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.RateLimit.Enabled, "throttling is opt-in")
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
storage:
  driver: postgres
database:
  url: postgres://file/db
`)
	t.Setenv("INCIDENTLOG_DATABASE_URL", "postgres://env/db")
	t.Setenv("INCIDENTLOG_DATABASE__CONNECT_TIMEOUT", "3s")
	t.Setenv("INCIDENTLOG_RATE_LIMIT__BURST", "7")
	t.Setenv("INCIDENTLOG_CORS__ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env/db", cfg.Database.URL)
	assert.Equal(t, 3*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, 7, cfg.RateLimit.Burst)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_PlatformVariables(t *testing.T) {
	t.Setenv("INCIDENTLOG_DATABASE_URL", "postgres://prefixed/db")
	t.Setenv("PORT", "4321")
	t.Setenv("DATABASE_URL", "postgres://platform/db")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "4321", cfg.Server.Port)
	assert.Equal(t, "postgres://platform/db", cfg.Database.URL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:   "memory driver needs nothing else",
			mutate: func(c *Config) { c.Storage.Driver = DriverMemory },
		},
		{
			name:    "postgres without url",
			mutate:  func(c *Config) { c.Storage.Driver = DriverPostgres },
			wantErr: true,
		},
		{
			name: "sqlite without path",
			mutate: func(c *Config) {
				c.Storage.Driver = DriverSQLite
				c.SQLite.Path = ""
			},
			wantErr: true,
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Storage.Driver = "mongodb" },
			wantErr: true,
		},
		{
			name: "unknown log level",
			mutate: func(c *Config) {
				c.Storage.Driver = DriverMemory
				c.Log.Level = "trace"
			},
			wantErr: true,
		},
		{
			name: "rate limit enabled with zero rps",
			mutate: func(c *Config) {
				c.Storage.Driver = DriverMemory
				c.RateLimit.Enabled = true
				c.RateLimit.RPS = 0
			},
			wantErr: true,
		},
		{
			name: "zero cache ttl",
			mutate: func(c *Config) {
				c.Storage.Driver = DriverMemory
				c.Redis.TTL = 0
			},
			wantErr: true,
		},
		{
			name: "negative cache ttl",
			mutate: func(c *Config) {
				c.Storage.Driver = DriverMemory
				c.Redis.TTL = -time.Minute
			},
			wantErr: true,
		},
		{
			name: "non-numeric port",
			mutate: func(c *Config) {
				c.Storage.Driver = DriverMemory
				c.Server.Port = "http"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "database.url", envKey("INCIDENTLOG_DATABASE_URL"))
	assert.Equal(t, "server.metrics_port", envKey("INCIDENTLOG_SERVER_METRICS_PORT"))
	assert.Equal(t, "rate_limit.rps", envKey("INCIDENTLOG_RATE_LIMIT__RPS"))
	assert.Equal(t, "rate_limit.enabled", envKey("INCIDENTLOG_RATE_LIMIT_ENABLED"))
	assert.Equal(t, "rate_limit.rps", envKey("INCIDENTLOG_RATE_LIMIT_RPS"))
	assert.Equal(t, "database.max_open_conns", envKey("INCIDENTLOG_DATABASE_MAX_OPEN_CONNS"))
	assert.Equal(t, "redis.key_prefix", envKey("INCIDENTLOG_REDIS_KEY_PREFIX"))
	assert.Equal(t, "log.level", envKey("INCIDENTLOG_LOG_LEVEL"))
}

func TestLoad_SingleUnderscoreSectionNames(t *testing.T) {
	t.Setenv("INCIDENTLOG_STORAGE_DRIVER", "memory")
	t.Setenv("INCIDENTLOG_RATE_LIMIT_ENABLED", "true")
	t.Setenv("INCIDENTLOG_RATE_LIMIT_RPS", "2.5")
	t.Setenv("INCIDENTLOG_DATABASE_MAX_OPEN_CONNS", "4")
	t.Setenv("INCIDENTLOG_REDIS_TTL", "30s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.RateLimit.Enabled)
	assert.InDelta(t, 2.5, cfg.RateLimit.RPS, 1e-9)
	assert.Equal(t, 4, cfg.Database.MaxOpenConns)
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)
}

func TestLoad_ZeroCacheTTLRejected(t *testing.T) {
	t.Setenv("INCIDENTLOG_STORAGE_DRIVER", "memory")
	t.Setenv("INCIDENTLOG_REDIS_TTL", "0s")

	_, err := Load("")
	assert.Error(t, err)
}
