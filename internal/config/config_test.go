package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.True(t, cfg.Database.IsEmbedded())
	require.Equal(t, "./data/sentinel.db", cfg.Database.Path)
	require.Equal(t, "WAL", cfg.Database.JournalMode)
	require.False(t, cfg.Redis.Enabled)
	require.Equal(t, 24*time.Hour, cfg.Session.TTL)
	require.Equal(t, "session", cfg.Session.CookieName)
	require.Equal(t, "adminpass", cfg.Bootstrap.AdminPassword)
	require.Equal(t, "userpass", cfg.Bootstrap.UserPassword)
	require.Empty(t, cfg.Bootstrap.InitScript)
	require.Equal(t, "info", cfg.Logging.Level)
	require.True(t, cfg.Metrics.Enabled)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
database:
  driver: postgres
  host: db.internal
  user: portal
  password: secret
  database: portal
session:
  ttl: 1h
  cookie_name: portal_session
bootstrap:
  admin_password: changed-admin
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.False(t, cfg.Database.IsEmbedded())
	require.Equal(t,
		"host=db.internal port=5432 user=portal password=secret dbname=portal sslmode=prefer",
		cfg.Database.DSN())
	require.Equal(t, time.Hour, cfg.Session.TTL)
	require.Equal(t, "portal_session", cfg.Session.CookieName)
	require.Equal(t, "changed-admin", cfg.Bootstrap.AdminPassword)
	// Unset values keep their defaults.
	require.Equal(t, "userpass", cfg.Bootstrap.UserPassword)
	require.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SENTINEL_SERVER_PORT", "7070")
	t.Setenv("SENTINEL_SESSION_COOKIE_NAME", "sid")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, "sid", cfg.Session.CookieName)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "oracle" },
			wantErr: "database.driver",
		},
		{
			name: "sqlite requires path",
			mutate: func(c *Config) {
				c.Database.Driver = "sqlite"
				c.Database.Path = ""
			},
			wantErr: "database.path",
		},
		{
			name: "postgres requires host",
			mutate: func(c *Config) {
				c.Database.Driver = "postgres"
				c.Database.Host = ""
			},
			wantErr: "database.host",
		},
		{
			name:    "non-positive session ttl",
			mutate:  func(c *Config) { c.Session.TTL = 0 },
			wantErr: "session.ttl",
		},
		{
			name:    "empty cookie name",
			mutate:  func(c *Config) { c.Session.CookieName = "" },
			wantErr: "session.cookie_name",
		},
		{
			name:    "empty seed password",
			mutate:  func(c *Config) { c.Bootstrap.AdminPassword = "" },
			wantErr: "seed passwords",
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_InvalidConfigFails(t *testing.T) {
	t.Setenv("SENTINEL_LOGGING_LEVEL", "shout")

	_, err := Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid configuration")
}
