package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.CredentialTTL)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestValidate_RateLimitingDisabled_AllowsZeroValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.HTTP.RequestsPerSecond = 0
	cfg.RateLimiting.HTTP.Burst = 0
	cfg.RateLimiting.HTTP.MaxConcurrent = 0

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected config to be valid when rate limiting disabled, got error: %v", err)
	}
}

func TestValidate_InvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "empty server address",
			mutate: func(c *Config) { c.Server.Address = "" },
		},
		{
			name:   "unknown storage driver",
			mutate: func(c *Config) { c.Storage.Driver = "postgres" },
		},
		{
			name: "redis without address",
			mutate: func(c *Config) {
				c.Storage.Driver = "redis"
				c.Storage.Redis.Address = ""
			},
		},
		{
			name: "sqlite without path",
			mutate: func(c *Config) {
				c.Storage.Driver = "sqlite"
				c.Storage.SQLite.Path = ""
			},
		},
		{
			name:   "short jwt secret",
			mutate: func(c *Config) { c.Auth.JWTSecret = "short" },
		},
		{
			name:   "non-positive credential ttl",
			mutate: func(c *Config) { c.Auth.CredentialTTL = 0 },
		},
		{
			name:   "bcrypt cost out of range",
			mutate: func(c *Config) { c.Auth.BcryptCost = 2 },
		},
		{
			name: "publisher bootstrap without id",
			mutate: func(c *Config) {
				c.Auth.BootstrapAccounts = []BootstrapAccount{{Email: "p@example.com", Password: "secret123", Role: "publisher"}}
			},
		},
		{
			name: "admin bootstrap with unknown subtype",
			mutate: func(c *Config) {
				c.Auth.BootstrapAccounts = []BootstrapAccount{{Email: "a@example.com", Password: "secret123", Role: "admin", AdminSubtype: "finance"}}
			},
		},
		{
			name:   "unknown media driver",
			mutate: func(c *Config) { c.Media.Driver = "ftp" },
		},
		{
			name: "s3 without bucket",
			mutate: func(c *Config) {
				c.Media.Driver = "s3"
				c.Media.S3.Bucket = ""
			},
		},
		{
			name:   "zero image size limit",
			mutate: func(c *Config) { c.Media.MaxImageBytes = 0 },
		},
		{
			name:   "bad timezone",
			mutate: func(c *Config) { c.Analytics.Timezone = "Mars/Olympus" },
		},
		{
			name:   "zero max window",
			mutate: func(c *Config) { c.Analytics.MaxWindowDays = 0 },
		},
		{
			name: "http rps must be > 0",
			mutate: func(c *Config) {
				c.RateLimiting.Enabled = true
				c.RateLimiting.HTTP.RequestsPerSecond = 0
			},
		},
		{
			name: "http max concurrent must be >= 0",
			mutate: func(c *Config) {
				c.RateLimiting.Enabled = true
				c.RateLimiting.HTTP.MaxConcurrent = -1
			},
		},
		{
			name:   "no billing plans",
			mutate: func(c *Config) { c.Billing.Plans = nil },
		},
		{
			name: "billing plan without price",
			mutate: func(c *Config) {
				c.Billing.Plans = []BillingPlan{{Name: "monthly", Price: "free"}}
			},
		},
		{
			name: "billing plan listed twice",
			mutate: func(c *Config) {
				c.Billing.Plans = []BillingPlan{{Name: "monthly", Price: "1"}, {Name: "monthly", Price: "2"}}
			},
		},
		{
			name: "tracing without collector url",
			mutate: func(c *Config) {
				c.Monitoring.TracingEnabled = true
				c.Monitoring.JaegerURL = ""
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)

			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error for case %q, got nil", tc.name)
			}
		})
	}
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Address)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlData := []byte(`
server:
  address: ":9000"
storage:
  driver: sqlite
  sqlite:
    path: /tmp/reelhub-test.db
analytics:
  timezone: Europe/Berlin
  max_window_days: 90
auth:
  bootstrap_accounts:
    - email: ops@example.com
      display_name: Ops
      password: correct-horse
      role: admin
      admin_subtype: support
`)
	require.NoError(t, os.WriteFile(path, yamlData, 0o600))

	t.Setenv("REELHUB_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Address)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "/tmp/reelhub-test.db", cfg.Storage.SQLite.Path)
	assert.Equal(t, 90, cfg.Analytics.MaxWindowDays)
	assert.Equal(t, "Europe/Berlin", cfg.Location().String())
	assert.Equal(t, "debug", cfg.Logging.Level)
	require.Len(t, cfg.Auth.BootstrapAccounts, 1)
	assert.Equal(t, "support", cfg.Auth.BootstrapAccounts[0].AdminSubtype)
	assert.Equal(t, 24*time.Hour, cfg.Auth.CredentialTTL)
	// untouched sections keep their defaults
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
}

func TestLoad_InvalidFileIsRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  driver: cassandra\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
