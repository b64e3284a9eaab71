package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

// BillingPlan is a subscription end users can buy. Price is a decimal string.
type BillingPlan struct {
	Name  string `yaml:"name"`
	Price string `yaml:"price"`
}

type Config struct {
	Server struct {
		Address         string        `yaml:"address"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Monitoring struct {
		PrometheusEnabled bool    `yaml:"prometheus_enabled"`
		TracingEnabled    bool    `yaml:"tracing_enabled"`
		JaegerURL         string  `yaml:"jaeger_url"`
		Environment       string  `yaml:"environment"`
		SampleRate        float64 `yaml:"sample_rate"`
	} `yaml:"monitoring"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Storage struct {
		Driver string `yaml:"driver"` // memory | redis | sqlite

		Redis struct {
			Address        string `yaml:"address"`
			Password       string `yaml:"password"`
			DB             int    `yaml:"db"`
			PoolSize       int    `yaml:"pool_size"`
			ConnectRetries int    `yaml:"connect_retries"`
		} `yaml:"redis"`

		SQLite struct {
			Path string `yaml:"path"`
		} `yaml:"sqlite"`
	} `yaml:"storage"`

	Auth struct {
		JWTSecret     string        `yaml:"jwt_secret"`
		Issuer        string        `yaml:"issuer"`
		CredentialTTL time.Duration `yaml:"credential_ttl"`
		BcryptCost    int           `yaml:"bcrypt_cost"`

		// Accounts created at startup when their email is not yet taken.
		// Publishers and administrators can only come into existence this way.
		BootstrapAccounts []BootstrapAccount `yaml:"bootstrap_accounts"`
	} `yaml:"auth"`

	Authz struct {
		// Optional CSV with extra admin grants, e.g. "p, admin:support, user_join_stats, read".
		PolicyPath string `yaml:"policy_path"`
	} `yaml:"authz"`

	Media struct {
		Driver        string `yaml:"driver"` // file | s3
		BaseDir       string `yaml:"base_dir"`
		PublicPrefix  string `yaml:"public_prefix"`
		MaxImageBytes int64  `yaml:"max_image_bytes"`

		S3 struct {
			Bucket string `yaml:"bucket"`
			Prefix string `yaml:"prefix"`
			Region string `yaml:"region"`
		} `yaml:"s3"`

		Breaker struct {
			FailureThreshold int           `yaml:"failure_threshold"`
			SuccessThreshold int           `yaml:"success_threshold"`
			Timeout          time.Duration `yaml:"timeout"`
		} `yaml:"breaker"`
	} `yaml:"media"`

	Billing struct {
		Plans []BillingPlan `yaml:"plans"`
	} `yaml:"billing"`

	Analytics struct {
		Timezone      string `yaml:"timezone"`
		MaxWindowDays int    `yaml:"max_window_days"`
	} `yaml:"analytics"`

	RateLimiting struct {
		Enabled bool `yaml:"enabled"`

		HTTP struct {
			RequestsPerSecond float64 `yaml:"requests_per_second"`
			Burst             int     `yaml:"burst"`
			MaxConcurrent     int     `yaml:"max_concurrent"` // global concurrent HTTP requests
		} `yaml:"http"`
	} `yaml:"rate_limiting"`
}

type BootstrapAccount struct {
	Email        string `yaml:"email"`
	DisplayName  string `yaml:"display_name"`
	Password     string `yaml:"password"`
	Role         string `yaml:"role"` // end_user | publisher | admin
	PublisherID  int64  `yaml:"publisher_id"`
	AdminSubtype string `yaml:"admin_subtype"` // marketing | support
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	// Server
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be > 0")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be > 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}

	// Monitoring
	if c.Monitoring.TracingEnabled {
		if c.Monitoring.JaegerURL == "" {
			return fmt.Errorf("monitoring.jaeger_url must not be empty when tracing_enabled=true")
		}
		if c.Monitoring.SampleRate < 0 || c.Monitoring.SampleRate > 1 {
			return fmt.Errorf("monitoring.sample_rate must be within [0, 1]")
		}
	}

	// Logging
	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	// Storage
	switch c.Storage.Driver {
	case "memory":
	case "redis":
		if c.Storage.Redis.Address == "" {
			return fmt.Errorf("storage.redis.address must not be empty when storage.driver=redis")
		}
		if c.Storage.Redis.PoolSize <= 0 {
			return fmt.Errorf("storage.redis.pool_size must be > 0 when storage.driver=redis")
		}
		if c.Storage.Redis.ConnectRetries < 0 {
			return fmt.Errorf("storage.redis.connect_retries must be >= 0")
		}
	case "sqlite":
		if c.Storage.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path must not be empty when storage.driver=sqlite")
		}
	default:
		return fmt.Errorf("storage.driver must be one of memory, redis, sqlite (got %q)", c.Storage.Driver)
	}

	// Auth
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 bytes")
	}
	if c.Auth.CredentialTTL <= 0 {
		return fmt.Errorf("auth.credential_ttl must be > 0")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("auth.bcrypt_cost must be within [4, 31]")
	}
	for i, acc := range c.Auth.BootstrapAccounts {
		if acc.Email == "" || acc.Password == "" {
			return fmt.Errorf("auth.bootstrap_accounts[%d] needs email and password", i)
		}
		switch acc.Role {
		case "end_user":
		case "publisher":
			if acc.PublisherID <= 0 {
				return fmt.Errorf("auth.bootstrap_accounts[%d].publisher_id must be > 0", i)
			}
		case "admin":
			if acc.AdminSubtype != "marketing" && acc.AdminSubtype != "support" {
				return fmt.Errorf("auth.bootstrap_accounts[%d].admin_subtype must be marketing or support", i)
			}
		default:
			return fmt.Errorf("auth.bootstrap_accounts[%d].role must be one of end_user, publisher, admin", i)
		}
	}

	// Media
	switch c.Media.Driver {
	case "file":
		if c.Media.BaseDir == "" {
			return fmt.Errorf("media.base_dir must not be empty when media.driver=file")
		}
	case "s3":
		if c.Media.S3.Bucket == "" {
			return fmt.Errorf("media.s3.bucket must not be empty when media.driver=s3")
		}
	default:
		return fmt.Errorf("media.driver must be one of file, s3 (got %q)", c.Media.Driver)
	}
	if c.Media.MaxImageBytes <= 0 {
		return fmt.Errorf("media.max_image_bytes must be > 0")
	}
	if c.Media.Breaker.FailureThreshold <= 0 {
		return fmt.Errorf("media.breaker.failure_threshold must be > 0")
	}
	if c.Media.Breaker.Timeout <= 0 {
		return fmt.Errorf("media.breaker.timeout must be > 0")
	}

	// Billing
	if len(c.Billing.Plans) == 0 {
		return fmt.Errorf("billing.plans must not be empty")
	}
	seen := make(map[string]bool, len(c.Billing.Plans))
	for _, plan := range c.Billing.Plans {
		if plan.Name == "" {
			return fmt.Errorf("billing.plans entries need a name")
		}
		if seen[plan.Name] {
			return fmt.Errorf("billing plan %q is listed twice", plan.Name)
		}
		seen[plan.Name] = true
		price, err := decimal.NewFromString(plan.Price)
		if err != nil || !price.IsPositive() {
			return fmt.Errorf("billing plan %q needs a positive decimal price (got %q)", plan.Name, plan.Price)
		}
	}

	// Analytics
	if _, err := time.LoadLocation(c.Analytics.Timezone); err != nil {
		return fmt.Errorf("analytics.timezone is invalid: %w", err)
	}
	if c.Analytics.MaxWindowDays <= 0 {
		return fmt.Errorf("analytics.max_window_days must be > 0")
	}

	// Rate limiting
	if c.RateLimiting.Enabled {
		if c.RateLimiting.HTTP.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.http.requests_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.HTTP.Burst <= 0 {
			return fmt.Errorf("rate_limiting.http.burst must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.HTTP.MaxConcurrent < 0 {
			return fmt.Errorf("rate_limiting.http.max_concurrent must be >= 0 when rate limiting is enabled")
		}
	}

	return nil
}

// Load reads configuration from YAML file, applies defaults and env overrides.
func Load(configPath string) (*Config, error) {
	// If file does not exist, fall back to defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Address = ":8080"
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.ShutdownTimeout = 30 * time.Second

	cfg.Monitoring.PrometheusEnabled = true
	cfg.Monitoring.TracingEnabled = false
	cfg.Monitoring.JaegerURL = "http://localhost:14268/api/traces"
	cfg.Monitoring.Environment = "development"
	cfg.Monitoring.SampleRate = 1.0

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	cfg.Storage.Driver = "memory"
	cfg.Storage.Redis.Address = "localhost:6379"
	cfg.Storage.Redis.DB = 0
	cfg.Storage.Redis.PoolSize = 10
	cfg.Storage.Redis.ConnectRetries = 3
	cfg.Storage.SQLite.Path = "data/reelhub.db"

	cfg.Auth.JWTSecret = "change-me-in-production-0123456789abcdef"
	cfg.Auth.Issuer = "reelhub"
	cfg.Auth.CredentialTTL = 24 * time.Hour
	cfg.Auth.BcryptCost = 10

	cfg.Media.Driver = "file"
	cfg.Media.BaseDir = "data/images"
	cfg.Media.PublicPrefix = "/static/images"
	cfg.Media.MaxImageBytes = 5 << 20 // 5 MiB
	cfg.Media.Breaker.FailureThreshold = 5
	cfg.Media.Breaker.SuccessThreshold = 2
	cfg.Media.Breaker.Timeout = 30 * time.Second

	cfg.Billing.Plans = []BillingPlan{
		{Name: "monthly", Price: "9.99"},
		{Name: "yearly", Price: "99.00"},
	}

	cfg.Analytics.Timezone = "UTC"
	cfg.Analytics.MaxWindowDays = 366

	// Rate limiting defaults (disabled by default)
	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.HTTP.RequestsPerSecond = 50
	cfg.RateLimiting.HTTP.Burst = 100
	cfg.RateLimiting.HTTP.MaxConcurrent = 0

	return cfg
}

// Location returns the time zone analytics buckets are cut in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Analytics.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("REELHUB_SERVER_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
	if level := os.Getenv("REELHUB_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if secret := os.Getenv("REELHUB_JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
	}
	if driver := os.Getenv("REELHUB_STORAGE_DRIVER"); driver != "" {
		c.Storage.Driver = driver
	}
	if addr := os.Getenv("REELHUB_REDIS_ADDRESS"); addr != "" {
		c.Storage.Redis.Address = addr
	}
	if path := os.Getenv("REELHUB_SQLITE_PATH"); path != "" {
		c.Storage.SQLite.Path = path
	}
	if dir := os.Getenv("REELHUB_MEDIA_DIR"); dir != "" {
		c.Media.BaseDir = dir
	}
	if tz := os.Getenv("REELHUB_ANALYTICS_TIMEZONE"); tz != "" {
		c.Analytics.Timezone = tz
	}
	if ttl := os.Getenv("REELHUB_CREDENTIAL_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			c.Auth.CredentialTTL = d
		}
	}
	if maxBytes := os.Getenv("REELHUB_MAX_IMAGE_BYTES"); maxBytes != "" {
		if n, err := strconv.ParseInt(maxBytes, 10, 64); err == nil {
			c.Media.MaxImageBytes = n
		}
	}
}
