package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full application configuration tree.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Log      LogConfig
	Event    EventConfig
	HTTP     HTTPConfig
	Razorpay RazorpayConfig
	Webhook  WebhookConfig
	Cache    CacheConfig
}

// LogConfig mirrors logger.Config at the configuration layer.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

type AppConfig struct {
	Name string
	Env  string
	Port string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret                 string
	RefreshSecret          string
	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
	Issuer                 string
	MaxRefreshCount        int
}

// EventConfig tunes the outbox processor.
type EventConfig struct {
	ProcessorEnabled bool
	BatchSize        int
	PollInterval     time.Duration
	MaxRetries       int
	CleanupEnabled   bool
	CleanupRetention time.Duration
}

type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// RazorpayConfig holds the payment gateway credentials. The webhook secret
// is distinct from the API secret and is only used to verify signatures on
// inbound webhook requests.
type RazorpayConfig struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
}

// WebhookConfig tunes the webhook retry worker.
type WebhookConfig struct {
	WorkerEnabled    bool
	PollInterval     time.Duration
	BatchSize        int
	CleanupEnabled   bool
	CleanupRetention time.Duration
}

// CacheConfig tunes the catalog read cache.
type CacheConfig struct {
	Enabled    bool
	ProductTTL time.Duration
}

// Load reads configuration in ascending priority: built-in defaults, then
// config.toml, then CRAFTLINE_-prefixed environment variables (dots become
// underscores, so database.password is CRAFTLINE_DATABASE_PASSWORD).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	// A missing config file is fine; env vars and defaults carry it.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("CRAFTLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                 v.GetString("jwt.secret"),
			RefreshSecret:          v.GetString("jwt.refresh_secret"),
			AccessTokenExpiration:  v.GetDuration("jwt.access_token_expiration"),
			RefreshTokenExpiration: v.GetDuration("jwt.refresh_token_expiration"),
			Issuer:                 v.GetString("jwt.issuer"),
			MaxRefreshCount:        v.GetInt("jwt.max_refresh_count"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Event: EventConfig{
			ProcessorEnabled: v.GetBool("event.processor_enabled"),
			BatchSize:        v.GetInt("event.batch_size"),
			PollInterval:     v.GetDuration("event.poll_interval"),
			MaxRetries:       v.GetInt("event.max_retries"),
			CleanupEnabled:   v.GetBool("event.cleanup_enabled"),
			CleanupRetention: v.GetDuration("event.cleanup_retention"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Razorpay: RazorpayConfig{
			KeyID:         v.GetString("razorpay.key_id"),
			KeySecret:     v.GetString("razorpay.key_secret"),
			WebhookSecret: v.GetString("razorpay.webhook_secret"),
		},
		Webhook: WebhookConfig{
			WorkerEnabled:    v.GetBool("webhook.worker_enabled"),
			PollInterval:     v.GetDuration("webhook.poll_interval"),
			BatchSize:        v.GetInt("webhook.batch_size"),
			CleanupEnabled:   v.GetBool("webhook.cleanup_enabled"),
			CleanupRetention: v.GetDuration("webhook.cleanup_retention"),
		},
		Cache: CacheConfig{
			Enabled:    v.GetBool("cache.enabled"),
			ProductTTL: v.GetDuration("cache.product_ttl"),
		},
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fallbackString(field *string, def string) {
	if *field == "" {
		*field = def
	}
}

func fallbackInt(field *int, def int) {
	if *field == 0 {
		*field = def
	}
}

func fallbackDuration(field *time.Duration, def time.Duration) {
	if *field == 0 {
		*field = def
	}
}

// applyDefaults fills zero-valued fields. A field explicitly set to its zero
// value is indistinguishable from an unset one and gets the default too.
func (c *Config) applyDefaults() {
	fallbackString(&c.App.Name, "craftline-backend")
	fallbackString(&c.App.Env, "development")
	fallbackString(&c.App.Port, "8080")

	fallbackString(&c.Database.Host, "localhost")
	fallbackInt(&c.Database.Port, 5432)
	fallbackString(&c.Database.User, "postgres")
	fallbackString(&c.Database.DBName, "craftline")
	fallbackString(&c.Database.SSLMode, "disable")
	fallbackInt(&c.Database.MaxOpenConns, 25)
	fallbackInt(&c.Database.MaxIdleConns, 5)
	fallbackInt(&c.Database.ConnMaxLifetime, 60)
	fallbackInt(&c.Database.ConnMaxIdleTime, 30)

	fallbackString(&c.Redis.Host, "localhost")
	fallbackInt(&c.Redis.Port, 6379)

	fallbackDuration(&c.JWT.AccessTokenExpiration, 15*time.Minute)
	fallbackDuration(&c.JWT.RefreshTokenExpiration, 168*time.Hour)
	fallbackString(&c.JWT.Issuer, "craftline-backend")
	fallbackInt(&c.JWT.MaxRefreshCount, 30)

	fallbackString(&c.Log.Level, "info")
	fallbackString(&c.Log.Format, "console")
	fallbackString(&c.Log.Output, "stdout")

	fallbackInt(&c.Event.BatchSize, 100)
	fallbackDuration(&c.Event.PollInterval, 5*time.Second)
	fallbackInt(&c.Event.MaxRetries, 5)
	fallbackDuration(&c.Event.CleanupRetention, 168*time.Hour)

	fallbackDuration(&c.HTTP.ReadTimeout, 15*time.Second)
	fallbackDuration(&c.HTTP.WriteTimeout, 15*time.Second)
	fallbackDuration(&c.HTTP.IdleTimeout, 60*time.Second)
	fallbackInt(&c.HTTP.MaxHeaderBytes, 1<<20)
	if c.HTTP.MaxBodySize == 0 {
		c.HTTP.MaxBodySize = 10 << 20
	}
	fallbackInt(&c.HTTP.RateLimitRequests, 100)
	fallbackDuration(&c.HTTP.RateLimitWindow, time.Minute)

	// CORS origins deliberately have no fallback: an empty list means no
	// cross-origin requests until origins are configured.
	if len(c.HTTP.CORSAllowMethods) == 0 {
		c.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(c.HTTP.CORSAllowHeaders) == 0 {
		c.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "X-Tenant-ID"}
	}

	fallbackDuration(&c.Webhook.PollInterval, 10*time.Second)
	fallbackInt(&c.Webhook.BatchSize, 20)
	fallbackDuration(&c.Webhook.CleanupRetention, 720*time.Hour)

	fallbackDuration(&c.Cache.ProductTTL, 5*time.Minute)
}

func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.App.Env == "production" {
		return c.validateProduction()
	}
	return nil
}

// validateProduction enforces the settings that must never ship unset.
func (c *Config) validateProduction() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required in production")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("jwt.secret must be at least 32 characters in production")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("database.password is required in production")
	}
	if c.Database.SSLMode == "disable" {
		return fmt.Errorf("database.sslmode cannot be 'disable' in production")
	}
	if c.Razorpay.WebhookSecret == "" {
		return fmt.Errorf("razorpay.webhook_secret is required in production")
	}
	for _, origin := range c.HTTP.CORSAllowOrigins {
		if origin == "*" {
			return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
		}
	}
	return nil
}

// DSN builds the Postgres connection URL, escaping user and password.
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the Redis host:port address.
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
