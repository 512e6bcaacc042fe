// Package config loads application settings from a .env file and environment variables.
// Environment variables always take precedence over .env file values.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Port            string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	LogLevel  string
	LogFormat string

	// Licensing store holding the empresa table with every tenant.
	LicensingURL string

	TenantDB TenantDBConfig

	Redis RedisConfig
	Minio MinioConfig

	ViaCEPBaseURL string
	ViaCEPTimeout time.Duration
	CEPCacheTTL   time.Duration
}

// TenantDBConfig describes the server hosting one database per tenant.
type TenantDBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	SSLMode  string

	MaxConns        int32
	MinConns        int32
	IdleTimeout     time.Duration
	JanitorInterval time.Duration
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	L1MaxCost int64
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Load reads configuration from a .env file (if present) and then from
// environment variables.
func Load() (*Config, error) {
	v := newViper()

	v.SetDefault("PORT", "5000")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("TENANT_DB_HOST", "localhost")
	v.SetDefault("TENANT_DB_PORT", 5432)
	v.SetDefault("TENANT_DB_USER", "postgres")
	v.SetDefault("TENANT_DB_SSLMODE", "disable")
	v.SetDefault("TENANT_POOL_MAX_CONNS", 10)
	v.SetDefault("TENANT_POOL_MIN_CONNS", 0)
	v.SetDefault("TENANT_POOL_IDLE", "15m")
	v.SetDefault("TENANT_POOL_JANITOR_INTERVAL", "1m")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_L1_MAX_COST", 16<<20)

	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_BUCKET", "kidspace-images")
	v.SetDefault("MINIO_USE_SSL", false)

	v.SetDefault("VIACEP_BASE_URL", "https://viacep.com.br")
	v.SetDefault("VIACEP_TIMEOUT", "5s")
	v.SetDefault("CEP_CACHE_TTL", "24h")

	cfg := &Config{
		Port:            v.GetString("PORT"),
		RequestTimeout:  v.GetDuration("REQUEST_TIMEOUT"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		LogLevel:        strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat:       strings.ToLower(v.GetString("LOG_FORMAT")),
		LicensingURL:    v.GetString("LICENSING_DATABASE_URL"),
		TenantDB: TenantDBConfig{
			Host:            v.GetString("TENANT_DB_HOST"),
			Port:            v.GetInt("TENANT_DB_PORT"),
			User:            v.GetString("TENANT_DB_USER"),
			Password:        v.GetString("TENANT_DB_PASSWORD"),
			SSLMode:         v.GetString("TENANT_DB_SSLMODE"),
			MaxConns:        v.GetInt32("TENANT_POOL_MAX_CONNS"),
			MinConns:        v.GetInt32("TENANT_POOL_MIN_CONNS"),
			IdleTimeout:     v.GetDuration("TENANT_POOL_IDLE"),
			JanitorInterval: v.GetDuration("TENANT_POOL_JANITOR_INTERVAL"),
		},
		Redis: RedisConfig{
			Addr:      v.GetString("REDIS_ADDR"),
			Password:  v.GetString("REDIS_PASSWORD"),
			DB:        v.GetInt("REDIS_DB"),
			L1MaxCost: v.GetInt64("CACHE_L1_MAX_COST"),
		},
		Minio: MinioConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
		},
		ViaCEPBaseURL: strings.TrimRight(v.GetString("VIACEP_BASE_URL"), "/"),
		ViaCEPTimeout: v.GetDuration("VIACEP_TIMEOUT"),
		CEPCacheTTL:   v.GetDuration("CEP_CACHE_TTL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// TenantDSN returns the connection string for the database named after a tenant.
func (c TenantDBConfig) TenantDSN(database string) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + database,
	}
	q := url.Values{}
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Config) validate() error {
	var errs []error
	if c.LicensingURL == "" {
		errs = append(errs, errors.New("LICENSING_DATABASE_URL must be set"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if c.TenantDB.MaxConns <= 0 {
		errs = append(errs, errors.New("TENANT_POOL_MAX_CONNS must be positive"))
	}
	if c.TenantDB.MinConns < 0 || c.TenantDB.MinConns > c.TenantDB.MaxConns {
		errs = append(errs, fmt.Errorf("TENANT_POOL_MIN_CONNS must be between 0 and %d", c.TenantDB.MaxConns))
	}
	if c.TenantDB.JanitorInterval <= 0 || c.TenantDB.IdleTimeout <= 0 {
		errs = append(errs, errors.New("TENANT_POOL_JANITOR_INTERVAL and TENANT_POOL_IDLE must be positive"))
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q is not supported", c.LogFormat))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func newViper() *viper.Viper {
	// A missing .env is fine, production uses real env vars.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	return v
}
