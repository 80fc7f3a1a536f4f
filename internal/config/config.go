// Package config loads the application configuration from an optional YAML
// file with environment variable overrides. Environment always wins so that
// container deployments need no config file at all.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	ReadTimeoutSec  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSec int    `yaml:"write_timeout_seconds"`
	IdleTimeoutSec  int    `yaml:"idle_timeout_seconds"`
}

// DatabaseConfig holds the PostgreSQL connection settings. An empty DSN
// selects the in-memory stores.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AuthConfig holds JWT settings. An empty secret disables authentication,
// which is only acceptable for local development.
type AuthConfig struct {
	JWTSecret   string `yaml:"jwt_secret"`
	TokenTTLMin int    `yaml:"token_ttl_minutes"`
}

// RateLimitConfig holds per-client request throttling settings.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// CORSConfig holds allowed browser origins.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// PayoutConfig points at the PIX payout provider used to resolve
// withdrawals. URL empty means withdrawals stay pending until an operator
// completes them.
type PayoutConfig struct {
	ResolverURL string `yaml:"resolver_url"`
	APIKey      string `yaml:"api_key"`
}

// PlansConfig points at the AI provider used to generate workout and diet
// plans. URL empty disables plan generation.
type PlansConfig struct {
	ProviderURL string `yaml:"provider_url"`
	APIKey      string `yaml:"api_key"`
}

// CareerConfig holds the cron schedule for the nightly career evaluation.
type CareerConfig struct {
	Schedule string `yaml:"schedule"`
}

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Logging   LoggingConfig   `yaml:"logging"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
	Payout    PayoutConfig    `yaml:"payout"`
	Plans     PlansConfig     `yaml:"plans"`
	Career    CareerConfig    `yaml:"career"`
}

// Default returns the configuration used when no file and no environment
// overrides are present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeoutSec:  15,
			WriteTimeoutSec: 30,
			IdleTimeoutSec:  60,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Auth:    AuthConfig{TokenTTLMin: 1440},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 20,
			Burst:             40,
		},
		CORS:   CORSConfig{AllowedOrigins: []string{"*"}},
		Career: CareerConfig{Schedule: "0 3 * * *"},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in that order. The file path comes from CONFIG_PATH
// and falls back to config/config.yaml when that file exists.
func Load() (*Config, error) {
	cfg := Default()

	path := strings.TrimSpace(os.Getenv("CONFIG_PATH"))
	explicit := path != ""
	if !explicit {
		path = "config/config.yaml"
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case explicit:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		return fmt.Errorf("rate limit requests per second must not be negative")
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Host, "HOST")
	setInt(&cfg.Server.Port, "PORT")
	setString(&cfg.Database.DSN, "DATABASE_URL")
	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Logging.Format, "LOG_FORMAT")
	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setInt(&cfg.Auth.TokenTTLMin, "JWT_TTL_MINUTES")
	setFloat(&cfg.RateLimit.RequestsPerSecond, "RATE_LIMIT_RPS")
	setInt(&cfg.RateLimit.Burst, "RATE_LIMIT_BURST")
	setString(&cfg.Payout.ResolverURL, "PAYOUT_RESOLVER_URL")
	setString(&cfg.Payout.APIKey, "PAYOUT_RESOLVER_KEY")
	setString(&cfg.Plans.ProviderURL, "PLANS_PROVIDER_URL")
	setString(&cfg.Plans.APIKey, "PLANS_PROVIDER_KEY")
	setString(&cfg.Career.Schedule, "CAREER_SCHEDULE")

	if raw := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); raw != "" {
		parts := strings.Split(raw, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				origins = append(origins, p)
			}
		}
		if len(origins) > 0 {
			cfg.CORS.AllowedOrigins = origins
		}
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = parsed
		}
	}
}
