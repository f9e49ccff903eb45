// Package config loads application configuration from the environment, with
// an optional YAML overlay for deployments that prefer files.
package config

import (
	"fmt"
	"os"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Session   SessionConfig   `yaml:"session"`
	Logging   LoggingConfig   `yaml:"logging"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Social    SocialConfig    `yaml:"social"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host string `env:"SERVER_HOST,default=0.0.0.0" yaml:"host"`
	Port int    `env:"SERVER_PORT,default=8080" yaml:"port"`
}

// DatabaseConfig controls the Postgres connection. An empty DSN selects the
// in-memory stores, which is only suitable for development.
type DatabaseConfig struct {
	DSN             string `env:"DATABASE_URL" yaml:"dsn"`
	MaxOpenConns    int    `env:"DATABASE_MAX_OPEN_CONNS,default=25" yaml:"max_open_conns"`
	MaxIdleConns    int    `env:"DATABASE_MAX_IDLE_CONNS,default=5" yaml:"max_idle_conns"`
	ConnMaxLifetime int    `env:"DATABASE_CONN_MAX_LIFETIME,default=300" yaml:"conn_max_lifetime"` // seconds
}

// RedisConfig controls the optional taxonomy cache.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" yaml:"addr"`
	Password string `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int    `env:"REDIS_DB,default=0" yaml:"db"`
}

// SessionConfig controls cookie sessions.
type SessionConfig struct {
	LifetimeHours int  `env:"SESSION_LIFETIME_HOURS,default=168" yaml:"lifetime_hours"`
	CookieSecure  bool `env:"SESSION_COOKIE_SECURE,default=false" yaml:"cookie_secure"`
}

// LoggingConfig mirrors the logger package configuration.
type LoggingConfig struct {
	Level      string `env:"LOG_LEVEL,default=info" yaml:"level"`
	Format     string `env:"LOG_FORMAT,default=text" yaml:"format"`
	Output     string `env:"LOG_OUTPUT,default=stdout" yaml:"output"`
	FilePrefix string `env:"LOG_FILE_PREFIX" yaml:"file_prefix"`
}

// CORSConfig lists allowed browser origins.
type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS,default=*" yaml:"allowed_origins"`
}

// RateLimitConfig bounds per-caller request rates.
type RateLimitConfig struct {
	RequestsPerSecond int `env:"RATE_LIMIT_RPS,default=20" yaml:"requests_per_second"`
	Burst             int `env:"RATE_LIMIT_BURST,default=40" yaml:"burst"`
}

// SocialConfig controls cross-posting. Providers without an endpoint stay
// unconfigured; an empty schedule uses the publisher's default interval.
type SocialConfig struct {
	PublishSchedule string `env:"SOCIAL_PUBLISH_SCHEDULE" yaml:"publish_schedule"`
	QuizBaseURL     string `env:"QUIZ_BASE_URL,default=http://localhost:8080" yaml:"quiz_base_url"`
	TumblrAPIURL    string `env:"TUMBLR_API_URL" yaml:"tumblr_api_url"`
	FacebookAPIURL  string `env:"FACEBOOK_API_URL" yaml:"facebook_api_url"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; CONFIG_FILE names an optional YAML
// overlay applied on top of the decoded environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyOverlay(&cfg, path); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

func applyOverlay(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config overlay: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config overlay: %w", err)
	}
	return nil
}
