// Package config handles loading and validating application configuration.
//
// Configuration is loaded from a YAML file with environment variable overrides.
// Environment variables use the HANDOFF_ prefix (e.g., HANDOFF_PORT).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration.
type Config struct {
	Server        Server        `yaml:"server"`
	Auth          Auth          `yaml:"auth"`
	Throttle      Throttle      `yaml:"throttle"`
	RateLimit     RateLimit     `yaml:"ratelimit"`
	Stats         Stats         `yaml:"stats"`
	Log           Log           `yaml:"log"`
	Observability Observability `yaml:"observability"`
}

// Server configures the HTTP listener.
type Server struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Auth configures the credential store, admin identities and session tokens.
type Auth struct {
	UsersFile   string        `yaml:"users_file"`
	AdminEmails []string      `yaml:"admin_emails"`
	TokenSecret string        `yaml:"token_secret"`
	TokenIssuer string        `yaml:"token_issuer"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
	BcryptCost  int           `yaml:"bcrypt_cost"`
}

// Throttle configures the login chain's fixed-window throttle.
type Throttle struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	// ExitOnAbort stops the server when the throttle trips instead of
	// answering 429.
	ExitOnAbort bool `yaml:"exit_on_abort"`
}

// RateLimit configures the per-client token bucket rate limiter.
type RateLimit struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Stats configures where login outcomes are recorded.
type Stats struct {
	Backend       string        `yaml:"backend"` // "memory" or "redis"
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	RedisPrefix   string        `yaml:"redis_prefix"`
	RedisTTL      time.Duration `yaml:"redis_ttl"`
}

// Log configures structured logging.
type Log struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	CloudFormat string `yaml:"cloud_format"` // "", "gcp" or "gcp_with_resource"
}

// Observability configures optional OpenTelemetry tracing.
type Observability struct {
	OTelEnabled     bool   `yaml:"otel_enabled"`
	OTelEndpoint    string `yaml:"otel_endpoint"`
	OTelServiceName string `yaml:"otel_service_name"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() Config {
	return Config{
		Server: Server{
			Host:         "127.0.0.1",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Auth: Auth{
			UsersFile:   "./users.txt",
			AdminEmails: []string{"admin@example.com"},
			TokenIssuer: "handoff",
			TokenTTL:    time.Hour,
			BcryptCost:  10,
		},
		Throttle: Throttle{
			RequestsPerMinute: 2,
		},
		RateLimit: RateLimit{
			RequestsPerSecond: 10,
			Burst:             20,
		},
		Stats: Stats{
			Backend:     "memory",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "handoff:logins",
			RedisTTL:    24 * time.Hour,
		},
		Log: Log{
			Level:  "info",
			Format: "json",
		},
		Observability: Observability{
			OTelEndpoint:    "http://localhost:4318",
			OTelServiceName: "handoff",
		},
	}
}

// Load reads configuration from the given YAML file path, then applies
// environment variable overrides. If path is empty, only defaults and
// environment variables are used.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := validate(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides reads HANDOFF_* environment variables and overrides
// the corresponding config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HANDOFF_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("HANDOFF_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("HANDOFF_AUTH_USERS_FILE"); v != "" {
		cfg.Auth.UsersFile = v
	}
	if v := os.Getenv("HANDOFF_AUTH_ADMIN_EMAILS"); v != "" {
		var admins []string
		for _, a := range strings.Split(v, ",") {
			if a = strings.TrimSpace(a); a != "" {
				admins = append(admins, a)
			}
		}
		cfg.Auth.AdminEmails = admins
	}
	if v := os.Getenv("HANDOFF_AUTH_TOKEN_SECRET"); v != "" {
		cfg.Auth.TokenSecret = v
	}
	if v := os.Getenv("HANDOFF_AUTH_TOKEN_TTL"); v != "" {
		if ttl, err := time.ParseDuration(v); err == nil {
			cfg.Auth.TokenTTL = ttl
		}
	}
	if v := os.Getenv("HANDOFF_THROTTLE_RPM"); v != "" {
		if rpm, err := strconv.Atoi(v); err == nil {
			cfg.Throttle.RequestsPerMinute = rpm
		}
	}
	if v := os.Getenv("HANDOFF_THROTTLE_EXIT_ON_ABORT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Throttle.ExitOnAbort = b
		}
	}
	if v := os.Getenv("HANDOFF_RATELIMIT_RPS"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimit.RequestsPerSecond = rps
		}
	}
	if v := os.Getenv("HANDOFF_RATELIMIT_BURST"); v != "" {
		if burst, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit.Burst = burst
		}
	}
	if v := os.Getenv("HANDOFF_STATS_BACKEND"); v != "" {
		cfg.Stats.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("HANDOFF_REDIS_ADDR"); v != "" {
		cfg.Stats.RedisAddr = strings.TrimSpace(v)
	}
	if v := os.Getenv("HANDOFF_REDIS_PASSWORD"); v != "" {
		cfg.Stats.RedisPassword = v
	}
	if v := os.Getenv("HANDOFF_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("HANDOFF_LOG_FORMAT"); v != "" {
		cfg.Log.Format = strings.ToLower(v)
	}
	if v := os.Getenv("HANDOFF_LOG_CLOUD_FORMAT"); v != "" {
		cfg.Log.CloudFormat = strings.ToLower(v)
	}
	if v := os.Getenv("HANDOFF_OTEL_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Observability.OTelEnabled = b
		}
	}
	if v := os.Getenv("HANDOFF_OTEL_ENDPOINT"); v != "" {
		cfg.Observability.OTelEndpoint = strings.TrimSpace(v)
	}
}

// validate checks that the configuration is internally consistent.
func validate(cfg Config) error {
	var errs []error

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port))
	}
	if cfg.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	if cfg.Throttle.RequestsPerMinute < 1 {
		errs = append(errs, fmt.Errorf("throttle.requests_per_minute must be at least 1, got %d", cfg.Throttle.RequestsPerMinute))
	}
	if cfg.RateLimit.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("ratelimit.requests_per_second must be positive"))
	}
	if cfg.RateLimit.Burst < 1 {
		errs = append(errs, errors.New("ratelimit.burst must be at least 1"))
	}

	switch cfg.Stats.Backend {
	case "memory":
	case "redis":
		if cfg.Stats.RedisAddr == "" {
			errs = append(errs, errors.New("stats.redis_addr is required when stats.backend is redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("stats.backend must be memory or redis; got %q", cfg.Stats.Backend))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Log.Level] {
		errs = append(errs, fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", cfg.Log.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Log.Format] {
		errs = append(errs, fmt.Errorf("log.format must be json or text; got %q", cfg.Log.Format))
	}
	validCloud := map[string]bool{"": true, "gcp": true, "gcp_with_resource": true}
	if !validCloud[cfg.Log.CloudFormat] {
		errs = append(errs, fmt.Errorf("log.cloud_format must be empty, gcp or gcp_with_resource; got %q", cfg.Log.CloudFormat))
	}

	if cfg.Observability.OTelEnabled && strings.TrimSpace(cfg.Observability.OTelEndpoint) == "" {
		errs = append(errs, errors.New("observability.otel_endpoint is required when otel_enabled is true"))
	}

	return errors.Join(errs...)
}

// Addr returns the listen address as "host:port".
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
