// Package config provides unified configuration for the expense service.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (EXPENSES_ prefix plus the bare
//     JWT_SECRET_KEY, PASSWORD_SALT and EMAIL_* names)
//  4. SECRET environment variable holding a JSON object of the above
//  5. File reference resolution (_file suffix fields)
//  6. Validation
package config

import "time"

// Config holds all configuration for the expense service.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	Auth          AuthConfig          `yaml:"auth"`
	Notify        NotifyConfig        `yaml:"notify"`
	Observability ObservabilityConfig `yaml:"observability"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port              int           `yaml:"port"`                // default: 8080
	MaxBodySize       int64         `yaml:"max_body_size"`       // default: 1 MiB
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"` // default: 10s
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`    // default: 30s
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	Type     string         `yaml:"type"` // "memory" or "postgres", default: "memory"
	Postgres PostgresConfig `yaml:"postgres"`

	// SeedFile lists users registered at startup. Existing emails are
	// left untouched.
	SeedFile string `yaml:"seed_file"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"`         // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`        // default: 25
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: true
}

// AuthConfig holds credential and token settings.
type AuthConfig struct {
	JWTSecret        string          `yaml:"jwt_secret"`
	JWTSecretFile    string          `yaml:"jwt_secret_file"` // _file variant for jwt_secret
	PasswordSalt     string          `yaml:"password_salt"`
	PasswordSaltFile string          `yaml:"password_salt_file"` // _file variant for password_salt
	TokenLifetime    time.Duration   `yaml:"token_lifetime"`     // default: 24h
	Password         PasswordConfig  `yaml:"password"`
	RateLimit        RateLimitConfig `yaml:"rate_limit"`
}

// PasswordConfig holds PBKDF2 parameters.
type PasswordConfig struct {
	Iterations    int    `yaml:"iterations"`     // default: 250000
	KeyLength     int    `yaml:"key_length"`     // bytes, default: 16
	Hash          string `yaml:"hash"`           // "sha256" or "sha1", default: "sha256"
	MaxConcurrent int64  `yaml:"max_concurrent"` // 0 means GOMAXPROCS
}

// RateLimitConfig holds per-user request limits on the expense routes.
type RateLimitConfig struct {
	// RequestsPerMinute applies to roles without an entry in Tiers.
	// 0 disables limiting.
	RequestsPerMinute int `yaml:"requests_per_minute"`

	// Tiers maps a role ("admin", "user") to its own limit.
	Tiers map[string]int `yaml:"tiers"`
}

// NotifyConfig selects how expense notifications are delivered.
type NotifyConfig struct {
	Type string     `yaml:"type"` // "none", "log" or "smtp", default: "log"
	SMTP SMTPConfig `yaml:"smtp"`
}

// SMTPConfig holds mail submission settings.
type SMTPConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"` // default: 587
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	PasswordFile string `yaml:"password_file"` // _file variant for password
	From         string `yaml:"from"`          // default: username
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// LoggingConfig holds log output settings. EXPENSES_DEBUG and
// EXPENSES_LOG_LEVEL take precedence when set.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // default: "INFO"
	Format string `yaml:"format"` // "text" or "json", default: "text"
	Debug  string `yaml:"debug"`  // comma-separated debug categories
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:              8080,
			MaxBodySize:       1 << 20,
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   30 * time.Second,
		},
		Storage: StorageConfig{
			Type: "memory",
			Postgres: PostgresConfig{
				MaxConns:       25,
				MigrateOnStart: true,
			},
		},
		Auth: AuthConfig{
			TokenLifetime: 24 * time.Hour,
			Password: PasswordConfig{
				Iterations: 250000,
				KeyLength:  16,
				Hash:       "sha256",
			},
		},
		Notify: NotifyConfig{
			Type: "log",
			SMTP: SMTPConfig{
				Port: 587,
			},
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}

// MetricsPath returns the path to serve metrics on, or "" when disabled.
func (c *Config) MetricsPath() string {
	if !c.Observability.Metrics.Enabled {
		return ""
	}
	return c.Observability.Metrics.Path
}
