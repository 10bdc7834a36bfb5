package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingConfiguration marks a required secret that is absent from
// every configuration source. The service cannot start without it.
var ErrMissingConfiguration = errors.New("missing required configuration")

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	if c.Auth.JWTSecret == "" {
		errs = append(errs, fmt.Errorf("%w: auth.jwt_secret (JWT_SECRET_KEY)", ErrMissingConfiguration))
	}
	if c.Auth.PasswordSalt == "" {
		errs = append(errs, fmt.Errorf("%w: auth.password_salt (PASSWORD_SALT)", ErrMissingConfiguration))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.MaxBodySize <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_size must be > 0, got %d", c.Server.MaxBodySize))
	}

	switch c.Storage.Type {
	case "memory", "postgres":
		// valid
	default:
		errs = append(errs, fmt.Errorf("storage.type must be \"memory\" or \"postgres\", got %q", c.Storage.Type))
	}

	if c.Storage.Type == "postgres" {
		if c.Storage.Postgres.DSN == "" && c.Storage.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("storage.postgres.dsn or storage.postgres.dsn_file is required when storage.type is \"postgres\""))
		}
	}

	if c.Auth.TokenLifetime <= 0 {
		errs = append(errs, fmt.Errorf("auth.token_lifetime must be > 0, got %s", c.Auth.TokenLifetime))
	}
	if c.Auth.Password.Iterations <= 0 {
		errs = append(errs, fmt.Errorf("auth.password.iterations must be > 0, got %d", c.Auth.Password.Iterations))
	}
	if c.Auth.Password.KeyLength <= 0 {
		errs = append(errs, fmt.Errorf("auth.password.key_length must be > 0, got %d", c.Auth.Password.KeyLength))
	}
	switch strings.ToLower(c.Auth.Password.Hash) {
	case "sha256", "sha1":
		// valid
	default:
		errs = append(errs, fmt.Errorf("auth.password.hash must be \"sha256\" or \"sha1\", got %q", c.Auth.Password.Hash))
	}
	if c.Auth.RateLimit.RequestsPerMinute < 0 {
		errs = append(errs, fmt.Errorf("auth.rate_limit.requests_per_minute must be >= 0, got %d", c.Auth.RateLimit.RequestsPerMinute))
	}
	for role, rpm := range c.Auth.RateLimit.Tiers {
		if rpm < 0 {
			errs = append(errs, fmt.Errorf("auth.rate_limit.tiers.%s must be >= 0, got %d", role, rpm))
		}
	}

	switch c.Notify.Type {
	case "none", "log":
		// valid
	case "smtp":
		if c.Notify.SMTP.Host == "" {
			errs = append(errs, fmt.Errorf("notify.smtp.host is required when notify.type is \"smtp\""))
		}
	default:
		errs = append(errs, fmt.Errorf("notify.type must be \"none\", \"log\" or \"smtp\", got %q", c.Notify.Type))
	}

	if c.Observability.Metrics.Enabled && !strings.HasPrefix(c.Observability.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("observability.metrics.path must start with \"/\", got %q", c.Observability.Metrics.Path))
	}

	return errors.Join(errs...)
}
