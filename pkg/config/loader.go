package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rhuss/despesas/pkg/debug"
)

// EnvSecret names the environment variable holding a JSON object of
// further variables. Its entries take precedence over the process
// environment.
const EnvSecret = "SECRET"

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, EXPENSES_CONFIG env, ./config.yaml, /etc/expenses/config.yaml)
//  3. Environment variable overrides
//  4. SECRET JSON expansion
//  5. File reference resolution (_file suffix)
//  6. Validation
func Load(configPath string) (*Config, error) {
	return load(configPath, os.Getenv)
}

func load(configPath string, getenv func(string) string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath, getenv)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
		debug.Log("config", "loaded config file", "path", filePath)
	}

	if err := applyEnvOverrides(&cfg, getenv); err != nil {
		return nil, err
	}

	if raw := getenv(EnvSecret); raw != "" {
		secret, err := parseSecretJSON(raw)
		if err != nil {
			return nil, err
		}
		if err := applyEnvOverrides(&cfg, lookupIn(secret)); err != nil {
			return nil, fmt.Errorf("%s: %w", EnvSecret, err)
		}
		debug.Log("config", "expanded secret", "keys", len(secret))
	}

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. EXPENSES_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/expenses/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string, getenv func(string) string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := getenv("EXPENSES_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"config.yaml",
		"/etc/expenses/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps environment variables to config fields. Bare
// names (JWT_SECRET_KEY, PASSWORD_SALT, EMAIL_*) are accepted for
// compatibility with existing deployments; EXPENSES_* names win when both
// are set.
func applyEnvOverrides(cfg *Config, getenv func(string) string) error {
	str := func(dst *string, names ...string) {
		for _, name := range names {
			if v := getenv(name); v != "" {
				*dst = v
				return
			}
		}
	}

	var errs []string
	integer := func(dst *int, name string) {
		if v := getenv(name); v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %q is not an integer", name, v))
				return
			}
			*dst = n
		}
	}
	duration := func(dst *time.Duration, name string) {
		if v := getenv(name); v != "" {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %q is not a duration", name, v))
				return
			}
			*dst = d
		}
	}

	integer(&cfg.Server.Port, "EXPENSES_PORT")

	str(&cfg.Storage.Type, "EXPENSES_STORAGE")
	str(&cfg.Storage.Postgres.DSN, "EXPENSES_DATABASE_URL", "DATABASE_URL")
	str(&cfg.Storage.SeedFile, "EXPENSES_SEED_FILE")
	if v := getenv("EXPENSES_MIGRATE_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("EXPENSES_MIGRATE_ON_START: %q is not a boolean", v))
		} else {
			cfg.Storage.Postgres.MigrateOnStart = b
		}
	}

	str(&cfg.Auth.JWTSecret, "EXPENSES_JWT_SECRET", "JWT_SECRET_KEY")
	str(&cfg.Auth.PasswordSalt, "EXPENSES_PASSWORD_SALT", "PASSWORD_SALT")
	duration(&cfg.Auth.TokenLifetime, "EXPENSES_TOKEN_LIFETIME")
	integer(&cfg.Auth.Password.Iterations, "EXPENSES_PBKDF2_ITERATIONS")
	integer(&cfg.Auth.Password.KeyLength, "EXPENSES_PBKDF2_KEY_LENGTH")
	str(&cfg.Auth.Password.Hash, "EXPENSES_PBKDF2_HASH")
	integer(&cfg.Auth.RateLimit.RequestsPerMinute, "EXPENSES_RATE_LIMIT_RPM")

	// Any mail setting in the environment selects SMTP delivery unless a
	// notifier is named explicitly.
	if getenv("EMAIL_HOST") != "" && getenv("EXPENSES_NOTIFY") == "" {
		cfg.Notify.Type = "smtp"
	}
	str(&cfg.Notify.Type, "EXPENSES_NOTIFY")
	str(&cfg.Notify.SMTP.Host, "EXPENSES_SMTP_HOST", "EMAIL_HOST")
	integer(&cfg.Notify.SMTP.Port, "EMAIL_PORT")
	integer(&cfg.Notify.SMTP.Port, "EXPENSES_SMTP_PORT")
	str(&cfg.Notify.SMTP.Username, "EXPENSES_SMTP_USERNAME", "EMAIL_USER")
	str(&cfg.Notify.SMTP.Password, "EXPENSES_SMTP_PASSWORD", "EMAIL_PASSWORD")
	str(&cfg.Notify.SMTP.From, "EXPENSES_SMTP_FROM")

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment: %s", strings.Join(errs, "; "))
	}
	return nil
}

// parseSecretJSON decodes the SECRET variable. Backslashes are stripped
// first so that values escaped by deployment tooling still parse. Non-string
// values are formatted with their JSON text.
func parseSecretJSON(raw string) (map[string]string, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, `\`, ""))

	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err != nil {
		return nil, fmt.Errorf("parsing %s JSON: %w", EnvSecret, err)
	}

	out := make(map[string]string, len(obj))
	for k, v := range obj {
		switch tv := v.(type) {
		case string:
			out[k] = tv
		case nil:
		default:
			b, _ := json.Marshal(tv)
			out[k] = string(b)
		}
	}
	return out, nil
}

func lookupIn(m map[string]string) func(string) string {
	return func(name string) string { return m[name] }
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// For each field ending in _file, if the value field is empty and the file field is set,
// the file is read, whitespace is trimmed, and the value field is populated.
func resolveFileReferences(cfg *Config) error {
	refs := []struct {
		name  string
		file  string
		value *string
	}{
		{"storage.postgres.dsn_file", cfg.Storage.Postgres.DSNFile, &cfg.Storage.Postgres.DSN},
		{"auth.jwt_secret_file", cfg.Auth.JWTSecretFile, &cfg.Auth.JWTSecret},
		{"auth.password_salt_file", cfg.Auth.PasswordSaltFile, &cfg.Auth.PasswordSalt},
		{"notify.smtp.password_file", cfg.Notify.SMTP.PasswordFile, &cfg.Notify.SMTP.Password},
	}

	for _, ref := range refs {
		if ref.file == "" || *ref.value != "" {
			continue
		}
		val, err := readSecretFile(ref.file)
		if err != nil {
			return fmt.Errorf("%s: %w", ref.name, err)
		}
		*ref.value = val
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
