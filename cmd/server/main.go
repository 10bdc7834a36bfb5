// Command server runs the expense tracking API.
//
// Configuration is read from a YAML file (-config, EXPENSES_CONFIG,
// ./config.yaml or /etc/expenses/config.yaml) and the environment:
//
//	JWT_SECRET_KEY   - token signing secret (required)
//	PASSWORD_SALT    - password digest salt (required)
//	SECRET           - JSON object holding any of the variables here
//	EMAIL_HOST       - SMTP relay; enables mail notifications
//	EMAIL_PORT       - SMTP port (default: 587)
//	EMAIL_USER       - SMTP username and sender address
//	EMAIL_PASSWORD   - SMTP password
//	EXPENSES_PORT    - listen port (default: 8080)
//	EXPENSES_STORAGE - "memory" or "postgres" (default: "memory")
//	DATABASE_URL     - PostgreSQL DSN for the postgres store
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/rhuss/despesas/pkg/api"
	"github.com/rhuss/despesas/pkg/auth"
	"github.com/rhuss/despesas/pkg/auth/jwt"
	"github.com/rhuss/despesas/pkg/auth/login"
	"github.com/rhuss/despesas/pkg/auth/password"
	"github.com/rhuss/despesas/pkg/config"
	"github.com/rhuss/despesas/pkg/debug"
	"github.com/rhuss/despesas/pkg/expenses"
	"github.com/rhuss/despesas/pkg/notify"
	"github.com/rhuss/despesas/pkg/seed"
	"github.com/rhuss/despesas/pkg/storage/memory"
	"github.com/rhuss/despesas/pkg/storage/postgres"
	transporthttp "github.com/rhuss/despesas/pkg/transport/http"
)

// store is what the server needs from a storage backend.
type store interface {
	login.UserStore
	expenses.Store
	HealthCheck(ctx context.Context) error
	io.Closer
}

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		if errors.Is(err, config.ErrMissingConfiguration) {
			slog.Error(api.MessageMissingEnvs, "code", api.CodeMissingEnvs, "error", err)
		} else {
			slog.Error("server failed", "error", err)
		}
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	debug.Init(cfg.Logging.Debug, cfg.Logging.Level, cfg.Logging.Format)
	if cats := debug.Categories(); len(cats) > 0 {
		slog.Info("debug logging enabled", "categories", cats)
	}

	ctx := context.Background()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	hasher, err := password.New(password.Config{
		Salt:          cfg.Auth.PasswordSalt,
		Iterations:    cfg.Auth.Password.Iterations,
		KeyLength:     cfg.Auth.Password.KeyLength,
		Hash:          cfg.Auth.Password.Hash,
		MaxConcurrent: cfg.Auth.Password.MaxConcurrent,
	})
	if err != nil {
		return fmt.Errorf("creating password hasher: %w", err)
	}

	codec, err := jwt.New(jwt.Config{
		Secret:   cfg.Auth.JWTSecret,
		Lifetime: cfg.Auth.TokenLifetime,
	})
	if err != nil {
		return fmt.Errorf("creating token codec: %w", err)
	}

	loginSvc := login.NewService(st, hasher, codec)

	if cfg.Storage.SeedFile != "" {
		users, err := seed.Load(cfg.Storage.SeedFile)
		if err != nil {
			return err
		}
		stats, err := seed.Apply(ctx, loginSvc, users)
		if err != nil {
			return err
		}
		slog.Info("seed applied", "file", cfg.Storage.SeedFile, "created", stats.Created, "skipped", stats.Skipped)
	}

	notifier, err := notify.New(notifyConfig(cfg.Notify))
	if err != nil {
		return fmt.Errorf("creating notifier: %w", err)
	}
	slog.Info("notifications", "type", notifier.Name())

	chain := &auth.AuthChain{
		Authenticators:  []auth.Authenticator{jwt.NewAuthenticator(codec)},
		DefaultDecision: auth.No,
	}

	var limiter auth.RateLimiter
	if rl := cfg.Auth.RateLimit; rl.RequestsPerMinute > 0 || len(rl.Tiers) > 0 {
		tiers := make(map[string]auth.TierConfig, len(rl.Tiers))
		for role, rpm := range rl.Tiers {
			tiers[strings.ToLower(role)] = auth.TierConfig{RequestsPerMinute: rpm}
		}
		limiter = auth.NewInProcessLimiter(tiers, rl.RequestsPerMinute)
		slog.Info("rate limiting enabled", "default_rpm", rl.RequestsPerMinute, "tiers", len(tiers))
	}

	srv := transporthttp.NewServer(
		transporthttp.Services{
			Login:    loginSvc,
			Expenses: expenses.NewService(st, notifier),
			Health:   st,
			Gate:     auth.Middleware(chain, limiter, auth.DefaultBypassEndpoints),
		},
		transporthttp.WithAddr(":"+strconv.Itoa(cfg.Server.Port)),
		transporthttp.WithMaxBodySize(cfg.Server.MaxBodySize),
		transporthttp.WithReadHeaderTimeout(cfg.Server.ReadHeaderTimeout),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithMetricsPath(cfg.MetricsPath()),
		transporthttp.WithLogger(slog.Default()),
	)

	return srv.ListenAndServe()
}

// openStore creates the storage backend selected by cfg.Storage.Type.
func openStore(ctx context.Context, cfg *config.Config) (store, error) {
	switch cfg.Storage.Type {
	case "postgres":
		pg, err := postgres.New(ctx, postgres.Config{
			DSN:            cfg.Storage.Postgres.DSN,
			MaxConns:       cfg.Storage.Postgres.MaxConns,
			MigrateOnStart: cfg.Storage.Postgres.MigrateOnStart,
		})
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		slog.Info("storage enabled", "type", "postgres", "migrate_on_start", cfg.Storage.Postgres.MigrateOnStart)
		return pg, nil
	default:
		slog.Info("storage enabled", "type", "memory")
		return memory.New(), nil
	}
}

// notifyConfig maps the notify section onto the notifier settings. The
// sender defaults to the SMTP username.
func notifyConfig(c config.NotifyConfig) notify.Config {
	from := c.SMTP.From
	if from == "" {
		from = c.SMTP.Username
	}
	return notify.Config{
		Type: c.Type,
		SMTP: notify.SMTPConfig{
			Host:     c.SMTP.Host,
			Port:     c.SMTP.Port,
			Username: c.SMTP.Username,
			Password: c.SMTP.Password,
			From:     from,
		},
	}
}
