// Command seed registers the users listed in a file, deriving their
// password digests with the configured salt. Existing emails are skipped.
//
// Usage:
//
//	seed [-config config.yaml] users.json
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/rhuss/despesas/pkg/api"
	"github.com/rhuss/despesas/pkg/auth/jwt"
	"github.com/rhuss/despesas/pkg/auth/login"
	"github.com/rhuss/despesas/pkg/auth/password"
	"github.com/rhuss/despesas/pkg/config"
	"github.com/rhuss/despesas/pkg/debug"
	"github.com/rhuss/despesas/pkg/seed"
	"github.com/rhuss/despesas/pkg/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config file] users.json\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*configPath, flag.Arg(0)); err != nil {
		if errors.Is(err, config.ErrMissingConfiguration) {
			slog.Error(api.MessageMissingEnvs, "code", api.CodeMissingEnvs, "error", err)
		} else {
			slog.Error("seed failed", "error", err)
		}
		os.Exit(1)
	}
}

func run(configPath, usersPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	debug.Init(cfg.Logging.Debug, cfg.Logging.Level, cfg.Logging.Format)

	// The in-memory store does not outlive this process, so seeding it
	// here would have no effect. The server seeds it via storage.seed_file.
	if cfg.Storage.Type != "postgres" {
		return fmt.Errorf("seed requires storage.type \"postgres\", got %q", cfg.Storage.Type)
	}

	users, err := seed.Load(usersPath)
	if err != nil {
		return err
	}

	ctx := context.Background()

	st, err := postgres.New(ctx, postgres.Config{
		DSN:            cfg.Storage.Postgres.DSN,
		MaxConns:       cfg.Storage.Postgres.MaxConns,
		MigrateOnStart: cfg.Storage.Postgres.MigrateOnStart,
	})
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
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

	// Register never issues tokens, but the service requires an issuer.
	codec, err := jwt.New(jwt.Config{Secret: cfg.Auth.JWTSecret, Lifetime: cfg.Auth.TokenLifetime})
	if err != nil {
		return fmt.Errorf("creating token codec: %w", err)
	}

	stats, err := seed.Apply(ctx, login.NewService(st, hasher, codec), users)
	if err != nil {
		return err
	}

	slog.Info("seed complete", "created", stats.Created, "skipped", stats.Skipped)
	return nil
}
