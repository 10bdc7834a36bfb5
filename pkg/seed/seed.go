// Package seed registers users from a file. The file is YAML or JSON
// with a top-level "users" list:
//
//	{"users": [{"name": "Teste", "lastName": "Silva", "role": "user",
//	  "email": "teste@teste.com", "documentNumber": "123", "password": "123123"}]}
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rhuss/despesas/pkg/auth"
	"github.com/rhuss/despesas/pkg/storage"
)

// User is one entry of a seed file. Password is plaintext.
type User struct {
	Name           string `yaml:"name"`
	LastName       string `yaml:"lastName"`
	Role           string `yaml:"role"`
	Email          string `yaml:"email"`
	DocumentNumber string `yaml:"documentNumber"`
	Password       string `yaml:"password"`
}

type file struct {
	Users []User `yaml:"users"`
}

// Registrar creates accounts. login.Service satisfies it.
type Registrar interface {
	Register(ctx context.Context, identity auth.Identity, password string) (*auth.Identity, error)
}

// Stats summarizes an Apply run.
type Stats struct {
	Created int
	Skipped int
}

// Load reads a seed file.
func Load(path string) ([]User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing seed file %s: %w", path, err)
	}
	return f.Users, nil
}

// Apply registers every user. Emails that already exist are skipped, so
// running it twice is harmless. It stops at the first other error.
func Apply(ctx context.Context, r Registrar, users []User) (Stats, error) {
	var st Stats
	for i, u := range users {
		role, err := auth.ParseRole(u.Role)
		if err != nil {
			return st, fmt.Errorf("seeding user %d (%s): %w", i, u.Email, err)
		}
		identity := auth.Identity{
			Name:           u.Name,
			LastName:       u.LastName,
			Role:           role,
			Email:          u.Email,
			DocumentNumber: u.DocumentNumber,
		}

		created, err := r.Register(ctx, identity, u.Password)
		switch {
		case errors.Is(err, storage.ErrConflict):
			st.Skipped++
			slog.Debug("seed user exists", "email", u.Email)
		case err != nil:
			return st, fmt.Errorf("seeding user %d (%s): %w", i, u.Email, err)
		default:
			st.Created++
			slog.Info("seeded user", "user_id", created.ID, "email", created.Email)
		}
	}
	return st, nil
}
