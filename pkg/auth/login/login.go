// Package login exchanges an email and password for an access token.
package login

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rhuss/despesas/pkg/auth"
	"github.com/rhuss/despesas/pkg/observability"
	"github.com/rhuss/despesas/pkg/storage"
)

// Account is a stored user: the public identity plus the password digest.
// The digest never leaves this package's callers through a Result.
type Account struct {
	auth.Identity
	PasswordDigest string
}

// UserStore looks up and persists accounts.
type UserStore interface {
	// GetUserByEmail returns the account with the given email, or
	// storage.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*Account, error)

	// CreateUser persists a new account and returns it with its assigned
	// id and timestamps. Returns storage.ErrConflict for a taken email.
	CreateUser(ctx context.Context, account *Account) (*Account, error)
}

// Verifier derives and checks password digests.
type Verifier interface {
	Derive(plaintext string) string
	Matches(ctx context.Context, plaintext, stored string) (bool, error)
}

// TokenIssuer signs access tokens for an identity.
type TokenIssuer interface {
	Issue(identity *auth.Identity) (string, error)
}

// Result is returned by a successful login.
type Result struct {
	User  auth.Identity `json:"user"`
	Token string        `json:"token"`
}

// Service authenticates users by email and password.
type Service struct {
	users    UserStore
	verifier Verifier
	issuer   TokenIssuer

	// unknownDigest is compared against when the email is not registered,
	// so both failure paths do the same derivation work.
	unknownDigest string
}

// NewService creates a login service.
func NewService(users UserStore, verifier Verifier, issuer TokenIssuer) *Service {
	return &Service{
		users:         users,
		verifier:      verifier,
		issuer:        issuer,
		unknownDigest: verifier.Derive("\x00unknown-account"),
	}
}

// Authenticate verifies the credentials and issues a token whose claims
// are the account's public identity. An unknown email and a wrong password
// both return auth.ErrAuthenticationFailed. Store failures are returned
// wrapped.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Result, error) {
	if strings.TrimSpace(email) == "" {
		observability.LoginAttemptsTotal.WithLabelValues("failed").Inc()
		return nil, auth.ErrAuthenticationFailed
	}

	account, err := s.users.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		observability.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	digest := s.unknownDigest
	if account != nil {
		digest = account.PasswordDigest
	}

	ok, err := s.verifier.Matches(ctx, password, digest)
	if err != nil {
		observability.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if account == nil || !ok {
		observability.LoginAttemptsTotal.WithLabelValues("failed").Inc()
		slog.Info("login rejected", "reason", "invalid credentials")
		return nil, auth.ErrAuthenticationFailed
	}

	identity := account.Identity
	token, err := s.issuer.Issue(&identity)
	if err != nil {
		observability.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	observability.LoginAttemptsTotal.WithLabelValues("success").Inc()
	slog.Info("user logged in", "user_id", identity.ID)

	return &Result{User: identity, Token: token}, nil
}

// Register derives the digest for password and stores a new account.
func (s *Service) Register(ctx context.Context, identity auth.Identity, password string) (*auth.Identity, error) {
	if strings.TrimSpace(identity.Email) == "" {
		return nil, errors.New("email is required")
	}
	if password == "" {
		return nil, errors.New("password is required")
	}
	role, err := auth.ParseRole(string(identity.Role))
	if err != nil {
		return nil, err
	}
	identity.Role = role

	created, err := s.users.CreateUser(ctx, &Account{
		Identity:       identity,
		PasswordDigest: s.verifier.Derive(password),
	})
	if err != nil {
		return nil, fmt.Errorf("creating user %s: %w", identity.Email, err)
	}

	out := created.Identity
	return &out, nil
}
