// Package jwt issues and validates the HS256 access tokens handed out at
// login, and adapts validation to the auth.Authenticator interface so the
// token can gate protected endpoints.
//
// A token carries the public claims of the user at the moment of login plus
// an expiration. Tokens are stateless: there is no revocation list and no
// refresh flow, so a token stays valid until it expires.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/rhuss/despesas/pkg/auth"
	"github.com/rhuss/despesas/pkg/debug"
	"github.com/rhuss/despesas/pkg/observability"
)

// DefaultLifetime is how long an issued token stays valid.
const DefaultLifetime = 24 * time.Hour

// ErrMissingSecret is returned by New when no signing secret is configured.
var ErrMissingSecret = errors.New("jwt: signing secret is required")

// Config holds the token codec configuration.
type Config struct {
	// Secret is the HMAC key shared by issuing and validating.
	Secret string

	// Lifetime is added to the issue time to compute exp. Default: 24h.
	Lifetime time.Duration

	// Now returns the current time. Default: time.Now.
	Now func() time.Time
}

// applyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) applyDefaults() {
	if c.Lifetime <= 0 {
		c.Lifetime = DefaultLifetime
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Claims is the token payload: the identity fields plus the registered
// claims exp, iat and sub.
type Claims struct {
	auth.Identity
	jwtlib.RegisteredClaims
}

// Codec signs and verifies tokens with a single HMAC secret.
// It is safe for concurrent use.
type Codec struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
	parser   *jwtlib.Parser
}

// New creates a Codec. The secret must be non-empty.
func New(cfg Config) (*Codec, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	cfg.applyDefaults()

	return &Codec{
		secret:   []byte(cfg.Secret),
		lifetime: cfg.Lifetime,
		now:      cfg.Now,
		parser: jwtlib.NewParser(
			jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
			jwtlib.WithExpirationRequired(),
			jwtlib.WithTimeFunc(cfg.Now),
			jwtlib.WithStrictDecoding(),
		),
	}, nil
}

// Lifetime returns the configured token lifetime.
func (c *Codec) Lifetime() time.Duration {
	return c.lifetime
}

// Issue signs a token whose claims are a copy of identity, expiring
// Lifetime after now.
func (c *Codec) Issue(identity *auth.Identity) (string, error) {
	if identity == nil {
		return "", errors.New("jwt: identity is required")
	}

	now := c.now()
	claims := Claims{
		Identity: *identity,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   strconv.FormatInt(identity.ID, 10),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(c.lifetime)),
		},
	}

	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	observability.TokensIssuedTotal.Inc()
	debug.Log("auth", "token issued", "user_id", identity.ID, "expires_at", claims.ExpiresAt.Time)
	return token, nil
}

// Validate verifies the signature, the algorithm and the expiration of
// token, and returns the identity it carries together with its expiry.
// A token is valid only strictly before its exp. Every failure wraps
// auth.ErrTokenInvalid.
func (c *Codec) Validate(token string) (*auth.Identity, time.Time, error) {
	claims := &Claims{}
	parsed, err := c.parser.ParseWithClaims(token, claims, func(*jwtlib.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		observability.TokenValidationsTotal.WithLabelValues("invalid").Inc()
		return nil, time.Time{}, fmt.Errorf("%w: %v", auth.ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		observability.TokenValidationsTotal.WithLabelValues("invalid").Inc()
		return nil, time.Time{}, auth.ErrTokenInvalid
	}

	if claims.Identity.ID <= 0 || !claims.Identity.Role.Valid() {
		observability.TokenValidationsTotal.WithLabelValues("invalid").Inc()
		return nil, time.Time{}, fmt.Errorf("%w: incomplete identity claims", auth.ErrTokenInvalid)
	}

	observability.TokenValidationsTotal.WithLabelValues("valid").Inc()
	identity := claims.Identity
	return &identity, claims.ExpiresAt.Time, nil
}

// Authenticator validates bearer tokens issued by a Codec.
type Authenticator struct {
	codec *Codec
}

// NewAuthenticator creates an Authenticator backed by codec.
func NewAuthenticator(codec *Codec) *Authenticator {
	return &Authenticator{codec: codec}
}

// Authenticate extracts a bearer token from the Authorization header and
// validates it.
//
// Decision outcomes:
//   - No: header missing, not a Bearer scheme, empty token, or invalid token
//   - Yes: valid token with populated Identity
//
// Bearer tokens are the only credential the service accepts, so the
// authenticator never abstains.
func (a *Authenticator) Authenticate(_ context.Context, r *http.Request) auth.AuthResult {
	header := r.Header.Get("Authorization")
	if header == "" {
		return auth.AuthResult{Decision: auth.No, Err: auth.ErrUnauthenticated}
	}

	if !strings.HasPrefix(header, "Bearer ") {
		return auth.AuthResult{Decision: auth.No, Err: auth.ErrUnauthenticated}
	}

	tokenStr := strings.TrimPrefix(header, "Bearer ")
	if tokenStr == "" {
		return auth.AuthResult{
			Decision: auth.No,
			Err:      fmt.Errorf("%w: empty bearer token", auth.ErrTokenInvalid),
		}
	}
	if strings.ContainsAny(tokenStr, " \t") {
		return auth.AuthResult{
			Decision: auth.No,
			Err:      fmt.Errorf("%w: malformed bearer header", auth.ErrTokenInvalid),
		}
	}

	identity, _, err := a.codec.Validate(tokenStr)
	if err != nil {
		slog.Debug("JWT validation failed", "error", err)
		return auth.AuthResult{Decision: auth.No, Err: err}
	}

	return auth.AuthResult{Decision: auth.Yes, Identity: identity}
}
