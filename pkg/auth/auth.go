package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// AuthDecision represents the three possible outcomes of authentication.
type AuthDecision int

const (
	// Yes means credentials are valid. The chain stops and the identity is used.
	Yes AuthDecision = iota

	// No means credentials are present but invalid. The chain stops and the
	// request is rejected.
	No

	// Abstain means this authenticator cannot handle the credentials type.
	// The chain continues to the next authenticator.
	Abstain
)

// AuthResult carries the outcome of an authentication attempt.
type AuthResult struct {
	Decision AuthDecision
	Identity *Identity // populated only when Decision == Yes
	Err      error     // populated only when Decision == No
}

// Role is the flat role of a user.
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// ParseRole returns the canonical role matching s regardless of case.
// An empty string yields RoleUser.
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return RoleUser, nil
	case strings.EqualFold(s, string(RoleAdmin)):
		return RoleAdmin, nil
	case strings.EqualFold(s, string(RoleUser)):
		return RoleUser, nil
	}
	return "", fmt.Errorf("invalid role %q", s)
}

// Identity holds the public claims of an authenticated user. It never
// carries the password digest. Values are copied into tokens at login and
// are not refreshed until the user logs in again.
type Identity struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	LastName       string    `json:"lastName"`
	Role           Role      `json:"role"`
	Email          string    `json:"email"`
	DocumentNumber string    `json:"documentNumber"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Authenticator examines request credentials and returns a three-outcome vote.
type Authenticator interface {
	Authenticate(ctx context.Context, r *http.Request) AuthResult
}

// Sentinel errors.
var (
	// ErrUnauthenticated is returned when no authenticator accepted the request.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrTokenInvalid covers every token failure: malformed structure, wrong
	// algorithm, bad signature, missing or past expiration.
	ErrTokenInvalid = errors.New("unauthorized")

	// ErrAuthenticationFailed is returned by login for an unknown email and
	// for a wrong password alike.
	ErrAuthenticationFailed = errors.New("user not found")

	ErrTooManyRequests = errors.New("rate limit exceeded")
)

// AuthChain evaluates authenticators in order using three-outcome voting.
type AuthChain struct {
	// Authenticators are evaluated left to right.
	Authenticators []Authenticator

	// DefaultDecision is used when all authenticators abstain. Only No is
	// honoured; any other value is treated as No.
	DefaultDecision AuthDecision
}

// Authenticate runs the chain. Stops on the first Yes or No.
// If all abstain, the request is rejected.
func (c *AuthChain) Authenticate(ctx context.Context, r *http.Request) AuthResult {
	for _, authn := range c.Authenticators {
		result := authn.Authenticate(ctx, r)
		if result.Decision != Abstain {
			return result
		}
	}

	return AuthResult{
		Decision: No,
		Err:      ErrUnauthenticated,
	}
}
