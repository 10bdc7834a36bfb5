// Package password derives and verifies password digests with PBKDF2.
//
// Digests are lowercase hex strings derived with a single configured salt,
// so the same plaintext always yields the same digest. The defaults match
// digests produced by crypto-js 4.2 (HMAC-SHA256, 250000 iterations, 16-byte
// key); SHA-1 can be selected for digests created by older deployments.
package password

import (
	"context"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"runtime"
	"strings"
	"time"

	"github.com/rhuss/despesas/pkg/debug"
	"github.com/rhuss/despesas/pkg/observability"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/sync/semaphore"
)

// Defaults for the derivation parameters.
const (
	DefaultIterations = 250000
	DefaultKeyLength  = 16
	DefaultHash       = "sha256"
)

// ErrMissingSalt is returned by New when no salt is configured.
var ErrMissingSalt = errors.New("password: salt is required")

// Config holds the derivation parameters.
type Config struct {
	// Salt is mixed into every digest. Required.
	Salt string

	// Iterations is the PBKDF2 iteration count. Default: 250000.
	Iterations int

	// KeyLength is the derived key length in bytes. Default: 16.
	KeyLength int

	// Hash selects the PRF: "sha256" (default) or "sha1".
	Hash string

	// MaxConcurrent bounds simultaneous derivations in Matches.
	// Default: GOMAXPROCS.
	MaxConcurrent int64
}

// Hasher derives and compares password digests. It is safe for
// concurrent use.
type Hasher struct {
	salt       []byte
	iterations int
	keyLength  int
	prf        func() hash.Hash
	sem        *semaphore.Weighted
}

// New validates cfg and creates a Hasher.
func New(cfg Config) (*Hasher, error) {
	if cfg.Salt == "" {
		return nil, ErrMissingSalt
	}
	if cfg.Iterations == 0 {
		cfg.Iterations = DefaultIterations
	}
	if cfg.Iterations < 0 {
		return nil, fmt.Errorf("password: iterations must be positive, got %d", cfg.Iterations)
	}
	if cfg.KeyLength == 0 {
		cfg.KeyLength = DefaultKeyLength
	}
	if cfg.KeyLength < 0 {
		return nil, fmt.Errorf("password: key length must be positive, got %d", cfg.KeyLength)
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = int64(runtime.GOMAXPROCS(0))
	}

	prf, err := hashFunc(cfg.Hash)
	if err != nil {
		return nil, err
	}

	return &Hasher{
		salt:       []byte(cfg.Salt),
		iterations: cfg.Iterations,
		keyLength:  cfg.KeyLength,
		prf:        prf,
		sem:        semaphore.NewWeighted(cfg.MaxConcurrent),
	}, nil
}

func hashFunc(name string) (func() hash.Hash, error) {
	switch strings.ToLower(name) {
	case "", "sha256":
		return sha256.New, nil
	case "sha1":
		return sha1.New, nil
	default:
		return nil, fmt.Errorf("password: unsupported hash %q", name)
	}
}

// Derive returns the hex digest of plaintext. It is deterministic and
// never returns the plaintext itself.
func (h *Hasher) Derive(plaintext string) string {
	start := time.Now()
	key := pbkdf2.Key([]byte(plaintext), h.salt, h.iterations, h.keyLength, h.prf)
	observability.PasswordDerivationDuration.Observe(time.Since(start).Seconds())
	return hex.EncodeToString(key)
}

// Matches reports whether plaintext derives to stored. The comparison
// takes the same time regardless of where the digests differ, including
// their length. It returns an error only if ctx ends while waiting for a
// derivation slot.
func (h *Hasher) Matches(ctx context.Context, plaintext, stored string) (bool, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("waiting for password derivation: %w", err)
	}
	derived := h.Derive(plaintext)
	h.sem.Release(1)

	debug.Trace("auth", "password digest compared", "digest_len", len(stored))

	a := sha256.Sum256([]byte(derived))
	b := sha256.Sum256([]byte(strings.ToLower(stored)))
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1, nil
}
