package postgres

import (
	"errors"
	"time"
)

// Pool defaults.
const (
	defaultMaxConns        int32 = 25
	defaultMinConns        int32 = 2
	defaultMaxConnLifetime       = 30 * time.Minute
	defaultConnectTimeout        = 10 * time.Second
)

// Config holds connection pool and schema settings for the expense store.
type Config struct {
	// DSN is the connection string, e.g.
	// "postgres://despesas:secret@db:5432/despesas?sslmode=require".
	DSN string

	// MaxConns caps the pool. Default: 25.
	MaxConns int32

	// MinConns keeps idle connections warm. Default: 2.
	MinConns int32

	// MaxConnLifetime recycles connections. Default: 30m.
	MaxConnLifetime time.Duration

	// ConnectTimeout bounds the initial ping. Default: 10s.
	ConnectTimeout time.Duration

	// MigrateOnStart applies the embedded users and expenses migrations
	// before the store is returned.
	MigrateOnStart bool
}

// withDefaults returns a copy of c with unset fields filled in.
func (c Config) withDefaults() (Config, error) {
	if c.DSN == "" {
		return c, errors.New("postgres: DSN is required")
	}
	if c.MaxConns <= 0 {
		c.MaxConns = defaultMaxConns
	}
	if c.MinConns <= 0 {
		c.MinConns = defaultMinConns
	}
	if c.MinConns > c.MaxConns {
		c.MinConns = c.MaxConns
	}
	if c.MaxConnLifetime <= 0 {
		c.MaxConnLifetime = defaultMaxConnLifetime
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	return c, nil
}
