// Package postgres provides a PostgreSQL implementation of the user and
// expense stores. It uses pgx/v5 for connection pooling and goose for
// schema migrations.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rhuss/despesas/pkg/api"
	"github.com/rhuss/despesas/pkg/auth"
	"github.com/rhuss/despesas/pkg/auth/login"
	"github.com/rhuss/despesas/pkg/debug"
	"github.com/rhuss/despesas/pkg/storage"
)

// uniqueViolation is the PostgreSQL error code for unique constraint failures.
const uniqueViolation = "23505"

// Store is a PostgreSQL-backed user and expense store.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

const userColumns = `id, name, last_name, role, email, document_number, password, created_at, updated_at`

// CreateUser inserts a new account. Returns storage.ErrConflict when the
// email is already registered.
func (s *Store) CreateUser(ctx context.Context, account *login.Account) (*login.Account, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (name, last_name, role, email, document_number, password)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		account.Name, account.LastName, string(account.Role),
		account.Email, account.DocumentNumber, account.PasswordDigest,
	)

	created, err := scanAccount(row)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, storage.ErrConflict
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}

	debug.Log("storage", "user created", "user_id", created.ID)
	return created, nil
}

// GetUserByEmail returns the account registered under email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*login.Account, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return account, nil
}

const expenseColumns = `id, description, user_id, value, date, created_at, updated_at`

// CreateExpense inserts an expense owned by the user in the context.
func (s *Store) CreateExpense(ctx context.Context, in api.ExpenseInput) (*api.Expense, error) {
	owner, ok := storage.GetOwner(ctx)
	if !ok {
		return nil, storage.ErrNoOwner
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO expenses (description, user_id, value, date)
		VALUES ($1, $2, $3, $4)
		RETURNING `+expenseColumns,
		in.Description, owner, in.Value, in.Date,
	)

	e, err := scanExpense(row)
	if err != nil {
		return nil, fmt.Errorf("inserting expense: %w", err)
	}
	return e, nil
}

// GetExpense returns the caller's expense with the given id.
func (s *Store) GetExpense(ctx context.Context, id int64) (*api.Expense, error) {
	owner, ok := storage.GetOwner(ctx)
	if !ok {
		return nil, storage.ErrNoOwner
	}

	row := s.pool.QueryRow(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = $1 AND user_id = $2`,
		id, owner,
	)
	return expenseOrNotFound(scanExpense(row))
}

// ListExpenses returns the caller's expenses ordered by id.
func (s *Store) ListExpenses(ctx context.Context) ([]api.Expense, error) {
	owner, ok := storage.GetOwner(ctx)
	if !ok {
		return nil, storage.ErrNoOwner
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE user_id = $1 ORDER BY id`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	defer rows.Close()

	result := make([]api.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning expense: %w", err)
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating expenses: %w", err)
	}

	return result, nil
}

// UpdateExpense applies patch to the caller's expense. Absent patch
// fields keep their stored values.
func (s *Store) UpdateExpense(ctx context.Context, id int64, patch api.ExpensePatch) (*api.Expense, error) {
	owner, ok := storage.GetOwner(ctx)
	if !ok {
		return nil, storage.ErrNoOwner
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE expenses SET
			description = COALESCE($3::varchar, description),
			value       = COALESCE($4::double precision, value),
			date        = COALESCE($5::timestamptz, date),
			updated_at  = CASE WHEN $6::boolean THEN now() ELSE updated_at END
		WHERE id = $1 AND user_id = $2
		RETURNING `+expenseColumns,
		id, owner, patch.Description, patch.Value, patch.Date, !patch.Empty(),
	)
	return expenseOrNotFound(scanExpense(row))
}

// DeleteExpense removes the caller's expense and returns it.
func (s *Store) DeleteExpense(ctx context.Context, id int64) (*api.Expense, error) {
	owner, ok := storage.GetOwner(ctx)
	if !ok {
		return nil, storage.ErrNoOwner
	}

	row := s.pool.QueryRow(ctx,
		`DELETE FROM expenses WHERE id = $1 AND user_id = $2 RETURNING `+expenseColumns,
		id, owner,
	)
	return expenseOrNotFound(scanExpense(row))
}

// HealthCheck verifies the database connection.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func scanAccount(row pgx.Row) (*login.Account, error) {
	var a login.Account
	var role string
	err := row.Scan(
		&a.ID, &a.Name, &a.LastName, &role, &a.Email, &a.DocumentNumber,
		&a.PasswordDigest, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Role = auth.Role(role)
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return &a, nil
}

func scanExpense(row pgx.Row) (*api.Expense, error) {
	var e api.Expense
	err := row.Scan(&e.ID, &e.Description, &e.UserID, &e.Value, &e.Date, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Date = e.Date.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return &e, nil
}

// expenseOrNotFound maps a missing row to storage.ErrNotFound. A row that
// exists but belongs to another user is filtered by the query and so is
// reported the same way.
func expenseOrNotFound(e *api.Expense, err error) (*api.Expense, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying expense: %w", err)
	}
	return e, nil
}

// isDuplicateKey checks if the error is a PostgreSQL unique violation (23505).
func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
