package transport

import (
	"context"

	"github.com/rhuss/despesas/pkg/api"
	"github.com/rhuss/despesas/pkg/auth/login"
)

// Authenticator exchanges an email and password for a token.
// Failed credentials return auth.ErrAuthenticationFailed.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*login.Result, error)
}

// ExpenseService implements the expense operations for the identity in
// the context. Expenses that do not exist or belong to someone else are
// reported as storage.ErrNotFound.
type ExpenseService interface {
	List(ctx context.Context) ([]api.Expense, error)
	Get(ctx context.Context, id int64) (*api.Expense, error)
	Create(ctx context.Context, in api.ExpenseInput) (*api.Expense, error)
	Update(ctx context.Context, id int64, patch api.ExpensePatch) (*api.Expense, error)
	Delete(ctx context.Context, id int64) (*api.Expense, error)
}

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
