// Package memory provides an in-memory implementation of the user and
// expense stores for tests and lightweight deployments. Data is lost when
// the process restarts.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rhuss/despesas/pkg/api"
	"github.com/rhuss/despesas/pkg/auth/login"
	"github.com/rhuss/despesas/pkg/storage"
)

// Store keeps users and expenses in maps guarded by a single lock.
// Expense operations are scoped by the owner in the context.
type Store struct {
	mu       sync.RWMutex
	users    map[int64]*login.Account
	byEmail  map[string]int64
	expenses map[int64]*api.Expense
	userSeq  int64
	expSeq   int64
	now      func() time.Time
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users:    make(map[int64]*login.Account),
		byEmail:  make(map[string]int64),
		expenses: make(map[int64]*api.Expense),
		now:      time.Now,
	}
}

// CreateUser stores a new account. Returns storage.ErrConflict when the
// email is already registered.
func (s *Store) CreateUser(_ context.Context, account *login.Account) (*login.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[account.Email]; exists {
		return nil, storage.ErrConflict
	}

	s.userSeq++
	now := s.now().UTC()
	stored := *account
	stored.ID = s.userSeq
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.users[stored.ID] = &stored
	s.byEmail[stored.Email] = stored.ID

	out := stored
	return &out, nil
}

// GetUserByEmail returns a copy of the account registered under email.
func (s *Store) GetUserByEmail(_ context.Context, email string) (*login.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *s.users[id]
	return &out, nil
}

// CreateExpense stores a new expense owned by the user in the context.
func (s *Store) CreateExpense(ctx context.Context, in api.ExpenseInput) (*api.Expense, error) {
	owner, ok := storage.GetOwner(ctx)
	if !ok {
		return nil, storage.ErrNoOwner
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.expSeq++
	now := s.now().UTC()
	e := &api.Expense{
		ID:          s.expSeq,
		Description: in.Description,
		UserID:      owner,
		Value:       in.Value,
		Date:        in.Date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.expenses[e.ID] = e

	out := *e
	return &out, nil
}

// GetExpense returns the expense with the given id. An expense owned by
// someone else is reported as storage.ErrNotFound.
func (s *Store) GetExpense(ctx context.Context, id int64) (*api.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	out := *e
	return &out, nil
}

// ListExpenses returns the caller's expenses ordered by id. The result is
// never nil.
func (s *Store) ListExpenses(ctx context.Context) ([]api.Expense, error) {
	owner, ok := storage.GetOwner(ctx)
	if !ok {
		return nil, storage.ErrNoOwner
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]api.Expense, 0)
	for _, e := range s.expenses {
		if e.UserID == owner {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// UpdateExpense applies patch to the caller's expense.
func (s *Store) UpdateExpense(ctx context.Context, id int64, patch api.ExpensePatch) (*api.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := patch.Apply(*e)
	if !patch.Empty() {
		updated.UpdatedAt = s.now().UTC()
	}
	s.expenses[id] = &updated

	out := updated
	return &out, nil
}

// DeleteExpense removes the caller's expense and returns it.
func (s *Store) DeleteExpense(ctx context.Context, id int64) (*api.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	delete(s.expenses, id)

	out := *e
	return &out, nil
}

// HealthCheck always succeeds for the in-memory store.
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

// lookup finds an expense visible to the owner in ctx. Must be called
// with mu held.
func (s *Store) lookup(ctx context.Context, id int64) (*api.Expense, error) {
	owner, ok := storage.GetOwner(ctx)
	if !ok {
		return nil, storage.ErrNoOwner
	}
	e, exists := s.expenses[id]
	if !exists || e.UserID != owner {
		return nil, storage.ErrNotFound
	}
	return e, nil
}
