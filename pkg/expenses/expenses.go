// Package expenses implements the expense operations exposed over HTTP.
// Every operation acts on behalf of the identity in the context and only
// ever touches that identity's records.
package expenses

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rhuss/despesas/pkg/api"
	"github.com/rhuss/despesas/pkg/auth"
	"github.com/rhuss/despesas/pkg/debug"
	"github.com/rhuss/despesas/pkg/notify"
	"github.com/rhuss/despesas/pkg/storage"
)

// Store persists expenses. Implementations scope every call by the owner
// set with storage.SetOwner and report records of other owners as
// storage.ErrNotFound.
type Store interface {
	CreateExpense(ctx context.Context, in api.ExpenseInput) (*api.Expense, error)
	GetExpense(ctx context.Context, id int64) (*api.Expense, error)
	ListExpenses(ctx context.Context) ([]api.Expense, error)
	UpdateExpense(ctx context.Context, id int64, patch api.ExpensePatch) (*api.Expense, error)
	DeleteExpense(ctx context.Context, id int64) (*api.Expense, error)
}

// Notification subject for created expenses.
const createdSubject = "Despesa cadastrada"

// Service implements expense CRUD on top of a Store.
type Service struct {
	store    Store
	notifier notify.Notifier
}

// NewService creates an expense service. A nil notifier disables
// notifications.
func NewService(store Store, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{store: store, notifier: notifier}
}

// scope returns the caller identity and a context carrying its owner id.
func scope(ctx context.Context) (context.Context, *auth.Identity, error) {
	identity := auth.IdentityFromContext(ctx)
	if identity == nil {
		return nil, nil, auth.ErrUnauthenticated
	}
	return storage.SetOwner(ctx, identity.ID), identity, nil
}

// List returns the caller's expenses; never nil.
func (s *Service) List(ctx context.Context) ([]api.Expense, error) {
	ctx, _, err := scope(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.store.ListExpenses(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []api.Expense{}
	}
	return list, nil
}

// Get returns one of the caller's expenses. Absent and foreign expenses
// both yield storage.ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*api.Expense, error) {
	ctx, identity, err := scope(ctx)
	if err != nil {
		return nil, err
	}
	return s.owned(ctx, identity, id)
}

// Create stores a new expense owned by the caller and notifies the caller
// by email. A failed notification is logged; the expense is kept.
func (s *Service) Create(ctx context.Context, in api.ExpenseInput) (*api.Expense, error) {
	ctx, identity, err := scope(ctx)
	if err != nil {
		return nil, err
	}

	e, err := s.store.CreateExpense(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("creating expense: %w", err)
	}

	debug.Log("storage", "expense created", "expense_id", e.ID, "user_id", identity.ID)

	if err := notify.Send(ctx, s.notifier, CreatedMessage(identity.Email, e)); err != nil {
		slog.Warn("expense kept despite notification failure", "expense_id", e.ID)
	}

	return e, nil
}

// Update applies patch to one of the caller's expenses.
func (s *Service) Update(ctx context.Context, id int64, patch api.ExpensePatch) (*api.Expense, error) {
	ctx, identity, err := scope(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, identity, id); err != nil {
		return nil, err
	}
	return s.store.UpdateExpense(ctx, id, patch)
}

// Delete removes one of the caller's expenses and returns it.
func (s *Service) Delete(ctx context.Context, id int64) (*api.Expense, error) {
	ctx, identity, err := scope(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, identity, id); err != nil {
		return nil, err
	}
	return s.store.DeleteExpense(ctx, id)
}

// owned loads the expense and checks that identity owns it.
func (s *Service) owned(ctx context.Context, identity *auth.Identity, id int64) (*api.Expense, error) {
	if id <= 0 {
		return nil, storage.ErrNotFound
	}

	e, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(e, identity); err != nil {
		slog.Warn("expense access denied", "expense_id", id, "user_id", identity.ID)
		return nil, err
	}
	return e, nil
}

// CreatedMessage builds the notification sent when e is created.
func CreatedMessage(to string, e *api.Expense) notify.Message {
	return notify.Message{
		To:      to,
		Subject: createdSubject,
		Body:    fmt.Sprintf("Nova despesa cadastrada: %s: R$ %.2f ", e.Description, e.Value),
	}
}
