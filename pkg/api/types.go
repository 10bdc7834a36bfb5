package api

import "time"

// Expense is a spending record. UserID is the owning user; every read and
// write is scoped by it.
type Expense struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	UserID      int64     `json:"userId"`
	Value       float64   `json:"value"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// OwnerID returns the id of the user owning the expense.
func (e *Expense) OwnerID() int64 {
	return e.UserID
}

// CreateExpenseRequest is the body of POST /expenses. Fields are raw JSON
// values so that type mismatches surface as validation errors rather than
// decode failures.
type CreateExpenseRequest struct {
	Description any `json:"description"`
	Value       any `json:"value"`
	Date        any `json:"date"`
}

// UpdateExpenseRequest is the body of PUT /expenses/{id}. Every field is
// optional; absent fields keep their stored value.
type UpdateExpenseRequest struct {
	Description any `json:"description"`
	Value       any `json:"value"`
	Date        any `json:"date"`
}

// ExpenseInput is a validated create request.
type ExpenseInput struct {
	Description string
	Value       float64
	Date        time.Time
}

// ExpensePatch is a validated update request. Nil fields are left unchanged.
type ExpensePatch struct {
	Description *string
	Value       *float64
	Date        *time.Time
}

// Empty reports whether the patch changes nothing.
func (p ExpensePatch) Empty() bool {
	return p.Description == nil && p.Value == nil && p.Date == nil
}

// Apply returns a copy of e with the patch applied.
func (p ExpensePatch) Apply(e Expense) Expense {
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Value != nil {
		e.Value = *p.Value
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	return e
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    any `json:"email"`
	Password any `json:"password"`
}
