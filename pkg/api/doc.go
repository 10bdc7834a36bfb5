// Package api defines the wire types of the expense service.
//
// It provides the expense record and its create/update request bodies,
// the structured error body returned by every endpoint, and the request
// validation rules applied before anything reaches storage.
//
// The package has zero external dependencies (Go standard library only) and
// performs no I/O. JSON field names follow the camelCase wire format used by
// existing clients (userId, createdAt, ...).
//
// Core types:
//   - [Expense]: A spending record owned by exactly one user
//   - [CreateExpenseRequest], [UpdateExpenseRequest], [LoginRequest]: Client request bodies
//   - [APIError]: Structured error with numeric code and message
package api
