// Package transport defines the service interfaces and the HTTP middleware
// chain shared by the expense service's HTTP layer.
//
// # Service Interfaces
//
// Interfaces define the contract between the HTTP adapter and the
// business layer:
//
//   - Authenticator exchanges credentials for a token (POST /auth/login).
//   - ExpenseService implements the owner-scoped expense operations.
//   - HealthChecker backs GET /healthz.
//
// # Errors
//
// WriteError is the single place where internal errors become wire errors.
// Sentinel errors from pkg/auth and pkg/storage map to their coded API
// errors; anything unrecognised becomes a generic 500 whose detail only
// reaches the server log.
//
// # Middleware
//
// Middleware wraps http.Handler. Built-in middleware provides panic
// recovery, request ID assignment (X-Request-ID) and structured access
// logging via log/slog. Authentication lives in pkg/auth and is applied
// per route by the adapter.
package transport
