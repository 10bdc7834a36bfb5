// Package auth provides authentication and authorization for the expense
// service.
//
// Authentication uses a chain-of-responsibility pattern with three-outcome
// voting: each authenticator returns Yes (identity found), No (credentials
// invalid), or Abstain (can't handle). When every authenticator abstains the
// chain's default decision applies; production wiring always uses No, so a
// request without credentials never reaches a protected handler.
//
// Auth is implemented as HTTP middleware, keeping it decoupled from the
// expense handlers. The middleware injects the authenticated identity and
// its user id (for storage owner scoping) into the request context.
//
// Resource handlers call [Authorize] after loading a record. A record owned
// by somebody else is reported exactly like a record that does not exist.
package auth
