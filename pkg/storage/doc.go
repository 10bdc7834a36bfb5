// Package storage provides utilities shared across storage adapter
// implementations, including sentinel errors and owner context helpers.
//
// Storage adapters (memory, postgres) implement the expenses.Store and
// login.UserStore interfaces defined by their consumers. This package
// contains only shared types and helpers, not the interfaces themselves.
package storage
