package storage

import "context"

// ownerKey is a private type for the owner context key, preventing
// collisions with other packages.
type ownerKey struct{}

// SetOwner injects the id of the authenticated user into the context.
// Stores use it to scope every read and write to that user's records.
func SetOwner(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, ownerKey{}, userID)
}

// GetOwner extracts the owner id from the context. The boolean is false when
// no owner is set; stores must then refuse owner-scoped operations.
func GetOwner(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(ownerKey{}).(int64)
	return v, ok
}
