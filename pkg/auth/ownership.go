package auth

import "github.com/rhuss/despesas/pkg/storage"

// Owned is implemented by records that belong to a single user.
type Owned interface {
	comparable
	OwnerID() int64
}

// Authorize grants access to res only when it is owned by identity. A nil
// record, a missing identity and a foreign record all yield
// storage.ErrNotFound, so callers cannot tell them apart.
func Authorize[R Owned](res R, identity *Identity) error {
	var zero R
	if res == zero || identity == nil {
		return storage.ErrNotFound
	}
	if res.OwnerID() != identity.ID {
		return storage.ErrNotFound
	}
	return nil
}
