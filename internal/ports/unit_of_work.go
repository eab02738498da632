package ports

import "context"

// UnitOfWork defines a transaction boundary.
//
// The callback receives a RecordStore bound to the open transaction; it must
// not use any other store for writes. Returning an error rolls back, returning
// nil commits.
type UnitOfWork interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, store RecordStore) error) error
}
