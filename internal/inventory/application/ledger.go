package application

import "context"

// Ledger owns per-item available quantity. Reserve is the atomic
// check-and-decrement used during checkout; Release returns units after a
// cancellation or a compensated failure. Implementations must serialize
// concurrent reservations per item: two checkouts racing for the last unit
// must not both succeed.
type Ledger interface {
	// Reserve decrements stock by qty, failing with
	// *apperror.InsufficientStockError when fewer than qty units remain.
	Reserve(ctx context.Context, itemID string, qty int) error
	// Release increments stock by qty.
	Release(ctx context.Context, itemID string, qty int) error
}
