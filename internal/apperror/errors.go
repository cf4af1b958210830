package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotAuthorized    = errors.New("not authorized")
	ErrNotFound         = errors.New("not found")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrItemUnavailable  = errors.New("item is not available")
	ErrConflict         = errors.New("conflict")
)

// InsufficientStockError reports which item failed validation and how many
// units were actually available at decision time.
type InsufficientStockError struct {
	ItemID    string
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %s: %d available", e.ItemID, e.Available)
}

// Invalid wraps ErrInvalidArgument with a caller-facing reason.
func Invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, reason)
}
