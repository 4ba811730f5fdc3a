package lending

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an item, user or reservation does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when an operation is not allowed in the record's current state.
	ErrInvalidState = errors.New("invalid state")

	ErrUnavailable    = fmt.Errorf("%w: item is not available for reservation", ErrInvalidState)
	ErrUnpaidBalance  = fmt.Errorf("%w: user has an unpaid balance", ErrInvalidState)
	ErrExtensionLimit = fmt.Errorf("%w: extension limit reached", ErrInvalidState)
	ErrNotCheckedOut  = fmt.Errorf("%w: reservation has not been checked out", ErrInvalidState)
	ErrNegativeStock  = fmt.Errorf("%w: available quantity must not be negative", ErrInvalidState)

	// ErrInvalidSort is returned for an unknown sort field or direction.
	ErrInvalidSort = errors.New("invalid sort parameter")

	// ErrConflict marks a store error that is safe to retry (serialization failure, deadlock, busy).
	ErrConflict = errors.New("concurrent update conflict")
)
