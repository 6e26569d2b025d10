package common

import "errors"

// Sentinel errors for ledger operations. Callers classify outcomes with
// errors.Is; services wrap these with context via fmt.Errorf("...: %w").
var (
	// ErrInvalidQuantity rejects non-positive quantities before any I/O.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")

	// ErrInsufficientStock rejects a debit exceeding on-hand quantity.
	// The record is left untouched and no movement is written.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrNoCollaboration rejects a cross-owner transfer without an
	// accepted collaboration link. Checked before any debit.
	ErrNoCollaboration = errors.New("no accepted collaboration between owners")

	// ErrNotFound is returned when a required record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyResolved is returned on a second resolution attempt of a
	// transfer request. Stock is never touched twice.
	ErrAlreadyResolved = errors.New("transfer request already resolved")

	// ErrStorageConflict marks a concurrent-transaction abort. Retryable.
	ErrStorageConflict = errors.New("concurrent transaction conflict")

	// ErrStorageUnavailable marks a transient storage failure. Retryable.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// IsRetryable reports whether the caller may safely retry the operation.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageConflict) || errors.Is(err, ErrStorageUnavailable)
}
