package compliance

import "errors"

// Sentinel kinds for settlement failures. Operations wrap these with a
// human-readable message; callers classify with errors.Is. All failures are
// deterministic rejections, never retried.
var (
	// ErrInputValidation covers malformed input: non-positive amounts,
	// empty fuel lists, non-positive fuel attributes.
	ErrInputValidation = errors.New("input validation failed")

	// ErrRecordNotFound means no compliance record exists for the ship-year.
	ErrRecordNotFound = errors.New("compliance record not found")

	// ErrState covers operations against a record in the wrong state:
	// applying to a non-deficit, banking a non-positive verified balance,
	// banking twice for the same ship-year.
	ErrState = errors.New("invalid settlement state")

	// ErrInsufficientBalance means the requested amount exceeds the
	// available banked surplus or the verified balance being banked.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvariantViolation means a pool-level rule failed: negative
	// aggregate sum, or a member that would exit worse off. The whole pool
	// operation is aborted with no side effects.
	ErrInvariantViolation = errors.New("pool invariant violated")
)
