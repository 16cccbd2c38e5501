package contribute

import (
	"errors"
	"fmt"
)

// Validation and execution failures. Validation errors always carry the
// specific violated constraint; they are never coerced into a generic
// failure.
var (
	// ErrProjectInactive rejects contributions to deactivated projects.
	ErrProjectInactive = errors.New("project is not active")

	// ErrProjectComplete rejects contributions once no funding capacity
	// remains.
	ErrProjectComplete = errors.New("project is already completed")

	// ErrAttemptInFlight rejects a second contribution attempt while one
	// is still submitting or confirming.
	ErrAttemptInFlight = errors.New("another contribution attempt is in flight")

	// ErrConfirmationIndeterminate marks an accepted submission whose
	// post-inclusion progress read failed. The contribution may well have
	// succeeded; only the confirmation is missing.
	ErrConfirmationIndeterminate = errors.New("contribution confirmation indeterminate")
)

// InvalidAmountError rejects a proposed amount outside (0, Max]. Max is
// the remaining funding capacity so the caller can report the ceiling.
type InvalidAmountError struct {
	Amount uint64
	Max    uint64
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %d: must be between 1 and %d remaining tokens", e.Amount, e.Max)
}

// InsufficientBalanceError rejects a proposed amount above the user's
// token balance.
type InsufficientBalanceError struct {
	Balance uint64
	Amount  uint64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: have %d tokens, need %d", e.Balance, e.Amount)
}

// SubmissionRejectedError wraps a ledger rejection or revert, keeping
// the ledger's reason verbatim.
type SubmissionRejectedError struct {
	Reason string
	Err    error
}

func (e *SubmissionRejectedError) Error() string {
	return fmt.Sprintf("submission rejected: %s", e.Reason)
}

func (e *SubmissionRejectedError) Unwrap() error {
	return e.Err
}
